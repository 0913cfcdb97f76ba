package journal

import "time"

// TradeRecord is written once per position close with the realized P&L the
// simulator reported for the closed quantity.
type TradeRecord struct {
	TradeID    string
	Instrument string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

// EquitySnapshot is written once per bar: cash, mark-to-market net worth and
// the bankruptcy flag at the end of that bar.
type EquitySnapshot struct {
	Time     time.Time
	Cash     float64
	NetWorth float64
	Bankrupt bool
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard ignores everything. Useful for tests and quick sweeps.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error     { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }
