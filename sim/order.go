package sim

import "time"

// Kind of order execution.
type Kind int

const (
	Market Kind = iota
	Limit
)

func (k Kind) String() string {
	if k == Limit {
		return "LIMIT"
	}
	return "MARKET"
}

// Status of an order in its lifecycle.
type Status int

const (
	Submitted Status = iota
	Accepted
	Filled
	Cancelled
	Rejected
)

func (s Status) String() string {
	switch s {
	case Submitted:
		return "Submitted"
	case Accepted:
		return "Accepted"
	case Filled:
		return "Filled"
	case Cancelled:
		return "Cancelled"
	case Rejected:
		return "Rejected"
	}
	return "Unknown"
}

// Order is a working or completed order. Units are signed: +buy, -sell.
// Price is set for limit orders only.
type Order struct {
	ID         string
	Instrument string
	Units      float64
	Kind       Kind
	Price      float64
	Status     Status
	Tag        string

	SubmittedAt time.Time
	FillPrice   float64
	FilledAt    time.Time
}

// OrderListener observes order lifecycle transitions
// (submitted, accepted, filled, cancelled, rejected).
type OrderListener interface {
	OnOrderStatus(o Order)
}

// TradeClose reports a position close (full or partial) with the realized
// P&L of the closed quantity.
type TradeClose struct {
	Instrument string
	Units      float64 // closed quantity, signed as the position was
	EntryPrice float64
	ExitPrice  float64
	PL         float64
	Time       time.Time
}

// TradeListener observes position closes.
type TradeListener interface {
	OnTradeClosed(tc TradeClose)
}
