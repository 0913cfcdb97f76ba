package analyzers

import "time"

// Realized accumulates P&L only on actual position closes, as reported by
// the simulator, but still emits one record per instrument per bar (zero on
// quiet bars) so its series stay date-aligned with the open-to-open report.
type Realized struct {
	names   []string
	pending map[string]float64 // realized P&L accumulated this bar
	rep     Report
}

func NewRealized(names []string) *Realized {
	return &Realized{
		names:   names,
		pending: make(map[string]float64),
		rep:     newReport(names),
	}
}

// OnClose adds a close's realized P&L to the current bar's bucket.
func (a *Realized) OnClose(instrument string, pl float64) {
	a.pending[instrument] += pl
}

// FlushBar commits the bar: every instrument gets a record, and the bucket
// resets for the next bar.
func (a *Realized) FlushBar(date time.Time) {
	a.rep.appendBar(date, a.names, a.pending)
	clear(a.pending)
}

func (a *Realized) MarkBankrupt(at time.Time) { a.rep.markBankrupt(at) }

func (a *Realized) Report() Report { return a.rep }
