package analyzers

import "time"

// OpenOpen accumulates open-to-open P&L: each bar contributes
// (next open - this open) x position held this bar per instrument, zero on
// the final bar where no next open exists.
type OpenOpen struct {
	names []string
	rep   Report
}

func NewOpenOpen(names []string) *OpenOpen {
	return &OpenOpen{names: names, rep: newReport(names)}
}

// BarInput is one instrument's contribution to a bar: the position held over
// the bar and the open prices bracketing it. HasNext is false on the final
// bar, making the contribution zero.
type BarInput struct {
	Position float64
	ThisOpen float64
	NextOpen float64
	HasNext  bool
}

func (a *OpenOpen) RecordBar(date time.Time, inputs map[string]BarInput) {
	byName := make(map[string]float64, len(inputs))
	for name, in := range inputs {
		if !in.HasNext {
			continue
		}
		byName[name] = (in.NextOpen - in.ThisOpen) * in.Position
	}
	a.rep.appendBar(date, a.names, byName)
}

func (a *OpenOpen) MarkBankrupt(at time.Time) { a.rep.markBankrupt(at) }

func (a *OpenOpen) Report() Report { return a.rep }
