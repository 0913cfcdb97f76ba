package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/harness/analyzers"
)

// Result is the full summary of a run: terminal account state, both P&L
// conventions bar by bar, and the derived ratios.
type Result struct {
	Strategy string

	StartingCash  float64
	FinalCash     float64
	FinalNetWorth float64

	Bankrupt   bool
	BankruptAt time.Time

	OpenOpen analyzers.Report
	Realized analyzers.Report

	// Profit/drawdown summaries over the portfolio cumulative series.
	OpenOpenPD analyzers.PDSummary
	RealizedPD analyzers.PDSummary

	// Per-instrument summaries under the open-to-open convention.
	InstrumentPD map[string]analyzers.PDSummary

	ActivityPct float64
	Bars        int
	ActiveBars  int

	Start time.Time
	End   time.Time
}

func (e *Engine) buildResult(strat Strategy) *Result {
	oo := e.openOpen.Report()
	rz := e.realized.Report()

	r := &Result{
		Strategy:      strat.Name(),
		StartingCash:  e.pol.StartingCash,
		FinalCash:     e.sim.Cash(),
		FinalNetWorth: e.sim.NetWorth(),
		Bankrupt:      e.bankrupt,
		BankruptAt:    e.bankruptAt,
		OpenOpen:      oo,
		Realized:      rz,
		OpenOpenPD:    analyzers.SummarizePD(oo.PortfolioCum),
		RealizedPD:    analyzers.SummarizePD(rz.PortfolioCum),
		InstrumentPD:  make(map[string]analyzers.PDSummary, len(oo.Cumulative)),
		ActivityPct:   e.activity.Pct(),
		Bars:          e.activity.Bars(),
		ActiveBars:    e.activity.ActiveBars(),
	}
	for name, cum := range oo.Cumulative {
		r.InstrumentPD[name] = analyzers.SummarizePD(cum)
	}
	if n := len(oo.Dates); n > 0 {
		r.Start = oo.Dates[0]
		r.End = oo.Dates[n-1]
	}
	return r
}

func PrintResult(w io.Writer, r *Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	if !r.Start.IsZero() {
		fmt.Fprintf(w, "Start:         %s\n", r.Start.Format("2006-01-02"))
		fmt.Fprintf(w, "End:           %s\n", r.End.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "Bars:          %d\n", len(r.OpenOpen.Dates))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Cash:    %.2f\n", r.StartingCash)
	fmt.Fprintf(w, "Final Cash:    %.2f\n", r.FinalCash)
	fmt.Fprintf(w, "Net Worth:     %.2f\n", r.FinalNetWorth)
	if r.Bankrupt {
		fmt.Fprintf(w, "Bankrupt:      yes (%s)\n", r.BankruptAt.Format("2006-01-02"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Profit / Drawdown")
	fmt.Fprintln(w, "--------------------------------------------------")
	printPD(w, "Open-to-Open", r.OpenOpenPD)
	printPD(w, "Realized", r.RealizedPD)
	for name, pd := range r.InstrumentPD {
		printPD(w, name, pd)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Activity")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Active Bars:   %d of %d (%.2f%%)\n", r.ActiveBars, r.Bars, r.ActivityPct)

	fmt.Fprintln(w)
}

func printPD(w io.Writer, label string, pd analyzers.PDSummary) {
	if !pd.Defined {
		fmt.Fprintf(w, "%-14s final %.2f, no drawdown, ratio undefined\n", label+":", pd.Final)
		return
	}
	fmt.Fprintf(w, "%-14s final %.2f, max drawdown %.2f, ratio %.4f\n",
		label+":", pd.Final, pd.MaxDrawdown, pd.Ratio)
}
