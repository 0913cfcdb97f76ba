package analyzers

import "time"

// Report is a date-aligned P&L table: one record per instrument per bar,
// daily and cumulative, plus the portfolio roll-up. Series are append-only
// and always equal in length to Dates.
type Report struct {
	Dates          []time.Time
	Daily          map[string][]float64
	Cumulative     map[string][]float64
	PortfolioDaily []float64
	PortfolioCum   []float64

	Bankrupt   bool
	BankruptAt time.Time
}

func newReport(names []string) Report {
	r := Report{
		Daily:      make(map[string][]float64, len(names)),
		Cumulative: make(map[string][]float64, len(names)),
	}
	for _, n := range names {
		r.Daily[n] = nil
		r.Cumulative[n] = nil
	}
	return r
}

// appendBar commits one bar across every instrument; names absent from
// byName contribute zero so the series never gap.
func (r *Report) appendBar(date time.Time, names []string, byName map[string]float64) {
	r.Dates = append(r.Dates, date)

	portfolio := 0.0
	for _, n := range names {
		v := byName[n]
		portfolio += v

		r.Daily[n] = append(r.Daily[n], v)
		cum := v
		if k := len(r.Cumulative[n]); k > 0 {
			cum += r.Cumulative[n][k-1]
		}
		r.Cumulative[n] = append(r.Cumulative[n], cum)
	}

	r.PortfolioDaily = append(r.PortfolioDaily, portfolio)
	cum := portfolio
	if k := len(r.PortfolioCum); k > 0 {
		cum += r.PortfolioCum[k-1]
	}
	r.PortfolioCum = append(r.PortfolioCum, cum)
}

func (r *Report) markBankrupt(at time.Time) {
	if r.Bankrupt {
		return
	}
	r.Bankrupt = true
	r.BankruptAt = at
}
