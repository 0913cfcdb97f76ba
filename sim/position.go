package sim

import (
	"math"
	"time"
)

// Position is a signed holding in one instrument with average-entry
// accounting.
type Position struct {
	Instrument string
	Units      float64
	AvgEntry   float64
	OpenTime   time.Time
}

// applyFill folds a fill into the position. When the fill reduces or flips
// the position it returns the closed quantity (signed as the position was)
// and the realized P&L on that quantity.
func (p *Position) applyFill(units, price float64, at time.Time) (closed, realized float64) {
	if units == 0 {
		return 0, 0
	}

	// Flat, or adding in the same direction: reprice the average entry.
	if p.Units == 0 || sameSign(p.Units, units) {
		if p.Units == 0 {
			p.OpenTime = at
		}
		total := p.Units + units
		p.AvgEntry = (math.Abs(p.Units)*p.AvgEntry + math.Abs(units)*price) / math.Abs(total)
		p.Units = total
		return 0, 0
	}

	// Opposing fill: close up to the held quantity.
	closeQty := math.Min(math.Abs(units), math.Abs(p.Units))
	dir := sign(p.Units)
	closed = closeQty * dir
	realized = closed * (price - p.AvgEntry)

	remainder := units + closed // leftover fill beyond the close, if any
	p.Units += units
	if p.Units == 0 {
		p.AvgEntry = 0
		return closed, realized
	}
	if sameSign(p.Units, remainder) && remainder != 0 {
		// Flipped through zero: the surviving position opened at this fill.
		p.AvgEntry = price
		p.OpenTime = at
	}
	return closed, realized
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
