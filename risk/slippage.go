package risk

import "math"

// GapFraction is the share of the overnight gap charged as slippage per unit
// filled. The reference execution-cost model is 20% of |open - prev close|.
const GapFraction = 0.20

// SlippagePerUnit is the execution cost per unit for a market fill at open,
// given the previous bar's close. It is never negative: slippage is a cost
// for both buys and sells.
func SlippagePerUnit(scale, open, prevClose float64) float64 {
	return scale * GapFraction * math.Abs(open-prevClose)
}

// SlippageCost is the total cash debit for a completed market fill.
// Limit fills carry no slippage.
func SlippageCost(scale, open, prevClose, units float64) float64 {
	return SlippagePerUnit(scale, open, prevClose) * math.Abs(units)
}
