package risk

import "math"

// Intent is one market-order line of a day's basket: a signed size for an
// instrument (+buy, -sell).
type Intent struct {
	Instrument string
	Units      float64
}

// Quote carries the look-ahead prices the guard needs for one instrument:
// the next bar's open (the price the basket would fill at) and today's close.
// On the final bar, callers substitute today's open for the next open.
type Quote struct {
	NextOpen float64
	Close    float64
}

// QuoteFunc resolves an instrument to its guard quote. ok is false for
// instruments the caller cannot price; their intents are skipped here and
// left to the simulator to reject.
type QuoteFunc func(instrument string) (Quote, bool)

// Forecast is the overspend guard's verdict on a whole basket.
type Forecast struct {
	Allowed       bool
	ProjectedCash float64
}

// ForecastBasket projects end-of-bar cash for a basket of market intents.
// Each line debits units x next open (buys consume cash, sells add it) plus
// the slippage the fill would incur. The basket is accepted iff projected
// cash stays >= 0; there is no partial acceptance. Zero-size intents are
// ignored and an empty basket trivially passes.
func ForecastBasket(cash float64, basket []Intent, scale float64, quote QuoteFunc) Forecast {
	projected := cash

	for _, in := range basket {
		if in.Units == 0 {
			continue
		}
		q, ok := quote(in.Instrument)
		if !ok {
			continue
		}

		projected -= in.Units * q.NextOpen
		projected -= scale * GapFraction * math.Abs(q.NextOpen-q.Close) * math.Abs(in.Units)
	}

	return Forecast{Allowed: projected >= 0, ProjectedCash: projected}
}
