package strategies

import "github.com/rustyeddy/harness/backtest"

// BuyHold buys a fixed number of units of every instrument on the first bar
// and then sits on the position.
type BuyHold struct {
	Units float64

	done bool
}

func NewBuyHold(units float64) *BuyHold {
	if units <= 0 {
		units = 1
	}
	return &BuyHold{Units: units}
}

func (s *BuyHold) Name() string { return "buy-hold" }

func (s *BuyHold) OnBar(ctx *backtest.Context) error {
	if s.done {
		return nil
	}
	s.done = true

	for _, name := range ctx.Instruments() {
		ctx.QueueMarket(name, s.Units)
	}
	return nil
}

func init() {
	Register("buy-hold", func(p Params) (backtest.Strategy, error) {
		return NewBuyHold(p.Float("units", 1)), nil
	})
}
