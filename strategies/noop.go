package strategies

import "github.com/rustyeddy/harness/backtest"

// NoOp does nothing. Useful for exercising the engine's bookkeeping alone.
type NoOp struct{}

func (NoOp) Name() string { return "noop" }

func (NoOp) OnBar(ctx *backtest.Context) error {
	_ = ctx
	return nil
}

func init() {
	Register("noop", func(Params) (backtest.Strategy, error) {
		return NoOp{}, nil
	})
	Register("none", func(Params) (backtest.Strategy, error) {
		return NoOp{}, nil
	})
}
