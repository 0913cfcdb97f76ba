package strategies

import (
	"fmt"

	"github.com/rustyeddy/harness/backtest"
	"github.com/rustyeddy/harness/market"
)

// LimitQuoter market-makes each instrument with one bid and one ask per day:
// the quotes straddle today's open with a spread proportional to yesterday's
// high-low range. Inventory beyond the limit is flattened with a market
// order before new quotes go out.
type LimitQuoter struct {
	Size           float64
	SpreadPct      float64
	InventoryLimit float64
}

func NewLimitQuoter(size, spreadPct, inventoryLimit float64) (*LimitQuoter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("strategies: limit-quoter size must be positive, got %v", size)
	}
	if spreadPct <= 0 {
		return nil, fmt.Errorf("strategies: limit-quoter spread percentage must be positive, got %v", spreadPct)
	}
	if inventoryLimit <= 0 {
		inventoryLimit = 50
	}
	return &LimitQuoter{Size: size, SpreadPct: spreadPct, InventoryLimit: inventoryLimit}, nil
}

func (s *LimitQuoter) Name() string { return "limit-quoter" }

func (s *LimitQuoter) OnBar(ctx *backtest.Context) error {
	for _, name := range ctx.Instruments() {
		pos := ctx.Position(name)
		if pos > s.InventoryLimit || pos < -s.InventoryLimit {
			ctx.QueueMarket(name, -pos)
		}

		center, ok := ctx.Open(name, market.Cur)
		if !ok {
			continue
		}
		prev, ok := ctx.Bar(name, market.Prev)
		if !ok {
			// No range to quote off on the first bar.
			continue
		}
		rng := prev.High - prev.Low
		if rng <= 0 {
			continue
		}

		spread := s.SpreadPct * rng
		ctx.QueueLimit(name, s.Size, center-0.5*spread)
		ctx.QueueLimit(name, -s.Size, center+0.5*spread)
	}
	return nil
}

func init() {
	Register("limit-quoter", func(p Params) (backtest.Strategy, error) {
		return NewLimitQuoter(p.Float("size", 1), p.Float("spread-pct", 0.30), p.Float("inventory-limit", 50))
	})
}
