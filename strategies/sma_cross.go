package strategies

import (
	"fmt"

	"github.com/rustyeddy/harness/backtest"
	"github.com/rustyeddy/harness/indicators"
	"github.com/rustyeddy/harness/market"
	"github.com/rustyeddy/harness/risk"
)

// SMACross trades each instrument long/flat on a fast/slow SMA crossover of
// daily closes: enter long when the fast average crosses above the slow one,
// exit when it crosses back below.
type SMACross struct {
	Fast  int
	Slow  int
	Stake float64

	tracks map[string]*smaTrack
}

type smaTrack struct {
	fast *indicators.SimpleMA
	slow *indicators.SimpleMA

	lastDiff     float64
	haveLastDiff bool
}

func NewSMACross(fast, slow int, stake float64) (*SMACross, error) {
	if fast <= 0 || slow <= 0 || fast >= slow {
		return nil, fmt.Errorf("strategies: sma-cross needs 0 < fast < slow, got fast=%d slow=%d", fast, slow)
	}
	if stake <= 0 {
		stake = 1
	}
	return &SMACross{Fast: fast, Slow: slow, Stake: stake, tracks: make(map[string]*smaTrack)}, nil
}

func (s *SMACross) Name() string { return "sma-cross" }

func (s *SMACross) OnBar(ctx *backtest.Context) error {
	for _, name := range ctx.Instruments() {
		tr := s.tracks[name]
		if tr == nil {
			tr = &smaTrack{fast: indicators.NewMA(s.Fast), slow: indicators.NewMA(s.Slow)}
			s.tracks[name] = tr
		}

		bar, ok := ctx.Bar(name, market.Cur)
		if !ok {
			continue
		}
		tr.fast.Update(bar)
		tr.slow.Update(bar)
		if !tr.slow.Ready() {
			continue
		}

		diff := tr.fast.Value() - tr.slow.Value()
		crossedUp := tr.haveLastDiff && tr.lastDiff <= 0 && diff > 0
		crossedDown := tr.haveLastDiff && tr.lastDiff >= 0 && diff < 0
		tr.lastDiff = diff
		tr.haveLastDiff = true

		pos := ctx.Position(name)
		switch {
		case crossedUp && pos == 0:
			// Pre-check so a doomed entry never reaches the basket.
			if ctx.ForecastOK([]risk.Intent{{Instrument: name, Units: s.Stake}}) {
				ctx.QueueMarket(name, s.Stake)
			}
		case crossedDown && pos > 0:
			ctx.QueueMarket(name, -pos)
		}
	}
	return nil
}

func init() {
	Register("sma-cross", func(p Params) (backtest.Strategy, error) {
		return NewSMACross(p.Int("fast", 10), p.Int("slow", 30), p.Float("stake", 1))
	})
}
