package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/harness/market"
	"github.com/rustyeddy/harness/risk"
	"github.com/rustyeddy/harness/sim"
)

func day(n int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// ohlc builds one daily bar with explicit open and close; high/low bracket
// both so market orders are never the binding constraint.
func ohlc(n int, open, close float64) market.Bar {
	hi, lo := open, open
	if close > hi {
		hi = close
	}
	if close < lo {
		lo = close
	}
	return market.Bar{Time: day(n), Open: open, High: hi + 1, Low: lo - 1, Close: close}
}

func mkFeed(t *testing.T, name string, bars ...market.Bar) *market.Feed {
	t.Helper()
	f, err := market.NewFeed(&market.Series{Name: name, Bars: bars})
	require.NoError(t, err)
	return f
}

// script calls fn once per bar with the bar index, counting invocations.
type script struct {
	calls int
	fn    func(idx int, ctx *Context)
}

func (s *script) Name() string { return "script" }

func (s *script) OnBar(ctx *Context) error {
	s.fn(ctx.Index(), ctx)
	s.calls++
	return nil
}

func mkEngine(t *testing.T, f *market.Feed, pol risk.Policy) *Engine {
	t.Helper()
	e, err := NewEngine(sim.NewEngine(f, pol.StartingCash, nil), pol, nil)
	require.NoError(t, err)
	return e
}

func TestMarketBuyPaysGapSlippage(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 100, 100),
		ohlc(1, 110, 110),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 10000, SlippageScale: 1.0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			ctx.QueueMarket("ge", 10)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	// Fill at 110 costs 1100; the 10-point overnight gap adds 0.2*10*10 = 20.
	assert.InDelta(t, 10000-1120, res.FinalCash, 1e-9)
	assert.Equal(t, 10.0, e.sim.Position("ge"))
	assert.InDelta(t, 8880+10*110, res.FinalNetWorth, 1e-9)
	assert.False(t, res.Bankrupt)
}

func TestLimitFillsSkipSlippage(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 100, 100),
		ohlc(1, 110, 110),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 10000, SlippageScale: 1.0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			// Marketable at the next open: open 110 <= 120.
			ctx.QueueLimit("ge", 10, 120)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	assert.InDelta(t, 10000-1100, res.FinalCash, 1e-9)
	assert.Equal(t, 10.0, e.sim.Position("ge"))
}

func TestOverspendGuardDropsWholeBasket(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 100, 100),
		ohlc(1, 100, 100),
		ohlc(2, 100, 100),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 1000, SlippageScale: 0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			ctx.QueueMarket("ge", 6) // needs 600
			ctx.QueueMarket("ge", 5) // needs 500, pushing the basket to 1100
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.FinalCash, "both orders dropped, cash untouched")
	assert.Zero(t, e.sim.Position("ge"))
}

func TestOverspendGuardAcceptsAffordableBasket(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 100, 100),
		ohlc(1, 100, 100),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 1000, SlippageScale: 0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			ctx.QueueMarket("ge", 6)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	assert.InDelta(t, 400, res.FinalCash, 1e-9)
	assert.Equal(t, 6.0, e.sim.Position("ge"))
}

func TestBankruptcyLiquidatesAndHalts(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 10, 10),
		ohlc(1, 10, 10),
		ohlc(2, 30, 30), // short marked here: 200 - 10*30 < 0
		ohlc(3, 30, 30),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 100, SlippageScale: 0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			ctx.QueueMarket("ge", -10)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	require.True(t, res.Bankrupt)
	assert.Equal(t, day(2), res.BankruptAt)

	// Forced buy-back at that bar's open: 200 - 300.
	assert.InDelta(t, -100, res.FinalCash, 1e-9)
	assert.Zero(t, e.sim.Position("ge"))

	// The hook never runs on or after the bankruptcy bar.
	assert.Equal(t, 2, strat.calls)

	// Reporting still covers the whole feed.
	assert.Len(t, res.OpenOpen.Dates, 4)
	assert.Len(t, res.Realized.Dates, 4)
	assert.True(t, res.OpenOpen.Bankrupt)
	assert.Equal(t, day(2), res.OpenOpen.BankruptAt)

	// Realized loss lands on the liquidation bar.
	assert.InDelta(t, -200, res.Realized.Daily["ge"][2], 1e-9)
}

func TestEndPolicyLiquidateClosesTwoBarsEarly(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 10, 10),
		ohlc(1, 10, 10),
		ohlc(2, 10, 10),
		ohlc(3, 12, 12),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 1000, SlippageScale: 0, EndPolicy: risk.EndLiquidate})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			ctx.QueueMarket("ge", 10)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	// Close goes out on bar 2 and fills at bar 3's open.
	assert.Zero(t, e.sim.Position("ge"))
	assert.InDelta(t, 1020, res.FinalCash, 1e-9)
	assert.InDelta(t, 20, res.Realized.Daily["ge"][3], 1e-9)
	assert.False(t, res.Bankrupt)
}

func TestEndPolicyHoldKeepsPositions(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 10, 10),
		ohlc(1, 10, 10),
		ohlc(2, 10, 10),
		ohlc(3, 12, 12),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 1000, SlippageScale: 0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			ctx.QueueMarket("ge", 10)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	assert.Equal(t, 10.0, e.sim.Position("ge"))
	assert.InDelta(t, 900+10*12, res.FinalNetWorth, 1e-9)
}

func TestLimitCapOnePerSidePerDay(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 100, 100),
		ohlc(1, 100, 100),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 10000, SlippageScale: 0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 0 {
			// Both are marketable at bar 1's open; the second buy is over
			// the per-side cap and never reaches the book.
			ctx.QueueLimit("ge", 5, 120)
			ctx.QueueLimit("ge", 5, 125)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	assert.Equal(t, 5.0, e.sim.Position("ge"))
	assert.InDelta(t, 10000-500, res.FinalCash, 1e-9)
}

func TestNewDayCancelsRestingLimitsAndResetsCaps(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 100, 100),
		ohlc(1, 100, 100),
		ohlc(2, 100, 100),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 10000, SlippageScale: 0, EndPolicy: risk.EndHold})

	var secondAccepted bool
	strat := &script{fn: func(idx int, ctx *Context) {
		switch idx {
		case 0:
			ctx.QueueLimit("ge", 5, 50)
		case 1:
			// The cap reset on the day roll, so the same slot is free again.
			ctx.QueueLimit("ge", 5, 50)
			secondAccepted = true
		}
	}}
	_, err := e.Run(strat)
	require.NoError(t, err)

	assert.True(t, secondAccepted)
	// Each limit rested for exactly one bar of matching and was then swept
	// at the next day roll; neither ever filled.
	assert.Empty(t, e.sim.OpenOrders())
	assert.Zero(t, e.sim.Position("ge"))
	assert.Equal(t, 10000.0, e.sim.Cash())
}

func TestAnalyzerSeriesSpanEveryBar(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge",
		ohlc(0, 10, 10),
		ohlc(1, 11, 11),
		ohlc(2, 12, 12),
		ohlc(3, 13, 13),
		ohlc(4, 14, 14),
	)
	e := mkEngine(t, f, risk.Policy{StartingCash: 1000, SlippageScale: 0, EndPolicy: risk.EndHold})

	strat := &script{fn: func(idx int, ctx *Context) {
		if idx == 1 {
			ctx.QueueMarket("ge", 5)
		}
	}}
	res, err := e.Run(strat)
	require.NoError(t, err)

	assert.Len(t, res.OpenOpen.Dates, 5)
	assert.Len(t, res.OpenOpen.Daily["ge"], 5)
	assert.Len(t, res.OpenOpen.Cumulative["ge"], 5)
	assert.Len(t, res.Realized.Dates, 5)
	assert.Len(t, res.Realized.Daily["ge"], 5)

	// Position of 5 rides opens 12->13->14 once filled at bar 2.
	assert.InDelta(t, 0, res.OpenOpen.Daily["ge"][1], 1e-9)
	assert.InDelta(t, 5, res.OpenOpen.Daily["ge"][2], 1e-9)
	assert.InDelta(t, 5, res.OpenOpen.Daily["ge"][3], 1e-9)
	assert.InDelta(t, 0, res.OpenOpen.Daily["ge"][4], 1e-9, "no next open on the final bar")
	assert.InDelta(t, 10, res.OpenOpen.PortfolioCum[4], 1e-9)

	// First bar is excluded from the activity denominator.
	assert.Equal(t, 4, res.Bars)
	assert.Equal(t, 3, res.ActiveBars)
	assert.InDelta(t, 75, res.ActivityPct, 1e-9)
}

func TestGuardPricesFinalBarBasketAtCurrentOpen(t *testing.T) {
	t.Parallel()

	// No next open exists on the final bar; the guard prices the basket at
	// that bar's own open instead, and the run finishes without error.
	lastBarBuyer := func() *script {
		return &script{fn: func(idx int, ctx *Context) {
			if idx == ctx.BarCount()-1 {
				ctx.QueueMarket("ge", 10)
			}
		}}
	}

	t.Run("rejected against the final open", func(t *testing.T) {
		t.Parallel()

		f := mkFeed(t, "ge", ohlc(0, 100, 100), ohlc(1, 120, 120))
		e := mkEngine(t, f, risk.Policy{StartingCash: 1100, SlippageScale: 1.0, EndPolicy: risk.EndHold})

		// 10 units cost 1000 at bar 0's open but 1200 at the final open;
		// only pricing at the final open rejects this basket.
		res, err := e.Run(lastBarBuyer())
		require.NoError(t, err)

		assert.Empty(t, e.sim.OpenOrders())
		assert.Equal(t, 1100.0, res.FinalCash)
	})

	t.Run("accepted against the final open", func(t *testing.T) {
		t.Parallel()

		f := mkFeed(t, "ge", ohlc(0, 100, 100), ohlc(1, 120, 120))
		e := mkEngine(t, f, risk.Policy{StartingCash: 1300, SlippageScale: 1.0, EndPolicy: risk.EndHold})

		res, err := e.Run(lastBarBuyer())
		require.NoError(t, err)

		// The order clears the guard and is submitted; with no bar left to
		// match against it simply never fills.
		require.Len(t, e.sim.OpenOrders(), 1)
		assert.Equal(t, 1300.0, res.FinalCash)
		assert.Zero(t, e.sim.Position("ge"))
	})
}

func TestRunRequiresStrategyAndValidPolicy(t *testing.T) {
	t.Parallel()

	f := mkFeed(t, "ge", ohlc(0, 10, 10), ohlc(1, 10, 10))

	_, err := NewEngine(sim.NewEngine(f, 100, nil), risk.Policy{StartingCash: -1, EndPolicy: risk.EndHold}, nil)
	require.Error(t, err)

	e := mkEngine(t, f, risk.Policy{StartingCash: 100, EndPolicy: risk.EndHold})
	_, err = e.Run(nil)
	require.Error(t, err)
}
