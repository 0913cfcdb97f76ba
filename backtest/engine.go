package backtest

import (
	"fmt"
	"time"

	"github.com/yanun0323/logs"

	"github.com/rustyeddy/harness/analyzers"
	"github.com/rustyeddy/harness/journal"
	"github.com/rustyeddy/harness/market"
	"github.com/rustyeddy/harness/risk"
	"github.com/rustyeddy/harness/sim"
)

// Strategy is the per-bar hook the engine calls after rule enforcement for
// the bar has run. Engine-owned sequencing replaces any wrapping or
// inheritance: by the time OnBar runs, solvency and end-of-test checks are
// done and stale limit orders are gone; after it returns, the engine flushes
// the intents it queued.
type Strategy interface {
	Name() string
	OnBar(ctx *Context) error
}

// endOfTestOffset schedules forced liquidation this many bars before data
// exhaustion: the closing orders fill at the following bar's open, so they
// must go out with one bar to spare.
const endOfTestOffset = 2

// Engine is the per-bar order-lifecycle state machine. Each bar it runs, in
// fixed order: solvency check, end-of-test liquidation check, stale-limit
// cancellation, strategy hook, overspend guard, submission, bookkeeping.
type Engine struct {
	sim    *sim.Engine
	feed   *market.Feed
	pol    risk.Policy
	jrnl   journal.Journal
	limits *risk.LimitBook
	buf    intentBuffer

	bankrupt   bool
	bankruptAt time.Time
	halted     bool
	curDay     time.Time

	openOpen *analyzers.OpenOpen
	realized *analyzers.Realized
	activity analyzers.Activity
}

// NewEngine wires the rules engine onto a simulator. A missing or invalid
// risk policy is fatal: the run cannot start.
func NewEngine(s *sim.Engine, pol risk.Policy, j journal.Journal) (*Engine, error) {
	if err := pol.Validate(); err != nil {
		return nil, err
	}
	if j == nil {
		j = journal.Discard{}
	}

	names := s.Feed().Names()
	e := &Engine{
		sim:      s,
		feed:     s.Feed(),
		pol:      pol,
		jrnl:     j,
		limits:   risk.NewLimitBook(),
		openOpen: analyzers.NewOpenOpen(names),
		realized: analyzers.NewRealized(names),
	}
	s.SetOrderListener(e)
	s.SetTradeListener(e)
	return e, nil
}

// IsBankrupt reports the insolvency flag; once set it never clears.
func (e *Engine) IsBankrupt() bool { return e.bankrupt }

// Run drives the simulator through the whole feed, one bar at a time.
// Rule enforcement never surfaces as an error: overspend and limit-cap
// rejections are dropped orders, and insolvency halts trading but the run
// still completes and reports.
func (e *Engine) Run(strat Strategy) (*Result, error) {
	if strat == nil {
		return nil, fmt.Errorf("backtest: strategy is required")
	}

	for e.sim.Advance() {
		if err := e.runBar(strat); err != nil {
			return nil, fmt.Errorf("backtest: bar %d: %w", e.feed.Index(), err)
		}
	}

	return e.buildResult(strat), nil
}

func (e *Engine) runBar(strat Strategy) error {
	date := e.feed.Date()

	// Solvency first: a bankruptcy this bar liquidates at the current open
	// and ends all trading, this bar included.
	liquidated := false
	if !e.bankrupt && e.sim.NetWorth() < 0 {
		e.declareBankruptcy(date)
		liquidated = true
	}

	if !liquidated && !e.halted {
		if e.pol.EndPolicy == risk.EndLiquidate && e.feed.Index() == e.feed.Len()-endOfTestOffset {
			e.liquidateForEnd(date)
		}

		e.rollDay(date)

		if err := strat.OnBar(&Context{e: e}); err != nil {
			return err
		}

		e.flush(date)
	}

	e.recordBar(date)
	return nil
}

func (e *Engine) declareBankruptcy(date time.Time) {
	e.bankrupt = true
	e.bankruptAt = date
	e.halted = true
	e.openOpen.MarkBankrupt(date)
	e.realized.MarkBankrupt(date)

	logs.Warnf("net worth below zero on %s, forcing liquidation and halting trading",
		date.Format("2006-01-02"))

	e.sim.CancelRestingLimits()
	e.sim.CloseAllAtOpen("Bankruptcy")
}

func (e *Engine) liquidateForEnd(date time.Time) {
	positions := e.sim.Positions()
	if len(positions) == 0 {
		return
	}
	logs.Infof("end of data approaching on %s, closing %d position(s)",
		date.Format("2006-01-02"), len(positions))

	for _, name := range e.feed.Names() {
		if positions[name] == 0 {
			continue
		}
		if _, err := e.sim.SubmitClose(name, "EndOfData"); err != nil {
			logs.Errorf("close %s for end of data: %v", name, err)
		}
	}
}

// rollDay detects the first bar of a new calendar day: resting limit orders
// are good-for-day only and the per-side limit caps reset.
func (e *Engine) rollDay(date time.Time) {
	y1, m1, d1 := e.curDay.Date()
	y2, m2, d2 := date.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return
	}
	e.curDay = date

	if n := e.sim.CancelRestingLimits(); n > 0 {
		e.debugf("%s new day: cancelled %d carry-over limit order(s)", date.Format("2006-01-02"), n)
	}
	e.limits.Reset()
}

// flush runs once per bar after the strategy hook. Limit intents are
// cap-checked and submitted immediately; market intents form the day's
// basket, which the overspend guard accepts or rejects as a whole.
func (e *Engine) flush(date time.Time) {
	intents := e.buf.drain()
	if len(intents) == 0 {
		return
	}

	var basket []risk.Intent
	var marketIntents []intent

	for _, in := range intents {
		if in.units == 0 {
			continue
		}
		if in.kind == sim.Limit {
			side := risk.SideOf(in.units)
			if !e.limits.TryReserve(in.instrument, side) {
				logs.Infof("%s limit %s rejected on %s (max 1 per side per day)",
					date.Format("2006-01-02"), side, in.instrument)
				continue
			}
			if _, err := e.sim.Submit(in.instrument, in.units, sim.Limit, in.price); err != nil {
				logs.Errorf("submit limit on %s: %v", in.instrument, err)
			}
			continue
		}
		basket = append(basket, risk.Intent{Instrument: in.instrument, Units: in.units})
		marketIntents = append(marketIntents, in)
	}

	if len(marketIntents) == 0 {
		return
	}

	f := risk.ForecastBasket(e.sim.Cash(), basket, e.pol.SlippageScale, e.quote)
	if !f.Allowed {
		logs.Infof("%s overspend guard: projected cash %.4f < 0, dropping all %d market order(s)",
			date.Format("2006-01-02"), f.ProjectedCash, len(marketIntents))
		return
	}

	for _, in := range marketIntents {
		if _, err := e.sim.Submit(in.instrument, in.units, sim.Market, 0); err != nil {
			logs.Errorf("submit market on %s: %v", in.instrument, err)
		}
	}
}

// quote supplies the guard's look-ahead prices. On the final bar there is no
// next open; today's open stands in, by definition rather than as an error.
func (e *Engine) quote(instrument string) (risk.Quote, bool) {
	close0, ok := e.feed.Close(instrument, market.Cur)
	if !ok {
		return risk.Quote{}, false
	}
	next, ok := e.feed.Open(instrument, market.Next)
	if !ok {
		next, ok = e.feed.Open(instrument, market.Cur)
		if !ok {
			return risk.Quote{}, false
		}
	}
	return risk.Quote{NextOpen: next, Close: close0}, true
}

func (e *Engine) recordBar(date time.Time) {
	inputs := make(map[string]analyzers.BarInput, len(e.feed.Names()))
	anyPosition := false

	for _, name := range e.feed.Names() {
		pos := e.sim.Position(name)
		if pos != 0 {
			anyPosition = true
		}
		thisOpen, _ := e.feed.Open(name, market.Cur)
		nextOpen, hasNext := e.feed.Open(name, market.Next)
		inputs[name] = analyzers.BarInput{
			Position: pos,
			ThisOpen: thisOpen,
			NextOpen: nextOpen,
			HasNext:  hasNext,
		}
	}

	e.openOpen.RecordBar(date, inputs)
	e.realized.FlushBar(date)
	e.activity.RecordBar(anyPosition)

	if err := e.jrnl.RecordEquity(journal.EquitySnapshot{
		Time:     date,
		Cash:     e.sim.Cash(),
		NetWorth: e.sim.NetWorth(),
		Bankrupt: e.bankrupt,
	}); err != nil {
		logs.Errorf("record equity: %v", err)
	}
}

// OnOrderStatus implements sim.OrderListener. Completed market fills pay the
// gap slippage here, once per fill; limit fills never do.
func (e *Engine) OnOrderStatus(o sim.Order) {
	switch o.Status {
	case sim.Filled:
		e.debugf("fill %s %s %+.4f @ %.6g (%s)", o.Kind, o.Instrument, o.Units, o.FillPrice, o.Tag)
		if o.Kind == sim.Market {
			e.chargeSlippage(o)
		}
	case sim.Rejected:
		e.debugf("order rejected %s %s %+.4f", o.Kind, o.Instrument, o.Units)
	case sim.Cancelled:
		e.debugf("order cancelled %s %s %+.4f", o.Kind, o.Instrument, o.Units)
	}
}

func (e *Engine) chargeSlippage(o sim.Order) {
	open, ok := e.feed.Open(o.Instrument, market.Cur)
	if !ok {
		return
	}
	prevClose, ok := e.feed.Close(o.Instrument, market.Prev)
	if !ok {
		// No overnight gap exists before the first bar.
		return
	}

	cost := risk.SlippageCost(e.pol.SlippageScale, open, prevClose, o.Units)
	if cost == 0 {
		return
	}
	e.sim.AddCash(-cost)
	e.debugf("slippage charged %.6g on %s (gap %.6g, units %.4f)",
		cost, o.Instrument, market.Gap(prevClose, open), o.Units)
}

// OnTradeClosed implements sim.TradeListener, feeding the realized-P&L
// analyzer's per-bar bucket.
func (e *Engine) OnTradeClosed(tc sim.TradeClose) {
	e.realized.OnClose(tc.Instrument, tc.PL)
}

func (e *Engine) debugf(format string, args ...any) {
	if e.pol.Debug {
		logs.Debugf(format, args...)
	}
}
