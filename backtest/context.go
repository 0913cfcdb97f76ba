package backtest

import (
	"time"

	"github.com/rustyeddy/harness/market"
	"github.com/rustyeddy/harness/risk"
	"github.com/rustyeddy/harness/sim"
)

// Context is the strategy's window onto the engine for one bar. Strategies
// read prices and account state through it and deposit order intents; they
// never talk to the simulator directly.
type Context struct {
	e *Engine
}

func (c *Context) Date() time.Time { return c.e.feed.Date() }
func (c *Context) Index() int      { return c.e.feed.Index() }
func (c *Context) BarCount() int   { return c.e.feed.Len() }

func (c *Context) Instruments() []string { return c.e.feed.Names() }

// Bar reads OHLCV at an offset from the current bar: 0 current, +1 next
// (unavailable on the last bar), -1 previous.
func (c *Context) Bar(instrument string, offset int) (market.Bar, bool) {
	return c.e.feed.Bar(instrument, offset)
}

func (c *Context) Open(instrument string, offset int) (float64, bool) {
	return c.e.feed.Open(instrument, offset)
}

func (c *Context) High(instrument string, offset int) (float64, bool) {
	return c.e.feed.High(instrument, offset)
}

func (c *Context) Low(instrument string, offset int) (float64, bool) {
	return c.e.feed.Low(instrument, offset)
}

func (c *Context) Close(instrument string, offset int) (float64, bool) {
	return c.e.feed.Close(instrument, offset)
}

// Position is the signed holding in one instrument, zero when flat.
func (c *Context) Position(instrument string) float64 {
	return c.e.sim.Position(instrument)
}

func (c *Context) Cash() float64 { return c.e.sim.Cash() }

// QueueMarket deposits a market intent for this bar's basket. The intent is
// not an order yet: the whole basket passes or fails the overspend guard
// together at bar end.
func (c *Context) QueueMarket(instrument string, units float64) {
	c.e.buf.queue(intent{instrument: instrument, units: units, kind: sim.Market})
}

// QueueLimit deposits a limit intent. At flush it is submitted immediately
// if today's (instrument, side) slot is still free, else dropped.
func (c *Context) QueueLimit(instrument string, units, price float64) {
	c.e.buf.queue(intent{instrument: instrument, units: units, kind: sim.Limit, price: price})
}

// ForecastOK lets a strategy pre-check a basket against the overspend guard
// without committing anything.
func (c *Context) ForecastOK(basket []risk.Intent) bool {
	return risk.ForecastBasket(c.e.sim.Cash(), basket, c.e.pol.SlippageScale, c.e.quote).Allowed
}

// IsBankrupt reports whether the run has hit the insolvency stop.
func (c *Context) IsBankrupt() bool { return c.e.bankrupt }
