package sim

import (
	"fmt"

	"github.com/rustyeddy/harness/journal"
	"github.com/rustyeddy/harness/market"
	"github.com/rustyeddy/harness/pkg/id"
)

// Engine is a discrete-time market simulator over a bar feed. Orders
// submitted during bar k are matched when the feed advances to bar k+1:
// market orders fill at the new open, limit orders fill if the new bar
// touches their price. Fills mutate cash and positions and are reported
// through the listeners.
//
// Everything is strictly sequential; the engine is not safe for concurrent
// use and does not need to be.
type Engine struct {
	feed      *market.Feed
	cash      float64
	positions map[string]*Position
	pending   []*Order
	jrnl      journal.Journal

	orderListener OrderListener
	tradeListener TradeListener
}

func NewEngine(feed *market.Feed, startingCash float64, j journal.Journal) *Engine {
	if j == nil {
		j = journal.Discard{}
	}
	return &Engine{
		feed:      feed,
		cash:      startingCash,
		positions: make(map[string]*Position),
		jrnl:      j,
	}
}

func (e *Engine) SetOrderListener(l OrderListener) { e.orderListener = l }
func (e *Engine) SetTradeListener(l TradeListener) { e.tradeListener = l }

func (e *Engine) Feed() *market.Feed { return e.feed }

func (e *Engine) Cash() float64 { return e.cash }

// AddCash applies a direct cash adjustment (the slippage model debits
// through here).
func (e *Engine) AddCash(delta float64) { e.cash += delta }

// Position returns the signed holding for an instrument, zero when flat.
func (e *Engine) Position(instrument string) float64 {
	if p, ok := e.positions[instrument]; ok {
		return p.Units
	}
	return 0
}

// Positions returns the nonzero signed holdings.
func (e *Engine) Positions() map[string]float64 {
	out := make(map[string]float64)
	for name, p := range e.positions {
		if p.Units != 0 {
			out[name] = p.Units
		}
	}
	return out
}

// NetWorth marks every position at the current bar's open:
// cash plus signed market value, shorts contributing negatively.
func (e *Engine) NetWorth() float64 {
	nw := e.cash
	for name, p := range e.positions {
		if p.Units == 0 {
			continue
		}
		open, ok := e.feed.Open(name, market.Cur)
		if !ok {
			continue
		}
		nw += p.Units * open
	}
	return nw
}

// Submit places an order for next-bar execution and returns its handle.
// Unknown instruments and zero sizes are rejected.
func (e *Engine) Submit(instrument string, units float64, kind Kind, price float64) (*Order, error) {
	return e.submit(instrument, units, kind, price, "strategy")
}

// SubmitClose places a market order flattening the current position,
// tagged with the given reason for the journal.
func (e *Engine) SubmitClose(instrument, reason string) (*Order, error) {
	pos := e.Position(instrument)
	if pos == 0 {
		return nil, fmt.Errorf("sim: no position in %q to close", instrument)
	}
	return e.submit(instrument, -pos, Market, 0, reason)
}

func (e *Engine) submit(instrument string, units float64, kind Kind, price float64, tag string) (*Order, error) {
	o := &Order{
		ID:          id.New(),
		Instrument:  instrument,
		Units:       units,
		Kind:        kind,
		Price:       price,
		Tag:         tag,
		SubmittedAt: e.feed.Date(),
	}

	if _, ok := e.feed.Bar(instrument, market.Cur); !ok {
		o.Status = Rejected
		e.notifyOrder(*o)
		return o, fmt.Errorf("sim: unknown instrument %q", instrument)
	}
	if units == 0 {
		o.Status = Rejected
		e.notifyOrder(*o)
		return o, fmt.Errorf("sim: zero-size order for %q", instrument)
	}

	o.Status = Submitted
	e.notifyOrder(*o)
	o.Status = Accepted
	e.notifyOrder(*o)

	e.pending = append(e.pending, o)
	return o, nil
}

// Cancel removes a pending order. Returns false if the handle is not working.
func (e *Engine) Cancel(orderID string) bool {
	for i, o := range e.pending {
		if o.ID == orderID {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			o.Status = Cancelled
			e.notifyOrder(*o)
			return true
		}
	}
	return false
}

// CancelRestingLimits cancels every pending limit order (good-for-day
// expiry at day start) and returns how many were cancelled.
func (e *Engine) CancelRestingLimits() int {
	kept := e.pending[:0]
	n := 0
	for _, o := range e.pending {
		if o.Kind == Limit {
			o.Status = Cancelled
			e.notifyOrder(*o)
			n++
			continue
		}
		kept = append(kept, o)
	}
	e.pending = kept
	return n
}

// OpenOrders returns copies of the working orders.
func (e *Engine) OpenOrders() []Order {
	out := make([]Order, 0, len(e.pending))
	for _, o := range e.pending {
		out = append(out, *o)
	}
	return out
}

// Advance moves the feed to the next bar and matches pending orders against
// it. Returns false at data exhaustion, leaving pending orders unfilled.
func (e *Engine) Advance() bool {
	if !e.feed.Next() {
		return false
	}
	e.matchPending()
	return true
}

func (e *Engine) matchPending() {
	kept := e.pending[:0]
	for _, o := range e.pending {
		bar, ok := e.feed.Bar(o.Instrument, market.Cur)
		if !ok {
			kept = append(kept, o)
			continue
		}

		px, fills := matchOrder(o, bar)
		if !fills {
			kept = append(kept, o)
			continue
		}
		e.fill(o, px)
	}
	e.pending = kept
}

// matchOrder decides whether the order executes against this bar and at what
// price. Market orders always fill at the open. A limit buy fills at the
// open when the bar opens at or through the price, else at the limit price
// when the low touches it; sells mirror with the high.
func matchOrder(o *Order, b market.Bar) (price float64, fills bool) {
	if o.Kind == Market {
		return b.Open, true
	}
	if o.Units > 0 {
		if b.Open <= o.Price {
			return b.Open, true
		}
		if b.Low <= o.Price {
			return o.Price, true
		}
		return 0, false
	}
	if b.Open >= o.Price {
		return b.Open, true
	}
	if b.High >= o.Price {
		return o.Price, true
	}
	return 0, false
}

func (e *Engine) fill(o *Order, price float64) {
	now := e.feed.Date()

	e.cash -= o.Units * price

	pos, ok := e.positions[o.Instrument]
	if !ok {
		pos = &Position{Instrument: o.Instrument}
		e.positions[o.Instrument] = pos
	}
	openTime := pos.OpenTime
	entry := pos.AvgEntry
	closed, realized := pos.applyFill(o.Units, price, now)

	o.Status = Filled
	o.FillPrice = price
	o.FilledAt = now
	e.notifyOrder(*o)

	if closed != 0 {
		tc := TradeClose{
			Instrument: o.Instrument,
			Units:      closed,
			EntryPrice: entry,
			ExitPrice:  price,
			PL:         realized,
			Time:       now,
		}
		_ = e.jrnl.RecordTrade(journal.TradeRecord{
			TradeID:    id.New(),
			Instrument: o.Instrument,
			Units:      closed,
			EntryPrice: entry,
			ExitPrice:  price,
			OpenTime:   openTime,
			CloseTime:  now,
			RealizedPL: realized,
			Reason:     o.Tag,
		})
		if e.tradeListener != nil {
			e.tradeListener.OnTradeClosed(tc)
		}
	}
}

// CloseAllAtOpen flattens every position immediately at the current bar's
// open, bypassing next-bar matching. This is the forced-liquidation path:
// the solvency monitor must realize positions on the bar that detected
// insolvency, not one bar later.
func (e *Engine) CloseAllAtOpen(reason string) []Order {
	var closedOrders []Order
	for name, p := range e.positions {
		if p.Units == 0 {
			continue
		}
		open, ok := e.feed.Open(name, market.Cur)
		if !ok {
			continue
		}
		o := &Order{
			ID:          id.New(),
			Instrument:  name,
			Units:       -p.Units,
			Kind:        Market,
			Tag:         reason,
			SubmittedAt: e.feed.Date(),
			Status:      Accepted,
		}
		e.fill(o, open)
		closedOrders = append(closedOrders, *o)
	}
	return closedOrders
}

func (e *Engine) notifyOrder(o Order) {
	if e.orderListener != nil {
		e.orderListener.OnOrderStatus(o)
	}
}
