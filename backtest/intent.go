package backtest

import "github.com/rustyeddy/harness/sim"

// intent is one strategy order request. Intents are born and consumed within
// a single bar.
type intent struct {
	instrument string
	units      float64
	kind       sim.Kind
	price      float64
}

// intentBuffer collects the strategy's desired trades for the current bar.
// queue always appends; acceptance or rejection happens at flush, and drain
// always empties the buffer whether or not anything was submitted.
type intentBuffer struct {
	intents []intent
}

func (b *intentBuffer) queue(in intent) {
	b.intents = append(b.intents, in)
}

func (b *intentBuffer) drain() []intent {
	out := b.intents
	b.intents = nil
	return out
}
