// Package indicators provides streaming technical indicators over daily bars.
package indicators

import "github.com/rustyeddy/harness/market"

// Indicator computes a single streaming value from closed bars.
// It is deterministic: the same bar sequence always yields the same values.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value, 0 while not Ready().
	Value() float64
}
