package risk

// Side of an order, derived from the sign of its size.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// SideOf maps a signed size to its side.
func SideOf(units float64) Side {
	if units >= 0 {
		return Buy
	}
	return Sell
}

type limitKey struct {
	instrument string
	side       Side
}

// LimitBook enforces the venue rule of at most one resting limit order per
// (instrument, side) per day. Counts reset at day start.
type LimitBook struct {
	counts map[limitKey]int
}

func NewLimitBook() *LimitBook {
	return &LimitBook{counts: make(map[limitKey]int)}
}

// TryReserve claims today's limit-order slot for (instrument, side).
// It returns true and takes the slot if it was free; otherwise false with no
// state change. The rejected order may be retried the next day.
func (b *LimitBook) TryReserve(instrument string, side Side) bool {
	k := limitKey{instrument: instrument, side: side}
	if b.counts[k] >= 1 {
		return false
	}
	b.counts[k]++
	return true
}

// Reset clears all counters at the start of a new calendar day.
func (b *LimitBook) Reset() {
	clear(b.counts)
}
