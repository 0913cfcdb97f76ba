package analyzers

// Activity tracks the share of bars with at least one nonzero position
// anywhere in the portfolio. The first bar is excluded: nothing can be held
// during it, since the earliest fill is the second bar's open.
type Activity struct {
	seenFirst bool
	bars      int
	active    int
}

func (a *Activity) RecordBar(anyPosition bool) {
	if !a.seenFirst {
		a.seenFirst = true
		return
	}
	a.bars++
	if anyPosition {
		a.active++
	}
}

// Pct is the activity ratio in percent. Zero when no countable bars exist.
func (a *Activity) Pct() float64 {
	if a.bars == 0 {
		return 0
	}
	return 100 * float64(a.active) / float64(a.bars)
}

func (a *Activity) Bars() int       { return a.bars }
func (a *Activity) ActiveBars() int { return a.active }
