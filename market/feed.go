package market

import (
	"fmt"
	"time"
)

// Offsets for bar access relative to the feed cursor.
const (
	Prev = -1
	Cur  = 0
	Next = +1
)

// Feed presents one or more equal-length Series on a common time axis and a
// shared cursor. Callers read bars by (instrument, offset); offset 0 is the
// current bar, +1 the next (unavailable on the last bar), -1 the previous.
//
// Aligning raw vendor files onto the common axis happens upstream; the Feed
// only verifies the series agree in length.
type Feed struct {
	series []*Series
	byName map[string]int
	idx    int
}

func NewFeed(series ...*Series) (*Feed, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("feed requires at least one series")
	}

	byName := make(map[string]int, len(series))
	n := series[0].Len()
	for i, s := range series {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if s.Len() != n {
			return nil, fmt.Errorf("series %q has %d bars, want %d (feeds must be aligned)",
				s.Name, s.Len(), n)
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate series name %q", s.Name)
		}
		byName[s.Name] = i
	}

	return &Feed{series: series, byName: byName, idx: -1}, nil
}

// Names returns instrument names in feed order.
func (f *Feed) Names() []string {
	names := make([]string, len(f.series))
	for i, s := range f.series {
		names[i] = s.Name
	}
	return names
}

func (f *Feed) Len() int       { return f.series[0].Len() }
func (f *Feed) LastIndex() int { return f.Len() - 1 }

// Index is the cursor position; -1 before the first Next().
func (f *Feed) Index() int { return f.idx }

// Next advances the cursor one bar. Returns false at data exhaustion.
func (f *Feed) Next() bool {
	if f.idx+1 >= f.Len() {
		return false
	}
	f.idx++
	return true
}

// Date is the current bar's date (shared across all series).
func (f *Feed) Date() time.Time {
	return f.series[0].Date(f.idx)
}

// Bar reads the bar at the given offset from the cursor.
// ok is false for unknown instruments or out-of-range offsets
// (e.g. Next on the final bar).
func (f *Feed) Bar(name string, offset int) (Bar, bool) {
	si, ok := f.byName[name]
	if !ok {
		return Bar{}, false
	}
	i := f.idx + offset
	if i < 0 || i >= f.Len() {
		return Bar{}, false
	}
	return f.series[si].Bars[i], true
}

func (f *Feed) Open(name string, offset int) (float64, bool) {
	b, ok := f.Bar(name, offset)
	return b.Open, ok
}

func (f *Feed) High(name string, offset int) (float64, bool) {
	b, ok := f.Bar(name, offset)
	return b.High, ok
}

func (f *Feed) Low(name string, offset int) (float64, bool) {
	b, ok := f.Bar(name, offset)
	return b.Low, ok
}

func (f *Feed) Close(name string, offset int) (float64, bool) {
	b, ok := f.Bar(name, offset)
	return b.Close, ok
}
