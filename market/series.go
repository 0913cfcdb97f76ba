package market

import (
	"fmt"
	"sort"
	"time"
)

// Series is one instrument's ordered daily bars.
type Series struct {
	Name string
	Bars []Bar
}

func (s *Series) Len() int { return len(s.Bars) }

func (s *Series) Date(idx int) time.Time {
	return s.Bars[idx].Time
}

// normalize sorts bars by time and drops duplicate dates (keep-first policy,
// matching the ingest behavior for raw vendor files).
func (s *Series) normalize() {
	sort.SliceStable(s.Bars, func(i, j int) bool {
		return s.Bars[i].Time.Before(s.Bars[j].Time)
	})

	out := s.Bars[:0]
	var prev time.Time
	for i, b := range s.Bars {
		if i > 0 && b.Time.Equal(prev) {
			continue
		}
		out = append(out, b)
		prev = b.Time
	}
	s.Bars = out
}

func (s *Series) validate() error {
	if s.Name == "" {
		return fmt.Errorf("series has no name")
	}
	if len(s.Bars) == 0 {
		return fmt.Errorf("series %q has no bars", s.Name)
	}
	return nil
}
