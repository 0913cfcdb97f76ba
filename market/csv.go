package market

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Column aliases accepted in CSV headers (case-insensitive). Vendor exports
// disagree on naming; we only need the six canonical fields.
var columnAliases = map[string][]string{
	"date":   {"date", "datetime", "timestamp", "time", "index"},
	"open":   {"open", "o"},
	"high":   {"high", "h"},
	"low":    {"low", "l"},
	"close":  {"close", "adjclose", "adj_close", "c"},
	"volume": {"volume", "vol", "v", "turnover"},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	time.RFC3339,
}

// LoadSeriesCSV reads one instrument's daily bars from a CSV file with a
// header row. Rows with unparseable dates or prices are skipped; a missing
// volume column is treated as zero. Bars come back sorted and de-duplicated.
func LoadSeriesCSV(path, name string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	s := &Series{Name: name}
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		b, ok := parseBarRow(row, cols)
		if !ok {
			continue
		}
		s.Bars = append(s.Bars, b)
	}

	if len(s.Bars) == 0 {
		return nil, fmt.Errorf("%s: no usable bars", filepath.Base(path))
	}

	s.normalize()
	return s, nil
}

// LoadDirCSV loads every *.csv in dir as one series, named by file base name,
// in lexical order so runs are reproducible.
func LoadDirCSV(dir string) ([]*Series, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files in %s", dir)
	}
	sort.Strings(paths)

	series := make([]*Series, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		s, err := LoadSeriesCSV(p, name)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

type columnIndex struct {
	date, open, high, low, close int
	volume                       int // -1 when absent
}

func mapColumns(header []string) (columnIndex, error) {
	find := func(key string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, alias := range columnAliases[key] {
				if h == alias {
					return i
				}
			}
		}
		return -1
	}

	ci := columnIndex{
		date:   find("date"),
		open:   find("open"),
		high:   find("high"),
		low:    find("low"),
		close:  find("close"),
		volume: find("volume"),
	}

	var missing []string
	for _, c := range []struct {
		name string
		idx  int
	}{
		{"date", ci.date}, {"open", ci.open}, {"high", ci.high},
		{"low", ci.low}, {"close", ci.close},
	} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return ci, fmt.Errorf("missing required columns %v in header %v", missing, header)
	}
	return ci, nil
}

func parseBarRow(row []string, ci columnIndex) (Bar, bool) {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	t, ok := parseDate(get(ci.date))
	if !ok {
		return Bar{}, false
	}

	num := func(i int) (float64, bool) {
		v, err := strconv.ParseFloat(get(i), 64)
		return v, err == nil
	}

	o, ok1 := num(ci.open)
	h, ok2 := num(ci.high)
	l, ok3 := num(ci.low)
	c, ok4 := num(ci.close)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Bar{}, false
	}

	vol := 0.0
	if ci.volume >= 0 {
		if v, ok := num(ci.volume); ok {
			vol = v
		}
	}

	return Bar{Time: t, Open: o, High: h, Low: l, Close: c, Volume: vol}, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
