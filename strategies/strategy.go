// Package strategies holds the built-in sample strategies and the name
// registry the CLI resolves them through.
package strategies

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rustyeddy/harness/backtest"
)

// Params carries per-strategy tuning from the run configuration. Values stay
// strings until a strategy asks for a typed view.
type Params map[string]string

func (p Params) Float(key string, def float64) float64 {
	raw, ok := p[key]
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func (p Params) Int(key string, def int) int {
	raw, ok := p[key]
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Factory builds a fresh strategy instance from run parameters.
type Factory func(p Params) (backtest.Strategy, error)

var registry = make(map[string]Factory)

func Register(name string, f Factory) {
	registry[strings.ToLower(name)] = f
}

// ByName resolves a registered strategy. Unknown names list the registry so
// the CLI error is self-explaining.
func ByName(name string, p Params) (backtest.Strategy, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f(p)
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
