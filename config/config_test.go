package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/harness/risk"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "run.yaml", `
account:
  cash: 50000
risk:
  slippage_scale: 0.5
  end_policy: hold
  debug: true
data:
  dir: testdata
strategy:
  name: sma-cross
  params:
    fast: "5"
    slow: "20"
journal:
  type: sqlite
  db_path: run.db
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 50000.0, cfg.Account.Cash)
	assert.Equal(t, "sma-cross", cfg.Strategy.Name)
	assert.Equal(t, "5", cfg.Strategy.Params["fast"])

	pol := cfg.Policy()
	assert.Equal(t, risk.EndHold, pol.EndPolicy)
	assert.Equal(t, 0.5, pol.SlippageScale)
	assert.True(t, pol.Debug)
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "run.json", `{
  "account": {"cash": 1000},
  "risk": {"slippage_scale": 1.0, "end_policy": "liquidate"},
  "data": {"dir": "testdata"},
  "strategy": {"name": "noop"}
}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, cfg.Account.Cash)
	assert.Equal(t, risk.EndLiquidate, cfg.Policy().EndPolicy)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		c := Default()
		c.Data.Dir = "testdata"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no cash", func(c *Config) { c.Account.Cash = 0 }, "starting cash"},
		{"negative slippage", func(c *Config) { c.Risk.SlippageScale = -1 }, "slippage scale"},
		{"bad end policy", func(c *Config) { c.Risk.EndPolicy = "keep" }, "end policy"},
		{"no data dir", func(c *Config) { c.Data.Dir = "" }, "data.dir"},
		{"no strategy", func(c *Config) { c.Strategy.Name = "" }, "strategy.name"},
		{"csv journal incomplete", func(c *Config) {
			c.Journal = JournalConfig{Type: "csv", TradesFile: "t.csv"}
		}, "equity_file"},
		{"sqlite journal incomplete", func(c *Config) {
			c.Journal = JournalConfig{Type: "sqlite"}
		}, "db_path"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(writeFile(t, "run.yaml", ":\nnot config"))
	require.Error(t, err)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
