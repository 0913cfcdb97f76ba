// Package config loads and validates run configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/harness/risk"
)

// Config represents the complete run configuration. A broken configuration
// is fatal at setup; nothing is defaulted silently past Normalize.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	Cash float64 `json:"cash" yaml:"cash"`
}

// RiskConfig maps onto risk.Policy.
type RiskConfig struct {
	SlippageScale float64 `json:"slippage_scale" yaml:"slippage_scale"`
	EndPolicy     string  `json:"end_policy" yaml:"end_policy"`
	Debug         bool    `json:"debug" yaml:"debug"`
}

// DataConfig points at the daily-bar CSV files to load.
type DataConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// StrategyConfig selects and tunes the strategy.
type StrategyConfig struct {
	Name   string            `json:"name" yaml:"name"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns a runnable configuration apart from the data directory.
func Default() *Config {
	return &Config{
		Account: AccountConfig{Cash: 1_000_000},
		Risk: RiskConfig{
			SlippageScale: 1.0,
			EndPolicy:     string(risk.EndLiquidate),
		},
		Strategy: StrategyConfig{Name: "noop"},
		Journal:  JournalConfig{Type: "none"},
	}
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Policy converts the risk section to a risk.Policy.
func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		StartingCash:  c.Account.Cash,
		SlippageScale: c.Risk.SlippageScale,
		EndPolicy:     risk.EndPolicy(c.Risk.EndPolicy),
		Debug:         c.Risk.Debug,
	}
}

// Validate checks the configuration; errors here abort the run before any
// bar is processed.
func (c *Config) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal type csv needs trades_file and equity_file")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal type sqlite needs db_path")
		}
	default:
		return fmt.Errorf("journal.type must be csv, sqlite or none, got %q", c.Journal.Type)
	}
	return nil
}
