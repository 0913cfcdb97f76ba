package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/harness/backtest"
	"github.com/rustyeddy/harness/config"
	"github.com/rustyeddy/harness/journal"
	"github.com/rustyeddy/harness/market"
	"github.com/rustyeddy/harness/risk"
	"github.com/rustyeddy/harness/sim"
	"github.com/rustyeddy/harness/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy over a directory of daily-bar CSV files",
	Long: `Backtest loads one CSV per instrument from the data directory, aligns
them on a shared daily time axis and replays them through the rules engine.

Example:
  harness backtest --data data/ --strategy sma-cross --param fast=10 --param slow=30`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btDataDir    string
	btStrategy   string
	btParams     []string
	btCash       float64
	btScale      float64
	btEndPolicy  string
	btDebug      bool
	btDBPath     string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON run configuration")
	backtestCmd.Flags().StringVarP(&btDataDir, "data", "d", "", "directory of daily OHLCV CSV files, one per instrument")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "noop", "strategy name")
	backtestCmd.Flags().StringArrayVarP(&btParams, "param", "p", nil, "strategy parameter key=value (repeatable)")
	backtestCmd.Flags().Float64VarP(&btCash, "cash", "b", 1_000_000, "starting cash")
	backtestCmd.Flags().Float64Var(&btScale, "slippage-scale", 1.0, "gap slippage scale (0 disables)")
	backtestCmd.Flags().StringVar(&btEndPolicy, "end", string(risk.EndLiquidate), "end-of-data policy: liquidate or hold")
	backtestCmd.Flags().BoolVar(&btDebug, "debug", false, "trace per-bar rule decisions")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "optional SQLite journal path")
}

// buildConfig merges the optional config file with command-line overrides;
// flags win when set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if btConfigPath != "" {
		loaded, err := config.LoadFromFile(btConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if cmd.Flags().Changed("data") || cfg.Data.Dir == "" {
		cfg.Data.Dir = btDataDir
	}
	if cmd.Flags().Changed("strategy") || cfg.Strategy.Name == "" {
		cfg.Strategy.Name = btStrategy
	}
	if cmd.Flags().Changed("cash") {
		cfg.Account.Cash = btCash
	}
	if cmd.Flags().Changed("slippage-scale") {
		cfg.Risk.SlippageScale = btScale
	}
	if cmd.Flags().Changed("end") {
		cfg.Risk.EndPolicy = btEndPolicy
	}
	if cmd.Flags().Changed("debug") {
		cfg.Risk.Debug = btDebug
	}
	if cmd.Flags().Changed("db") {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: btDBPath}
	}

	for _, kv := range btParams {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad --param %q, want key=value", kv)
		}
		if cfg.Strategy.Params == nil {
			cfg.Strategy.Params = make(map[string]string)
		}
		cfg.Strategy.Params[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return journal.Discard{}, nil
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	series, err := market.LoadDirCSV(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	feed, err := market.NewFeed(series...)
	if err != nil {
		return fmt.Errorf("align data: %w", err)
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, strategies.Params(cfg.Strategy.Params))
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	engine, err := backtest.NewEngine(sim.NewEngine(feed, cfg.Account.Cash, j), cfg.Policy(), j)
	if err != nil {
		return err
	}

	fmt.Printf("Running %s over %d instrument(s), %d bars\n\n",
		strat.Name(), len(feed.Names()), feed.Len())

	res, err := engine.Run(strat)
	if err != nil {
		return err
	}

	backtest.PrintResult(os.Stdout, res)
	return nil
}
