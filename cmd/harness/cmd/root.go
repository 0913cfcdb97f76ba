package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "harness",
	Short: "A daily-bar backtesting harness with strict cash and order rules",
	Long: `Harness replays daily OHLCV bars through a rules engine that keeps
simulated trading honest.

It provides:
  - Next-open market fills with gap-proportional slippage
  - An all-or-nothing overspend guard over each bar's order basket
  - Good-for-day limit orders capped at one per instrument side
  - Bankruptcy detection with forced liquidation
  - Open-to-open and realized P&L reports with profit/drawdown ratios`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
