package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quantterm",
	Short: "Portfolio returns and risk statistics service",
	Long: `quantterm computes portfolio return series and risk statistics
from transaction ledgers and daily price history.

Usage:
  go run ./cmd/quantterm [command]

Examples:
  go run ./cmd/quantterm api
  go run ./cmd/quantterm stats growth --benchmark SPY
  go run ./cmd/quantterm cache warm
  go run ./cmd/quantterm scheduler start`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
