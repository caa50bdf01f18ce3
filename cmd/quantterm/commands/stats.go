package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/returns"
	"github.com/quantterm/backend/internal/stats"
)

// statsCmd prints risk statistics for a portfolio from the terminal.
var statsCmd = &cobra.Command{
	Use:   "stats [portfolio]",
	Short: "Print portfolio performance and risk statistics",
	Long: `Compute and print a portfolio's performance summary, and, when a
benchmark is given, the benchmark-relative risk metrics.

Example:
  go run ./cmd/quantterm stats growth
  go run ./cmd/quantterm stats growth --benchmark SPY
  go run ./cmd/quantterm stats growth --benchmark-portfolio passive`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var (
	statsBenchmarkTicker    string
	statsBenchmarkPortfolio string
	statsStart              string
	statsEnd                string
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsBenchmarkTicker, "benchmark", "", "benchmark ticker")
	statsCmd.Flags().StringVar(&statsBenchmarkPortfolio, "benchmark-portfolio", "", "benchmark portfolio name")
	statsCmd.Flags().StringVar(&statsStart, "start", "", "start date (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "end date (YYYY-MM-DD)")
}

func statsRange() (returns.Range, error) {
	var rng returns.Range
	if statsStart != "" {
		d, err := contracts.ParseDay(statsStart)
		if err != nil {
			return rng, fmt.Errorf("invalid --start: %w", err)
		}
		rng.Start = d
	}
	if statsEnd != "" {
		d, err := contracts.ParseDay(statsEnd)
		if err != nil {
			return rng, fmt.Errorf("invalid --end: %w", err)
		}
		rng.End = d
	}
	return rng, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	name := args[0]
	rng, err := statsRange()
	if err != nil {
		return err
	}

	ctx := context.Background()
	series, err := a.computer.TimeVaryingReturns(ctx, name, returns.PortfolioOptions{
		Range:       rng,
		IncludeCash: true,
		Interval:    returns.Daily,
	})
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no return observations for %s", name)
	}

	riskFree := a.riskFree.Rate(ctx)
	summary := stats.Summarize(series, riskFree)
	fmt.Printf("=== %s (%d observations) ===\n", name, len(series))
	fmt.Printf("Total return:       %9.2f%%\n", summary.TotalReturn*100)
	fmt.Printf("Annualized return:  %9.2f%%\n", summary.AnnualizedReturn*100)
	fmt.Printf("Volatility (ann.):  %9.2f%%\n", summary.Volatility*100)
	fmt.Printf("Sharpe:             %9.2f\n", summary.Sharpe)
	fmt.Printf("Sortino:            %9.2f\n", summary.Sortino)
	fmt.Printf("Max drawdown:       %9.2f%%\n", summary.MaxDrawdown*100)
	fmt.Printf("VaR 95%% (daily):    %9.2f%%\n", summary.VaR95*100)
	fmt.Printf("CVaR 95%% (daily):   %9.2f%%\n", summary.CVaR95*100)
	fmt.Printf("Skew / Kurtosis:    %9.2f / %.2f\n", summary.Distribution.Skew, summary.Distribution.Kurtosis)

	ref := contracts.BenchmarkRef{Ticker: statsBenchmarkTicker, Portfolio: statsBenchmarkPortfolio}
	if ref.Ticker == "" && ref.Portfolio == "" {
		return nil
	}
	if err := ref.Validate(); err != nil {
		return err
	}

	benchmark, err := a.computer.BenchmarkReturns(ctx, ref, rng, returns.Daily)
	if err != nil {
		return fmt.Errorf("benchmark %s: %w", ref, err)
	}
	m := stats.ComputeRiskMetrics(series, benchmark, riskFree)

	fmt.Printf("\n=== vs %s (%d aligned) ===\n", ref, m.Observations)
	fmt.Printf("Beta:               %9.2f\n", m.Beta)
	fmt.Printf("Alpha (ann.):       %9.2f%%\n", m.Alpha*100)
	fmt.Printf("Correlation:        %9.2f\n", m.Correlation)
	fmt.Printf("R-squared:          %9.2f\n", m.RSquared)
	fmt.Printf("Tracking error:     %9.2f%%\n", m.TrackingError*100)
	fmt.Printf("Information ratio:  %9.2f\n", m.InformationRatio)
	fmt.Printf("Up/Down capture:    %9.2f / %.2f\n", m.UpCapture, m.DownCapture)
	return nil
}
