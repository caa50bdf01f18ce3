package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd groups the cache maintenance subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached return tables",
	Long: `Warm or invalidate the per-portfolio return caches.

Example:
  go run ./cmd/quantterm cache warm
  go run ./cmd/quantterm cache invalidate growth
  go run ./cmd/quantterm cache invalidate --all`,
}

var cacheInvalidateAll bool

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Recompute return tables for every portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := context.Background()
		names, err := a.ledger.List(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			table, err := a.cache.Get(ctx, name)
			if err != nil {
				fmt.Printf("  %s: FAILED (%v)\n", name, err)
				continue
			}
			fmt.Printf("  %s: %d tickers cached\n", name, len(table))
		}
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate [portfolio]",
	Short: "Drop cached return tables",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := context.Background()
		if cacheInvalidateAll {
			a.cache.InvalidateAll(ctx)
			fmt.Println("All caches invalidated")
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("portfolio name or --all required")
		}
		a.cache.Invalidate(ctx, args[0])
		fmt.Printf("Cache invalidated for %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheWarmCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheInvalidateCmd.Flags().BoolVar(&cacheInvalidateAll, "all", false, "invalidate every portfolio")
}
