package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// listCmd prints the portfolios known to the ledger.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolios in the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		names, err := a.ledger.List(context.Background())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No portfolios found")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
