package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantterm/backend/internal/api"
)

// apiCmd starts the REST API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the HTTP API server.

Endpoints:
  GET    /health
  GET    /api/v1/portfolios
  GET    /api/v1/portfolios/{name}/returns
  GET    /api/v1/portfolios/{name}/returns/daily
  GET    /api/v1/portfolios/{name}/returns/fixed
  GET    /api/v1/portfolios/{name}/weights
  GET    /api/v1/portfolios/{name}/rolling/{metric}
  GET    /api/v1/portfolios/{name}/stats
  GET    /api/v1/portfolios/{name}/summary
  GET    /api/v1/portfolios/{name}/correlation
  GET    /api/v1/portfolios/{name}/cash-drag
  GET    /api/v1/tickers/{ticker}/returns
  GET    /api/v1/tickers/{ticker}/rolling/{metric}
  DELETE /api/v1/cache
  DELETE /api/v1/cache/{name}

Example:
  go run ./cmd/quantterm api
  go run ./cmd/quantterm api --port 8091`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Live trade stream feeds the in-memory price cache.
	go a.stream.Run(ctx)

	srv := api.New(a.cfg, a.computer, a.riskFree, a.log)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
