package commands

import (
	"fmt"
	"time"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/ledger"
	"github.com/quantterm/backend/internal/marketdata"
	"github.com/quantterm/backend/internal/returns"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/database"
	"github.com/quantterm/backend/pkg/logger"
	redispkg "github.com/quantterm/backend/pkg/redis"
)

const livePriceMaxAge = 5 * time.Minute

// app holds the wired dependency graph shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	ledger   contracts.TransactionLedger
	prices   *marketdata.ChartClient
	live     *marketdata.LiveProvider
	stream   *marketdata.Stream
	cache    *returns.Cache
	computer *returns.Computer
	priceMem *marketdata.PriceCache
	riskFree *marketdata.RiskFreeSource

	closers []func()
}

// newApp loads config and wires the full pipeline:
// ledger → prices → cache → computer.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// Ledger backend
	switch cfg.LedgerBackend {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.ledger = ledger.NewPostgresStore(db, log)
	default:
		a.ledger = ledger.NewFileStore(cfg.PortfoliosDir, log)
	}

	// Optional shared cache tier
	redisClient, err := redispkg.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = redisClient.Close() })
	var shared *redispkg.Cache
	if redisClient.Enabled() {
		shared = redispkg.NewCache(redisClient, "returns")
	}

	// Market data
	a.prices = marketdata.NewChartClient(cfg, log)
	a.priceMem = marketdata.NewPriceCache(livePriceMaxAge)
	a.stream = marketdata.NewStream(cfg, a.priceMem, log)
	scraper := marketdata.NewQuoteScraper(cfg, log)
	a.live = marketdata.NewLiveProvider(a.priceMem, scraper, a.stream, log)

	a.riskFree = marketdata.NewRiskFreeSource(a.prices, cfg.RiskFreeTicker, cfg.RiskFreeRate, log)

	a.cache = returns.NewCache(cfg.CacheDir, a.ledger, a.prices, shared, nil, log)
	a.computer = returns.NewComputer(a.cache, a.ledger, a.prices, a.live, nil, log)

	return a, nil
}

// close releases connections in reverse wiring order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
