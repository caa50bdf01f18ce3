package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

const riskFreeRefresh = time.Hour

// RiskFreeSource derives the annualized risk-free rate from a yield
// index quoted in percent (^IRX, the 13-week T-bill rate). A failed or
// empty fetch falls back to the configured rate. The fetched value is
// held for an hour; the rate moves far slower than that.
type RiskFreeSource struct {
	prices   contracts.PriceHistoryProvider
	ticker   string
	fallback float64
	log      *logger.Logger

	mu        sync.Mutex
	rate      float64
	fetchedAt time.Time
}

func NewRiskFreeSource(prices contracts.PriceHistoryProvider, ticker string, fallback float64, log *logger.Logger) *RiskFreeSource {
	return &RiskFreeSource{
		prices:   prices,
		ticker:   ticker,
		fallback: fallback,
		log:      log.WithComponent("riskfree"),
	}
}

// Rate returns the current annualized risk-free rate as a decimal.
func (s *RiskFreeSource) Rate(ctx context.Context) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < riskFreeRefresh {
		return s.rate
	}

	rate, ok := s.fetch(ctx)
	if !ok {
		rate = s.fallback
	}
	s.rate = rate
	s.fetchedAt = time.Now()
	return rate
}

func (s *RiskFreeSource) fetch(ctx context.Context) (float64, bool) {
	hist, err := s.prices.Fetch(ctx, s.ticker, contracts.Day{}, contracts.DayOf(time.Now()))
	if err != nil {
		s.log.Warnf("risk-free fetch for %s failed, using fallback: %v", s.ticker, err)
		return 0, false
	}
	if len(hist.Candles) == 0 {
		s.log.Warnf("risk-free fetch for %s returned no candles, using fallback", s.ticker)
		return 0, false
	}
	last := hist.Candles[len(hist.Candles)-1].Close
	if last <= 0 {
		return 0, false
	}
	return last / 100, true
}
