package jobs

import (
	"context"
	"time"

	"github.com/quantterm/backend/internal/calendar"
	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/returns"
	"github.com/quantterm/backend/pkg/logger"
)

// StaleSweepJob drops cached return tables that predate the last
// expected trading-day close. The ledger-mtime check catches edits to
// the ledger; this catches the arrival of a new daily candle.
type StaleSweepJob struct {
	cache *returns.Cache
	log   *logger.Logger
}

func NewStaleSweepJob(cache *returns.Cache, log *logger.Logger) *StaleSweepJob {
	return &StaleSweepJob{cache: cache, log: log}
}

func (j *StaleSweepJob) Name() string {
	return "stale_sweep"
}

// Schedule runs hourly; the sweep is a no-op while entries are current.
func (j *StaleSweepJob) Schedule() string {
	return "0 0 * * * *"
}

func (j *StaleSweepJob) Run(ctx context.Context) error {
	dropped := j.cache.DropOutdated(ctx, func(created contracts.Day) bool {
		return calendar.IsStockCacheCurrent(created, time.Now())
	})
	if dropped > 0 {
		j.log.Infof("stale sweep dropped %d cached portfolios", dropped)
	}
	return nil
}
