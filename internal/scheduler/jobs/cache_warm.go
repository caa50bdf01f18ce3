// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/returns"
	"github.com/quantterm/backend/pkg/logger"
)

// CacheWarmJob recomputes every portfolio's return table after the
// market close so the first request of the evening hits a warm cache.
type CacheWarmJob struct {
	ledger contracts.TransactionLedger
	cache  *returns.Cache
	log    *logger.Logger
}

func NewCacheWarmJob(ledger contracts.TransactionLedger, cache *returns.Cache, log *logger.Logger) *CacheWarmJob {
	return &CacheWarmJob{ledger: ledger, cache: cache, log: log}
}

func (j *CacheWarmJob) Name() string {
	return "cache_warm"
}

// Schedule runs at 16:30 local time on weekdays, after the NYSE close.
func (j *CacheWarmJob) Schedule() string {
	return "0 30 16 * * 1-5"
}

func (j *CacheWarmJob) Run(ctx context.Context) error {
	names, err := j.ledger.List(ctx)
	if err != nil {
		return fmt.Errorf("list portfolios: %w", err)
	}

	warmed := 0
	var firstErr error
	for _, name := range names {
		if _, err := j.cache.Get(ctx, name); err != nil {
			j.log.Warnf("cache warm failed for %s: %v", name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		warmed++
	}

	j.log.Infof("cache warm completed: %d/%d portfolios", warmed, len(names))
	if warmed == 0 && firstErr != nil {
		return firstErr
	}
	return nil
}
