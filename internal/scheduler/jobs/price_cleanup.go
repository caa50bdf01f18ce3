package jobs

import (
	"context"

	"github.com/quantterm/backend/internal/marketdata"
	"github.com/quantterm/backend/pkg/logger"
)

// PriceCleanupJob evicts stale entries from the live price cache so a
// stalled stream does not keep serving old prices.
type PriceCleanupJob struct {
	cache *marketdata.PriceCache
	log   *logger.Logger
}

func NewPriceCleanupJob(cache *marketdata.PriceCache, log *logger.Logger) *PriceCleanupJob {
	return &PriceCleanupJob{cache: cache, log: log}
}

func (j *PriceCleanupJob) Name() string {
	return "price_cleanup"
}

// Schedule runs every 5 minutes.
func (j *PriceCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

func (j *PriceCleanupJob) Run(ctx context.Context) error {
	if removed := j.cache.CleanStale(); removed > 0 {
		j.log.Infof("price cleanup removed %d stale entries", removed)
	}
	return nil
}
