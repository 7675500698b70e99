package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger removes soft-deleted secrets last written before cutoff (unix
// seconds) and reports how many were removed.
type Purger interface {
	PurgeDeleted(ctx context.Context, cutoff int64) (int64, error)
}

// StartSoftDeleteCleaner purges soft-deleted secrets older than retention
// every interval until ctx is cancelled.
func StartSoftDeleteCleaner(
	ctx context.Context,
	p Purger,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention).Unix()
				removed, err := p.PurgeDeleted(ctx, cutoff)
				if err != nil {
					log.Error("failed to clean soft-deleted secrets", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned soft-deleted secrets", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
