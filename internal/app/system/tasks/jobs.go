// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// APIStatsRetentionName is the registered name of the stats pruning job.
const APIStatsRetentionName = "api-stats-retention"

// StatsPruner deletes statistics buckets older than a cutoff.
// *apistats.Store satisfies it.
type StatsPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// APIStatsRetentionJob creates a job that removes API stats buckets older
// than retention. A non-positive retention keeps everything.
func APIStatsRetentionJob(store StatsPruner, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     APIStatsRetentionName,
		Interval: 1 * time.Hour,
		Timeout:  2 * time.Minute,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			cutoff := time.Now().UTC().Add(-retention)
			deleted, err := store.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old API stats buckets",
					zap.Int64("deleted", deleted),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}
