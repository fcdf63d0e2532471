package scheduler

import (
	"context"
	"time"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/pkg/logger"
)

// BenchmarkRefreshJob re-downloads benchmark closes after the market
// closes so interactive requests hit a warm cache
type BenchmarkRefreshJob struct {
	provider *benchmark.CachedProvider
	indexes  []string
	start    time.Time
	schedule string
	logger   *logger.Logger
}

// NewBenchmarkRefreshJob creates a refresh job for the given indexes
func NewBenchmarkRefreshJob(p *benchmark.CachedProvider, indexes []string, start time.Time, schedule string, log *logger.Logger) *BenchmarkRefreshJob {
	return &BenchmarkRefreshJob{
		provider: p,
		indexes:  indexes,
		start:    start,
		schedule: schedule,
		logger:   log.Component("job.benchmark_refresh"),
	}
}

// Name returns the job name
func (j *BenchmarkRefreshJob) Name() string {
	return "benchmark_refresh"
}

// Schedule returns the configured cron expression
func (j *BenchmarkRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes every index; the first failure is returned after all are tried
func (j *BenchmarkRefreshJob) Run(ctx context.Context) error {
	var firstErr error
	for _, index := range j.indexes {
		closes, err := j.provider.Refresh(ctx, index, j.start)
		if err != nil {
			j.logger.WithError(err).WithField("index", index).Warn("Benchmark refresh failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"provider": j.provider.Name(),
			"index":    index,
			"closes":   closes.Len(),
		}).Info("Benchmark refreshed")
	}
	return firstErr
}

// CachePurgeJob drops expired in-process benchmark entries
type CachePurgeJob struct {
	provider *benchmark.CachedProvider
	logger   *logger.Logger
}

// NewCachePurgeJob creates a new cache purge job
func NewCachePurgeJob(p *benchmark.CachedProvider, log *logger.Logger) *CachePurgeJob {
	return &CachePurgeJob{
		provider: p,
		logger:   log.Component("job.cache_purge"),
	}
}

// Name returns the job name
func (j *CachePurgeJob) Name() string {
	return "cache_purge"
}

// Schedule returns the cron schedule (every 15 minutes)
func (j *CachePurgeJob) Schedule() string {
	return "0 */15 * * * *"
}

// Run executes the purge
func (j *CachePurgeJob) Run(ctx context.Context) error {
	if removed := j.provider.Purge(); removed > 0 {
		j.logger.WithField("removed", removed).Info("Cache purge completed")
	}
	return nil
}
