package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/domain"
)

// Aggregator is the slice of the annotation service the stats worker reads.
type Aggregator interface {
	AggregateByStatus(ctx context.Context) (map[string]domain.StatusCounts, error)
}

// StatsWorker polls the per-user aggregate and hands each snapshot to publish,
// which in production sets the assignment gauges.
type StatsWorker struct {
	agg      Aggregator
	publish  func(map[string]domain.StatusCounts)
	interval time.Duration
	logger   *zap.Logger
}

func NewStatsWorker(
	agg Aggregator,
	publish func(map[string]domain.StatusCounts),
	interval time.Duration,
	logger *zap.Logger,
) *StatsWorker {
	return &StatsWorker{agg: agg, publish: publish, interval: interval, logger: logger}
}

// Run polls once immediately, then every interval. Stops cleanly when ctx is cancelled.
func (sw *StatsWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	sw.logger.Info("stats worker started", zap.Duration("interval", sw.interval))
	sw.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			sw.logger.Info("stats worker stopping")
			return
		case <-ticker.C:
			sw.poll(ctx)
		}
	}
}

func (sw *StatsWorker) poll(ctx context.Context) {
	stats, err := sw.agg.AggregateByStatus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			sw.logger.Error("stats poll error", zap.Error(err))
		}
		return
	}
	sw.publish(stats)
}
