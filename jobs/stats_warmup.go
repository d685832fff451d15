package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/salesdesk/salesdesk/internal/jobs"
	"github.com/salesdesk/salesdesk/internal/stats"
)

// StatsSource is the part of the statistics service the warm-up needs.
type StatsSource interface {
	Global(ctx context.Context) (stats.GlobalStats, error)
	Monthly(ctx context.Context, year int) ([]stats.MonthlySales, error)
}

// StatsWarmupJob recomputes global and monthly statistics so requests that
// follow are served from the cache.
type StatsWarmupJob struct {
	Stats   StatsSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStatsWarmupJob wires dependencies for the warm-up handler.
func NewStatsWarmupJob(source StatsSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatsWarmupJob {
	return &StatsWarmupJob{
		Stats:   source,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskStatsWarmup tasks.
func (j *StatsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Stats == nil {
		return errors.New("stats warmup: handler not configured")
	}
	var payload StatsWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return errors.Join(err, asynq.SkipRetry)
		}
	}
	if payload.Year <= 0 {
		payload.Year = j.clock().Year()
	}

	tracker := j.metrics().Track(TaskStatsWarmup)
	defer func() { err = tracker.End(err) }()

	logger := j.logger().With(slog.Int("year", payload.Year), slog.String("reason", payload.Reason))
	start := time.Now()

	global, err := j.Stats.Global(ctx)
	if err != nil {
		logger.Error("warm global stats", slog.Any("error", err))
		return err
	}
	if _, err := j.Stats.Monthly(ctx, payload.Year); err != nil {
		logger.Error("warm monthly sales", slog.Any("error", err))
		return err
	}
	logger.Info("stats warmed",
		slog.Int64("sales", global.TotalSales.Count),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (j *StatsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *StatsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
