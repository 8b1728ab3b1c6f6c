package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/chillzone/chillzone-pos/internal/jobs"
	"github.com/chillzone/chillzone-pos/internal/reports"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardWarmer computes and caches a dashboard.
type DashboardWarmer interface {
	Dashboard(ctx context.Context, ref time.Time) (reports.Dashboard, error)
	Location() *time.Location
}

// ReportsWarmupJob fills the reports cache so the first dashboard view after
// a sale or a version bump is served without hitting the backend.
type ReportsWarmupJob struct {
	Reports DashboardWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(svc DashboardWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: svc, Logger: logger, Metrics: metrics, clock: time.Now}
}

// Handle processes reports warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	ref := j.now().In(j.Reports.Location())
	if payload.RefDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", payload.RefDate, j.Reports.Location())
		if err != nil {
			return asynq.SkipRetry
		}
		ref = parsed
	}

	logger := j.logger().With(slog.String("ref_date", ref.Format("2006-01-02")))
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	d, err := j.Reports.Dashboard(ctx, ref)
	if err != nil {
		logger.Error("warm reports dashboard", slog.Any("error", err))
		return err
	}
	logger.Info("reports dashboard warmed",
		slog.Int("sales", d.SalesCount),
		slog.Float64("weekly_total", d.Summary.Weekly),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
