package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"
)

// UniqueEnqueuer submits a job under a caller-chosen task ID.
type UniqueEnqueuer interface {
	EnqueueUnique(ctx context.Context, name, taskID string) (*asynq.TaskInfo, error)
}

// WarmupTaskID names the warmup task for one reports cache version.
func WarmupTaskID(version int64) string {
	return TaskReportsWarmup + ":v" + strconv.FormatInt(version, 10)
}

// WarmupOnBump returns a callback for reports.Cache.Listen that rebuilds
// the dashboard after every version bump. Every instance receives the
// bump; the per-version task ID keeps the queue to a single warmup.
func WarmupOnBump(ctx context.Context, enq UniqueEnqueuer, logger *slog.Logger) func(version int64) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(version int64) {
		_, err := enq.EnqueueUnique(ctx, TaskReportsWarmup, WarmupTaskID(version))
		switch {
		case err == nil:
			logger.Debug("reports warmup enqueued", slog.Int64("version", version))
		case errors.Is(err, asynq.ErrTaskIDConflict):
			// Another instance got there first.
		default:
			logger.Warn("enqueue reports warmup", slog.Int64("version", version), slog.Any("error", err))
		}
	}
}
