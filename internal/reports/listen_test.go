package reports_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/chillzone/chillzone-pos/internal/reports"
	"github.com/chillzone/chillzone-pos/jobs"
)

type recordingEnqueuer struct {
	mu  sync.Mutex
	ids chan string
}

func (r *recordingEnqueuer) EnqueueUnique(ctx context.Context, name, taskID string) (*asynq.TaskInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids <- name + "|" + taskID
	return &asynq.TaskInfo{ID: taskID, Type: name}, nil
}

func TestBumpEnqueuesDashboardWarmup(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := reports.NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	enq := &recordingEnqueuer{ids: make(chan string, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, cache.Listen(ctx, jobs.WarmupOnBump(ctx, enq, logger)))

	before, err := cache.Version(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))

	select {
	case got := <-enq.ids:
		require.Equal(t, jobs.TaskReportsWarmup+"|"+jobs.WarmupTaskID(before+1), got)
	case <-time.After(2 * time.Second):
		t.Fatal("bump did not enqueue a warmup")
	}
}
