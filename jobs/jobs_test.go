package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/chillzone/chillzone-pos/internal/catalog"
	jobmetrics "github.com/chillzone/chillzone-pos/internal/jobs"
	"github.com/chillzone/chillzone-pos/internal/reports"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewTask(t *testing.T) {
	task, err := NewTask(TaskReportsWarmup)
	require.NoError(t, err)
	require.Equal(t, TaskReportsWarmup, task.Type())

	task, err = NewReportsWarmupTask("2025-06-04")
	require.NoError(t, err)
	var payload ReportsWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "2025-06-04", payload.RefDate)

	_, err = NewReportsWarmupTask("04/06/2025")
	require.Error(t, err)

	task, err = NewTask(TaskLowStockScan)
	require.NoError(t, err)
	require.Equal(t, TaskLowStockScan, task.Type())

	_, err = NewTask("mail:send")
	require.EqualError(t, err, "jobs: unsupported job mail:send")
}

type stubWarmer struct {
	refs []time.Time
	err  error
}

func (s *stubWarmer) Dashboard(ctx context.Context, ref time.Time) (reports.Dashboard, error) {
	s.refs = append(s.refs, ref)
	return reports.Dashboard{SalesCount: 3}, s.err
}

func (s *stubWarmer) Location() *time.Location { return time.UTC }

func TestReportsWarmupJob(t *testing.T) {
	warmer := &stubWarmer{}
	job := NewReportsWarmupJob(warmer, quiet, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return time.Date(2025, 6, 4, 8, 0, 0, 0, time.UTC) }

	task, err := NewReportsWarmupTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	task, err = NewReportsWarmupTask("2025-01-15")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Equal(t, []time.Time{
		time.Date(2025, 6, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}, warmer.refs)

	warmer.err = errors.New("backend down")
	require.EqualError(t, job.Handle(context.Background(), task), "backend down")

	bad := asynq.NewTask(TaskReportsWarmup, []byte("{"))
	require.ErrorIs(t, job.Handle(context.Background(), bad), asynq.SkipRetry)
}

type stubProducts struct {
	products []catalog.Product
	err      error
}

func (s stubProducts) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products, s.err
}

func TestScan(t *testing.T) {
	res := Scan([]catalog.Product{
		{ID: 1, Name: "Tusker", Stock: 12, MinStock: 4},
		{ID: 2, Name: "Guinness", Stock: 0, MinStock: 4},
		{ID: 3, Name: "Coke", Stock: 5, MinStock: 5},
	})
	require.Len(t, res.Out, 1)
	require.Equal(t, "Guinness", res.Out[0].Name)
	require.Len(t, res.Low, 1)
	require.Equal(t, "Coke", res.Low[0].Name)
}

func TestLowStockScanJob(t *testing.T) {
	job := NewLowStockScanJob(stubProducts{products: []catalog.Product{{ID: 2, Stock: 0}}}, quiet, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewLowStockScanTask()
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	job.Products = stubProducts{err: errors.New("unreachable")}
	require.Error(t, job.Handle(context.Background(), task))

	var nilJob *LowStockScanJob
	require.Error(t, nilJob.Handle(context.Background(), task))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func (s stubInspector) ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "t1", Type: TaskReportsWarmup}}, s.err
}

type stubEnqueuer struct {
	names []string
}

func (s *stubEnqueuer) Enqueue(ctx context.Context, name string) (*asynq.TaskInfo, error) {
	s.names = append(s.names, name)
	return &asynq.TaskInfo{ID: "abc", Queue: QueueDefault, Type: name}, nil
}

func newJobsRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestHandlerHealth(t *testing.T) {
	router := newJobsRouter(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 2, Retry: 1}}, nil, quiet))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var stats QueueStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Equal(t, QueueStats{Queue: QueueDefault, Pending: 2, Retry: 1}, stats)

	router = newJobsRouter(NewHandler(stubInspector{err: errors.New("redis down")}, nil, quiet))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	router = newJobsRouter(NewHandler(nil, nil, quiet))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/scheduled", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())
}

func TestHandlerTrigger(t *testing.T) {
	enq := &stubEnqueuer{}
	router := newJobsRouter(NewHandler(nil, enq, quiet))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/catalog:low_stock_scan/trigger", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, []string{TaskLowStockScan}, enq.names)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/mail:send/trigger", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

type stubUniqueEnqueuer struct {
	ids  chan string
	seen map[string]bool
	err  error
}

func (s *stubUniqueEnqueuer) EnqueueUnique(ctx context.Context, name, taskID string) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.seen[taskID] {
		return nil, asynq.ErrTaskIDConflict
	}
	s.seen[taskID] = true
	s.ids <- taskID
	return &asynq.TaskInfo{ID: taskID, Type: name, Queue: QueueDefault}, nil
}

func TestWarmupOnBumpEnqueuesOncePerVersion(t *testing.T) {
	enq := &stubUniqueEnqueuer{ids: make(chan string, 4), seen: map[string]bool{}}
	onBump := WarmupOnBump(context.Background(), enq, quiet)

	onBump(7)
	onBump(7)
	onBump(8)

	require.Equal(t, "reports:warmup:v7", <-enq.ids)
	require.Equal(t, "reports:warmup:v8", <-enq.ids)
	require.Empty(t, enq.ids)

	failing := &stubUniqueEnqueuer{err: errors.New("redis down")}
	require.NotPanics(t, func() { WarmupOnBump(context.Background(), failing, nil)(9) })
}
