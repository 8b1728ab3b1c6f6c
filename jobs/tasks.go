// Package jobs runs the till's background work on Asynq.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup precomputes the reports dashboard.
	TaskReportsWarmup = "reports:warmup"
	// TaskLowStockScan counts products at or below their minimum stock.
	TaskLowStockScan = "catalog:low_stock_scan"
)

// ReportsWarmupPayload names the reference date to warm. Empty means today.
type ReportsWarmupPayload struct {
	RefDate string `json:"ref_date,omitempty"`
}

// LowStockScanPayload carries no options yet but keeps the wire shape stable.
type LowStockScanPayload struct{}

// NewReportsWarmupTask builds a warmup task for refDate (YYYY-MM-DD or "").
func NewReportsWarmupTask(refDate string) (*asynq.Task, error) {
	if refDate != "" {
		if _, err := time.Parse("2006-01-02", refDate); err != nil {
			return nil, fmt.Errorf("reports warmup: ref date %q: %w", refDate, err)
		}
	}
	data, err := json.Marshal(ReportsWarmupPayload{RefDate: refDate})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// NewLowStockScanTask builds a stock scan task.
func NewLowStockScanTask() (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewTask builds a task by name with its default payload.
func NewTask(name string) (*asynq.Task, error) {
	switch name {
	case TaskReportsWarmup:
		return NewReportsWarmupTask("")
	case TaskLowStockScan:
		return NewLowStockScanTask()
	default:
		return nil, fmt.Errorf("jobs: unsupported job %s", name)
	}
}
