package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/chillzone/chillzone-pos/internal/catalog"
	jobmetrics "github.com/chillzone/chillzone-pos/internal/jobs"
)

// ProductLister returns the full product list from the backend.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

// LowStockScanJob logs products that need restocking and publishes the
// counts as gauges.
type LowStockScanJob struct {
	Products ProductLister
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(products ProductLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Products: products, Logger: logger, Metrics: metrics}
}

// ScanResult lists the flagged products of one scan.
type ScanResult struct {
	Low []catalog.Product
	Out []catalog.Product
}

// Scan splits products into sold out and low stock. A sold-out product is
// not repeated in Low.
func Scan(products []catalog.Product) ScanResult {
	var res ScanResult
	for _, p := range products {
		switch {
		case p.IsOutOfStock():
			res.Out = append(res.Out, p)
		case p.IsLowStock():
			res.Low = append(res.Low, p)
		}
	}
	return res
}

// Handle processes low stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Products == nil {
		return errors.New("low stock scan: handler not configured")
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskLowStockScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	products, err := j.Products.ListProducts(ctx)
	if err != nil {
		logger.Error("low stock scan: list products", slog.Any("error", err))
		return err
	}
	res := Scan(products)
	metrics.SetStockLevels(len(res.Low), len(res.Out))
	for _, p := range res.Out {
		logger.Warn("product sold out", slog.Int64("product_id", p.ID), slog.String("name", p.Name))
	}
	for _, p := range res.Low {
		logger.Info("product low on stock", slog.Int64("product_id", p.ID), slog.String("name", p.Name), slog.Int("stock", p.Stock), slog.Int("min_stock", p.MinStock))
	}
	logger.Info("low stock scan complete", slog.Int("products", len(products)), slog.Int("low", len(res.Low)), slog.Int("out", len(res.Out)))
	return nil
}
