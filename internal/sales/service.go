package sales

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Source reads sales from the backend.
type Source interface {
	ListSales(ctx context.Context) ([]Record, error)
	GetSale(ctx context.Context, id int64) (Record, error)
}

// Service serves the sales history screens.
type Service struct {
	source      Source
	receiptBase string
}

// NewService builds a sales service. apiURL is the backend base URL; the
// receipt host is derived from it.
func NewService(source Source, apiURL string) *Service {
	return &Service{source: source, receiptBase: ReceiptBase(apiURL)}
}

// List returns a filtered page of sales.
func (s *Service) List(ctx context.Context, filter Filter) (Result, error) {
	records, err := s.source.ListSales(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("sales: list: %w", err)
	}
	return Apply(records, filter), nil
}

// Options returns the distinct filter values across all sales.
func (s *Service) Options(ctx context.Context) (Options, error) {
	records, err := s.source.ListSales(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("sales: options: %w", err)
	}
	return CollectOptions(records), nil
}

// Get returns a sale with its receipt link and items subtotal.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	record, err := s.source.GetSale(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("sales: get %d: %w", id, err)
	}
	return Detail{
		Record:        record,
		ItemsSubtotal: record.ItemsSubtotal(),
		ReceiptURL:    s.ReceiptURL(record.ReceiptPath),
	}, nil
}

// Export writes every sale matching filter as CSV.
func (s *Service) Export(ctx context.Context, w io.Writer, filter Filter) error {
	records, err := s.source.ListSales(ctx)
	if err != nil {
		return fmt.Errorf("sales: export: %w", err)
	}
	return WriteCSV(w, Match(records, filter))
}

// ReceiptURL links a stored receipt; empty paths yield no link.
func (s *Service) ReceiptURL(receiptPath string) string {
	if strings.TrimSpace(receiptPath) == "" {
		return ""
	}
	return s.receiptBase + "/receipts/" + receiptPath
}

// ReceiptBase strips the first "/api" segment from the backend URL, which
// is where the backend serves static receipts.
func ReceiptBase(apiURL string) string {
	return strings.TrimRight(strings.Replace(apiURL, "/api", "", 1), "/")
}

// WriteCSV renders sales rows with a header.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Date", "Receipt", "Payment", "Customer", "Sold By", "Items", "Discount", "Total"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.SaleDate.Format(time.RFC3339),
			r.ReceiptPath,
			r.PaymentType,
			r.CustomerType,
			r.SoldBy,
			strconv.Itoa(len(r.Items)),
			strconv.FormatFloat(r.Discount, 'f', 2, 64),
			strconv.FormatFloat(r.TotalAmount, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
