package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
)

type stubSource struct {
	records []Record
	err     error
}

func (s stubSource) ListSales(ctx context.Context) ([]Record, error) {
	return s.records, s.err
}

func (s stubSource) GetSale(ctx context.Context, id int64) (Record, error) {
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("sale %d: %w", id, httpx.ErrNotFound)
}

func sampleRecords() []Record {
	return []Record{
		{ID: 1, SaleDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), TotalAmount: 500, PaymentType: "Cash", CustomerType: "Walk-In", SoldBy: "amina", ReceiptPath: "receipt-0001.pdf"},
		{ID: 2, SaleDate: time.Date(2025, 3, 11, 18, 30, 0, 0, time.UTC), TotalAmount: 1200, PaymentType: "MPESA", CustomerType: "Delivery", SoldBy: "otieno", ReceiptPath: "RECEIPT-0002.pdf"},
		{ID: 3, SaleDate: time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC), TotalAmount: 300, PaymentType: "Cash", CustomerType: "Walk-In", SoldBy: "otieno"},
	}
}

func TestItemDecodesNestedProductName(t *testing.T) {
	var items []Item
	payload := `[
		{"productId": 4, "quantity": 2, "sellingPrice": 250, "subtotal": 500, "Product": {"name": "Tusker"}},
		{"productId": 5, "productName": "Coke", "quantity": 1, "sellingPrice": 100, "subtotal": 100}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &items))
	require.Equal(t, "Tusker", items[0].ProductName)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, "Coke", items[1].ProductName)
}

func TestApplyFilters(t *testing.T) {
	records := sampleRecords()

	result := Apply(records, Filter{Receipt: "receipt-000"})
	require.Equal(t, 2, result.Count)
	require.InDelta(t, 1700, result.TotalAmount, 0.001)

	result = Apply(records, Filter{PaymentType: "Cash", SoldBy: "otieno"})
	require.Equal(t, 1, result.Count)
	require.Equal(t, int64(3), result.Sales[0].ID)

	to := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	from := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	result = Apply(records, Filter{From: from, To: to})
	require.Equal(t, 2, result.Count, "to date includes the whole day")
}

func TestApplyPaginatesTenPerPage(t *testing.T) {
	var records []Record
	for i := 1; i <= 23; i++ {
		records = append(records, Record{ID: int64(i), TotalAmount: 10})
	}
	result := Apply(records, Filter{Page: 3})
	require.Len(t, result.Sales, 3)
	require.Equal(t, 3, result.Pagination.TotalPages)
	require.InDelta(t, 230, result.TotalAmount, 0.001, "total covers every match, not only the page")
}

func TestCollectOptionsFirstSeenOrder(t *testing.T) {
	opts := CollectOptions(sampleRecords())
	require.Equal(t, []string{"Cash", "MPESA"}, opts.PaymentTypes)
	require.Equal(t, []string{"Walk-In", "Delivery"}, opts.CustomerTypes)
	require.Equal(t, []string{"amina", "otieno"}, opts.Sellers)
}

func TestGetBuildsReceiptURL(t *testing.T) {
	records := sampleRecords()
	records[0].Items = []Item{{Subtotal: 200}, {Subtotal: 300}}
	svc := NewService(stubSource{records: records}, "https://pos.example.com/api")

	detail, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "https://pos.example.com/receipts/receipt-0001.pdf", detail.ReceiptURL)
	require.InDelta(t, 500, detail.ItemsSubtotal, 0.001)

	detail, err = svc.Get(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, detail.ReceiptURL)

	_, err = svc.Get(context.Background(), 99)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()[:1]))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[1], "1,2025-03-10T09:00:00Z,receipt-0001.pdf,Cash,Walk-In,amina,0,0.00,500.00"))
}

func TestHandlerListAndErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	NewHandler(logger, NewService(stubSource{records: sampleRecords()}, "http://localhost:4000/api"), time.UTC).MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sales?paymentType=all&customerType=Walk-In", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Equal(t, 2, result.Count)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sales?from=March", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sales/99", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	failing := chi.NewRouter()
	NewHandler(logger, NewService(stubSource{err: fmt.Errorf("backend: %w", httpx.ErrUpstream)}, ""), time.UTC).MountRoutes(failing)
	rr = httptest.NewRecorder()
	failing.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sales/options", nil))
	require.Equal(t, http.StatusBadGateway, rr.Code)
}
