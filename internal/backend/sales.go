package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chillzone/chillzone-pos/internal/pos"
	"github.com/chillzone/chillzone-pos/internal/sales"
)

var (
	_ sales.Source    = (*Client)(nil)
	_ pos.SaleCreator = (*Client)(nil)
)

// IdempotencyHeader carries the per-attempt checkout key.
const IdempotencyHeader = "Idempotency-Key"

type saleItemPayload struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type salePayload struct {
	Items        []saleItemPayload `json:"items"`
	Subtotal     float64           `json:"subtotal"`
	Discount     float64           `json:"discount"`
	Total        float64           `json:"total"`
	PaymentType  string            `json:"paymentType"`
	CustomerType string            `json:"customerType"`
	Date         string            `json:"date"`
}

func newSalePayload(req pos.CheckoutRequest) salePayload {
	items := make([]saleItemPayload, len(req.Items))
	for i, item := range req.Items {
		items[i] = saleItemPayload{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
		}
	}
	return salePayload{
		Items:        items,
		Subtotal:     req.Subtotal.InexactFloat64(),
		Discount:     req.Discount.InexactFloat64(),
		Total:        req.Total.InexactFloat64(),
		PaymentType:  string(req.PaymentType),
		CustomerType: string(req.CustomerType),
		Date:         req.Date.UTC().Format(time.RFC3339Nano),
	}
}

// CreateSale submits a checkout. The backend stores the sale, decrements
// stock and renders the receipt.
func (c *Client) CreateSale(ctx context.Context, token string, req pos.CheckoutRequest, idempotencyKey string) (sales.Record, error) {
	var out sales.Record
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyHeader] = idempotencyKey
	}
	err := c.do(ctx, call{
		op:       "create sale",
		method:   http.MethodPost,
		path:     "/sales",
		token:    token,
		body:     newSalePayload(req),
		headers:  headers,
		fallback: "Failed to create sale",
	}, &out)
	return out, err
}

// ListSales fetches the full sales history.
func (c *Client) ListSales(ctx context.Context) ([]sales.Record, error) {
	var out []sales.Record
	err := c.do(ctx, call{op: "list sales", method: http.MethodGet, path: "/sales", fallback: "Failed to fetch sales"}, &out)
	return out, err
}

// GetSale fetches one sale with its items.
func (c *Client) GetSale(ctx context.Context, id int64) (sales.Record, error) {
	var out sales.Record
	err := c.do(ctx, call{op: "get sale", method: http.MethodGet, path: fmt.Sprintf("/sales/%d", id), fallback: "Failed to fetch sale"}, &out)
	return out, err
}
