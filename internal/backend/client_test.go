package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chillzone/chillzone-pos/internal/auth"
	"github.com/chillzone/chillzone-pos/internal/catalog"
	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/pos"
)

func newTestClient(t *testing.T, r http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListProductsDecodesCamelCase(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Tusker","sellingPrice":250,"purchasePrice":180,"stock":12,"minStock":4,"categoryId":2,"brandId":3,"volume":"500ml"}]`))
	})
	client := newTestClient(t, r)

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Equal(t, []catalog.Product{{ID: 1, Name: "Tusker", SellingPrice: 250, PurchasePrice: 180, Stock: 12, MinStock: 4, CategoryID: 2, BrandID: 3, Volume: "500ml"}}, products)
}

func TestCreateSalePayloadAndHeaders(t *testing.T) {
	var (
		got     map[string]any
		headers http.Header
	)
	r := chi.NewRouter()
	r.Post("/api/sales", func(w http.ResponseWriter, req *http.Request) {
		headers = req.Header.Clone()
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":44,"totalAmount":400,"receiptPath":"receipt-44.pdf","items":[{"productId":1,"quantity":2,"Product":{"name":"Tusker"}}]}`))
	})
	client := newTestClient(t, r)

	req := pos.CheckoutRequest{
		Items: []pos.CheckoutItem{
			{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(200)},
			{ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(50)},
		},
		Subtotal:     decimal.NewFromInt(450),
		Discount:     decimal.NewFromInt(50),
		Total:        decimal.NewFromInt(400),
		PaymentType:  pos.PaymentMPESA,
		CustomerType: pos.CustomerWalkIn,
		Date:         time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	record, err := client.CreateSale(context.Background(), "tok", req, "key-123")
	require.NoError(t, err)
	require.Equal(t, int64(44), record.ID)
	require.Equal(t, "Tusker", record.Items[0].ProductName)

	require.Equal(t, "Bearer tok", headers.Get("Authorization"))
	require.Equal(t, "key-123", headers.Get(IdempotencyHeader))
	require.Equal(t, "application/json", headers.Get("Content-Type"))

	require.EqualValues(t, 450, got["subtotal"])
	require.EqualValues(t, 50, got["discount"])
	require.EqualValues(t, 400, got["total"])
	require.Equal(t, "MPESA", got["paymentType"])
	require.Equal(t, "Walk-In", got["customerType"])
	require.Equal(t, "2025-06-01T10:00:00Z", got["date"])
	items := got["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	require.EqualValues(t, 1, first["productId"])
	require.EqualValues(t, 2, first["quantity"])
	require.EqualValues(t, 200, first["price"])
}

func TestRemoteErrorUsesServerMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/sales", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Insufficient stock for Tusker"}`))
	})
	r.Get("/api/sales/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`not json`))
	})
	client := newTestClient(t, r)

	_, err := client.CreateSale(context.Background(), "", pos.CheckoutRequest{}, "")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusBadRequest, remote.Status)
	require.Equal(t, "Insufficient stock for Tusker", remote.Detail())
	require.ErrorIs(t, err, httpx.ErrUpstream)
	// Backend rejections surface as 502, not as a local validation failure.
	require.NotErrorIs(t, err, httpx.ErrValidation)

	_, err = client.GetSale(context.Background(), 9)
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "Failed to fetch sale", remote.Detail())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUnreachableBackendFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := NewClient(url, 200*time.Millisecond, nil)

	_, err := client.ListSales(context.Background())
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Zero(t, remote.Status)
	require.Equal(t, "Failed to fetch sales", remote.Detail())
	require.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestAuthCalls(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var creds auth.Credentials
		require.NoError(t, json.NewDecoder(req.Body).Decode(&creds))
		if creds.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	})
	r.Get("/api/auth/me", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":5,"email":"a@b.co","firstName":"Achieng","lastName":"O"}`))
	})
	client := newTestClient(t, r)

	result, err := client.Login(context.Background(), auth.Credentials{Email: "a@b.co", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "abc", result.Token)
	require.Nil(t, result.User)

	user, err := client.Me(context.Background(), result.Token)
	require.NoError(t, err)
	require.Equal(t, "Achieng", user.FirstName)

	_, err = client.Login(context.Background(), auth.Credentials{Email: "a@b.co", Password: "nope"})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
	require.EqualError(t, err, "backend: login: status 401: Invalid credentials")

	_, err = client.Me(context.Background(), "")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "Failed to fetch user", remote.Detail())
}

func TestCatalogWrites(t *testing.T) {
	var paths []string
	r := chi.NewRouter()
	r.HandleFunc("/api/*", func(w http.ResponseWriter, req *http.Request) {
		paths = append(paths, req.Method+" "+req.URL.Path)
		switch req.Method {
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"message":"deleted"}`))
		default:
			_, _ = w.Write([]byte(`{"id":8,"name":"Spirits","stock":30}`))
		}
	})
	client := newTestClient(t, r)
	ctx := context.Background()

	_, err := client.UpdateCategory(ctx, 8, catalog.NamedForm{Name: "Spirits"})
	require.NoError(t, err)
	product, err := client.AddStock(ctx, 8, catalog.StockInput{Quantity: 6})
	require.NoError(t, err)
	require.Equal(t, 30, product.Stock)
	require.NoError(t, client.DeleteBrand(ctx, 3))

	require.Equal(t, []string{"PUT /api/categories/8", "POST /api/products/8/stock", "DELETE /api/brands/3"}, paths)
}
