package catalog

import (
	"encoding/json"
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

func newTestRouter(repo *stubRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo, nil, time.Minute))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func TestHandlerListProducts(t *testing.T) {
	router := newTestRouter(&stubRepo{products: sampleProducts()})

	req := httptest.NewRequest(http.MethodGet, "/catalog/products?search=coke", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var page ProductPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Products, 1)
	require.Equal(t, "Coke", page.Products[0].Name)
	require.Equal(t, 1, page.Pagination.From)
}

func TestHandlerCreateProductFieldErrors(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/catalog/products", strings.NewReader(`{"name":"","sellingPrice":10}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, "required", problem.Errors["Name"])
}

func TestHandlerAddStock(t *testing.T) {
	repo := &stubRepo{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/catalog/products/5/stock", strings.NewReader(`{"quantity":6,"vendor":"KBL","receiveDate":"2025-02-01"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 6, repo.stock[5].Quantity)
}

func TestHandlerGetProductStatuses(t *testing.T) {
	router := newTestRouter(&stubRepo{products: sampleProducts()})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/catalog/products/77", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/catalog/products/abc", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/catalog/brands/2", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
}
