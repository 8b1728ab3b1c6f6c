package pos

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

func newTestRouter(f *fixture, withSession bool) http.Handler {
	r := chi.NewRouter()
	if withSession {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				sess := &shared.Session{ID: "till-http"}
				next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
			})
		})
	}
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), f.svc).MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, reader))
	return rr
}

func TestHandlerCartFlow(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, true)

	rr := do(t, router, http.MethodPost, "/pos/cart/toggle", `{"productId":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodPost, "/pos/cart/lines/1/increment", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, router, http.MethodPost, "/pos/cart/toggle", `{"productId":2}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodPut, "/pos/cart/options", `{"discount":"50","paymentType":"MPESA","customerType":"Delivery"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var view View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.True(t, view.Subtotal.Equal(dec("450")))
	require.True(t, view.Total.Equal(dec("400")))
	require.Equal(t, 3, view.TotalQuantity)

	rr = do(t, router, http.MethodPost, "/pos/checkout", "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, router, http.MethodGet, "/pos/cart", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Zero(t, view.ItemCount)
}

func TestHandlerCheckoutValidationProblem(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, true)

	rr := do(t, router, http.MethodPost, "/pos/checkout", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, "no items in cart", problem.Detail)
}

func TestHandlerRemoteErrorVerbatim(t *testing.T) {
	f := newFixture(t)
	f.creator.err = remoteErr{msg: "Insufficient stock"}
	router := newTestRouter(f, true)
	do(t, router, http.MethodPost, "/pos/cart/toggle", `{"productId":1}`)
	do(t, router, http.MethodPut, "/pos/cart/options", `{"paymentType":"Cash","customerType":"Walk-In"}`)

	rr := do(t, router, http.MethodPost, "/pos/checkout", "")
	require.Equal(t, http.StatusBadGateway, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, "Insufficient stock", problem.Detail)
}

func TestHandlerRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, true)

	require.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/pos/cart/toggle", `{}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/pos/cart/lines/x/increment", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/pos/cart/lines/7/decrement", "").Code)
	require.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPut, "/pos/cart/options", `{"discount":"-3"}`).Code)

	anonymous := newTestRouter(f, false)
	require.Equal(t, http.StatusUnauthorized, do(t, anonymous, http.MethodGet, "/pos/cart", "").Code)
}

func TestHandlerCatalogFilters(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, true)

	rr := do(t, router, http.MethodGet, "/pos/catalog?q=tus", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body catalogResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	require.Equal(t, "Tusker", body.Products[0].Name)
	require.Len(t, body.Categories, 1)
}
