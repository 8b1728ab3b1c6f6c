package pos

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chillzone/chillzone-pos/internal/catalog"
	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

// Handler exposes the till endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the till handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers till routes. Callers mount it behind the
// authentication middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/pos", func(r chi.Router) {
		r.Get("/catalog", h.catalog)
		r.Get("/cart", h.cart)
		r.Post("/cart/toggle", h.toggle)
		r.Post("/cart/lines/{productID}/increment", h.step(1))
		r.Post("/cart/lines/{productID}/decrement", h.step(-1))
		r.Delete("/cart/lines/{productID}", h.remove)
		r.Put("/cart/options", h.options)
		r.Post("/cart/reset", h.reset)
		r.Post("/checkout", h.checkout)
	})
}

type catalogResponse struct {
	Products   []catalog.Product  `json:"products"`
	Categories []catalog.Category `json:"categories"`
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("category"), 10, 64)
	refresh := q.Get("refresh") == "1" || strings.EqualFold(q.Get("refresh"), "true")
	products, categories, err := h.service.Catalog(r.Context(), categoryID, q.Get("q"), refresh)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalogResponse{Products: products, Categories: categories})
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	cart, err := h.service.Cart(r.Context(), sess)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart.View())
}

type toggleRequest struct {
	ProductID int64 `json:"productId"`
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "productId is required")
		return
	}
	cart, err := h.service.Toggle(r.Context(), sess, req.ProductID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart.View())
}

func (h *Handler) step(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.session(w, r)
		if !ok {
			return
		}
		productID, ok := productParam(w, r)
		if !ok {
			return
		}
		cart, err := h.service.ChangeQuantity(r.Context(), sess, productID, delta)
		if err != nil {
			h.fail(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, cart.View())
	}
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, ok := productParam(w, r)
	if !ok {
		return
	}
	cart, err := h.service.Remove(r.Context(), sess, productID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart.View())
}

func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var opts Options
	if err := httpx.DecodeJSON(r, &opts); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed cart options")
		return
	}
	cart, err := h.service.SetOptions(r.Context(), sess, opts)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart.View())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	cart, err := h.service.Reset(r.Context(), sess)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart.View())
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	record, err := h.service.Commit(r.Context(), sess)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (Session, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, ErrNoSession)
		return Session{}, false
	}
	return Session{ID: sess.ID, Token: sess.Token()}, true
}

func productParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "product id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrNotFound), errors.Is(err, httpx.ErrConflict):
	case errors.Is(err, httpx.ErrUpstream):
		h.logger.Warn("pos upstream failure", slog.Any("error", err))
	default:
		h.logger.Error("pos request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
