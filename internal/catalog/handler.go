package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
)

// Handler exposes catalog management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Get("/products/{id}", h.getProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
		r.Post("/products/{id}/stock", h.addStock)
		r.Get("/low-stock", h.lowStock)
		r.Get("/out-of-stock", h.outOfStock)

		r.Get("/categories", h.listCategories)
		r.Post("/categories", h.createCategory)
		r.Put("/categories/{id}", h.updateCategory)
		r.Delete("/categories/{id}", h.deleteCategory)

		r.Get("/brands", h.listBrands)
		r.Post("/brands", h.createBrand)
		r.Put("/brands/{id}", h.updateBrand)
		r.Delete("/brands/{id}", h.deleteBrand)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListProducts(r.Context(), parseProductFilter(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), parseID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed product payload")
		return
	}
	product, err := h.service.CreateProduct(r.Context(), form)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("product created", slog.Int64("product_id", product.ID), slog.String("name", product.Name))
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed product payload")
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), parseID(r), form)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), parseID(r)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	var input StockInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed stock payload")
		return
	}
	id := parseID(r)
	product, err := h.service.AddStock(r.Context(), id, input)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("stock received", slog.Int64("product_id", id), slog.Int("quantity", input.Quantity))
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStock(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) outOfStock(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.OutOfStock(r.Context(), parseProductFilter(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, pagination, err := h.service.ListCategories(r.Context(), q.Get("search"), atoi(q.Get("page")), atoi(q.Get("perPage")))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": items, "pagination": pagination})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var form NamedForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed category payload")
		return
	}
	category, err := h.service.CreateCategory(r.Context(), form)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var form NamedForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed category payload")
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), parseID(r), form)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), parseID(r)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, pagination, err := h.service.ListBrands(r.Context(), q.Get("search"), atoi(q.Get("page")), atoi(q.Get("perPage")))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"brands": items, "pagination": pagination})
}

func (h *Handler) createBrand(w http.ResponseWriter, r *http.Request) {
	var form NamedForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed brand payload")
		return
	}
	brand, err := h.service.CreateBrand(r.Context(), form)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, brand)
}

func (h *Handler) updateBrand(w http.ResponseWriter, r *http.Request) {
	var form NamedForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed brand payload")
		return
	}
	brand, err := h.service.UpdateBrand(r.Context(), parseID(r), form)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, brand)
}

func (h *Handler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBrand(r.Context(), parseID(r)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var formErr *FormError
	if errors.As(err, &formErr) {
		httpx.FieldErrors(w, formErr.Fields)
		return
	}
	if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrNotFound) {
		h.logger.Error("catalog request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseProductFilter(r *http.Request) ProductFilter {
	q := r.URL.Query()
	return ProductFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: int64(atoi(q.Get("category"))),
		BrandID:    int64(atoi(q.Get("brand"))),
		Page:       atoi(q.Get("page")),
		PerPage:    atoi(q.Get("perPage")),
	}
}

// parseID returns 0 for malformed ids so the service rejects them.
func parseID(r *http.Request) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func atoi(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
