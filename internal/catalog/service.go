package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

// Repository is the backend API surface for catalog data.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, form ProductForm) (Product, error)
	UpdateProduct(ctx context.Context, id int64, form ProductForm) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AddStock(ctx context.Context, id int64, input StockInput) (Product, error)

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, form NamedForm) (Category, error)
	UpdateCategory(ctx context.Context, id int64, form NamedForm) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListBrands(ctx context.Context) ([]Brand, error)
	CreateBrand(ctx context.Context, form NamedForm) (Brand, error)
	UpdateBrand(ctx context.Context, id int64, form NamedForm) (Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
}

// FormError lists invalid fields of a submitted form.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "catalog: invalid form: " + strings.Join(parts, "; ")
}

func (e *FormError) Unwrap() error { return httpx.ErrValidation }

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Products   []Product         `json:"products"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service coordinates catalog reads and writes against the backend.
type Service struct {
	repo     Repository
	cache    *StockCache
	validate *validator.Validate
	maxAge   time.Duration
	now      func() time.Time
}

// NewService wires the repository with the local stock cache. maxAge bounds
// how long the till serves the cached catalog before refetching.
func NewService(repo Repository, cache *StockCache, maxAge time.Duration) *Service {
	if cache == nil {
		cache = NewStockCache()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Cache exposes the local stock cache for checkout patches.
func (s *Service) Cache() *StockCache {
	return s.cache
}

// POSCatalog returns products and categories for the till. Both lists are
// fetched concurrently when the cache is stale or refresh is requested;
// otherwise the cached snapshot, including local stock patches, is served.
func (s *Service) POSCatalog(ctx context.Context, refresh bool) ([]Product, []Category, error) {
	if !refresh && s.cache.Fresh(s.now(), s.maxAge) {
		products, categories, _ := s.cache.Snapshot()
		return products, categories, nil
	}

	var (
		products   []Product
		categories []Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.repo.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.repo.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		// The previous snapshot stays in place.
		return nil, nil, fmt.Errorf("catalog: load pos catalog: %w", err)
	}
	s.cache.Replace(products, categories, s.now())
	return products, categories, nil
}

// ListProducts fetches the catalog and applies filter and pagination.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) (ProductPage, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return ProductPage{}, fmt.Errorf("catalog: list products: %w", err)
	}
	filtered := FilterProducts(products, filter)
	page, pagination := shared.Paginate(filtered, filter.Page, filter.PerPage)
	return ProductPage{Products: page, Pagination: pagination}, nil
}

// LowStock lists products at or below their minimum level.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: low stock: %w", err)
	}
	return LowStock(products), nil
}

// OutOfStock lists products with zero stock, narrowed by filter.
func (s *Service) OutOfStock(ctx context.Context, filter ProductFilter) (ProductPage, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return ProductPage{}, fmt.Errorf("catalog: out of stock: %w", err)
	}
	filtered := FilterProducts(OutOfStock(products), filter)
	page, pagination := shared.Paginate(filtered, filter.Page, filter.PerPage)
	return ProductPage{Products: page, Pagination: pagination}, nil
}

// GetProduct finds a product by id in the backend listing.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrInvalidID
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: get product: %w", err)
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("catalog: product %d: %w", id, httpx.ErrNotFound)
}

// CreateProduct validates and creates a product.
func (s *Service) CreateProduct(ctx context.Context, form ProductForm) (Product, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.check(form); err != nil {
		return Product{}, err
	}
	return s.repo.CreateProduct(ctx, form)
}

// UpdateProduct validates and updates a product.
func (s *Service) UpdateProduct(ctx context.Context, id int64, form ProductForm) (Product, error) {
	if id <= 0 {
		return Product{}, ErrInvalidID
	}
	form.Name = strings.TrimSpace(form.Name)
	if err := s.check(form); err != nil {
		return Product{}, err
	}
	return s.repo.UpdateProduct(ctx, id, form)
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return s.repo.DeleteProduct(ctx, id)
}

// AddStock records received goods for a product.
func (s *Service) AddStock(ctx context.Context, id int64, input StockInput) (Product, error) {
	if id <= 0 {
		return Product{}, ErrInvalidID
	}
	if err := s.check(input); err != nil {
		return Product{}, err
	}
	return s.repo.AddStock(ctx, id, input)
}

// ListCategories returns categories matching search.
func (s *Service) ListCategories(ctx context.Context, search string, page, perPage int) ([]Category, shared.Pagination, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("catalog: list categories: %w", err)
	}
	items, pagination := shared.Paginate(FilterCategories(categories, search), page, perPage)
	return items, pagination, nil
}

// CreateCategory validates and creates a category.
func (s *Service) CreateCategory(ctx context.Context, form NamedForm) (Category, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.check(form); err != nil {
		return Category{}, err
	}
	return s.repo.CreateCategory(ctx, form)
}

// UpdateCategory validates and updates a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, form NamedForm) (Category, error) {
	if id <= 0 {
		return Category{}, ErrInvalidID
	}
	form.Name = strings.TrimSpace(form.Name)
	if err := s.check(form); err != nil {
		return Category{}, err
	}
	return s.repo.UpdateCategory(ctx, id, form)
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return s.repo.DeleteCategory(ctx, id)
}

// ListBrands returns brands matching search.
func (s *Service) ListBrands(ctx context.Context, search string, page, perPage int) ([]Brand, shared.Pagination, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("catalog: list brands: %w", err)
	}
	items, pagination := shared.Paginate(FilterBrands(brands, search), page, perPage)
	return items, pagination, nil
}

// CreateBrand validates and creates a brand.
func (s *Service) CreateBrand(ctx context.Context, form NamedForm) (Brand, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.check(form); err != nil {
		return Brand{}, err
	}
	return s.repo.CreateBrand(ctx, form)
}

// UpdateBrand validates and updates a brand.
func (s *Service) UpdateBrand(ctx context.Context, id int64, form NamedForm) (Brand, error) {
	if id <= 0 {
		return Brand{}, ErrInvalidID
	}
	form.Name = strings.TrimSpace(form.Name)
	if err := s.check(form); err != nil {
		return Brand{}, err
	}
	return s.repo.UpdateBrand(ctx, id, form)
}

// DeleteBrand removes a brand.
func (s *Service) DeleteBrand(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return s.repo.DeleteBrand(ctx, id)
}

func (s *Service) check(form any) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &FormError{Fields: fields}
}
