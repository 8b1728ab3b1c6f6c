package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chillzone/chillzone-pos/internal/catalog"
	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/sales"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

// Checkout outcomes reported to the observer.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeRemote     = "remote"
	OutcomeConflict   = "conflict"
)

// SaleCreator submits a sale to the backend. token is the cashier's API
// token; idempotencyKey identifies the attempt.
type SaleCreator interface {
	CreateSale(ctx context.Context, token string, req CheckoutRequest, idempotencyKey string) (sales.Record, error)
}

// CatalogSource supplies the till catalog.
type CatalogSource interface {
	POSCatalog(ctx context.Context, refresh bool) ([]catalog.Product, []catalog.Category, error)
}

// StockPatcher applies local stock decrements after a sale.
type StockPatcher interface {
	Patch(sold map[int64]int)
}

// ReportsInvalidator drops cached report figures.
type ReportsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Locker guards a key for a limited time.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// CheckoutObserver counts checkout outcomes.
type CheckoutObserver interface {
	ObserveCheckout(outcome string)
}

// Session identifies the cashier session a cart belongs to.
type Session struct {
	ID    string
	Token string
}

// Options are the cart settings editable from the till.
type Options struct {
	Discount     *decimal.Decimal `json:"discount"`
	PaymentType  *PaymentType     `json:"paymentType"`
	CustomerType *CustomerType    `json:"customerType"`
}

// Config carries the checkout tunables.
type Config struct {
	LockTTL time.Duration
}

// Service runs cart mutations and checkout for a session.
type Service struct {
	logger   *slog.Logger
	store    *CartStore
	catalog  CatalogSource
	creator  SaleCreator
	stock    StockPatcher
	reports  ReportsInvalidator
	locker   Locker
	observer CheckoutObserver
	cfg      Config
	now      func() time.Time
	newKey   func() string
}

// Deps groups the collaborators of Service.
type Deps struct {
	Store    *CartStore
	Catalog  CatalogSource
	Creator  SaleCreator
	Stock    StockPatcher
	Reports  ReportsInvalidator
	Locker   Locker
	Observer CheckoutObserver
}

// NewService wires the checkout service.
func NewService(logger *slog.Logger, deps Deps, cfg Config) *Service {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Second
	}
	return &Service{
		logger:   logger,
		store:    deps.Store,
		catalog:  deps.Catalog,
		creator:  deps.Creator,
		stock:    deps.Stock,
		reports:  deps.Reports,
		locker:   deps.Locker,
		observer: deps.Observer,
		cfg:      cfg,
		now:      time.Now,
		newKey:   uuid.NewString,
	}
}

// Catalog returns the till catalog narrowed by category and name search.
func (s *Service) Catalog(ctx context.Context, categoryID int64, search string, refresh bool) ([]catalog.Product, []catalog.Category, error) {
	products, categories, err := s.catalog.POSCatalog(ctx, refresh)
	if err != nil {
		return nil, nil, err
	}
	filtered := catalog.FilterProducts(products, catalog.ProductFilter{
		Search:     strings.TrimSpace(search),
		CategoryID: categoryID,
	})
	return filtered, categories, nil
}

// Cart returns the session's cart.
func (s *Service) Cart(ctx context.Context, sess Session) (*Cart, error) {
	return s.store.Load(ctx, sess.ID)
}

// Toggle adds or removes a catalog product.
func (s *Service) Toggle(ctx context.Context, sess Session, productID int64) (*Cart, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *Cart) error {
		c.Toggle(product)
		return nil
	})
}

// ChangeQuantity steps a line up or down by one.
func (s *Service) ChangeQuantity(ctx context.Context, sess Session, productID int64, delta int) (*Cart, error) {
	return s.mutate(ctx, sess, func(c *Cart) error {
		return c.ChangeQuantity(productID, delta)
	})
}

// Remove drops a line.
func (s *Service) Remove(ctx context.Context, sess Session, productID int64) (*Cart, error) {
	return s.mutate(ctx, sess, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
}

// SetOptions updates discount and checkout selections. Nil fields are left
// untouched.
func (s *Service) SetOptions(ctx context.Context, sess Session, opts Options) (*Cart, error) {
	return s.mutate(ctx, sess, func(c *Cart) error {
		if opts.Discount != nil {
			if err := c.SetDiscount(*opts.Discount); err != nil {
				return err
			}
		}
		if opts.PaymentType != nil {
			if err := c.SetPaymentType(*opts.PaymentType); err != nil {
				return err
			}
		}
		if opts.CustomerType != nil {
			if err := c.SetCustomerType(*opts.CustomerType); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset clears the session's cart.
func (s *Service) Reset(ctx context.Context, sess Session) (*Cart, error) {
	if err := s.store.Clear(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("pos: reset cart: %w", err)
	}
	return &Cart{}, nil
}

// Commit checks out the session's cart. Only one checkout per session runs
// at a time. On success the sold quantities are patched into the local
// stock cache, the cart is reset and cached reports are invalidated. On
// failure the cart is left as it was.
func (s *Service) Commit(ctx context.Context, sess Session) (sales.Record, error) {
	release, err := s.locker.Acquire(ctx, shared.CheckoutLockKey(sess.ID), s.cfg.LockTTL)
	if errors.Is(err, shared.ErrLockHeld) {
		s.observe(OutcomeConflict)
		return sales.Record{}, ErrCheckoutInFlight
	}
	if err != nil {
		return sales.Record{}, fmt.Errorf("pos: checkout lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release checkout lock", slog.String("session", sess.ID), slog.Any("error", err))
		}
	}()

	cart, err := s.store.Load(ctx, sess.ID)
	if err != nil {
		return sales.Record{}, err
	}
	req, err := cart.BuildCheckoutRequest(s.now())
	if err != nil {
		s.observe(OutcomeValidation)
		return sales.Record{}, err
	}

	key := s.newKey()
	record, err := s.creator.CreateSale(ctx, sess.Token, req, key)
	if err != nil {
		s.observe(OutcomeRemote)
		s.logger.Warn("sale rejected",
			slog.String("idempotency_key", key),
			slog.Int("items", len(req.Items)),
			slog.Any("error", err))
		return sales.Record{}, err
	}

	if s.stock != nil {
		s.stock.Patch(req.Sold())
	}
	if err := s.store.Clear(ctx, sess.ID); err != nil {
		s.logger.Error("clear cart after checkout", slog.String("session", sess.ID), slog.Any("error", err))
	}
	if s.reports != nil {
		if err := s.reports.Invalidate(ctx); err != nil {
			s.logger.Warn("invalidate reports", slog.Any("error", err))
		}
	}
	s.observe(OutcomeSuccess)
	s.logger.Info("sale committed",
		slog.Int64("sale_id", record.ID),
		slog.String("idempotency_key", key),
		slog.String("total", req.Total.StringFixed(2)),
		slog.String("payment_type", string(req.PaymentType)))
	return record, nil
}

func (s *Service) mutate(ctx context.Context, sess Session, fn func(*Cart) error) (*Cart, error) {
	cart, err := s.store.Load(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess.ID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) findProduct(ctx context.Context, productID int64) (catalog.Product, error) {
	products, _, err := s.catalog.POSCatalog(ctx, false)
	if err != nil {
		return catalog.Product{}, err
	}
	for _, p := range products {
		if p.ID == productID {
			return p, nil
		}
	}
	return catalog.Product{}, fmt.Errorf("pos: product %d: %w", productID, httpx.ErrNotFound)
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveCheckout(outcome)
	}
}
