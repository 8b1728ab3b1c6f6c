package pos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/chillzone/chillzone-pos/internal/catalog"
	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/sales"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

type stubCatalog struct {
	products []catalog.Product
}

func (s stubCatalog) POSCatalog(ctx context.Context, refresh bool) ([]catalog.Product, []catalog.Category, error) {
	return s.products, []catalog.Category{{ID: 1, Name: "Beer"}}, nil
}

type remoteErr struct{ msg string }

func (e remoteErr) Error() string  { return "backend: " + e.msg }
func (e remoteErr) Detail() string { return e.msg }
func (e remoteErr) Unwrap() error  { return httpx.ErrUpstream }

type stubCreator struct {
	requests []CheckoutRequest
	tokens   []string
	keys     []string
	err      error
	before   func()
}

func (s *stubCreator) CreateSale(ctx context.Context, token string, req CheckoutRequest, key string) (sales.Record, error) {
	if s.before != nil {
		s.before()
	}
	s.requests = append(s.requests, req)
	s.tokens = append(s.tokens, token)
	s.keys = append(s.keys, key)
	if s.err != nil {
		return sales.Record{}, s.err
	}
	return sales.Record{ID: 501, TotalAmount: req.Total.InexactFloat64()}, nil
}

type stubInvalidator struct{ calls int }

func (s *stubInvalidator) Invalidate(ctx context.Context) error {
	s.calls++
	return nil
}

type stubObserver struct{ outcomes []string }

func (s *stubObserver) ObserveCheckout(outcome string) {
	s.outcomes = append(s.outcomes, outcome)
}

type fixture struct {
	svc      *Service
	store    *CartStore
	creator  *stubCreator
	stock    *catalog.StockCache
	reports  *stubInvalidator
	observer *stubObserver
	client   *redis.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products := []catalog.Product{tusker, soda}
	stock := catalog.NewStockCache()
	stock.Replace(products, nil, time.Now())

	f := &fixture{
		store:    NewCartStore(client, time.Hour),
		creator:  &stubCreator{},
		stock:    stock,
		reports:  &stubInvalidator{},
		observer: &stubObserver{},
		client:   client,
	}
	f.svc = NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{
		Store:    f.store,
		Catalog:  stubCatalog{products: products},
		Creator:  f.creator,
		Stock:    stock,
		Reports:  f.reports,
		Locker:   shared.NewLocker(client),
		Observer: f.observer,
	}, Config{LockTTL: 5 * time.Second})
	f.svc.newKey = func() string { return "key-1" }
	return f
}

func ptr[T any](v T) *T { return &v }

func readyCart(t *testing.T, f *fixture, sess Session) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Toggle(ctx, sess, tusker.ID)
	require.NoError(t, err)
	_, err = f.svc.ChangeQuantity(ctx, sess, tusker.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, sess, soda.ID)
	require.NoError(t, err)
	_, err = f.svc.SetOptions(ctx, sess, Options{
		Discount:     ptr(dec("50")),
		PaymentType:  ptr(PaymentCash),
		CustomerType: ptr(CustomerWalkIn),
	})
	require.NoError(t, err)
}

func TestServiceMutationsPersistPerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := Session{ID: "a"}
	b := Session{ID: "b"}

	readyCart(t, f, a)
	cart, err := f.svc.Cart(ctx, a)
	require.NoError(t, err)
	require.True(t, cart.Total().Equal(dec("400")))

	other, err := f.svc.Cart(ctx, b)
	require.NoError(t, err)
	require.Zero(t, other.Len())

	_, err = f.svc.Toggle(ctx, a, 404)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	cart, err = f.svc.Remove(ctx, a, soda.ID)
	require.NoError(t, err)
	require.Equal(t, 1, cart.Len())

	cart, err = f.svc.Reset(ctx, a)
	require.NoError(t, err)
	require.Zero(t, cart.Len())
	cart, err = f.svc.Cart(ctx, a)
	require.NoError(t, err)
	require.Zero(t, cart.Len())
}

func TestServiceSetOptionsRejectsUnknownPayment(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetOptions(context.Background(), Session{ID: "a"}, Options{PaymentType: ptr(PaymentType("Cheque"))})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "paymentType", vErr.Field)
}

func TestCommitSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := Session{ID: "till-1", Token: "tok"}
	readyCart(t, f, sess)

	record, err := f.svc.Commit(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, int64(501), record.ID)

	require.Len(t, f.creator.requests, 1)
	req := f.creator.requests[0]
	require.True(t, req.Subtotal.Equal(dec("450")))
	require.True(t, req.Total.Equal(dec("400")))
	require.Equal(t, "tok", f.creator.tokens[0])
	require.Equal(t, "key-1", f.creator.keys[0])

	products, _, _ := f.stock.Snapshot()
	require.Equal(t, 8, products[0].Stock)
	require.Equal(t, 9, products[1].Stock)

	cart, err := f.svc.Cart(ctx, sess)
	require.NoError(t, err)
	require.Zero(t, cart.Len())
	require.Equal(t, 1, f.reports.calls)
	require.Equal(t, []string{OutcomeSuccess}, f.observer.outcomes)

	exists, err := f.client.Exists(ctx, shared.CheckoutLockKey(sess.ID)).Result()
	require.NoError(t, err)
	require.Zero(t, exists, "lock released")
}

func TestCommitValidationNeverCallsBackend(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Commit(context.Background(), Session{ID: "empty"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "no items in cart", vErr.Message)
	require.Empty(t, f.creator.requests)
	require.Equal(t, []string{OutcomeValidation}, f.observer.outcomes)
}

func TestCommitRemoteErrorKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := Session{ID: "till-2"}
	readyCart(t, f, sess)
	f.creator.err = remoteErr{msg: "Insufficient stock for Tusker"}

	_, err := f.svc.Commit(ctx, sess)
	require.ErrorIs(t, err, httpx.ErrUpstream)
	require.Equal(t, "backend: Insufficient stock for Tusker", err.Error())

	cart, err := f.svc.Cart(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, 2, cart.Len())
	require.Equal(t, PaymentCash, cart.PaymentType())

	products, _, _ := f.stock.Snapshot()
	require.Equal(t, 10, products[0].Stock, "no stock patch on failure")
	require.Zero(t, f.reports.calls)
	require.Equal(t, []string{OutcomeRemote}, f.observer.outcomes)
}

func TestCommitRejectsConcurrentCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := Session{ID: "till-3"}
	readyCart(t, f, sess)

	var nested error
	f.creator.before = func() {
		f.creator.before = nil
		_, nested = f.svc.Commit(ctx, sess)
	}
	_, err := f.svc.Commit(ctx, sess)
	require.NoError(t, err)
	require.ErrorIs(t, nested, ErrCheckoutInFlight)
	require.ErrorIs(t, nested, httpx.ErrConflict)
	require.Len(t, f.creator.requests, 1)
	require.Equal(t, []string{OutcomeConflict, OutcomeSuccess}, f.observer.outcomes)
}

func TestCommitLockFailureIsReported(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.client.Close())
	_, err := f.svc.Commit(context.Background(), Session{ID: "x"})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrCheckoutInFlight))
	require.Contains(t, fmt.Sprint(err), "checkout lock")
}
