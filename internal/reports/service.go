package reports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/chillzone/chillzone-pos/internal/sales"
)

// computeTimeout bounds one shared dashboard computation.
const computeTimeout = 30 * time.Second

// SalesSource lists every recorded sale.
type SalesSource interface {
	ListSales(ctx context.Context) ([]sales.Record, error)
}

// Config tunes the dashboard windows.
type Config struct {
	StartYear int
	YearSpan  int
	TopN      int
	Location  *time.Location
}

// Dashboard is everything the reports page shows for one reference date.
type Dashboard struct {
	RefDate     string         `json:"refDate"`
	WeekRange   string         `json:"weekRange"`
	Weekly      Series         `json:"weekly"`
	Monthly     Series         `json:"monthly"`
	Yearly      Series         `json:"yearly"`
	Summary     Summary        `json:"summary"`
	TopProducts []ProductCount `json:"topProducts"`
	SalesCount  int            `json:"salesCount"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// Service computes dashboards from the sales history and memoizes them.
type Service struct {
	source SalesSource
	cache  *Cache
	cfg    Config
	group  singleflight.Group
	now    func() time.Time
}

// NewService wires the sales source with an optional cache.
func NewService(source SalesSource, cache *Cache, cfg Config) *Service {
	if cfg.StartYear <= 0 {
		cfg.StartYear = DefaultStartYear
	}
	if cfg.YearSpan <= 0 {
		cfg.YearSpan = DefaultYearSpan
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{source: source, cache: cache, cfg: cfg, now: time.Now}
}

// Location is the store time zone used for bucketing.
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// Dashboard returns the dashboard for the week containing ref. A zero ref
// means today.
func (s *Service) Dashboard(ctx context.Context, ref time.Time) (Dashboard, error) {
	if ref.IsZero() {
		ref = s.now()
	}
	ref = ref.In(s.cfg.Location)
	day := ref.Format("2006-01-02")

	key, err := s.cache.Key(ctx, "reports", "dashboard", day, strconv.Itoa(s.cfg.TopN))
	if err != nil {
		return Dashboard{}, fmt.Errorf("reports: cache key: %w", err)
	}
	// The flight is shared, so it must not die with the first caller's request.
	flight := s.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		var out Dashboard
		err := s.cache.FetchJSON(fctx, key, &out, func(ctx context.Context) (any, error) {
			return s.compute(ctx, ref)
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return Dashboard{}, res.Err
		}
		return res.Val.(Dashboard), nil
	}
}

func (s *Service) compute(ctx context.Context, ref time.Time) (Dashboard, error) {
	records, err := s.source.ListSales(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("reports: list sales: %w", err)
	}
	return Build(records, ref, s.cfg, s.now()), nil
}

// Build computes a dashboard from records without touching the cache.
func Build(records []sales.Record, ref time.Time, cfg Config, generatedAt time.Time) Dashboard {
	loc := cfg.Location
	if loc == nil {
		loc = ref.Location()
	}
	ref = ref.In(loc)
	weekly := WeeklySeries(records, ref)
	monthly := MonthlySeries(records, loc)
	yearly := YearlySeries(records, loc, cfg.StartYear, cfg.YearSpan)
	return Dashboard{
		RefDate:     ref.Format("2006-01-02"),
		WeekRange:   WeekRange(ref),
		Weekly:      weekly,
		Monthly:     monthly,
		Yearly:      yearly,
		Summary:     SummaryTotals(weekly, monthly, yearly),
		TopProducts: TopProducts(records, cfg.TopN),
		SalesCount:  len(records),
		GeneratedAt: generatedAt.UTC(),
	}
}

// Invalidate drops every memoized dashboard.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
