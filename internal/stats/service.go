package stats

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service computes global and monthly sales statistics.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService wires a Service. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Global counts items, customers and sales concurrently and sums the revenue
// of every detail line.
func (s *Service) Global(ctx context.Context) (GlobalStats, error) {
	key, err := s.cache.BuildKey(ctx, "global")
	if err != nil {
		return s.computeGlobal(ctx)
	}
	var out GlobalStats
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.computeGlobal(ctx)
	})
	return out, err
}

func (s *Service) computeGlobal(ctx context.Context) (GlobalStats, error) {
	var (
		out     GlobalStats
		amounts []DetailAmount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalItems, err = s.repo.CountItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalCustomers, err = s.repo.CountCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalSales.Count, err = s.repo.CountSales(gctx)
		return err
	})
	g.Go(func() (err error) {
		amounts, err = s.repo.DetailAmounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return GlobalStats{}, err
	}
	out.TotalSales.TotalPrice = TotalPrice(amounts)
	return out, nil
}

// Monthly returns the twelve month quantity breakdown for year.
func (s *Service) Monthly(ctx context.Context, year int) ([]MonthlySales, error) {
	key, err := s.cache.BuildKey(ctx, "monthly", strconv.Itoa(year))
	if err != nil {
		return s.computeMonthly(ctx, year)
	}
	var out []MonthlySales
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.computeMonthly(ctx, year)
	})
	return out, err
}

func (s *Service) computeMonthly(ctx context.Context, year int) ([]MonthlySales, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	rows, err := s.repo.MonthlyRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return MonthlyBuckets(year, rows), nil
}

// ParseYear reads a year query value, defaulting to the current year when it
// is absent or not a number.
func (s *Service) ParseYear(raw string) int {
	if year, err := strconv.Atoi(raw); err == nil && year > 0 {
		return year
	}
	return s.now().Year()
}
