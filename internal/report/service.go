// Package report serves cached sales aggregates for the shop dashboard.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rajik786786-oss/kgf-billing/internal/db"
)

// Querier defines the database access required for report operations.
type Querier interface {
	SalesDaily(ctx context.Context, from, to time.Time) ([]db.DailySalesRow, error)
	TopItems(ctx context.Context, from, to time.Time, limit int32) ([]db.TopItemRow, error)
}

// DailySales is one day of aggregated sales.
type DailySales struct {
	Day          string `json:"day"`
	InvoiceCount int64  `json:"invoiceCount"`
	GrossTotal   string `json:"grossTotal"`
	TaxTotal     string `json:"taxTotal"`
}

// TopItem is one entry in the best sellers list.
type TopItem struct {
	Name    string `json:"name"`
	QtySold int64  `json:"qtySold"`
	Revenue string `json:"revenue"`
}

// Service provides cached access to sales aggregates.
type Service struct {
	Q            Querier
	R            *redis.Client
	TTL          time.Duration
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// SalesRange returns per-day totals between the bounds, inclusive of from
// and exclusive of to.
func (s *Service) SalesRange(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("report service not configured")
	}
	key := cacheKey("rpt", "sales", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if rows, ok := getCached[[]DailySales](ctx, s, key); ok {
		return rows, nil
	}
	dbRows, err := s.Q.SalesDaily(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rows := make([]DailySales, 0, len(dbRows))
	for _, r := range dbRows {
		rows = append(rows, DailySales{
			Day:          r.Day.Format("2006-01-02"),
			InvoiceCount: r.InvoiceCount,
			GrossTotal:   r.GrossTotal.StringFixed(2),
			TaxTotal:     r.TaxTotal.StringFixed(2),
		})
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// TopItems returns the best selling items for the range, ordered by
// quantity sold.
func (s *Service) TopItems(ctx context.Context, from, to time.Time, limit int32) ([]TopItem, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("report service not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	key := cacheKey("rpt", "top", from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
	if rows, ok := getCached[[]TopItem](ctx, s, key); ok {
		return rows, nil
	}
	dbRows, err := s.Q.TopItems(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]TopItem, 0, len(dbRows))
	for _, r := range dbRows {
		rows = append(rows, TopItem{
			Name:    r.Name,
			QtySold: r.QtySold,
			Revenue: r.Revenue.StringFixed(2),
		})
	}
	s.store(ctx, key, rows)
	return rows, nil
}

func getCached[T any](ctx context.Context, s *Service, key string) (T, bool) {
	var zero T
	if s.R == nil || s.TTL <= 0 {
		return zero, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return zero, false
	}
	var rows T
	if err := json.Unmarshal(data, &rows); err != nil {
		return zero, false
	}
	return rows, true
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
