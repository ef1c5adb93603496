package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/report"
)

type stubQueries struct {
	salesCalls int
	topCalls   int
}

func (s *stubQueries) SalesDaily(_ context.Context, from, to time.Time) ([]db.DailySalesRow, error) {
	s.salesCalls++
	return []db.DailySalesRow{{
		Day:          from,
		InvoiceCount: 4,
		GrossTotal:   decimal.NewFromInt(1250),
		TaxTotal:     decimal.NewFromInt(60),
	}}, nil
}

func (s *stubQueries) TopItems(_ context.Context, from, to time.Time, limit int32) ([]db.TopItemRow, error) {
	s.topCalls++
	return []db.TopItemRow{{Name: "Sugar 1kg", QtySold: 42, Revenue: decimal.NewFromInt(2037)}}, nil
}

func newService(t *testing.T) (*report.Service, *stubQueries) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	queries := &stubQueries{}
	return &report.Service{Q: queries, R: rdb, TTL: time.Minute, DefaultRange: 30}, queries
}

func TestSalesRangeCached(t *testing.T) {
	svc, queries := newService(t)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	first, err := svc.SalesRange(context.Background(), from, to)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(first) != 1 || first[0].GrossTotal != "1250.00" {
		t.Fatalf("rows = %+v", first)
	}
	if _, err := svc.SalesRange(context.Background(), from, to); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if queries.salesCalls != 1 {
		t.Fatalf("expected 1 DB call, got %d", queries.salesCalls)
	}
}

func TestTopItemsCachedPerLimit(t *testing.T) {
	svc, queries := newService(t)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	if _, err := svc.TopItems(context.Background(), from, to, 5); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.TopItems(context.Background(), from, to, 5); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if queries.topCalls != 1 {
		t.Fatalf("expected 1 DB call, got %d", queries.topCalls)
	}

	if _, err := svc.TopItems(context.Background(), from, to, 10); err != nil {
		t.Fatalf("different limit: %v", err)
	}
	if queries.topCalls != 2 {
		t.Fatalf("different limit should miss cache, calls = %d", queries.topCalls)
	}
}
