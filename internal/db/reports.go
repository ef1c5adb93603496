package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DailySalesRow aggregates all invoices finalized on one calendar day.
type DailySalesRow struct {
	Day          time.Time
	InvoiceCount int64
	GrossTotal   decimal.Decimal
	TaxTotal     decimal.Decimal
}

// TopItemRow aggregates sold quantity and revenue for one item name.
type TopItemRow struct {
	Name    string
	QtySold int64
	Revenue decimal.Decimal
}

// SalesDaily returns per-day totals for invoices in [from, to).
func (s *Store) SalesDaily(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT date_trunc('day', created_at) AS day,
		        count(*) AS invoice_count,
		        coalesce(sum(total), 0) AS gross_total,
		        coalesce(sum(tax_amount), 0) AS tax_total
		 FROM invoices
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1 ORDER BY 1`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailySalesRow
	for rows.Next() {
		var (
			r     DailySalesRow
			day   pgtype.Timestamptz
			gross pgtype.Numeric
			tax   pgtype.Numeric
		)
		if err := rows.Scan(&day, &r.InvoiceCount, &gross, &tax); err != nil {
			return nil, err
		}
		r.Day = TimeFromPG(day)
		r.GrossTotal = DecimalFromNumeric(gross)
		r.TaxTotal = DecimalFromNumeric(tax)
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopItems returns the best selling item names by quantity for invoices
// in [from, to).
func (s *Store) TopItems(ctx context.Context, from, to time.Time, limit int32) ([]TopItemRow, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT l.name,
		        coalesce(sum(l.qty), 0) AS qty_sold,
		        coalesce(sum(l.line_total), 0) AS revenue
		 FROM invoice_lines l
		 JOIN invoices i ON i.id = l.invoice_id
		 WHERE i.created_at >= $1 AND i.created_at < $2
		 GROUP BY l.name
		 ORDER BY qty_sold DESC, l.name
		 LIMIT $3`,
		from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopItemRow
	for rows.Next() {
		var (
			r       TopItemRow
			revenue pgtype.Numeric
		)
		if err := rows.Scan(&r.Name, &r.QtySold, &revenue); err != nil {
			return nil, err
		}
		r.Revenue = DecimalFromNumeric(revenue)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LowStockItems returns inventory rows at or below the threshold.
func (s *Store) LowStockItems(ctx context.Context, threshold int32) ([]InventoryRow, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE stock_qty <= $1 ORDER BY stock_qty, lower(name)",
		threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InventoryRow
	for rows.Next() {
		r, err := scanInventoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
