package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const invoiceColumns = `id, customer_id, customer_name, customer_phone, discount_percent,
	subtotal, discount_amount, tax_amount, total, currency, created_at`

const invoiceLineColumns = `id, invoice_id, position, name, barcode, unit_price, qty,
	discount_percent, tax_percent, line_total`

// InvoiceFilter narrows ListInvoices. Query matches customer name, phone or
// invoice id; zero time bounds are ignored.
type InvoiceFilter struct {
	From   time.Time
	To     time.Time
	Query  string
	Limit  int32
	Offset int32
}

func scanInvoiceRow(row pgx.Row) (InvoiceRow, error) {
	var r InvoiceRow
	var discountPct, subtotal, discount, tax, total pgtype.Numeric
	err := row.Scan(&r.ID, &r.CustomerID, &r.CustomerName, &r.CustomerPhone, &discountPct,
		&subtotal, &discount, &tax, &total, &r.Currency, &r.CreatedAt)
	if err != nil {
		return InvoiceRow{}, translateErr(err)
	}
	r.DiscountPercent = DecimalFromNumeric(discountPct)
	r.Subtotal = DecimalFromNumeric(subtotal)
	r.DiscountAmount = DecimalFromNumeric(discount)
	r.TaxAmount = DecimalFromNumeric(tax)
	r.Total = DecimalFromNumeric(total)
	return r, nil
}

func scanInvoiceLineRow(row pgx.Row) (InvoiceLineRow, error) {
	var r InvoiceLineRow
	var unitPrice, discountPct, taxPct, lineTotal pgtype.Numeric
	err := row.Scan(&r.ID, &r.InvoiceID, &r.Position, &r.Name, &r.Barcode, &unitPrice,
		&r.Qty, &discountPct, &taxPct, &lineTotal)
	if err != nil {
		return InvoiceLineRow{}, translateErr(err)
	}
	r.UnitPrice = DecimalFromNumeric(unitPrice)
	r.DiscountPercent = DecimalFromNumeric(discountPct)
	r.TaxPercent = DecimalFromNumeric(taxPct)
	r.LineTotal = DecimalFromNumeric(lineTotal)
	return r, nil
}

// FinalizeSale applies stock decrements and records the invoice with its lines
// in one transaction. Decrements floor at zero so a racing sale never drives
// stock negative. Any failure rolls the whole sale back, leaving stock and
// history untouched.
func (s *Store) FinalizeSale(ctx context.Context, inv InvoiceRow, lines []InvoiceLineRow, decrements []StockDecrement) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, d := range decrements {
			tag, err := tx.Exec(ctx,
				"UPDATE inventory SET stock_qty = GREATEST(stock_qty - $2, 0), updated_at = now() WHERE id = $1",
				d.RecordID, d.Qty)
			if err != nil {
				return translateErr(err)
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO invoices (id, customer_id, customer_name, customer_phone, discount_percent,
			     subtotal, discount_amount, tax_amount, total, currency, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			inv.ID, inv.CustomerID, inv.CustomerName, inv.CustomerPhone,
			NumericFromDecimal(inv.DiscountPercent), NumericFromDecimal(inv.Subtotal),
			NumericFromDecimal(inv.DiscountAmount), NumericFromDecimal(inv.TaxAmount),
			NumericFromDecimal(inv.Total), inv.Currency, inv.CreatedAt)
		if err != nil {
			return translateErr(err)
		}

		for _, l := range lines {
			_, err := tx.Exec(ctx,
				`INSERT INTO invoice_lines (id, invoice_id, position, name, barcode, unit_price, qty,
				     discount_percent, tax_percent, line_total)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				l.ID, inv.ID, l.Position, l.Name, l.Barcode, NumericFromDecimal(l.UnitPrice),
				l.Qty, NumericFromDecimal(l.DiscountPercent), NumericFromDecimal(l.TaxPercent),
				NumericFromDecimal(l.LineTotal))
			if err != nil {
				return translateErr(err)
			}
		}
		return nil
	})
}

// ListInvoices returns invoice headers newest first, applying the filter.
func (s *Store) ListInvoices(ctx context.Context, f InvoiceFilter) ([]InvoiceRow, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices i
		 WHERE ($1::timestamptz IS NULL OR i.created_at >= $1)
		   AND ($2::timestamptz IS NULL OR i.created_at < $2)
		   AND ($3 = ''
		        OR i.customer_name ILIKE '%' || $3 || '%'
		        OR i.customer_phone ILIKE '%' || $3 || '%'
		        OR i.id::text = $3)
		 ORDER BY i.created_at DESC
		 LIMIT $4 OFFSET $5`,
		ToTimestamptz(f.From), ToTimestamptz(f.To), f.Query, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InvoiceRow
	for rows.Next() {
		r, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountInvoices counts invoices matching the same filter as ListInvoices.
func (s *Store) CountInvoices(ctx context.Context, f InvoiceFilter) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM invoices i
		 WHERE ($1::timestamptz IS NULL OR i.created_at >= $1)
		   AND ($2::timestamptz IS NULL OR i.created_at < $2)
		   AND ($3 = ''
		        OR i.customer_name ILIKE '%' || $3 || '%'
		        OR i.customer_phone ILIKE '%' || $3 || '%'
		        OR i.id::text = $3)`,
		ToTimestamptz(f.From), ToTimestamptz(f.To), f.Query).Scan(&total)
	return total, err
}

// GetInvoice fetches one invoice header by id.
func (s *Store) GetInvoice(ctx context.Context, id pgtype.UUID) (InvoiceRow, error) {
	return scanInvoiceRow(s.Pool.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
}

// ListInvoiceLines fetches the line snapshots of one invoice in order.
func (s *Store) ListInvoiceLines(ctx context.Context, invoiceID pgtype.UUID) ([]InvoiceLineRow, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT "+invoiceLineColumns+" FROM invoice_lines WHERE invoice_id = $1 ORDER BY position",
		invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InvoiceLineRow
	for rows.Next() {
		r, err := scanInvoiceLineRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ToTimestamptz wraps a time.Time as a nullable timestamptz; the zero time
// becomes NULL.
func ToTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
