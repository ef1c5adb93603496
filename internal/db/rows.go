package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// InventoryRow is a persisted inventory record.
type InventoryRow struct {
	ID         pgtype.UUID
	Name       string
	Barcode    pgtype.Text
	UnitPrice  decimal.Decimal
	TaxPercent decimal.Decimal
	StockQty   int32
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

// CustomerRow is a persisted customer record.
type CustomerRow struct {
	ID            pgtype.UUID
	Name          string
	Phone         string
	LoyaltyPoints int32
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

// VendorRow is a persisted supplier contact.
type VendorRow struct {
	ID        pgtype.UUID
	Name      string
	Contact   string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// InvoiceRow is a persisted invoice header.
type InvoiceRow struct {
	ID              pgtype.UUID
	CustomerID      pgtype.UUID
	CustomerName    string
	CustomerPhone   string
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	Currency        string
	CreatedAt       pgtype.Timestamptz
}

// InvoiceLineRow is a persisted invoice line snapshot.
type InvoiceLineRow struct {
	ID              pgtype.UUID
	InvoiceID       pgtype.UUID
	Position        int32
	Name            string
	Barcode         pgtype.Text
	UnitPrice       decimal.Decimal
	Qty             int32
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	LineTotal       decimal.Decimal
}

// DomainEventRow is a persisted domain event.
type DomainEventRow struct {
	ID          int64
	Topic       string
	AggregateID string
	Payload     []byte
	OccurredAt  pgtype.Timestamptz
}

// StockDecrement describes one accumulated decrement against an inventory record.
type StockDecrement struct {
	RecordID pgtype.UUID
	Qty      int32
}

// NumericFromDecimal converts a decimal into pgtype.Numeric for binding.
func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// DecimalFromNumeric converts a scanned pgtype.Numeric into a decimal.
func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// TimeFromPG converts a pgtype timestamp into a time.Time, zero when null.
func TimeFromPG(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}

// TextOrEmpty unwraps a nullable text column.
func TextOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// ToText wraps a string into a nullable text value; empty becomes NULL.
func ToText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
