package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/billing"
	"github.com/rajik786786-oss/kgf-billing/internal/money"
	"github.com/rajik786786-oss/kgf-billing/internal/pricing"
)

// Builder turns an active bill into a frozen invoice. Clock and NewID are
// injectable so tests can pin ids and timestamps. GSTDisabled mirrors the
// register's tax toggle: when set, line tax rates are zeroed at snapshot
// time so the invoice freezes tax free.
type Builder struct {
	Clock       func() time.Time
	NewID       func() string
	Currency    string
	GSTDisabled bool
}

// NewBuilder constructs a Builder with real time and random ids.
func NewBuilder(currency string) *Builder {
	if currency == "" {
		currency = "INR"
	}
	return &Builder{
		Clock:    time.Now,
		NewID:    uuid.NewString,
		Currency: currency,
	}
}

// Build snapshots the bill into an invoice. Lines with a non-positive
// quantity are dropped, matching the pricing engine. The result shares no
// memory with the input, so later edits to the bill leave it untouched.
func (b *Builder) Build(bill billing.Bill) Invoice {
	discount := money.ClampPercent(bill.DiscountPercent)
	lines := make([]Line, 0, len(bill.Lines))
	priced := make([]pricing.Line, 0, len(bill.Lines))
	position := 0
	for _, src := range bill.Lines {
		if src.Qty <= 0 {
			continue
		}
		position++
		tax := src.TaxPercent
		if b.GSTDisabled {
			tax = decimal.Zero
		}
		line := pricing.Line{
			UnitPrice:       src.UnitPrice,
			Qty:             src.Qty,
			DiscountPercent: src.DiscountPercent,
			TaxPercent:      tax,
		}
		priced = append(priced, line)
		lines = append(lines, Line{
			ID:              b.newID(),
			Position:        position,
			Name:            src.Name,
			Barcode:         src.Barcode,
			UnitPrice:       src.UnitPrice.Copy(),
			Qty:             src.Qty,
			DiscountPercent: src.DiscountPercent.Copy(),
			TaxPercent:      tax.Copy(),
			LineTotal:       pricing.LineTotal(line),
		})
	}
	return Invoice{
		ID:              b.newID(),
		CustomerID:      bill.CustomerID,
		CustomerName:    bill.CustomerName,
		CustomerPhone:   bill.CustomerPhone,
		DiscountPercent: discount,
		Lines:           lines,
		Totals:          pricing.Compute(priced, discount),
		Currency:        b.Currency,
		CreatedAt:       b.now(),
	}
}

func (b *Builder) now() time.Time {
	if b.Clock != nil {
		return b.Clock()
	}
	return time.Now()
}

func (b *Builder) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}
