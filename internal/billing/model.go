// Package billing holds the active bill a cashier is building before
// checkout. Bills live in memory only; durable history starts at the
// moment a sale is finalized.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/pricing"
)

// Line is one item on an active bill.
type Line struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"itemId,omitempty"`
	Name            string          `json:"name"`
	Barcode         string          `json:"barcode,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Qty             int             `json:"qty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
}

// Bill is one cashier session in progress.
type Bill struct {
	ID              string          `json:"id"`
	Lines           []Line          `json:"lines"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	CustomerID      string          `json:"customerId,omitempty"`
	CustomerName    string          `json:"customerName,omitempty"`
	CustomerPhone   string          `json:"customerPhone,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// View is a bill plus its computed totals, returned to the cashier after
// every mutation so the screen always shows live numbers.
type View struct {
	Bill
	Totals pricing.Totals `json:"totals"`
}

// NewView computes totals for a bill snapshot.
func NewView(b Bill) View {
	return View{Bill: b, Totals: Totals(b)}
}

// Totals prices a bill with the shared engine.
func Totals(b Bill) pricing.Totals {
	return pricing.Compute(PricingLines(b.Lines), b.DiscountPercent)
}

// PricingLines converts bill lines into pricing engine input.
func PricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, pricing.Line{
			UnitPrice:       l.UnitPrice,
			Qty:             l.Qty,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		})
	}
	return out
}

func cloneBill(b Bill) Bill {
	out := b
	out.Lines = append([]Line(nil), b.Lines...)
	return out
}
