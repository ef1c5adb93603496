package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/money"
)

// Line describes a bill row used for totals calculation.
type Line struct {
	UnitPrice       decimal.Decimal
	Qty             int
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

// Totals aggregates computed invoice components. Subtotal is the
// post-line-discount, pre-tax sum; Discount is the bill-level discount
// amount taken from that subtotal; Tax is the sum of per-line tax.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discountAmount"`
	Tax      decimal.Decimal `json:"taxAmount"`
	Total    decimal.Decimal `json:"total"`
}

// LineTotal computes the rounded total for a single line: line discount
// first, then line tax on the discounted base.
func LineTotal(l Line) decimal.Decimal {
	base := afterDiscount(l)
	return money.RoundCurrency(base.Add(lineTax(l, base)))
}

// Compute calculates invoice totals for the provided lines and bill-level
// discount percent. It is a pure function: identical input yields identical
// output, and an empty line list yields all zeros.
func Compute(lines []Line, invoiceDiscountPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		base := afterDiscount(l)
		subtotal = subtotal.Add(base)
		tax = tax.Add(lineTax(l, base))
	}
	discount := subtotal.Mul(money.Fraction(money.ClampPercent(invoiceDiscountPercent)))
	total := money.RoundCurrency(subtotal.Sub(discount).Add(tax))
	return Totals{
		Subtotal: money.RoundCurrency(subtotal),
		Discount: money.RoundCurrency(discount),
		Tax:      money.RoundCurrency(tax),
		Total:    total,
	}
}

func afterDiscount(l Line) decimal.Decimal {
	before := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
	keep := decimal.NewFromInt(1).Sub(money.Fraction(money.ClampPercent(l.DiscountPercent)))
	return before.Mul(keep)
}

func lineTax(l Line, discountedBase decimal.Decimal) decimal.Decimal {
	return discountedBase.Mul(money.Fraction(money.ClampPercent(l.TaxPercent)))
}
