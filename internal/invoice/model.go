// Package invoice freezes finished sales into immutable records and serves
// the sale history.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/pricing"
)

// Line is one immutable line snapshot on a finalized invoice.
type Line struct {
	ID              string          `json:"id"`
	Position        int             `json:"position"`
	Name            string          `json:"name"`
	Barcode         string          `json:"barcode,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Qty             int             `json:"qty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
}

// Invoice is a finalized sale. Once built it never changes; edits to the
// source bill or to inventory records cannot reach back into it.
type Invoice struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId,omitempty"`
	CustomerName    string          `json:"customerName,omitempty"`
	CustomerPhone   string          `json:"customerPhone,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Lines           []Line          `json:"lines"`
	Totals          pricing.Totals  `json:"totals"`
	Currency        string          `json:"currency"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Summary is the list row shown in history views.
type Summary struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"createdAt"`
}
