package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/pricing"
)

// Filter narrows history queries. Query matches customer name, phone or
// the invoice id.
type Filter struct {
	From  time.Time
	To    time.Time
	Query string
}

// Store reads finalized invoices from PostgreSQL.
type Store struct {
	db *db.Store
}

// NewStore constructs a Store.
func NewStore(store *db.Store) *Store {
	return &Store{db: store}
}

// List returns invoice summaries newest first plus the total matching count.
func (s *Store) List(ctx context.Context, f Filter, page, perPage int) ([]Summary, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	filter := db.InvoiceFilter{
		From:   f.From,
		To:     f.To,
		Query:  f.Query,
		Limit:  int32(perPage),
		Offset: int32((page - 1) * perPage),
	}
	rows, err := s.db.ListInvoices(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.db.CountInvoices(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, Summary{
			ID:            db.UUIDString(r.ID),
			CustomerName:  r.CustomerName,
			CustomerPhone: r.CustomerPhone,
			Total:         r.Total,
			Currency:      r.Currency,
			CreatedAt:     db.TimeFromPG(r.CreatedAt),
		})
	}
	return out, total, nil
}

// Get loads one invoice with its lines.
func (s *Store) Get(ctx context.Context, id string) (Invoice, error) {
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return Invoice{}, common.Validation("invalid invoice id")
	}
	header, err := s.db.GetInvoice(ctx, pgID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Invoice{}, common.NotFound("invoice not found")
		}
		return Invoice{}, err
	}
	lineRows, err := s.db.ListInvoiceLines(ctx, pgID)
	if err != nil {
		return Invoice{}, err
	}
	return fromRows(header, lineRows), nil
}

// RowsFromInvoice maps an invoice onto its persistence rows. Used by the
// checkout service when finalizing a sale.
func RowsFromInvoice(inv Invoice) (db.InvoiceRow, []db.InvoiceLineRow, error) {
	id, err := db.ParsePGUUID(inv.ID)
	if err != nil {
		return db.InvoiceRow{}, nil, err
	}
	header := db.InvoiceRow{
		ID:              id,
		CustomerName:    inv.CustomerName,
		CustomerPhone:   inv.CustomerPhone,
		DiscountPercent: inv.DiscountPercent,
		Subtotal:        inv.Totals.Subtotal,
		DiscountAmount:  inv.Totals.Discount,
		TaxAmount:       inv.Totals.Tax,
		Total:           inv.Totals.Total,
		Currency:        inv.Currency,
		CreatedAt:       db.ToTimestamptz(inv.CreatedAt),
	}
	if inv.CustomerID != "" {
		customerID, err := db.ParsePGUUID(inv.CustomerID)
		if err != nil {
			return db.InvoiceRow{}, nil, err
		}
		header.CustomerID = customerID
	}
	lines := make([]db.InvoiceLineRow, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lineID, err := db.ParsePGUUID(l.ID)
		if err != nil {
			return db.InvoiceRow{}, nil, err
		}
		lines = append(lines, db.InvoiceLineRow{
			ID:              lineID,
			InvoiceID:       id,
			Position:        int32(l.Position),
			Name:            l.Name,
			Barcode:         db.ToText(l.Barcode),
			UnitPrice:       l.UnitPrice,
			Qty:             int32(l.Qty),
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
			LineTotal:       l.LineTotal,
		})
	}
	return header, lines, nil
}

func fromRows(header db.InvoiceRow, lineRows []db.InvoiceLineRow) Invoice {
	inv := Invoice{
		ID:              db.UUIDString(header.ID),
		CustomerID:      db.UUIDString(header.CustomerID),
		CustomerName:    header.CustomerName,
		CustomerPhone:   header.CustomerPhone,
		DiscountPercent: header.DiscountPercent,
		Totals: pricing.Totals{
			Subtotal: header.Subtotal,
			Discount: header.DiscountAmount,
			Tax:      header.TaxAmount,
			Total:    header.Total,
		},
		Currency:  header.Currency,
		CreatedAt: db.TimeFromPG(header.CreatedAt),
	}
	for _, l := range lineRows {
		inv.Lines = append(inv.Lines, Line{
			ID:              db.UUIDString(l.ID),
			Position:        int(l.Position),
			Name:            l.Name,
			Barcode:         db.TextOrEmpty(l.Barcode),
			UnitPrice:       l.UnitPrice,
			Qty:             int(l.Qty),
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
			LineTotal:       l.LineTotal,
		})
	}
	return inv
}
