// Package checkout finalizes active bills: it prices the sale, reconciles
// stock, persists the invoice and fans out follow-up work.
package checkout

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rajik786786-oss/kgf-billing/internal/billing"
	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/events"
	"github.com/rajik786786-oss/kgf-billing/internal/inventory"
	"github.com/rajik786786-oss/kgf-billing/internal/invoice"
	"github.com/rajik786786-oss/kgf-billing/internal/obs"
)

type billStore interface {
	Get(id string) (billing.Bill, error)
	Delete(id string)
}

type stockBook interface {
	Snapshot(ctx context.Context) ([]inventory.Record, error)
	InvalidateSnapshot(ctx context.Context)
	EmitLowStock(ctx context.Context)
}

type saleStore interface {
	FinalizeSale(ctx context.Context, inv db.InvoiceRow, lines []db.InvoiceLineRow, decrements []db.StockDecrement) error
}

type emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (events.Event, error)
}

type loyaltyLedger interface {
	AddLoyaltyPoints(ctx context.Context, id string, points int) error
}

// Result is returned to the cashier after a sale completes. Reconciliation
// findings ride along so the register can surface them without failing
// the sale.
type Result struct {
	Invoice       invoice.Invoice             `json:"invoice"`
	Unmatched     []inventory.Unmatched       `json:"unmatched,omitempty"`
	StockWarnings []inventory.OversellWarning `json:"stockWarnings,omitempty"`
}

// Service drives the checkout flow.
type Service struct {
	bills   billStore
	stock   stockBook
	sales   saleStore
	builder *invoice.Builder
	bus     emitter
	loyalty loyaltyLedger
	log     zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Bills   billStore
	Stock   stockBook
	Sales   saleStore
	Builder *invoice.Builder
	Bus     emitter
	Loyalty loyaltyLedger
	Logger  zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Bills == nil || cfg.Stock == nil || cfg.Sales == nil {
		return nil, errors.New("checkout: bills, stock and sales stores are required")
	}
	builder := cfg.Builder
	if builder == nil {
		builder = invoice.NewBuilder("")
	}
	return &Service{
		bills:   cfg.Bills,
		stock:   cfg.Stock,
		sales:   cfg.Sales,
		builder: builder,
		bus:     cfg.Bus,
		loyalty: cfg.Loyalty,
		log:     cfg.Logger,
	}, nil
}

// Checkout finalizes one bill. The invoice insert and all stock decrements
// commit in a single transaction; on any storage failure the bill survives
// so the cashier can retry.
func (s *Service) Checkout(ctx context.Context, billID string) (Result, error) {
	bill, err := s.bills.Get(billID)
	if err != nil {
		return Result{}, err
	}
	if len(bill.Lines) == 0 {
		return Result{}, common.Validation("bill has no lines")
	}

	inv := s.builder.Build(bill)
	if len(inv.Lines) == 0 {
		return Result{}, common.Validation("bill has no sellable lines")
	}

	records, err := s.stock.Snapshot(ctx)
	if err != nil {
		s.countCheckout("error")
		return Result{}, err
	}
	recon := inventory.Reconcile(records, saleLines(inv))
	s.countReconcile(recon)

	decrements, err := toDecrements(recon.Decrements)
	if err != nil {
		s.countCheckout("error")
		return Result{}, err
	}
	header, lineRows, err := invoice.RowsFromInvoice(inv)
	if err != nil {
		s.countCheckout("error")
		return Result{}, err
	}
	if err := s.sales.FinalizeSale(ctx, header, lineRows, decrements); err != nil {
		s.countCheckout("error")
		return Result{}, err
	}
	s.countCheckout("ok")

	s.bills.Delete(billID)
	s.stock.InvalidateSnapshot(ctx)
	s.stock.EmitLowStock(ctx)
	s.awardLoyalty(ctx, inv)
	s.emitFinalized(ctx, inv, recon)

	return Result{
		Invoice:       inv,
		Unmatched:     recon.Unmatched,
		StockWarnings: recon.Warnings,
	}, nil
}

func saleLines(inv invoice.Invoice) []inventory.SaleLine {
	out := make([]inventory.SaleLine, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		out = append(out, inventory.SaleLine{
			LineID:  l.ID,
			Name:    l.Name,
			Barcode: l.Barcode,
			Qty:     l.Qty,
		})
	}
	return out
}

func toDecrements(decrements []inventory.Decrement) ([]db.StockDecrement, error) {
	out := make([]db.StockDecrement, 0, len(decrements))
	for _, d := range decrements {
		id, err := db.ParsePGUUID(d.RecordID)
		if err != nil {
			return nil, err
		}
		out = append(out, db.StockDecrement{RecordID: id, Qty: int32(d.Qty)})
	}
	return out, nil
}

func (s *Service) awardLoyalty(ctx context.Context, inv invoice.Invoice) {
	if s.loyalty == nil || inv.CustomerID == "" {
		return
	}
	points := int(inv.Totals.Total.IntPart() / 100)
	if points <= 0 {
		return
	}
	if err := s.loyalty.AddLoyaltyPoints(ctx, inv.CustomerID, points); err != nil {
		s.log.Warn().Err(err).Str("customer_id", inv.CustomerID).Msg("award loyalty points")
	}
}

func (s *Service) emitFinalized(ctx context.Context, inv invoice.Invoice, recon inventory.Result) {
	if s.bus == nil {
		return
	}
	payload := map[string]any{
		"invoiceId":     inv.ID,
		"customerName":  inv.CustomerName,
		"customerPhone": inv.CustomerPhone,
		"total":         inv.Totals.Total.StringFixed(2),
		"currency":      inv.Currency,
		"lineCount":     len(inv.Lines),
		"unmatched":     len(recon.Unmatched),
	}
	if _, err := s.bus.Emit(ctx, events.TopicInvoiceFinalized, inv.ID, payload); err != nil {
		s.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("emit invoice finalized")
	}
}

func (s *Service) countCheckout(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) countReconcile(recon inventory.Result) {
	if obs.ReconcileUnmatchedTotal != nil {
		obs.ReconcileUnmatchedTotal.Add(float64(len(recon.Unmatched)))
	}
	if obs.ReconcileOversellTotal != nil {
		obs.ReconcileOversellTotal.Add(float64(len(recon.Warnings)))
	}
}
