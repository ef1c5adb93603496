package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/billing"
	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/events"
	"github.com/rajik786786-oss/kgf-billing/internal/inventory"
	"github.com/rajik786786-oss/kgf-billing/internal/invoice"
)

type fakeBills struct {
	bills   map[string]billing.Bill
	deleted []string
}

func (f *fakeBills) Get(id string) (billing.Bill, error) {
	b, ok := f.bills[id]
	if !ok {
		return billing.Bill{}, common.NotFound("bill not found")
	}
	return b, nil
}

func (f *fakeBills) Delete(id string) {
	f.deleted = append(f.deleted, id)
}

type fakeStock struct {
	records     []inventory.Record
	invalidated int
	lowStock    int
}

func (f *fakeStock) Snapshot(context.Context) ([]inventory.Record, error) {
	return f.records, nil
}

func (f *fakeStock) InvalidateSnapshot(context.Context) { f.invalidated++ }
func (f *fakeStock) EmitLowStock(context.Context)       { f.lowStock++ }

type fakeSales struct {
	header     db.InvoiceRow
	lines      []db.InvoiceLineRow
	decrements []db.StockDecrement
	err        error
	calls      int
}

func (f *fakeSales) FinalizeSale(_ context.Context, inv db.InvoiceRow, lines []db.InvoiceLineRow, decrements []db.StockDecrement) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.header = inv
	f.lines = lines
	f.decrements = decrements
	return nil
}

type fakeBus struct {
	topics []string
}

func (f *fakeBus) Emit(_ context.Context, topic, aggregateID string, payload any) (events.Event, error) {
	f.topics = append(f.topics, topic)
	return events.Event{Topic: topic, AggregateID: aggregateID}, nil
}

func testBuilder() *invoice.Builder {
	seq := 0
	return &invoice.Builder{
		Clock: func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("id-%d", seq))).String()
		},
		Currency: "INR",
	}
}

func testBill(itemBarcode string) billing.Bill {
	return billing.Bill{
		ID: "bill-1",
		Lines: []billing.Line{{
			ID:         "l1",
			Name:       "Sugar 1kg",
			Barcode:    itemBarcode,
			UnitPrice:  decimal.NewFromInt(100),
			Qty:        2,
			TaxPercent: decimal.NewFromInt(5),
		}},
	}
}

func newService(t *testing.T, bills *fakeBills, stock *fakeStock, sales *fakeSales, bus *fakeBus) *Service {
	t.Helper()
	cfg := ServiceConfig{
		Bills:   bills,
		Stock:   stock,
		Sales:   sales,
		Builder: testBuilder(),
		Logger:  zerolog.Nop(),
	}
	if bus != nil {
		cfg.Bus = bus
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCheckoutHappyPath(t *testing.T) {
	recordID := uuid.NewString()
	bills := &fakeBills{bills: map[string]billing.Bill{"bill-1": testBill("111")}}
	stock := &fakeStock{records: []inventory.Record{{ID: recordID, Name: "Sugar 1kg", Barcode: "111", StockQty: 10}}}
	sales := &fakeSales{}
	bus := &fakeBus{}

	result, err := newService(t, bills, stock, sales, bus).Checkout(context.Background(), "bill-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Invoice.Totals.Total.StringFixed(2) != "210.00" {
		t.Fatalf("total = %s", result.Invoice.Totals.Total)
	}
	if len(sales.decrements) != 1 || sales.decrements[0].Qty != 2 {
		t.Fatalf("decrements = %+v", sales.decrements)
	}
	if db.UUIDString(sales.decrements[0].RecordID) != recordID {
		t.Fatalf("decrement record = %s, want %s", db.UUIDString(sales.decrements[0].RecordID), recordID)
	}
	if len(bills.deleted) != 1 || bills.deleted[0] != "bill-1" {
		t.Fatalf("bill not discarded: %v", bills.deleted)
	}
	if stock.invalidated != 1 || stock.lowStock != 1 {
		t.Fatalf("stock hooks = %d/%d, want 1/1", stock.invalidated, stock.lowStock)
	}
	if len(bus.topics) != 1 || bus.topics[0] != events.TopicInvoiceFinalized {
		t.Fatalf("topics = %v", bus.topics)
	}
}

func TestCheckoutNameMatchWithBillDiscount(t *testing.T) {
	recordID := uuid.NewString()
	bills := &fakeBills{bills: map[string]billing.Bill{"bill-1": {
		ID: "bill-1",
		Lines: []billing.Line{{
			ID:        "l1",
			Name:      "Shirt",
			UnitPrice: decimal.NewFromInt(500),
			Qty:       2,
		}},
		DiscountPercent: decimal.NewFromInt(10),
	}}}
	stock := &fakeStock{records: []inventory.Record{{ID: recordID, Name: "shirt", StockQty: 10}}}
	sales := &fakeSales{}

	result, err := newService(t, bills, stock, sales, nil).Checkout(context.Background(), "bill-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	totals := result.Invoice.Totals
	if totals.Subtotal.StringFixed(2) != "1000.00" {
		t.Fatalf("subtotal = %s", totals.Subtotal)
	}
	if totals.Discount.StringFixed(2) != "100.00" {
		t.Fatalf("discount = %s", totals.Discount)
	}
	if totals.Total.StringFixed(2) != "900.00" {
		t.Fatalf("total = %s", totals.Total)
	}
	if len(sales.decrements) != 1 || sales.decrements[0].Qty != 2 {
		t.Fatalf("decrements = %+v", sales.decrements)
	}
	if db.UUIDString(sales.decrements[0].RecordID) != recordID {
		t.Fatalf("decrement record = %s, want %s", db.UUIDString(sales.decrements[0].RecordID), recordID)
	}
}

func TestCheckoutUnmatchedLineStillSells(t *testing.T) {
	bills := &fakeBills{bills: map[string]billing.Bill{"bill-1": testBill("")}}
	stock := &fakeStock{}
	sales := &fakeSales{}

	result, err := newService(t, bills, stock, sales, nil).Checkout(context.Background(), "bill-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0].Reason != "no_match" {
		t.Fatalf("unmatched = %+v", result.Unmatched)
	}
	if sales.calls != 1 {
		t.Fatalf("sale not persisted")
	}
	if len(sales.decrements) != 0 {
		t.Fatalf("decrements = %+v, want none", sales.decrements)
	}
}

func TestCheckoutOversellWarnsButCompletes(t *testing.T) {
	recordID := uuid.NewString()
	bills := &fakeBills{bills: map[string]billing.Bill{"bill-1": testBill("111")}}
	stock := &fakeStock{records: []inventory.Record{{ID: recordID, Name: "Sugar 1kg", Barcode: "111", StockQty: 1}}}
	sales := &fakeSales{}

	result, err := newService(t, bills, stock, sales, nil).Checkout(context.Background(), "bill-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(result.StockWarnings) != 1 {
		t.Fatalf("warnings = %+v", result.StockWarnings)
	}
	w := result.StockWarnings[0]
	if w.Requested != 2 || w.Available != 1 {
		t.Fatalf("warning = %+v", w)
	}
}

func TestCheckoutStorageFailureKeepsBill(t *testing.T) {
	bills := &fakeBills{bills: map[string]billing.Bill{"bill-1": testBill("111")}}
	stock := &fakeStock{}
	sales := &fakeSales{err: errors.New("db down")}

	_, err := newService(t, bills, stock, sales, nil).Checkout(context.Background(), "bill-1")
	if err == nil {
		t.Fatal("expected checkout failure")
	}
	if len(bills.deleted) != 0 {
		t.Fatalf("bill deleted despite failure: %v", bills.deleted)
	}
}

func TestCheckoutEmptyBillRejected(t *testing.T) {
	bills := &fakeBills{bills: map[string]billing.Bill{"bill-1": {ID: "bill-1"}}}

	_, err := newService(t, bills, &fakeStock{}, &fakeSales{}, nil).Checkout(context.Background(), "bill-1")
	var app *common.AppError
	if !errors.As(err, &app) || app.Code != "VALIDATION_ERROR" {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}
