package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
)

func hundred() decimal.Decimal { return decimal.NewFromInt(100) }

func newTestStore() (*SessionStore, *time.Time) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Hour)
	store.Now = func() time.Time { return now }
	return store, &now
}

func TestAddLineMergesRepeatedScan(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()

	input := LineInput{ItemID: "itm-1", Name: "Sugar 1kg", Barcode: "111", UnitPrice: "48.50", Qty: "1"}
	if _, err := store.AddLine(bill.ID, input); err != nil {
		t.Fatalf("first add: %v", err)
	}
	got, err := store.AddLine(bill.ID, input)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("lines = %d, want merged into 1", len(got.Lines))
	}
	if got.Lines[0].Qty != 2 {
		t.Fatalf("qty = %d, want 2", got.Lines[0].Qty)
	}
}

func TestAddLineDifferentPriceStaysSeparate(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()

	if _, err := store.AddLine(bill.ID, LineInput{ItemID: "itm-1", Name: "Sugar 1kg", UnitPrice: "48.50"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := store.AddLine(bill.ID, LineInput{ItemID: "itm-1", Name: "Sugar 1kg", UnitPrice: "45.00"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("lines = %d, want 2 when prices differ", len(got.Lines))
	}
}

func TestAddLineSanitisesInput(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()

	got, err := store.AddLine(bill.ID, LineInput{
		Name:            "  Tea Dust ",
		UnitPrice:       "oops",
		Qty:             "-3",
		DiscountPercent: "250",
		TaxPercent:      "abc",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	line := got.Lines[0]
	if line.Name != "Tea Dust" {
		t.Fatalf("name = %q", line.Name)
	}
	if !line.UnitPrice.IsZero() {
		t.Fatalf("unit price = %s, want 0 for malformed input", line.UnitPrice)
	}
	if line.Qty != 1 {
		t.Fatalf("qty = %d, want floor of 1", line.Qty)
	}
	if !line.DiscountPercent.Equal(hundred()) {
		t.Fatalf("discount = %s, want clamped to 100", line.DiscountPercent)
	}
	if !line.TaxPercent.IsZero() {
		t.Fatalf("tax = %s, want 0", line.TaxPercent)
	}
}

func TestUpdateLineZeroQtyRemoves(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()
	withLine, err := store.AddLine(bill.ID, LineInput{Name: "Sugar 1kg", UnitPrice: "48.50", Qty: "2"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := store.UpdateLine(bill.ID, withLine.Lines[0].ID, LineInput{Qty: "0"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Fatalf("lines = %d, want line removed at qty 0", len(got.Lines))
	}
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()
	if _, err := store.AddLine(bill.ID, LineInput{Name: "Sugar 1kg", UnitPrice: "48.50"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	snapshot, err := store.Get(bill.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	snapshot.Lines[0].Name = "mutated"

	fresh, err := store.Get(bill.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Lines[0].Name != "Sugar 1kg" {
		t.Fatalf("session leaked snapshot mutation: %q", fresh.Lines[0].Name)
	}
}

func TestSetCustomerRejectsMalformedID(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()

	_, err := store.SetCustomer(bill.ID, "loyal-cust-01", "Ravi Kumar", "+919000000001")
	var app *common.AppError
	if !errors.As(err, &app) || app.Code != "VALIDATION_ERROR" {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}

	got, err := store.SetCustomer(bill.ID, "  "+uuid.NewString()+" ", "Ravi Kumar", "+919000000001")
	if err != nil {
		t.Fatalf("set customer: %v", err)
	}
	if got.CustomerID == "" || got.CustomerName != "Ravi Kumar" {
		t.Fatalf("bill customer = %+v", got)
	}
}

func TestSetCustomerWalkInKeepsEmptyID(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()

	got, err := store.SetCustomer(bill.ID, "", "Walk In", "")
	if err != nil {
		t.Fatalf("set customer: %v", err)
	}
	if got.CustomerID != "" {
		t.Fatalf("customer id = %q, want empty", got.CustomerID)
	}
}

func TestExpiredBillIsGone(t *testing.T) {
	store, now := newTestStore()
	bill := store.Create()

	*now = now.Add(2 * time.Hour)
	if _, err := store.Get(bill.ID); err == nil {
		t.Fatal("expected expired bill to be gone")
	}
}

func TestViewTotalsMatchPricing(t *testing.T) {
	store, _ := newTestStore()
	bill := store.Create()
	if _, err := store.AddLine(bill.ID, LineInput{Name: "Sugar 1kg", UnitPrice: "100", Qty: "2", TaxPercent: "5"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := store.SetDiscount(bill.ID, "10")
	if err != nil {
		t.Fatalf("discount: %v", err)
	}

	view := NewView(got)
	if view.Totals.Subtotal.StringFixed(2) != "200.00" {
		t.Fatalf("subtotal = %s", view.Totals.Subtotal)
	}
	if view.Totals.Discount.StringFixed(2) != "20.00" {
		t.Fatalf("discount = %s", view.Totals.Discount)
	}
	if view.Totals.Tax.StringFixed(2) != "10.00" {
		t.Fatalf("tax = %s", view.Totals.Tax)
	}
	if view.Totals.Total.StringFixed(2) != "190.00" {
		t.Fatalf("total = %s", view.Totals.Total)
	}
}
