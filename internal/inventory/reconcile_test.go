package inventory

import "testing"

func snapshot() []Record {
	return []Record{
		{ID: "r1", Name: "Sugar 1kg", Barcode: "8901234", StockQty: 10},
		{ID: "r2", Name: "Tea Dust", Barcode: "", StockQty: 3},
		{ID: "r3", Name: "Rice 5kg", Barcode: "8905678", StockQty: 0},
	}
}

func TestReconcileBarcodeBeatsName(t *testing.T) {
	records := []Record{
		{ID: "a", Name: "Sugar 1kg", Barcode: "111", StockQty: 5},
		{ID: "b", Name: "Other", Barcode: "222", StockQty: 5},
	}
	lines := []SaleLine{{LineID: "l1", Name: "Sugar 1kg", Barcode: "222", Qty: 1}}

	res := Reconcile(records, lines)
	if len(res.Decrements) != 1 {
		t.Fatalf("decrements = %d, want 1", len(res.Decrements))
	}
	if res.Decrements[0].RecordID != "b" {
		t.Fatalf("matched %q, want barcode owner b", res.Decrements[0].RecordID)
	}
}

func TestReconcileNameFallbackCaseInsensitive(t *testing.T) {
	res := Reconcile(snapshot(), []SaleLine{
		{LineID: "l1", Name: "  tea dust ", Qty: 2},
	})
	if len(res.Decrements) != 1 || res.Decrements[0].RecordID != "r2" {
		t.Fatalf("decrements = %+v, want single match on r2", res.Decrements)
	}
	if res.Decrements[0].Qty != 2 {
		t.Fatalf("qty = %d, want 2", res.Decrements[0].Qty)
	}
}

func TestReconcileAccumulatesRepeatedLines(t *testing.T) {
	res := Reconcile(snapshot(), []SaleLine{
		{LineID: "l1", Barcode: "8901234", Name: "Sugar 1kg", Qty: 2},
		{LineID: "l2", Name: "sugar 1kg", Qty: 3},
	})
	if len(res.Decrements) != 1 {
		t.Fatalf("decrements = %d, want 1 accumulated", len(res.Decrements))
	}
	if res.Decrements[0].Qty != 5 {
		t.Fatalf("qty = %d, want 5", res.Decrements[0].Qty)
	}
}

func TestReconcileUnmatchedReportedNotRejected(t *testing.T) {
	res := Reconcile(snapshot(), []SaleLine{
		{LineID: "l1", Name: "Loose Jaggery", Qty: 1},
		{LineID: "l2", Barcode: "8901234", Name: "Sugar 1kg", Qty: 1},
	})
	if len(res.Unmatched) != 1 {
		t.Fatalf("unmatched = %d, want 1", len(res.Unmatched))
	}
	if res.Unmatched[0].LineID != "l1" || res.Unmatched[0].Reason != "no_match" {
		t.Fatalf("unmatched = %+v", res.Unmatched[0])
	}
	if len(res.Decrements) != 1 {
		t.Fatalf("matched line should still decrement, got %+v", res.Decrements)
	}
}

func TestReconcileOversellWarnsAndKeepsDecrement(t *testing.T) {
	res := Reconcile(snapshot(), []SaleLine{
		{LineID: "l1", Barcode: "8905678", Name: "Rice 5kg", Qty: 2},
	})
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(res.Warnings))
	}
	w := res.Warnings[0]
	if w.RecordID != "r3" || w.Requested != 2 || w.Available != 0 {
		t.Fatalf("warning = %+v", w)
	}
	if len(res.Decrements) != 1 || res.Decrements[0].Qty != 2 {
		t.Fatalf("decrements = %+v, want requested qty preserved", res.Decrements)
	}
}

func TestReconcileIgnoresNonPositiveQty(t *testing.T) {
	res := Reconcile(snapshot(), []SaleLine{
		{LineID: "l1", Barcode: "8901234", Name: "Sugar 1kg", Qty: 0},
		{LineID: "l2", Barcode: "8901234", Name: "Sugar 1kg", Qty: -4},
	})
	if len(res.Decrements) != 0 || len(res.Unmatched) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestReconcileEmptyInputs(t *testing.T) {
	if res := Reconcile(nil, nil); len(res.Decrements) != 0 {
		t.Fatalf("nil inputs should yield empty result, got %+v", res)
	}
	res := Reconcile(nil, []SaleLine{{LineID: "l1", Name: "Anything", Qty: 1}})
	if len(res.Unmatched) != 1 {
		t.Fatalf("line against empty snapshot should be unmatched, got %+v", res)
	}
}
