package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/inventory"
)

type fakeLookup struct {
	items map[string]inventory.Item
	err   error
}

func (f *fakeLookup) GetByBarcode(_ context.Context, barcode string) (inventory.Item, error) {
	if f.err != nil {
		return inventory.Item{}, f.err
	}
	item, ok := f.items[barcode]
	if !ok {
		return inventory.Item{}, common.NotFound("item not found")
	}
	return item, nil
}

func newScanService(t *testing.T, lookup itemLookup) *Service {
	t.Helper()
	svc, err := NewService(lookup)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestResolveHit(t *testing.T) {
	lookup := &fakeLookup{items: map[string]inventory.Item{
		"8901000000011": {ID: "item-1", Name: "Sugar 1kg", Barcode: "8901000000011"},
	}}

	res, err := newScanService(t, lookup).Resolve(context.Background(), "8901000000011")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Found || res.Item == nil || res.Item.Name != "Sugar 1kg" {
		t.Fatalf("resolution = %+v", res)
	}
}

func TestResolveMissIsNotAnError(t *testing.T) {
	res, err := newScanService(t, &fakeLookup{}).Resolve(context.Background(), "0000")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Found || res.Item != nil {
		t.Fatalf("resolution = %+v, want miss", res)
	}
	if res.Code != "0000" {
		t.Fatalf("code = %q", res.Code)
	}
}

func TestResolveEmptyCodeRejected(t *testing.T) {
	_, err := newScanService(t, &fakeLookup{}).Resolve(context.Background(), "  ")
	var app *common.AppError
	if !errors.As(err, &app) || app.Code != "VALIDATION_ERROR" {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestResolvePropagatesLookupFailure(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("db down")}
	if _, err := newScanService(t, lookup).Resolve(context.Background(), "111"); err == nil {
		t.Fatal("expected lookup failure to propagate")
	}
}
