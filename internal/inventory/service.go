package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/events"
	"github.com/rajik786786-oss/kgf-billing/internal/money"
	"github.com/rajik786786-oss/kgf-billing/internal/obs"
)

// Item is the public representation of a stock record.
type Item struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Barcode    string          `json:"barcode,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TaxPercent decimal.Decimal `json:"taxPercent"`
	StockQty   int             `json:"stockQty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ItemInput carries fields for create and update operations.
type ItemInput struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Barcode    string `json:"barcode" validate:"omitempty,max=64"`
	UnitPrice  string `json:"unitPrice"`
	TaxPercent string `json:"taxPercent"`
	StockQty   int    `json:"stockQty" validate:"gte=0"`
}

type store interface {
	ListInventory(ctx context.Context, limit, offset int32) ([]db.InventoryRow, error)
	CountInventory(ctx context.Context) (int64, error)
	ListAllInventory(ctx context.Context) ([]db.InventoryRow, error)
	GetInventoryItem(ctx context.Context, id pgtype.UUID) (db.InventoryRow, error)
	GetInventoryByBarcode(ctx context.Context, barcode string) (db.InventoryRow, error)
	CreateInventoryItem(ctx context.Context, r db.InventoryRow) (db.InventoryRow, error)
	UpdateInventoryItem(ctx context.Context, r db.InventoryRow) (db.InventoryRow, error)
	DeleteInventoryItem(ctx context.Context, id pgtype.UUID) error
	LowStockItems(ctx context.Context, threshold int32) ([]db.InventoryRow, error)
}

type emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (events.Event, error)
}

// Service owns the stock book: CRUD, snapshots for reconciliation, and
// low stock detection.
type Service struct {
	store             store
	cache             *Cache
	bus               emitter
	log               zerolog.Logger
	lowStockThreshold int
	defaultTax        decimal.Decimal
}

// ServiceConfig groups Service dependencies. DefaultTaxPercent is applied
// to items created or updated without an explicit tax rate.
type ServiceConfig struct {
	Store             store
	Cache             *Cache
	Bus               emitter
	Logger            zerolog.Logger
	LowStockThreshold int
	DefaultTaxPercent string
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("inventory: store is required")
	}
	threshold := cfg.LowStockThreshold
	if threshold < 0 {
		threshold = 0
	}
	return &Service{
		store:             cfg.Store,
		cache:             cfg.Cache,
		bus:               cfg.Bus,
		log:               cfg.Logger,
		lowStockThreshold: threshold,
		defaultTax:        money.ClampPercent(money.ParsePercent(cfg.DefaultTaxPercent)),
	}, nil
}

// List returns one page of items plus the total count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Item, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	offset := (page - 1) * perPage
	rows, err := s.store.ListInventory(ctx, int32(perPage), int32(offset))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountInventory(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, itemFromRow(r))
	}
	return items, total, nil
}

// Snapshot returns the full stock book as reconciliation records, served
// from cache when fresh.
func (s *Service) Snapshot(ctx context.Context) ([]Record, error) {
	var cached []Record
	if ok, err := s.cache.GetJSON(ctx, snapshotKey, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.store.ListAllInventory(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, Record{
			ID:       db.UUIDString(r.ID),
			Name:     r.Name,
			Barcode:  db.TextOrEmpty(r.Barcode),
			StockQty: int(r.StockQty),
		})
	}
	if err := s.cache.SetJSON(ctx, snapshotKey, records); err != nil {
		s.log.Warn().Err(err).Msg("cache inventory snapshot")
	}
	return records, nil
}

// Get fetches one item by id.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return Item{}, common.Validation("invalid item id")
	}
	row, err := s.store.GetInventoryItem(ctx, pgID)
	if err != nil {
		return Item{}, translateStoreErr(err, "item")
	}
	return itemFromRow(row), nil
}

// GetByBarcode fetches one item by exact barcode.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Item, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Item{}, common.Validation("barcode is required")
	}
	row, err := s.store.GetInventoryByBarcode(ctx, barcode)
	if err != nil {
		return Item{}, translateStoreErr(err, "item")
	}
	return itemFromRow(row), nil
}

// Create inserts a new item. Duplicate barcodes are rejected.
func (s *Service) Create(ctx context.Context, input ItemInput) (Item, error) {
	row, err := s.rowFromInput(db.PGUUID(uuid.New()), input)
	if err != nil {
		return Item{}, err
	}
	created, err := s.store.CreateInventoryItem(ctx, row)
	if err != nil {
		return Item{}, translateStoreErr(err, "item")
	}
	s.invalidateSnapshot(ctx)
	return itemFromRow(created), nil
}

// Update replaces mutable fields of an existing item.
func (s *Service) Update(ctx context.Context, id string, input ItemInput) (Item, error) {
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return Item{}, common.Validation("invalid item id")
	}
	row, err := s.rowFromInput(pgID, input)
	if err != nil {
		return Item{}, err
	}
	updated, err := s.store.UpdateInventoryItem(ctx, row)
	if err != nil {
		return Item{}, translateStoreErr(err, "item")
	}
	s.invalidateSnapshot(ctx)
	return itemFromRow(updated), nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return common.Validation("invalid item id")
	}
	if err := s.store.DeleteInventoryItem(ctx, pgID); err != nil {
		return translateStoreErr(err, "item")
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// InvalidateSnapshot drops the cached stock snapshot. Called after any
// mutation that bypasses this service, such as sale finalization.
func (s *Service) InvalidateSnapshot(ctx context.Context) {
	s.invalidateSnapshot(ctx)
}

// LowStock lists items at or below the configured threshold.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	rows, err := s.store.LowStockItems(ctx, int32(s.lowStockThreshold))
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, itemFromRow(r))
	}
	return items, nil
}

// EmitLowStock checks current stock levels against the threshold and emits
// one low stock event per affected record. Failures only log; stock alerts
// never block the caller.
func (s *Service) EmitLowStock(ctx context.Context) {
	if s.bus == nil {
		return
	}
	rows, err := s.store.LowStockItems(ctx, int32(s.lowStockThreshold))
	if err != nil {
		s.log.Warn().Err(err).Msg("low stock scan")
		return
	}
	for _, r := range rows {
		if obs.LowStockTotal != nil {
			obs.LowStockTotal.Inc()
		}
		payload := map[string]any{
			"itemId":    db.UUIDString(r.ID),
			"name":      r.Name,
			"stockQty":  r.StockQty,
			"threshold": s.lowStockThreshold,
		}
		if _, err := s.bus.Emit(ctx, events.TopicInventoryLowStock, db.UUIDString(r.ID), payload); err != nil {
			s.log.Warn().Err(err).Str("item_id", db.UUIDString(r.ID)).Msg("emit low stock")
		}
	}
}

func (s *Service) invalidateSnapshot(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, snapshotKey); err != nil {
		s.log.Warn().Err(err).Msg("invalidate inventory snapshot")
	}
}

func (s *Service) rowFromInput(id pgtype.UUID, input ItemInput) (db.InventoryRow, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return db.InventoryRow{}, common.Validation("name is required")
	}
	price := money.ParseAmount(input.UnitPrice)
	tax := s.defaultTax
	if strings.TrimSpace(input.TaxPercent) != "" {
		tax = money.ClampPercent(money.ParsePercent(input.TaxPercent))
	}
	qty := input.StockQty
	if qty < 0 {
		qty = 0
	}
	return db.InventoryRow{
		ID:         id,
		Name:       name,
		Barcode:    db.ToText(strings.TrimSpace(input.Barcode)),
		UnitPrice:  money.RoundCurrency(price),
		TaxPercent: tax,
		StockQty:   int32(qty),
	}, nil
}

func itemFromRow(r db.InventoryRow) Item {
	return Item{
		ID:         db.UUIDString(r.ID),
		Name:       r.Name,
		Barcode:    db.TextOrEmpty(r.Barcode),
		UnitPrice:  r.UnitPrice,
		TaxPercent: r.TaxPercent,
		StockQty:   int(r.StockQty),
		CreatedAt:  db.TimeFromPG(r.CreatedAt),
		UpdatedAt:  db.TimeFromPG(r.UpdatedAt),
	}
}

func translateStoreErr(err error, noun string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return common.NotFound(fmt.Sprintf("%s not found", noun))
	case errors.Is(err, db.ErrDuplicate):
		return common.Conflict(fmt.Sprintf("%s barcode already in use", noun))
	default:
		return err
	}
}
