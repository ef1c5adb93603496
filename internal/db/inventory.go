package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryColumns = "id, name, barcode, unit_price, tax_percent, stock_qty, created_at, updated_at"

func scanInventoryRow(row pgx.Row) (InventoryRow, error) {
	var (
		r          InventoryRow
		unitPrice  pgtype.Numeric
		taxPercent pgtype.Numeric
	)
	err := row.Scan(&r.ID, &r.Name, &r.Barcode, &unitPrice, &taxPercent, &r.StockQty, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return InventoryRow{}, translateErr(err)
	}
	r.UnitPrice = DecimalFromNumeric(unitPrice)
	r.TaxPercent = DecimalFromNumeric(taxPercent)
	return r, nil
}

// ListInventory returns a page of inventory records ordered by name.
func (s *Store) ListInventory(ctx context.Context, limit, offset int32) ([]InventoryRow, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT "+inventoryColumns+" FROM inventory ORDER BY lower(name) LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InventoryRow
	for rows.Next() {
		r, err := scanInventoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAllInventory returns every inventory record. Reconciliation works over
// the full snapshot so name fallback matching can see records without barcodes.
func (s *Store) ListAllInventory(ctx context.Context) ([]InventoryRow, error) {
	rows, err := s.Pool.Query(ctx, "SELECT "+inventoryColumns+" FROM inventory")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InventoryRow
	for rows.Next() {
		r, err := scanInventoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountInventory returns the total number of inventory records.
func (s *Store) CountInventory(ctx context.Context) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM inventory").Scan(&total)
	return total, err
}

// GetInventoryItem fetches one record by id.
func (s *Store) GetInventoryItem(ctx context.Context, id pgtype.UUID) (InventoryRow, error) {
	return scanInventoryRow(s.Pool.QueryRow(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE id = $1", id))
}

// GetInventoryByBarcode fetches one record by exact barcode.
func (s *Store) GetInventoryByBarcode(ctx context.Context, barcode string) (InventoryRow, error) {
	return scanInventoryRow(s.Pool.QueryRow(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE barcode = $1", barcode))
}

// CreateInventoryItem inserts a record and returns the stored row.
func (s *Store) CreateInventoryItem(ctx context.Context, r InventoryRow) (InventoryRow, error) {
	return scanInventoryRow(s.Pool.QueryRow(ctx,
		`INSERT INTO inventory (id, name, barcode, unit_price, tax_percent, stock_qty)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+inventoryColumns,
		r.ID, r.Name, r.Barcode, NumericFromDecimal(r.UnitPrice), NumericFromDecimal(r.TaxPercent), r.StockQty))
}

// UpdateInventoryItem updates mutable fields and returns the stored row.
func (s *Store) UpdateInventoryItem(ctx context.Context, r InventoryRow) (InventoryRow, error) {
	return scanInventoryRow(s.Pool.QueryRow(ctx,
		`UPDATE inventory
		 SET name = $2, barcode = $3, unit_price = $4, tax_percent = $5, stock_qty = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+inventoryColumns,
		r.ID, r.Name, r.Barcode, NumericFromDecimal(r.UnitPrice), NumericFromDecimal(r.TaxPercent), r.StockQty))
}

// DeleteInventoryItem removes a record by id.
func (s *Store) DeleteInventoryItem(ctx context.Context, id pgtype.UUID) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM inventory WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
