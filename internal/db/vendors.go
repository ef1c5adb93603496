package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const vendorColumns = "id, name, contact, created_at, updated_at"

func scanVendorRow(row pgx.Row) (VendorRow, error) {
	var r VendorRow
	err := row.Scan(&r.ID, &r.Name, &r.Contact, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return VendorRow{}, translateErr(err)
	}
	return r, nil
}

// ListVendors returns a page of vendors, optionally filtered by a
// case-insensitive match on name or contact.
func (s *Store) ListVendors(ctx context.Context, query string, limit, offset int32) ([]VendorRow, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+vendorColumns+` FROM vendors
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR contact ILIKE '%' || $1 || '%'
		 ORDER BY lower(name) LIMIT $2 OFFSET $3`,
		query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []VendorRow
	for rows.Next() {
		r, err := scanVendorRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountVendors counts vendors matching the same filter as ListVendors.
func (s *Store) CountVendors(ctx context.Context, query string) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM vendors
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR contact ILIKE '%' || $1 || '%'`,
		query).Scan(&total)
	return total, err
}

// GetVendor fetches one vendor by id.
func (s *Store) GetVendor(ctx context.Context, id pgtype.UUID) (VendorRow, error) {
	return scanVendorRow(s.Pool.QueryRow(ctx,
		"SELECT "+vendorColumns+" FROM vendors WHERE id = $1", id))
}

// CreateVendor inserts a vendor and returns the stored row.
func (s *Store) CreateVendor(ctx context.Context, r VendorRow) (VendorRow, error) {
	return scanVendorRow(s.Pool.QueryRow(ctx,
		`INSERT INTO vendors (id, name, contact)
		 VALUES ($1, $2, $3)
		 RETURNING `+vendorColumns,
		r.ID, r.Name, r.Contact))
}

// UpdateVendor updates mutable fields and returns the stored row.
func (s *Store) UpdateVendor(ctx context.Context, r VendorRow) (VendorRow, error) {
	return scanVendorRow(s.Pool.QueryRow(ctx,
		`UPDATE vendors
		 SET name = $2, contact = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+vendorColumns,
		r.ID, r.Name, r.Contact))
}

// DeleteVendor removes a vendor by id.
func (s *Store) DeleteVendor(ctx context.Context, id pgtype.UUID) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM vendors WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
