package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = "id, name, phone, loyalty_points, created_at, updated_at"

func scanCustomerRow(row pgx.Row) (CustomerRow, error) {
	var r CustomerRow
	err := row.Scan(&r.ID, &r.Name, &r.Phone, &r.LoyaltyPoints, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return CustomerRow{}, translateErr(err)
	}
	return r, nil
}

// ListCustomers returns a page of customers, optionally filtered by a
// case-insensitive match on name or phone.
func (s *Store) ListCustomers(ctx context.Context, query string, limit, offset int32) ([]CustomerRow, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%'
		 ORDER BY lower(name) LIMIT $2 OFFSET $3`,
		query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CustomerRow
	for rows.Next() {
		r, err := scanCustomerRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountCustomers counts customers matching the same filter as ListCustomers.
func (s *Store) CountCustomers(ctx context.Context, query string) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM customers
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%'`,
		query).Scan(&total)
	return total, err
}

// GetCustomer fetches one customer by id.
func (s *Store) GetCustomer(ctx context.Context, id pgtype.UUID) (CustomerRow, error) {
	return scanCustomerRow(s.Pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id))
}

// CreateCustomer inserts a customer and returns the stored row.
func (s *Store) CreateCustomer(ctx context.Context, r CustomerRow) (CustomerRow, error) {
	return scanCustomerRow(s.Pool.QueryRow(ctx,
		`INSERT INTO customers (id, name, phone)
		 VALUES ($1, $2, $3)
		 RETURNING `+customerColumns,
		r.ID, r.Name, r.Phone))
}

// UpdateCustomer updates mutable fields and returns the stored row.
func (s *Store) UpdateCustomer(ctx context.Context, r CustomerRow) (CustomerRow, error) {
	return scanCustomerRow(s.Pool.QueryRow(ctx,
		`UPDATE customers
		 SET name = $2, phone = $3, loyalty_points = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+customerColumns,
		r.ID, r.Name, r.Phone, r.LoyaltyPoints))
}

// DeleteCustomer removes a customer by id.
func (s *Store) DeleteCustomer(ctx context.Context, id pgtype.UUID) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
