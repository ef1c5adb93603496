// Package customer manages the shop's customer book.
package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/events"
)

// Customer is the public representation of a customer record.
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	LoyaltyPoints int       `json:"loyaltyPoints"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Input carries fields for create and update operations.
type Input struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

type store interface {
	ListCustomers(ctx context.Context, query string, limit, offset int32) ([]db.CustomerRow, error)
	CountCustomers(ctx context.Context, query string) (int64, error)
	GetCustomer(ctx context.Context, id pgtype.UUID) (db.CustomerRow, error)
	CreateCustomer(ctx context.Context, r db.CustomerRow) (db.CustomerRow, error)
	UpdateCustomer(ctx context.Context, r db.CustomerRow) (db.CustomerRow, error)
	DeleteCustomer(ctx context.Context, id pgtype.UUID) error
}

type emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (events.Event, error)
}

// Service owns customer CRUD and lookups used during checkout.
type Service struct {
	store store
	bus   emitter
	log   zerolog.Logger
}

// NewService constructs a Service.
func NewService(store store, bus emitter, log zerolog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("customer: store is required")
	}
	return &Service{store: store, bus: bus, log: log}, nil
}

// List returns one page of customers matching an optional free text query
// on name or phone, plus the total count.
func (s *Service) List(ctx context.Context, query string, page, perPage int) ([]Customer, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	query = strings.TrimSpace(query)
	rows, err := s.store.ListCustomers(ctx, query, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountCustomers(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, total, nil
}

// Get fetches one customer by id.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return Customer{}, common.Validation("invalid customer id")
	}
	row, err := s.store.GetCustomer(ctx, pgID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Customer{}, common.NotFound("customer not found")
		}
		return Customer{}, err
	}
	return fromRow(row), nil
}

// Create inserts a customer and emits a created event.
func (s *Service) Create(ctx context.Context, input Input) (Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Customer{}, common.Validation("name is required")
	}
	row, err := s.store.CreateCustomer(ctx, db.CustomerRow{
		ID:    db.PGUUID(uuid.New()),
		Name:  name,
		Phone: strings.TrimSpace(input.Phone),
	})
	if err != nil {
		return Customer{}, err
	}
	created := fromRow(row)
	if s.bus != nil {
		payload := map[string]any{"name": created.Name, "phone": created.Phone}
		if _, err := s.bus.Emit(ctx, events.TopicCustomerCreated, created.ID, payload); err != nil {
			s.log.Warn().Err(err).Str("customer_id", created.ID).Msg("emit customer created")
		}
	}
	return created, nil
}

// Update replaces name and phone of an existing customer.
func (s *Service) Update(ctx context.Context, id string, input Input) (Customer, error) {
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return Customer{}, common.Validation("invalid customer id")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Customer{}, common.Validation("name is required")
	}
	existing, err := s.store.GetCustomer(ctx, pgID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Customer{}, common.NotFound("customer not found")
		}
		return Customer{}, err
	}
	existing.Name = name
	existing.Phone = strings.TrimSpace(input.Phone)
	row, err := s.store.UpdateCustomer(ctx, existing)
	if err != nil {
		return Customer{}, err
	}
	return fromRow(row), nil
}

// Delete removes a customer. Their invoices keep the snapshotted name.
func (s *Service) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return common.Validation("invalid customer id")
	}
	if err := s.store.DeleteCustomer(ctx, pgID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return common.NotFound("customer not found")
		}
		return err
	}
	return nil
}

// AddLoyaltyPoints credits points earned on a finalized sale.
func (s *Service) AddLoyaltyPoints(ctx context.Context, id string, points int) error {
	if points <= 0 {
		return nil
	}
	pgID, err := db.ParsePGUUID(id)
	if err != nil {
		return common.Validation("invalid customer id")
	}
	row, err := s.store.GetCustomer(ctx, pgID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return common.NotFound("customer not found")
		}
		return err
	}
	row.LoyaltyPoints += int32(points)
	_, err = s.store.UpdateCustomer(ctx, row)
	return err
}

func fromRow(r db.CustomerRow) Customer {
	return Customer{
		ID:            db.UUIDString(r.ID),
		Name:          r.Name,
		Phone:         r.Phone,
		LoyaltyPoints: int(r.LoyaltyPoints),
		CreatedAt:     db.TimeFromPG(r.CreatedAt),
		UpdatedAt:     db.TimeFromPG(r.UpdatedAt),
	}
}
