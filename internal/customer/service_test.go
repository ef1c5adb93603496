package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/events"
)

type fakeStore struct {
	rows []db.CustomerRow
}

func (f *fakeStore) ListCustomers(_ context.Context, query string, limit, offset int32) ([]db.CustomerRow, error) {
	return f.rows, nil
}

func (f *fakeStore) CountCustomers(_ context.Context, query string) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeStore) GetCustomer(_ context.Context, id pgtype.UUID) (db.CustomerRow, error) {
	for _, r := range f.rows {
		if db.UUIDEqual(r.ID, id) {
			return r, nil
		}
	}
	return db.CustomerRow{}, db.ErrNotFound
}

func (f *fakeStore) CreateCustomer(_ context.Context, r db.CustomerRow) (db.CustomerRow, error) {
	f.rows = append(f.rows, r)
	return r, nil
}

func (f *fakeStore) UpdateCustomer(_ context.Context, r db.CustomerRow) (db.CustomerRow, error) {
	for i := range f.rows {
		if db.UUIDEqual(f.rows[i].ID, r.ID) {
			f.rows[i] = r
			return r, nil
		}
	}
	return db.CustomerRow{}, db.ErrNotFound
}

func (f *fakeStore) DeleteCustomer(_ context.Context, id pgtype.UUID) error {
	for i := range f.rows {
		if db.UUIDEqual(f.rows[i].ID, id) {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

type captureBus struct {
	topics []string
}

func (c *captureBus) Emit(_ context.Context, topic, aggregateID string, payload any) (events.Event, error) {
	c.topics = append(c.topics, topic)
	return events.Event{Topic: topic, AggregateID: aggregateID}, nil
}

func TestCreateTrimsAndEmits(t *testing.T) {
	store := &fakeStore{}
	bus := &captureBus{}
	svc, err := NewService(store, bus, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	c, err := svc.Create(context.Background(), Input{Name: "  Ravi Kumar ", Phone: " 9876543210 "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Name != "Ravi Kumar" || c.Phone != "9876543210" {
		t.Fatalf("customer = %+v, want trimmed fields", c)
	}
	if len(bus.topics) != 1 || bus.topics[0] != events.TopicCustomerCreated {
		t.Fatalf("topics = %v", bus.topics)
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, _ := NewService(&fakeStore{}, nil, zerolog.Nop())

	_, err := svc.Create(context.Background(), Input{Name: "  "})
	var app *common.AppError
	if !errors.As(err, &app) || app.Code != "VALIDATION_ERROR" {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestGetUnknownCustomerIsNotFound(t *testing.T) {
	svc, _ := NewService(&fakeStore{}, nil, zerolog.Nop())

	_, err := svc.Get(context.Background(), uuid.NewString())
	var app *common.AppError
	if !errors.As(err, &app) || app.Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestAddLoyaltyPointsAccumulates(t *testing.T) {
	id := db.PGUUID(uuid.New())
	store := &fakeStore{rows: []db.CustomerRow{{ID: id, Name: "Ravi", LoyaltyPoints: 10}}}
	svc, _ := NewService(store, nil, zerolog.Nop())

	if err := svc.AddLoyaltyPoints(context.Background(), db.UUIDString(id), 5); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if store.rows[0].LoyaltyPoints != 15 {
		t.Fatalf("points = %d, want 15", store.rows[0].LoyaltyPoints)
	}
}
