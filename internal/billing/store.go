package billing

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/money"
)

// LineInput carries raw cashier input for one line. Amounts arrive as
// strings straight from the register form and are sanitised on entry.
type LineInput struct {
	ItemID          string `json:"itemId"`
	Name            string `json:"name" validate:"required,min=1,max=200"`
	Barcode         string `json:"barcode"`
	UnitPrice       string `json:"unitPrice"`
	Qty             string `json:"qty"`
	DiscountPercent string `json:"discountPercent"`
	TaxPercent      string `json:"taxPercent"`
}

type session struct {
	bill      Bill
	expiresAt time.Time
}

// SessionStore keeps active bills in memory with a sliding TTL. Abandoned
// bills simply age out; nothing is persisted until checkout.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	Now      func() time.Time
	NewID    func() string
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

// Create opens a new empty bill.
func (s *SessionStore) Create() Bill {
	now := s.Now()
	bill := Bill{
		ID:              s.NewID(),
		DiscountPercent: decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[bill.ID] = &session{bill: bill, expiresAt: now.Add(s.ttl)}
	return cloneBill(bill)
}

// Get returns a copy of the bill. The copy is detached: later edits to the
// session do not leak into snapshots already handed out.
func (s *SessionStore) Get(id string) (Bill, error) {
	now := s.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || now.After(sess.expiresAt) {
		return Bill{}, common.NotFound("bill not found")
	}
	return cloneBill(sess.bill), nil
}

// AddLine appends a line, merging into an existing line when the same
// inventory item or barcode is scanned again.
func (s *SessionStore) AddLine(id string, input LineInput) (Bill, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Bill{}, common.Validation("line name is required")
	}
	qty := money.ParseQty(input.Qty)
	if qty < 1 {
		qty = 1
	}
	line := Line{
		ID:              s.NewID(),
		ItemID:          strings.TrimSpace(input.ItemID),
		Name:            name,
		Barcode:         strings.TrimSpace(input.Barcode),
		UnitPrice:       money.RoundCurrency(money.ParseAmount(input.UnitPrice)),
		Qty:             qty,
		DiscountPercent: money.ClampPercent(money.ParsePercent(input.DiscountPercent)),
		TaxPercent:      money.ClampPercent(money.ParsePercent(input.TaxPercent)),
	}
	return s.mutate(id, func(b *Bill) error {
		for i := range b.Lines {
			if sameItem(b.Lines[i], line) {
				b.Lines[i].Qty += line.Qty
				return nil
			}
		}
		b.Lines = append(b.Lines, line)
		return nil
	})
}

// UpdateLine adjusts quantity and discounts of one line. A quantity of
// zero removes the line.
func (s *SessionStore) UpdateLine(id, lineID string, input LineInput) (Bill, error) {
	return s.mutate(id, func(b *Bill) error {
		for i := range b.Lines {
			if b.Lines[i].ID != lineID {
				continue
			}
			qty := money.ParseQty(input.Qty)
			if qty <= 0 {
				b.Lines = append(b.Lines[:i], b.Lines[i+1:]...)
				return nil
			}
			b.Lines[i].Qty = qty
			if strings.TrimSpace(input.Name) != "" {
				b.Lines[i].Name = strings.TrimSpace(input.Name)
			}
			if input.UnitPrice != "" {
				b.Lines[i].UnitPrice = money.RoundCurrency(money.ParseAmount(input.UnitPrice))
			}
			if input.DiscountPercent != "" {
				b.Lines[i].DiscountPercent = money.ClampPercent(money.ParsePercent(input.DiscountPercent))
			}
			if input.TaxPercent != "" {
				b.Lines[i].TaxPercent = money.ClampPercent(money.ParsePercent(input.TaxPercent))
			}
			return nil
		}
		return common.NotFound("line not found")
	})
}

// RemoveLine drops one line from the bill.
func (s *SessionStore) RemoveLine(id, lineID string) (Bill, error) {
	return s.mutate(id, func(b *Bill) error {
		for i := range b.Lines {
			if b.Lines[i].ID == lineID {
				b.Lines = append(b.Lines[:i], b.Lines[i+1:]...)
				return nil
			}
		}
		return common.NotFound("line not found")
	})
}

// SetDiscount applies a bill level discount percentage.
func (s *SessionStore) SetDiscount(id, percent string) (Bill, error) {
	value := money.ClampPercent(money.ParsePercent(percent))
	return s.mutate(id, func(b *Bill) error {
		b.DiscountPercent = value
		return nil
	})
}

// SetCustomer attaches customer details to the bill. The id must be a
// customer record UUID when present; checkout trusts it as-is.
func (s *SessionStore) SetCustomer(id, customerID, name, phone string) (Bill, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID != "" {
		if _, err := uuid.Parse(customerID); err != nil {
			return Bill{}, common.Validation("customerId must be a customer record id")
		}
	}
	return s.mutate(id, func(b *Bill) error {
		b.CustomerID = customerID
		b.CustomerName = strings.TrimSpace(name)
		b.CustomerPhone = strings.TrimSpace(phone)
		return nil
	})
}

// Delete discards the session, e.g. after checkout or an abandoned sale.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) mutate(id string, fn func(*Bill) error) (Bill, error) {
	now := s.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || now.After(sess.expiresAt) {
		delete(s.sessions, id)
		return Bill{}, common.NotFound("bill not found")
	}
	if err := fn(&sess.bill); err != nil {
		return Bill{}, err
	}
	sess.bill.UpdatedAt = now
	sess.expiresAt = now.Add(s.ttl)
	return cloneBill(sess.bill), nil
}

func sameItem(a, b Line) bool {
	if a.ItemID != "" && a.ItemID == b.ItemID {
		return a.UnitPrice.Equal(b.UnitPrice)
	}
	if a.Barcode != "" && a.Barcode == b.Barcode {
		return a.UnitPrice.Equal(b.UnitPrice)
	}
	return false
}
