package scan

import (
	"context"
	"errors"
	"strings"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/inventory"
	"github.com/rajik786786-oss/kgf-billing/internal/obs"
)

type itemLookup interface {
	GetByBarcode(ctx context.Context, barcode string) (inventory.Item, error)
}

// Resolution is the outcome of resolving one scanned code. When no item
// matches, Found is false and the register offers to create the item with
// the code prefilled.
type Resolution struct {
	Code  string          `json:"code"`
	Found bool            `json:"found"`
	Item  *inventory.Item `json:"item,omitempty"`
}

// Service resolves scanned codes against the stock book.
type Service struct {
	items itemLookup
}

// NewService constructs a Service.
func NewService(items itemLookup) (*Service, error) {
	if items == nil {
		return nil, errors.New("scan: item lookup is required")
	}
	return &Service{items: items}, nil
}

// Resolve looks a code up by exact barcode. Unknown codes are not an
// error; the caller decides what to do with a miss.
func (s *Service) Resolve(ctx context.Context, code string) (Resolution, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Resolution{}, common.Validation("code is required")
	}
	item, err := s.items.GetByBarcode(ctx, code)
	if err != nil {
		var app *common.AppError
		if errors.As(err, &app) && app.Code == "NOT_FOUND" {
			s.count("miss")
			return Resolution{Code: code, Found: false}, nil
		}
		s.count("error")
		return Resolution{}, err
	}
	s.count("hit")
	return Resolution{Code: code, Found: true, Item: &item}, nil
}

func (s *Service) count(result string) {
	if obs.ScanResolveTotal != nil {
		obs.ScanResolveTotal.WithLabelValues(result).Inc()
	}
}
