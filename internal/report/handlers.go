package report

import (
	"net/http"
	"time"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
)

// Handler exposes report read endpoints.
type Handler struct {
	Svc *Service
}

func (h *Handler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()
	fromStr := query.Get("from")
	toStr := query.Get("to")
	now := h.Svc.now()
	if fromStr != "" && toStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, common.Validation("invalid from date")
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, common.Validation("invalid to date")
		}
		to = to.AddDate(0, 0, 1)
		if !from.Before(to) {
			return time.Time{}, time.Time{}, common.Validation("from must be before to")
		}
		return from, to, nil
	}
	days := h.Svc.DefaultRange
	if days <= 0 {
		days = 30
	}
	if raw := query.Get("days"); raw != "" {
		if parsed := common.AtoiDefault(raw, days); parsed > 0 {
			days = parsed
		}
	}
	return now.AddDate(0, 0, -days), now, nil
}

// Sales handles GET /api/v1/reports/sales.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "report service not configured", nil)
		return
	}
	from, to, err := h.parseRange(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	rows, err := h.Svc.SalesRange(r.Context(), from, to)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, rows)
}

// TopItems handles GET /api/v1/reports/top-items.
func (h *Handler) TopItems(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "report service not configured", nil)
		return
	}
	from, to, err := h.parseRange(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	limit := int32(common.AtoiDefault(r.URL.Query().Get("limit"), 10))
	rows, err := h.Svc.TopItems(r.Context(), from, to, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, rows)
}
