package checkout

import (
	"net/http"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type checkoutRequest struct {
	BillID string `json:"billId"`
}

// Checkout handles POST /api/v1/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.BillID == "" {
		common.WriteError(w, common.Validation("billId is required"))
		return
	}
	result, err := h.service.Checkout(r.Context(), req.BillID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, result)
}
