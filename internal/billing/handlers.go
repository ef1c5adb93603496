package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
)

// Handler exposes active bill endpoints.
type Handler struct {
	store    *SessionStore
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(store *SessionStore, validate *validator.Validate) *Handler {
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{store: store, validate: validate}
}

// Routes mounts the bill endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Discard)
	r.Post("/{id}/lines", h.AddLine)
	r.Put("/{id}/lines/{lineId}", h.UpdateLine)
	r.Delete("/{id}/lines/{lineId}", h.RemoveLine)
	r.Put("/{id}/discount", h.SetDiscount)
	r.Put("/{id}/customer", h.SetCustomer)
}

// Create handles POST /api/v1/bills.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	bill := h.store.Create()
	common.JSONData(w, http.StatusCreated, NewView(bill))
}

// Get handles GET /api/v1/bills/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	bill, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, NewView(bill))
}

// Discard handles DELETE /api/v1/bills/{id}.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// AddLine handles POST /api/v1/bills/{id}/lines.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var input LineInput
	if err := common.DecodeJSON(r, &input); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		common.WriteError(w, common.Validation(err.Error()))
		return
	}
	bill, err := h.store.AddLine(chi.URLParam(r, "id"), input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, NewView(bill))
}

// UpdateLine handles PUT /api/v1/bills/{id}/lines/{lineId}.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var input LineInput
	if err := common.DecodeJSON(r, &input); err != nil {
		common.WriteError(w, err)
		return
	}
	bill, err := h.store.UpdateLine(chi.URLParam(r, "id"), chi.URLParam(r, "lineId"), input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, NewView(bill))
}

// RemoveLine handles DELETE /api/v1/bills/{id}/lines/{lineId}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	bill, err := h.store.RemoveLine(chi.URLParam(r, "id"), chi.URLParam(r, "lineId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, NewView(bill))
}

type discountRequest struct {
	Percent string `json:"percent"`
}

// SetDiscount handles PUT /api/v1/bills/{id}/discount.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	bill, err := h.store.SetDiscount(chi.URLParam(r, "id"), req.Percent)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, NewView(bill))
}

type customerRequest struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

// SetCustomer handles PUT /api/v1/bills/{id}/customer.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	bill, err := h.store.SetCustomer(chi.URLParam(r, "id"), req.CustomerID, req.Name, req.Phone)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, NewView(bill))
}
