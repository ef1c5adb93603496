package scan

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
)

// Handler exposes the scanner endpoints.
type Handler struct {
	hub     *Hub
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, service *Service) *Handler {
	return &Handler{hub: hub, service: service}
}

// Routes mounts the scanner endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/keys", h.Keys)
	r.Post("/resolve", h.Resolve)
}

type keyRequest struct {
	SessionID string `json:"sessionId"`
	Key       string `json:"key"`
}

type keyResponse struct {
	Pending    bool        `json:"pending"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

// Keys handles POST /api/v1/scan/keys. It feeds one keystroke into the
// session's capture and resolves the code once a burst completes.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.SessionID == "" || req.Key == "" {
		common.WriteError(w, common.Validation("sessionId and key are required"))
		return
	}
	code, done := h.hub.Session(req.SessionID).Key(req.Key)
	if !done {
		common.JSONData(w, http.StatusOK, keyResponse{Pending: true})
		return
	}
	resolution, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, keyResponse{Resolution: &resolution})
}

type resolveRequest struct {
	Code string `json:"code"`
}

// Resolve handles POST /api/v1/scan/resolve for registers that read the
// scanner themselves and only need the lookup.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	resolution, err := h.service.Resolve(r.Context(), req.Code)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, resolution)
}
