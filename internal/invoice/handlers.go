package invoice

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rajik786786-oss/kgf-billing/internal/common"
)

// Handler exposes the sale history endpoints.
type Handler struct {
	store    *Store
	renderer Renderer
}

// NewHandler constructs a Handler.
func NewHandler(store *Store, renderer Renderer) *Handler {
	return &Handler{store: store, renderer: renderer}
}

// Routes mounts the history endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/document", h.Document)
}

func parseFilter(r *http.Request) Filter {
	q := r.URL.Query()
	f := Filter{Query: q.Get("q")}
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		f.From = from
	}
	if to, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		// inclusive date upper bound
		f.To = to.AddDate(0, 0, 1)
	}
	return f
}

// List handles GET /api/v1/invoices with from, to and q filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	summaries, total, err := h.store.List(r.Context(), parseFilter(r), page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       summaries,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, inv)
}

// Document handles GET /api/v1/invoices/{id}/document and returns the
// printable receipt.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	body, contentType, err := h.renderer.Render(inv)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Export handles GET /api/v1/invoices/export and streams matching history
// as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	summaries, _, err := h.store.List(r.Context(), parseFilter(r), 1, 10000)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "customer_name", "customer_phone", "total", "currency", "created_at"})
	for _, s := range summaries {
		_ = writer.Write([]string{
			s.ID,
			s.CustomerName,
			s.CustomerPhone,
			s.Total.StringFixed(2),
			s.Currency,
			s.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
}
