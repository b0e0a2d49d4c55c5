// Package api exposes the read-side HTTP handlers for the local
// dashboard.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"example.com/volunteer/internal/domain"
)

// Handler serves snapshot views from the domain service.
type Handler struct {
	service *domain.Service
	logger  *log.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(log.Writer(), "[dashboard] ", log.LstdFlags)
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/catalog", h.catalog)
	r.Get("/v1/mine", h.mine)
	r.Get("/v1/hours", h.hours)
	r.Get("/v1/payments", h.payments)
	r.Post("/v1/reload", h.reload)
	r.Get("/healthz", healthz)
}

// healthz reports a simple OK status.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	items := make([]ActivityView, 0, len(snap.Catalog))
	for _, a := range snap.Catalog {
		items = append(items, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Items: items})
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	items := make([]ActivityView, 0, len(snap.Mine))
	for _, a := range snap.Mine {
		items = append(items, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, MineResponse{Items: items, TotalHours: snap.TotalHours})
}

func (h *Handler) hours(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	writeJSON(w, http.StatusOK, HoursResponse{TotalHours: snap.TotalHours, Joined: len(snap.Mine)})
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	// Snapshot payments already arrive newest first.
	items := make([]PaymentView, 0, len(snap.Payments))
	for _, p := range snap.Payments {
		items = append(items, toPaymentView(p))
	}
	writeJSON(w, http.StatusOK, PaymentsResponse{Items: items, TotalPaid: snap.TotalPaid})
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		h.logger.Printf("reload failed: %v", err)
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "catalog refresh failed")
		return
	}
	h.hours(w, r)
}

// ActivityView exposes one catalog entry.
type ActivityView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	Hours       float64 `json:"hours"`
	Organiser   string  `json:"organiser,omitempty"`
	Location    string  `json:"location,omitempty"`
	TimeSlot    string  `json:"time_slot,omitempty"`
}

// PaymentView exposes one recorded payment.
type PaymentView struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// CatalogResponse packages the full catalog.
type CatalogResponse struct {
	Items []ActivityView `json:"items"`
}

// MineResponse packages the joined view with its derived total.
type MineResponse struct {
	Items      []ActivityView `json:"items"`
	TotalHours float64        `json:"total_hours"`
}

// HoursResponse is the lightweight totals view.
type HoursResponse struct {
	TotalHours float64 `json:"total_hours"`
	Joined     int     `json:"joined"`
}

// PaymentsResponse packages payments newest-first with their sum.
type PaymentsResponse struct {
	Items     []PaymentView `json:"items"`
	TotalPaid float64       `json:"total_paid"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Date:        a.Date,
		Hours:       a.Hours,
		Organiser:   a.Organiser,
		Location:    a.Location,
		TimeSlot:    a.TimeSlot,
	}
}

func toPaymentView(p domain.Payment) PaymentView {
	return PaymentView{
		ID:          p.ID,
		Amount:      p.Amount,
		Date:        p.Date,
		Description: p.Description,
	}
}
