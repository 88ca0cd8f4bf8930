package availability

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Handler provides the admin HTTP endpoints for editing open hours.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates an availability HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes mounts availability endpoints under a chi router.
// Expected to be mounted under /api/v1/admin/availability
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.Find(r.Context())
	if err != nil {
		h.logger.Error("availability handler: find", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var a Availability
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := a.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Update(r.Context(), &a); err != nil {
		h.logger.Error("availability handler: update", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("availability updated",
		"weekly_slots", len(a.WeeklySlots),
		"exceptions", len(a.Exceptions),
	)
	w.WriteHeader(http.StatusNoContent)
}
