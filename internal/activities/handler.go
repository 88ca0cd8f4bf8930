package activities

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Handler exposes the activity catalog read-only over HTTP.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates an activities HTTP handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes mounts activity endpoints under a chi router.
// Expected to be mounted under /api/v1/activities
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.FindAll(r.Context())
	if err != nil {
		h.logger.Error("activities handler: list", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"activities": all,
		"count":      len(all),
	})
}
