package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Handler exposes the booking operations over HTTP.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates an appointments HTTP handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts appointment endpoints under a chi router.
// Expected to be mounted under /api/v1/appointments
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.listByRange)
	r.Post("/{appointmentID}/confirm", h.confirm)
	r.Post("/{appointmentID}/cancel", h.cancel)
}

// RegisterAdminRoutes mounts the admin read surface.
// Expected to be mounted under /api/v1/admin
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/appointments", h.listByRange)
}

type createRequest struct {
	ActivityID uuid.UUID  `json:"activity_id"`
	StartTime  time.Time  `json:"start_time"`
	Client     ClientInfo `json:"client"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.ActivityID == uuid.Nil || req.StartTime.IsZero() {
		http.Error(w, "activity_id and start_time required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Create(r.Context(), CreateInput{
		ActivityID: req.ActivityID,
		StartTime:  req.StartTime,
		Client:     req.Client,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	appt, err := h.svc.Confirm(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	appt, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *Handler) listByRange(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}

	appts, err := h.svc.GetByDateRange(r.Context(), start, end)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidClientInfo), errors.Is(err, ErrBookingNotice):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("appointments handler: internal error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
