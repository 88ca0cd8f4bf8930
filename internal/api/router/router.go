package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/bookline/internal/activities"
	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/availability"
	httpmiddleware "github.com/wolfman30/bookline/internal/http/middleware"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	ActivitiesHandler   *activities.Handler
	AvailabilityHandler *availability.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public booking API
	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AppointmentsHandler != nil {
			api.Route("/appointments", cfg.AppointmentsHandler.RegisterRoutes)
		}
		if cfg.ActivitiesHandler != nil {
			api.Route("/activities", cfg.ActivitiesHandler.RegisterRoutes)
		}

		// Admin routes (protected by HMAC JWT)
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AvailabilityHandler != nil {
				admin.Route("/availability", cfg.AvailabilityHandler.RegisterRoutes)
			}
			if cfg.AppointmentsHandler != nil {
				cfg.AppointmentsHandler.RegisterAdminRoutes(admin)
			}
		})
	})

	return r
}
