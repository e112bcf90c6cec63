// Package handlers serves the maintenance tracker's HTTP API.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/controller"
	"github.com/ukydev/maintenance-tracker/internal/logging"
	"github.com/ukydev/maintenance-tracker/internal/middleware"
)

// Options wires the router's collaborators.
type Options struct {
	Registry    *controller.Registry
	AuthService *auth.Service
	Logger      *log.Entry

	// RateLimitRequests per RateLimitWindowSeconds per client IP; zero disables the limit.
	RateLimitRequests      int
	RateLimitWindowSeconds int
}

// NewRouter builds the HTTP API.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	h := NewMaintenanceHandler(opts.Registry, logger)

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitRequests > 0 && opts.RateLimitWindowSeconds > 0 {
			r.Use(middleware.NewRateLimitMiddleware().RateLimit(opts.RateLimitRequests, opts.RateLimitWindowSeconds))
		}
		r.Use(middleware.NewAuthMiddleware(opts.AuthService).Authenticate)

		r.Get("/defaults", h.GetDefaults)

		r.Get("/session", h.GetSession)
		r.Post("/session/reload", h.Reload)

		r.Post("/vehicles", h.CreateVehicle)
		r.Put("/vehicles/{vehicleID}", h.EditVehicle)
		r.Post("/vehicles/{vehicleID}/select", h.SelectVehicle)

		r.Put("/vehicle/mileage", h.UpdateMileage)
		r.Post("/vehicle/records", h.AddServiceRecord)
		r.Get("/vehicle/status", h.GetStatus)
	})

	return r
}
