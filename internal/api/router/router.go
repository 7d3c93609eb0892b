package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/appointments"
	httpmiddleware "github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/http/middleware"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/meetings"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	MeetingsHandler     *meetings.Handler

	AuthSecret         string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int

	// HealthCheck reports backing-store readiness. Nil means always
	// healthy.
	HealthCheck func(ctx context.Context) error
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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
	if cfg.RateLimitPerSec > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	}
	r.Use(httpmiddleware.Authenticate(cfg.AuthSecret))

	r.Get("/health", healthHandler(cfg.HealthCheck))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AppointmentsHandler != nil {
		// Reservation accepts both authenticated customers and
		// anonymous callers supplying an explicit customerId.
		r.Post("/reserve-appointment", cfg.AppointmentsHandler.Reserve)

		r.Group(func(staff chi.Router) {
			staff.Use(httpmiddleware.RequireAuth)
			staff.Use(httpmiddleware.RequireStaff)
			staff.Post("/move-appointment", cfg.AppointmentsHandler.Move)
			staff.Get("/schedule", cfg.AppointmentsHandler.Schedule)
		})
	}

	if cfg.MeetingsHandler != nil {
		r.With(httpmiddleware.RequireAuth).Post("/book-proposed-meeting", cfg.MeetingsHandler.Book)
	}

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
