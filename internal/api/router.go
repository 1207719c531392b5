package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/health"
	"github.com/noah-isme/backend-tour/internal/obs"
)

// RouterConfig collects the router's collaborators and middleware knobs.
type RouterConfig struct {
	Handler        *Handler
	Health         health.Handler
	Logger         zerolog.Logger
	Metrics        *obs.HTTPMetrics
	RateLimit      func(http.Handler) http.Handler
	AllowedOrigins []string
}

// NewRouter assembles the chi router with the service middleware stack.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: cfg.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: cfg.Logger}.Middleware)
	if cfg.RateLimit != nil {
		r.Use(cfg.RateLimit)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health/live", cfg.Health.Live)
	r.Get("/health/ready", cfg.Health.Ready)

	h := cfg.Handler
	r.Route("/api/v1", func(v chi.Router) {
		v.Post("/pricing/compute", h.ComputePricing)
		v.Post("/discounts/validate", h.ValidateDiscount)

		v.Route("/bookings", func(b chi.Router) {
			b.Post("/", h.CreateBooking)
			b.Route("/{code}", func(c chi.Router) {
				c.Get("/", h.GetBooking)
				c.Post("/pay", h.Pay)
				c.Post("/check-in", h.CheckIn)
				c.Post("/check-in/revert", h.RevertCheckIn)
				c.Post("/refunds", h.Refund)
				c.Post("/cancel", h.Cancel)
				c.Get("/events", h.Events)
			})
		})
	})

	return r
}
