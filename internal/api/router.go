// Package api provides the HTTP surface of the AQI proxy.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aqipro/aqipro/internal/api/handler"
	"github.com/aqipro/aqipro/internal/api/middleware"
	"github.com/aqipro/aqipro/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	Metrics         *middleware.Metrics
	UpstreamMetrics *middleware.UpstreamMetrics
	AirClient       handler.AirClient
	Geocoder        handler.Geocoder
	Registry        *resilience.Registry
}

// NewRouter creates a chi router with all proxy routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS)
	r.Use(middleware.ContentTypeJSON)

	feedHandler := handler.NewFeedHandler(cfg.AirClient, cfg.UpstreamMetrics)
	geocodeHandler := handler.NewGeocodeHandler(cfg.Geocoder, cfg.UpstreamMetrics)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)

	feedRateLimit := middleware.RateLimitByIP(middleware.FeedRateLimit)
	geocodeRateLimit := middleware.RateLimitByIP(middleware.GeocodeRateLimit)
	mapRateLimit := middleware.RateLimitByIP(middleware.MapRateLimit)

	r.Route("/api", func(r chi.Router) {
		r.Route("/feed", func(r chi.Router) {
			r.Use(feedRateLimit)
			// geo must be registered before the catch-all city segment
			r.Get("/geo/{lat}/{lon}", feedHandler.GetByGeo)
			r.Get("/{city}", feedHandler.GetByCity)
		})

		r.With(feedRateLimit).Get("/search", feedHandler.Search)
		r.With(mapRateLimit).Get("/map/bounds", feedHandler.MapBounds)
		r.With(geocodeRateLimit).Get("/geocode", geocodeHandler.Search)

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})
	})

	return r
}
