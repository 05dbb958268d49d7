// Package api provides the HTTP API for StationWatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/api/handler"
	"github.com/stationwatch/stationwatch/internal/api/middleware"
	"github.com/stationwatch/stationwatch/internal/auth"
	"github.com/stationwatch/stationwatch/internal/datarequest"
	"github.com/stationwatch/stationwatch/internal/river"
	"github.com/stationwatch/stationwatch/internal/station"
	"github.com/stationwatch/stationwatch/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	AuthService        *auth.Service
	StationService     *station.Service
	WeatherService     *weather.Service
	RiverService       *river.Service
	DataRequestService *datarequest.Service

	// DB is pinged by the readiness check; may be nil in tests.
	DB handler.Pinger

	// Providers are reported by the admin status endpoint.
	Providers []handler.HealthReporter
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "stationwatch-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Providers...)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService)
	riverHandler := handler.NewRiverHandler(cfg.RiverService)
	stationHandler := handler.NewStationHandler(cfg.StationService, cfg.WeatherService)
	dataRequestHandler := handler.NewDataRequestHandler(cfg.DataRequestService)

	adminAuth := middleware.AdminAuth(cfg.AuthService)

	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)         // 10 req/min
	submitRateLimit := middleware.RateLimitByIP(middleware.SubmitRateLimit)     // 20 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 120 req/min

	// Ops endpoints (public, unlimited; polled by the load balancer)
	r.Get("/health", opsHandler.HealthCheck)
	r.Get("/ready", opsHandler.ReadinessCheck)

	r.Route("/api", func(r chi.Router) {
		// Token issuance - strict rate limiting
		r.With(authRateLimit).Post("/auth/token", authHandler.IssueToken)

		// Dashboard endpoints - polled every 30s per client
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/weather", weatherHandler.GetWeather)
			r.Get("/historical-data", weatherHandler.GetHistorical)
			r.Get("/river-data", riverHandler.GetRiverData)
			r.Get("/stations", stationHandler.List)
			r.Get("/stations/{stationId}", stationHandler.Get)
		})

		// Data request form - submission triggers downstream work
		r.With(submitRateLimit).Post("/request-data", dataRequestHandler.Submit)

		// Admin endpoints (authenticated)
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(standardRateLimit)

			r.Get("/status", opsHandler.SystemStatus)

			r.Route("/stations", func(r chi.Router) {
				r.Post("/", stationHandler.Create)
				r.Put("/{stationId}", stationHandler.Update)
				r.Post("/{stationId}/readings", stationHandler.IngestReading)
			})

			r.Route("/data-requests", func(r chi.Router) {
				r.Get("/", dataRequestHandler.List)
				r.Get("/{requestId}", dataRequestHandler.Get)
				r.Get("/{requestId}/export", dataRequestHandler.Export)
			})
		})
	})

	return r
}
