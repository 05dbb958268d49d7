// Package main provides the entrypoint for the StationWatch API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/api"
	"github.com/stationwatch/stationwatch/internal/api/handler"
	"github.com/stationwatch/stationwatch/internal/api/middleware"
	"github.com/stationwatch/stationwatch/internal/auth"
	"github.com/stationwatch/stationwatch/internal/database"
	"github.com/stationwatch/stationwatch/internal/datarequest"
	"github.com/stationwatch/stationwatch/internal/river"
	"github.com/stationwatch/stationwatch/internal/river/cwc"
	"github.com/stationwatch/stationwatch/internal/station"
	"github.com/stationwatch/stationwatch/internal/telemetry"
	"github.com/stationwatch/stationwatch/internal/upstream"
	"github.com/stationwatch/stationwatch/internal/weather"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "stationwatch-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting StationWatch API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryConfig := telemetry.ConfigFromEnv(serviceName, Version)

	tp, err := telemetry.Init(ctx, telemetryConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryConfig.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryConfig.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize auth service (admin key exchanged for short-lived JWTs)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	adminAPIKey := os.Getenv("ADMIN_API_KEY")
	if adminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY not set - admin endpoints will reject all tokens")
	}

	authService := auth.NewService(auth.ServiceConfig{
		JWT:      auth.NewJWTService(auth.JWTConfig{SigningKey: jwtSigningKey}),
		AdminKey: adminAPIKey,
		Logger:   log,
	})
	log.Info().Msg("auth service initialized")

	// Initialize station registry
	stationRepo := station.NewPostgresRepository(pool)
	stationService := station.NewService(stationRepo, log)
	log.Info().Msg("station service initialized")

	// Initialize weather readings service
	weatherRepo := weather.NewPostgresRepository(pool)
	weatherService, err := weather.NewService(weather.ServiceConfig{
		Repository: weatherRepo,
		Logger:     log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize weather service")
	}
	log.Info().Msg("weather service initialized")

	// Initialize river gauge service
	providerMetrics, err := upstream.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}
	cwcUpstream := upstream.NewClient(upstream.ClientConfig{
		Name:    cwc.ProviderName,
		Metrics: providerMetrics,
	})
	cwcClient := cwc.NewClient(cwc.ClientConfig{
		BaseURL:     os.Getenv("CWC_BASE_URL"),
		StationCode: os.Getenv("CWC_STATION_CODE"),
		HTTPClient:  cwcUpstream,
		Logger:      log,
	})
	riverService := river.NewService(river.ServiceConfig{
		Provider: cwcClient,
		Logger:   log,
	})
	log.Info().Msg("river service initialized")

	// Initialize data request service; submissions are announced to the
	// collector worker over Pub/Sub when a project is configured.
	var notifier datarequest.Notifier
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		topicName := os.Getenv("PUBSUB_JOBS_TOPIC")
		if topicName == "" {
			topicName = "stationwatch-jobs"
		}
		pubsubNotifier, err := datarequest.NewPubSubNotifier(ctx, datarequest.PubSubNotifierConfig{
			ProjectID: projectID,
			TopicName: topicName,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize pubsub notifier")
		}
		defer pubsubNotifier.Close()
		notifier = pubsubNotifier
		log.Info().Str("topic", topicName).Msg("pubsub notifier initialized")
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set - data requests rely on the pending sweep")
	}

	dataRequestRepo := datarequest.NewPostgresRepository(pool)
	dataRequestService := datarequest.NewService(datarequest.ServiceConfig{
		Repo:     dataRequestRepo,
		Stations: stationService,
		Notifier: notifier,
		Logger:   log,
	})
	log.Info().Msg("data request service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		AuthService:        authService,
		StationService:     stationService,
		WeatherService:     weatherService,
		RiverService:       riverService,
		DataRequestService: dataRequestService,
		DB:                 pool,
		Providers:          []handler.HealthReporter{cwcUpstream},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
