// Package main provides the entrypoint for the StationWatch collector
// worker: it warms the read-side caches, fulfills historical-data requests,
// and processes job messages from Pub/Sub.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/database"
	"github.com/stationwatch/stationwatch/internal/datarequest"
	"github.com/stationwatch/stationwatch/internal/river"
	"github.com/stationwatch/stationwatch/internal/river/cwc"
	"github.com/stationwatch/stationwatch/internal/station"
	"github.com/stationwatch/stationwatch/internal/telemetry"
	"github.com/stationwatch/stationwatch/internal/upstream"
	"github.com/stationwatch/stationwatch/internal/weather"
	"github.com/stationwatch/stationwatch/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "stationwatch-collector"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting StationWatch collector")

	// Collector also exposes a health endpoint for Cloud Run.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Services
	stationService := station.NewService(station.NewPostgresRepository(pool), log)

	weatherService, err := weather.NewService(weather.ServiceConfig{
		Repository: weather.NewPostgresRepository(pool),
		Logger:     log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize weather service")
	}

	providerMetrics, err := upstream.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}
	cwcClient := cwc.NewClient(cwc.ClientConfig{
		BaseURL:     os.Getenv("CWC_BASE_URL"),
		StationCode: os.Getenv("CWC_STATION_CODE"),
		HTTPClient: upstream.NewClient(upstream.ClientConfig{
			Name:    cwc.ProviderName,
			Metrics: providerMetrics,
		}),
		Logger: log,
	})
	riverService := river.NewService(river.ServiceConfig{
		Provider: cwcClient,
		Logger:   log,
	})

	dataRequestService := datarequest.NewService(datarequest.ServiceConfig{
		Repo:     datarequest.NewPostgresRepository(pool),
		Stations: stationService,
		Logger:   log,
	})

	// Jobs
	refreshConfig := worker.DefaultRefreshConfig()
	if ids := os.Getenv("REFRESH_STATION_IDS"); ids != "" {
		refreshConfig.StationIDs = strings.Split(ids, ",")
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:         refreshConfig,
		Logger:         log,
		StationService: stationService,
		WeatherService: weatherService,
		RiverService:   riverService,
	})

	fulfillJob := worker.NewFulfillJob(worker.FulfillJobConfig{
		Requests:       dataRequestService,
		WeatherService: weatherService,
		Logger:         log,
	})

	// Pub/Sub handler (optional; the periodic loops below cover the gaps)
	var pubsubHandler *worker.PubSubHandler
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		subName := os.Getenv("PUBSUB_JOBS_SUBSCRIPTION")
		if subName == "" {
			subName = "stationwatch-jobs-sub"
		}

		pubsubHandler, err = worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subName,
			RefreshJob:       refreshJob,
			FulfillJob:       fulfillJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize pubsub handler")
		}
		defer pubsubHandler.Close()

		go func() {
			if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set - running on periodic schedules only")
	}

	// Periodic refresh keeps caches warm even without Pub/Sub triggers;
	// the pending sweep catches requests whose announcement was lost.
	refreshInterval := envDuration("REFRESH_INTERVAL", 5*time.Minute)
	sweepInterval := envDuration("PENDING_SWEEP_INTERVAL", time.Minute)

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshJob.Run(ctx)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := fulfillJob.RunPendingSweep(ctx); err != nil {
					log.Error().Err(err).Msg("pending sweep failed")
				}
			}
		}
	}()

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"OK","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down collector")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("collector stopped")
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
