package river

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/river/cwc"
)

// Provider fetches gauge observations.
type Provider interface {
	LatestWaterLevel(ctx context.Context) (*cwc.Observation, error)
	LatestRainfall(ctx context.Context) (*cwc.Observation, error)
	Name() string
}

// ServiceConfig holds configuration for the river service.
type ServiceConfig struct {
	// Provider is the gauge data source.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a snapshot stays fresh (default: 1 minute).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving a stale snapshot on provider errors
	// (default: 1 hour).
	StaleIfErrorTTL time.Duration

	// ForecastSteps is the number of projected levels (default: 6).
	ForecastSteps int

	// HistorySize bounds the level history used for the trend forecast
	// (default: 24).
	HistorySize int
}

// Service provides the cached river snapshot.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	forecastSteps   int
	historySize     int

	mu        sync.Mutex
	snapshot  *Snapshot
	fetchedAt time.Time
	levels    []float64 // recent water levels, oldest first
}

// NewService creates a new river service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.StaleIfErrorTTL == 0 {
		cfg.StaleIfErrorTTL = time.Hour
	}
	if cfg.ForecastSteps == 0 {
		cfg.ForecastSteps = 6
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = 24
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		forecastSteps:   cfg.ForecastSteps,
		historySize:     cfg.HistorySize,
	}
}

// Snapshot returns the current river snapshot, fetching from the provider
// when the cached one has expired. On provider failure the previous
// snapshot is served until StaleIfErrorTTL elapses.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil && time.Since(s.fetchedAt) < s.cacheTTL {
		return s.snapshot, nil
	}

	level, err := s.provider.LatestWaterLevel(ctx)
	if err != nil {
		return s.staleOrError(err)
	}

	snap := &Snapshot{
		WaterLevel:     level.Value,
		WaterLevelTime: level.MeasuredAt,
		Alert:          AlertFor(level.Value),
		FetchedAt:      time.Now(),
	}

	// Rainfall is reported on a separate datatype and may lag; a missing
	// rainfall value does not invalidate the water level.
	rain, err := s.provider.LatestRainfall(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rainfall fetch failed, serving water level only")
	} else {
		snap.Rainfall = rain.Value
		snap.RainfallTime = rain.MeasuredAt
	}

	s.recordLevel(level.Value)
	snap.Forecast = forecastLevels(s.levels, s.forecastSteps)

	if snap.Alert != AlertNormal {
		s.logger.Warn().
			Float64("water_level", snap.WaterLevel).
			Str("alert", string(snap.Alert)).
			Msg("river gauge above normal")
	}

	s.snapshot = snap
	s.fetchedAt = snap.FetchedAt
	return snap, nil
}

func (s *Service) staleOrError(err error) (*Snapshot, error) {
	if s.snapshot != nil && time.Since(s.fetchedAt) < s.staleIfErrorTTL {
		s.logger.Warn().
			Err(err).
			Time("fetched_at", s.fetchedAt).
			Msg("serving stale river snapshot due to provider error")
		return s.snapshot, nil
	}

	s.logger.Error().Err(err).Msg("river snapshot unavailable")
	return nil, ErrUnavailable
}

func (s *Service) recordLevel(level float64) {
	s.levels = append(s.levels, level)
	if len(s.levels) > s.historySize {
		s.levels = s.levels[len(s.levels)-s.historySize:]
	}
}
