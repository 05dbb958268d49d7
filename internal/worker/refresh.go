package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/river"
	"github.com/stationwatch/stationwatch/internal/station"
	"github.com/stationwatch/stationwatch/internal/weather"
)

// RefreshJob warms the read-side caches so dashboard polls hit fresh data:
// the latest reading per station and the river gauge snapshot.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	stationService *station.Service
	weatherService *weather.Service
	riverService   *river.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	WeatherRefresh    int64
	RiverRefresh      int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config         RefreshConfig
	Logger         zerolog.Logger
	StationService *station.Service
	WeatherService *weather.Service
	RiverService   *river.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if config.Concurrency == 0 {
		config = DefaultRefreshConfig()
		config.StationIDs = cfg.Config.StationIDs
	}

	return &RefreshJob{
		config:         config,
		logger:         cfg.Logger,
		stationService: cfg.StationService,
		weatherService: cfg.WeatherService,
		riverService:   cfg.RiverService,
		metrics:        &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalStations int
	Successful    int
	Failed        int
	Errors        []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	Job       string
	StationID string
	Error     string
}

// Run executes the refresh job for all configured stations.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	stationIDs, err := j.stationIDs(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to resolve refresh stations")
		result.Failed++
		result.Errors = append(result.Errors, RefreshError{Job: "stations", Error: err.Error()})
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		j.updateMetrics(result)
		return result
	}
	result.TotalStations = len(stationIDs)

	j.logger.Info().
		Int("stations", len(stationIDs)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting refresh job")

	stationsChan := make(chan string, len(stationIDs))
	resultsChan := make(chan stationResult, len(stationIDs))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, stationsChan, resultsChan)
		}()
	}

	for _, id := range stationIDs {
		stationsChan <- id
	}
	close(stationsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for sr := range resultsChan {
		if sr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, sr.errors...)
	}

	// The gauge is shared rather than per-station, refresh it once.
	if err := j.RefreshRiver(ctx); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, RefreshError{Job: "river", Error: err.Error()})
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("refresh job completed")

	return result
}

// stationIDs returns the configured station IDs, or all active stations
// from the registry when none are configured.
func (j *RefreshJob) stationIDs(ctx context.Context) ([]string, error) {
	if len(j.config.StationIDs) > 0 {
		return j.config.StationIDs, nil
	}
	if j.stationService == nil {
		return nil, nil
	}

	stations, err := j.stationService.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stations))
	for _, s := range stations {
		if s.Status == station.StatusActive {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

type stationResult struct {
	stationID string
	success   bool
	errors    []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, stations <-chan string, results chan<- stationResult) {
	for id := range stations {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshStation(ctx, id)
		}
	}
}

func (j *RefreshJob) refreshStation(ctx context.Context, stationID string) stationResult {
	result := stationResult{stationID: stationID, success: true}

	stationCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if j.config.RefreshWeather && j.weatherService != nil {
		// A cache-miss read pulls the reading from storage into the cache.
		if _, err := j.weatherService.Latest(stationCtx, stationID); err != nil {
			result.errors = append(result.errors, RefreshError{
				Job:       "weather",
				StationID: stationID,
				Error:     err.Error(),
			})
			result.success = false
		} else {
			j.metrics.mu.Lock()
			j.metrics.WeatherRefresh++
			j.metrics.mu.Unlock()
		}
	}

	return result
}

// RefreshRiver refreshes the shared river gauge snapshot.
func (j *RefreshJob) RefreshRiver(ctx context.Context) error {
	if !j.config.RefreshRiver || j.riverService == nil {
		return nil
	}

	j.logger.Debug().Msg("refreshing river snapshot")

	riverCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if _, err := j.riverService.Snapshot(riverCtx); err != nil {
		j.logger.Error().Err(err).Msg("failed to refresh river snapshot")
		return err
	}

	j.metrics.mu.Lock()
	j.metrics.RiverRefresh++
	j.metrics.mu.Unlock()
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		WeatherRefresh:      j.metrics.WeatherRefresh,
		RiverRefresh:        j.metrics.RiverRefresh,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefresh,
		"failed_refreshes":      m.FailedRefreshes,
		"weather_refreshes":     m.WeatherRefresh,
		"river_refreshes":       m.RiverRefresh,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
