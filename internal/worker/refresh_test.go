package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationwatch/stationwatch/internal/datarequest"
	"github.com/stationwatch/stationwatch/internal/river"
	"github.com/stationwatch/stationwatch/internal/river/cwc"
	"github.com/stationwatch/stationwatch/internal/station"
	"github.com/stationwatch/stationwatch/internal/weather"
	"github.com/stationwatch/stationwatch/internal/worker"
)

type stubGauge struct {
	level    float64
	rainfall float64
	levelErr error
}

func (s *stubGauge) Name() string { return "stub" }

func (s *stubGauge) LatestWaterLevel(_ context.Context) (*cwc.Observation, error) {
	if s.levelErr != nil {
		return nil, s.levelErr
	}
	return &cwc.Observation{Value: s.level, MeasuredAt: time.Now()}, nil
}

func (s *stubGauge) LatestRainfall(_ context.Context) (*cwc.Observation, error) {
	return &cwc.Observation{Value: s.rainfall, MeasuredAt: time.Now()}, nil
}

type testServices struct {
	stations *station.Service
	weather  *weather.Service
	river    *river.Service
	requests *datarequest.Service
}

func newTestServices(t *testing.T) testServices {
	t.Helper()
	logger := zerolog.Nop()

	stationService := station.NewService(station.NewSeededMemoryRepository(), logger)

	weatherService, err := weather.NewService(weather.ServiceConfig{
		Repository: weather.NewMemoryRepository(),
		Logger:     logger,
	})
	require.NoError(t, err)

	riverService := river.NewService(river.ServiceConfig{
		Provider: &stubGauge{level: 2.4, rainfall: 0.2},
		Logger:   logger,
	})

	requestService := datarequest.NewService(datarequest.ServiceConfig{
		Repo:     datarequest.NewMemoryRepository(),
		Stations: stationService,
		Logger:   logger,
	})

	return testServices{
		stations: stationService,
		weather:  weatherService,
		river:    riverService,
		requests: requestService,
	}
}

func ingestReading(t *testing.T, svc *weather.Service, stationID string, observedAt time.Time) {
	t.Helper()
	require.NoError(t, svc.Ingest(context.Background(), &weather.Reading{
		StationID:     stationID,
		Temperature:   28.5,
		Humidity:      78,
		AirPressure:   1008,
		WindSpeedAvg:  12,
		WindDirection: 230,
		Rainfall1h:    0.4,
		Rainfall24h:   6.2,
		ObservedAt:    observedAt,
	}))
}

func TestRefreshJobRun(t *testing.T) {
	svcs := newTestServices(t)

	// Seed a reading for every registered station so cache warming succeeds.
	stations, err := svcs.stations.List(context.Background())
	require.NoError(t, err)
	for _, s := range stations {
		ingestReading(t, svcs.weather, s.ID, time.Now().Add(-time.Minute))
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Logger:         zerolog.Nop(),
		StationService: svcs.stations,
		WeatherService: svcs.weather,
		RiverService:   svcs.river,
	})

	result := job.Run(context.Background())

	assert.Equal(t, len(stations), result.TotalStations)
	assert.Equal(t, len(stations), result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRefreshes)
	assert.Equal(t, int64(len(stations)), metrics.WeatherRefresh)
	assert.Equal(t, int64(1), metrics.RiverRefresh)
	assert.False(t, metrics.LastRefreshAt.IsZero())
}

func TestRefreshJobReportsMissingReadings(t *testing.T) {
	svcs := newTestServices(t)

	// Only station 1 has a reading; the rest fail to warm.
	ingestReading(t, svcs.weather, "1", time.Now().Add(-time.Minute))

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Logger:         zerolog.Nop(),
		StationService: svcs.stations,
		WeatherService: svcs.weather,
		RiverService:   svcs.river,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, result.TotalStations-1, result.Failed)
	assert.NotEmpty(t, result.Errors)
}

func TestRefreshJobConfiguredStations(t *testing.T) {
	svcs := newTestServices(t)
	ingestReading(t, svcs.weather, "2", time.Now().Add(-time.Minute))

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:         worker.RefreshConfig{StationIDs: []string{"2"}},
		Logger:         zerolog.Nop(),
		StationService: svcs.stations,
		WeatherService: svcs.weather,
		RiverService:   svcs.river,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.TotalStations)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 0, result.Failed)
}

func TestRefreshMetricsAccumulate(t *testing.T) {
	svcs := newTestServices(t)

	stations, err := svcs.stations.List(context.Background())
	require.NoError(t, err)
	for _, s := range stations {
		ingestReading(t, svcs.weather, s.ID, time.Now().Add(-time.Minute))
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Logger:         zerolog.Nop(),
		StationService: svcs.stations,
		WeatherService: svcs.weather,
		RiverService:   svcs.river,
	})

	const runs = 3
	for i := 0; i < runs; i++ {
		job.Run(context.Background())
	}

	metrics := job.GetMetrics()
	assert.Equal(t, int64(runs), metrics.TotalRefreshes)
	assert.Equal(t, int64(runs*len(stations)), metrics.WeatherRefresh)
	assert.Equal(t, int64(runs), metrics.RiverRefresh)
}

func TestRefreshRiver(t *testing.T) {
	svcs := newTestServices(t)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Logger:       zerolog.Nop(),
		RiverService: svcs.river,
	})

	require.NoError(t, job.RefreshRiver(context.Background()))
	assert.Equal(t, int64(1), job.GetMetrics().RiverRefresh)
}

func submitRequest(t *testing.T, svcs testServices) *datarequest.Request {
	t.Helper()
	req, err := svcs.requests.Submit(context.Background(), &datarequest.Request{
		Email:        "researcher@example.org",
		Organization: "CUSAT",
		Purpose:      "monsoon variability study",
		StartDate:    time.Now().Add(-72 * time.Hour),
		EndDate:      time.Now(),
		StationID:    "1",
		Format:       datarequest.FormatCSV,
		Parameters:   []string{"temperature", "rainfall24h"},
	})
	require.NoError(t, err)
	return req
}

func TestFulfillJobCompletesRequest(t *testing.T) {
	svcs := newTestServices(t)
	ingestReading(t, svcs.weather, "1", time.Now().Add(-time.Hour))

	req := submitRequest(t, svcs)

	job := worker.NewFulfillJob(worker.FulfillJobConfig{
		Requests:       svcs.requests,
		WeatherService: svcs.weather,
		Logger:         zerolog.Nop(),
	})

	require.NoError(t, job.Run(context.Background(), req.ID))

	got, err := svcs.requests.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, datarequest.StatusCompleted, got.Status)

	// A completed request has a rendered artifact behind it.
	exp, err := svcs.requests.Export(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", exp.ContentType)

	body := string(exp.Body)
	assert.Contains(t, body, "observedAt,temperature,rainfall24h")
	assert.Contains(t, body, "28.5")
}

func TestFulfillJobUnknownRequest(t *testing.T) {
	svcs := newTestServices(t)

	job := worker.NewFulfillJob(worker.FulfillJobConfig{
		Requests:       svcs.requests,
		WeatherService: svcs.weather,
		Logger:         zerolog.Nop(),
	})

	err := job.Run(context.Background(), "no-such-request")
	assert.ErrorIs(t, err, datarequest.ErrRequestNotFound)
}

func TestFulfillJobSkipsNonPending(t *testing.T) {
	svcs := newTestServices(t)
	ingestReading(t, svcs.weather, "1", time.Now().Add(-time.Hour))

	req := submitRequest(t, svcs)
	require.NoError(t, svcs.requests.Transition(context.Background(), req.ID, datarequest.StatusProcessing))
	require.NoError(t, svcs.requests.Transition(context.Background(), req.ID, datarequest.StatusRejected))

	job := worker.NewFulfillJob(worker.FulfillJobConfig{
		Requests:       svcs.requests,
		WeatherService: svcs.weather,
		Logger:         zerolog.Nop(),
	})

	// Terminal requests are left untouched.
	require.NoError(t, job.Run(context.Background(), req.ID))

	got, err := svcs.requests.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, datarequest.StatusRejected, got.Status)
}

func TestFulfillJobPendingSweep(t *testing.T) {
	svcs := newTestServices(t)
	ingestReading(t, svcs.weather, "1", time.Now().Add(-time.Hour))

	first := submitRequest(t, svcs)
	second := submitRequest(t, svcs)

	job := worker.NewFulfillJob(worker.FulfillJobConfig{
		Requests:       svcs.requests,
		WeatherService: svcs.weather,
		Logger:         zerolog.Nop(),
	})

	require.NoError(t, job.RunPendingSweep(context.Background()))

	for _, id := range []string{first.ID, second.ID} {
		got, err := svcs.requests.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, datarequest.StatusCompleted, got.Status)
	}

	pending, err := svcs.requests.List(context.Background(), datarequest.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
