package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/datarequest"
	"github.com/stationwatch/stationwatch/internal/weather"
)

// FulfillJob processes submitted historical-data requests: it gathers the
// requested readings and moves the request through its lifecycle.
type FulfillJob struct {
	requests       *datarequest.Service
	weatherService *weather.Service
	logger         zerolog.Logger
}

// FulfillJobConfig holds configuration for creating a FulfillJob.
type FulfillJobConfig struct {
	Requests       *datarequest.Service
	WeatherService *weather.Service
	Logger         zerolog.Logger
}

// NewFulfillJob creates a new fulfillment job processor.
func NewFulfillJob(cfg FulfillJobConfig) *FulfillJob {
	return &FulfillJob{
		requests:       cfg.Requests,
		weatherService: cfg.WeatherService,
		logger:         cfg.Logger,
	}
}

// Run fulfills a single request by ID. A request that cannot be fulfilled
// is marked REJECTED so it is not retried forever.
func (j *FulfillJob) Run(ctx context.Context, requestID string) error {
	req, err := j.requests.Get(ctx, requestID)
	if err != nil {
		return fmt.Errorf("loading request %s: %w", requestID, err)
	}

	// Already picked up by another worker or already terminal.
	if req.Status != datarequest.StatusPending {
		j.logger.Info().
			Str("request_id", requestID).
			Str("status", string(req.Status)).
			Msg("skipping non-pending request")
		return nil
	}

	if err := j.requests.Transition(ctx, requestID, datarequest.StatusProcessing); err != nil {
		return fmt.Errorf("starting request %s: %w", requestID, err)
	}

	if err := j.export(ctx, req); err != nil {
		j.logger.Error().Err(err).Str("request_id", requestID).Msg("fulfillment failed")
		if terr := j.requests.Transition(ctx, requestID, datarequest.StatusRejected); terr != nil {
			j.logger.Error().Err(terr).Str("request_id", requestID).Msg("failed to reject request")
		}
		return err
	}

	if err := j.requests.Transition(ctx, requestID, datarequest.StatusCompleted); err != nil {
		return fmt.Errorf("completing request %s: %w", requestID, err)
	}

	j.logger.Info().
		Str("request_id", requestID).
		Str("station_id", req.StationID).
		Str("format", string(req.Format)).
		Msg("data request fulfilled")
	return nil
}

// RunPendingSweep fulfills all PENDING requests. It backs the periodic
// sweep that catches requests whose Pub/Sub announcement was lost.
func (j *FulfillJob) RunPendingSweep(ctx context.Context) error {
	pending, err := j.requests.List(ctx, datarequest.StatusPending)
	if err != nil {
		return fmt.Errorf("listing pending requests: %w", err)
	}

	for _, req := range pending {
		if err := j.Run(ctx, req.ID); err != nil {
			j.logger.Error().Err(err).Str("request_id", req.ID).Msg("sweep fulfillment failed")
		}
	}
	return nil
}

func (j *FulfillJob) export(ctx context.Context, req *datarequest.Request) error {
	days := int(time.Since(req.StartDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if days > 90 {
		days = 90
	}

	readings, err := j.weatherService.History(ctx, req.StationID, days)
	if err != nil {
		return fmt.Errorf("loading readings for station %s: %w", req.StationID, err)
	}

	// Keep only readings inside the requested window; History is bounded
	// by days-from-now, not by the window's end.
	selected := readings[:0:0]
	for i := range readings {
		if !readings[i].ObservedAt.Before(req.StartDate) &&
			!readings[i].ObservedAt.After(req.EndDate.Add(24*time.Hour)) {
			selected = append(selected, readings[i])
		}
	}

	exp, err := datarequest.RenderExport(req, selected)
	if err != nil {
		return fmt.Errorf("rendering export for request %s: %w", req.ID, err)
	}

	if err := j.requests.SaveExport(ctx, exp); err != nil {
		return err
	}

	j.logger.Info().
		Str("request_id", req.ID).
		Int("readings", len(selected)).
		Str("format", string(req.Format)).
		Str("filename", exp.Filename).
		Int("bytes", len(exp.Body)).
		Msg("export stored")
	return nil
}
