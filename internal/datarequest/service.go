package datarequest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/station"
)

// StationGetter resolves a station ID to a registered station.
type StationGetter interface {
	Get(ctx context.Context, id string) (*station.Station, error)
}

// Notifier announces newly submitted requests to the fulfillment worker.
type Notifier interface {
	RequestSubmitted(ctx context.Context, req *Request) error
}

// ServiceConfig holds configuration for the data request service.
type ServiceConfig struct {
	Repo     Repository
	Stations StationGetter

	// Notifier may be nil, in which case submissions are stored but not
	// announced.
	Notifier Notifier

	Logger zerolog.Logger
}

// Service handles data request submission and fulfillment tracking.
type Service struct {
	repo     Repository
	stations StationGetter
	notifier Notifier
	logger   zerolog.Logger
}

// NewService creates a new data request service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:     cfg.Repo,
		stations: cfg.Stations,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}
}

// Submit validates and stores a new data request. The request is assigned
// an ID and starts in PENDING. Returns *ValidationError on bad input and
// station.ErrStationNotFound for an unknown station.
func (s *Service) Submit(ctx context.Context, req *Request) (*Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.stations.Get(ctx, req.StationID); err != nil {
		return nil, err
	}

	now := time.Now()
	req.ID = uuid.NewString()
	req.Status = StatusPending
	req.CreatedAt = now
	req.UpdatedAt = now

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("storing data request: %w", err)
	}

	s.logger.Info().
		Str("request_id", req.ID).
		Str("station_id", req.StationID).
		Str("format", string(req.Format)).
		Msg("data request submitted")

	// The stored request is the source of truth; a failed announcement is
	// retried by the worker's periodic sweep of PENDING requests.
	if s.notifier != nil {
		if err := s.notifier.RequestSubmitted(ctx, req); err != nil {
			s.logger.Warn().Err(err).Str("request_id", req.ID).
				Msg("failed to announce data request")
		}
	}

	return req, nil
}

// Get returns a request by ID.
func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	return s.repo.Get(ctx, id)
}

// List returns requests filtered by status; empty status returns all.
func (s *Service) List(ctx context.Context, status Status) ([]*Request, error) {
	return s.repo.List(ctx, status)
}

// SaveExport stores the rendered export fulfilling a request.
func (s *Service) SaveExport(ctx context.Context, exp *Export) error {
	if err := s.repo.SaveExport(ctx, exp); err != nil {
		return fmt.Errorf("storing export for request %s: %w", exp.RequestID, err)
	}

	s.logger.Info().
		Str("request_id", exp.RequestID).
		Str("filename", exp.Filename).
		Int("bytes", len(exp.Body)).
		Msg("export stored")
	return nil
}

// Export returns the rendered export for a request, or ErrExportNotFound
// when fulfillment has not produced one yet.
func (s *Service) Export(ctx context.Context, requestID string) (*Export, error) {
	return s.repo.GetExport(ctx, requestID)
}

// Transition moves a request to a new status, enforcing the fulfillment
// lifecycle: PENDING requests may start PROCESSING or be REJECTED, and
// PROCESSING requests may be COMPLETED or REJECTED.
func (s *Service) Transition(ctx context.Context, id string, to Status) error {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !validTransition(req.Status, to) {
		return fmt.Errorf("invalid transition %s -> %s for request %s", req.Status, to, id)
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}

	s.logger.Info().
		Str("request_id", id).
		Str("from", string(req.Status)).
		Str("to", string(to)).
		Msg("data request transitioned")
	return nil
}

func validTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusRejected
	case StatusProcessing:
		return to == StatusCompleted || to == StatusRejected
	default:
		return false
	}
}
