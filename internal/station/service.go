package station

import (
	"context"

	"github.com/rs/zerolog"
)

// Service provides station registry operations with validation.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new station service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the station with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*Station, error) {
	if id == "" {
		return nil, ErrInvalidStation
	}
	return s.repo.Get(ctx, id)
}

// List returns all stations.
func (s *Service) List(ctx context.Context) ([]*Station, error) {
	return s.repo.List(ctx)
}

// Create registers a new station.
func (s *Service) Create(ctx context.Context, st *Station) error {
	if err := st.Validate(); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return err
	}

	s.logger.Info().
		Str("station_id", st.ID).
		Str("name", st.Name).
		Str("status", string(st.Status)).
		Msg("station created")
	return nil
}

// Update replaces an existing station's descriptor.
func (s *Service) Update(ctx context.Context, st *Station) error {
	if err := st.Validate(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return err
	}

	s.logger.Info().
		Str("station_id", st.ID).
		Msg("station updated")
	return nil
}
