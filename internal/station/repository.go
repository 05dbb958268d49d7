package station

import "context"

// Repository defines storage operations for station descriptors.
type Repository interface {
	// Get retrieves a station by ID. Returns ErrStationNotFound if missing.
	Get(ctx context.Context, id string) (*Station, error)

	// List retrieves all stations ordered by ID.
	List(ctx context.Context) ([]*Station, error)

	// Create stores a new station. Returns ErrStationExists on duplicate ID.
	Create(ctx context.Context, s *Station) error

	// Update replaces an existing station's descriptor.
	Update(ctx context.Context, s *Station) error
}
