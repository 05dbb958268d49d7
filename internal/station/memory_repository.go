package station

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and local runs.
type MemoryRepository struct {
	mu       sync.RWMutex
	stations map[string]*Station
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{stations: make(map[string]*Station)}
}

// NewSeededMemoryRepository creates a repository preloaded with Seed().
func NewSeededMemoryRepository() *MemoryRepository {
	repo := NewMemoryRepository()
	now := time.Now()
	for _, s := range Seed() {
		s.CreatedAt = now
		s.UpdatedAt = now
		copied := s
		repo.stations[s.ID] = &copied
	}
	return repo
}

// Get retrieves a station by ID.
func (r *MemoryRepository) Get(_ context.Context, id string) (*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stations[id]
	if !ok {
		return nil, ErrStationNotFound
	}
	copied := *s
	return &copied, nil
}

// List retrieves all stations ordered by ID.
func (r *MemoryRepository) List(_ context.Context) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stations := make([]*Station, 0, len(r.stations))
	for _, s := range r.stations {
		copied := *s
		stations = append(stations, &copied)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

// Create stores a new station.
func (r *MemoryRepository) Create(_ context.Context, s *Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stations[s.ID]; ok {
		return ErrStationExists
	}

	copied := *s
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.stations[s.ID] = &copied
	return nil
}

// Update replaces an existing station.
func (r *MemoryRepository) Update(_ context.Context, s *Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.stations[s.ID]
	if !ok {
		return ErrStationNotFound
	}

	copied := *s
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now()
	r.stations[s.ID] = &copied
	return nil
}
