package weather

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines storage operations for readings.
type Repository interface {
	// Insert stores a reading.
	Insert(ctx context.Context, r *Reading) error

	// Latest returns the newest reading for a station.
	// Returns ErrNoReading when the station has never reported.
	Latest(ctx context.Context, stationID string) (*Reading, error)

	// History returns readings for the station from the last N days,
	// oldest first.
	History(ctx context.Context, stationID string, days int) ([]Reading, error)
}

// MemoryRepository is an in-memory Repository for tests and local runs.
type MemoryRepository struct {
	mu       sync.RWMutex
	readings map[string][]Reading
}

// NewMemoryRepository creates an empty in-memory reading store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{readings: make(map[string][]Reading)}
}

// Insert stores a reading.
func (m *MemoryRepository) Insert(_ context.Context, r *Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *r
	stored.StoredAt = time.Now()
	m.readings[r.StationID] = append(m.readings[r.StationID], stored)
	return nil
}

// Latest returns the newest reading for a station.
func (m *MemoryRepository) Latest(_ context.Context, stationID string) (*Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.readings[stationID]
	if len(all) == 0 {
		return nil, ErrNoReading
	}

	latest := all[0]
	for _, r := range all[1:] {
		if r.ObservedAt.After(latest.ObservedAt) {
			latest = r
		}
	}
	return &latest, nil
}

// History returns readings from the last N days, oldest first.
func (m *MemoryRepository) History(_ context.Context, stationID string, days int) ([]Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	var out []Reading
	for _, r := range m.readings[stationID] {
		if r.ObservedAt.After(cutoff) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObservedAt.Before(out[j].ObservedAt) })
	return out, nil
}
