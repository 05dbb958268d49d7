package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Repository is the reading store.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a latest-reading lookup stays fresh
	// (default: 30 seconds, matching the dashboard poll cadence).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale readings on storage errors
	// (default: 1 hour).
	StaleIfErrorTTL time.Duration

	// HistoryCacheSize bounds the history query cache (default: 128).
	HistoryCacheSize int

	// HistoryCacheTTL is how long a history query stays fresh
	// (default: 5 minutes).
	HistoryCacheTTL time.Duration
}

// Service provides cached access to station readings.
type Service struct {
	repo            Repository
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	historyTTL      time.Duration

	mu     sync.RWMutex
	latest map[string]*cachedReading

	history *lru.Cache[string, *historyEntry]
}

type cachedReading struct {
	reading   *Reading
	fetchedAt time.Time
	expiresAt time.Time
}

type historyEntry struct {
	readings  []Reading
	expiresAt time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.StaleIfErrorTTL == 0 {
		cfg.StaleIfErrorTTL = 1 * time.Hour
	}
	if cfg.HistoryCacheSize == 0 {
		cfg.HistoryCacheSize = 128
	}
	if cfg.HistoryCacheTTL == 0 {
		cfg.HistoryCacheTTL = 5 * time.Minute
	}

	historyCache, err := lru.New[string, *historyEntry](cfg.HistoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating history cache: %w", err)
	}

	return &Service{
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		historyTTL:      cfg.HistoryCacheTTL,
		latest:          make(map[string]*cachedReading),
		history:         historyCache,
	}, nil
}

// Ingest validates and stores a reading, then invalidates the station's
// cache entries so the next lookup sees it.
func (s *Service) Ingest(ctx context.Context, r *Reading) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if err := s.repo.Insert(ctx, r); err != nil {
		return fmt.Errorf("storing reading: %w", err)
	}

	s.mu.Lock()
	delete(s.latest, r.StationID)
	s.mu.Unlock()

	// History entries for this station are keyed by day span; drop them all.
	for _, key := range s.history.Keys() {
		if keyStation(key) == r.StationID {
			s.history.Remove(key)
		}
	}

	s.logger.Debug().
		Str("station_id", r.StationID).
		Time("observed_at", r.ObservedAt).
		Msg("reading ingested")
	return nil
}

// Latest returns the newest reading for a station, cached.
func (s *Service) Latest(ctx context.Context, stationID string) (*Reading, error) {
	s.mu.RLock()
	if cached, ok := s.latest[stationID]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.reading, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if cached, ok := s.latest[stationID]; ok && time.Now().Before(cached.expiresAt) {
		return cached.reading, nil
	}

	reading, err := s.repo.Latest(ctx, stationID)
	if err != nil {
		if cached, ok := s.latest[stationID]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Str("station_id", stationID).
					Err(err).
					Msg("serving stale reading due to storage error")
				return cached.reading, nil
			}
		}
		return nil, err
	}

	now := time.Now()
	s.latest[stationID] = &cachedReading{
		reading:   reading,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}
	return reading, nil
}

// History returns readings for the last N days, oldest first, cached.
func (s *Service) History(ctx context.Context, stationID string, days int) ([]Reading, error) {
	if days <= 0 {
		days = 7
	}

	key := historyKey(stationID, days)
	if entry, ok := s.history.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			return entry.readings, nil
		}
		s.history.Remove(key)
	}

	readings, err := s.repo.History(ctx, stationID, days)
	if err != nil {
		return nil, err
	}

	s.history.Add(key, &historyEntry{
		readings:  readings,
		expiresAt: time.Now().Add(s.historyTTL),
	})
	return readings, nil
}

func historyKey(stationID string, days int) string {
	return fmt.Sprintf("%s:%d", stationID, days)
}

func keyStation(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
