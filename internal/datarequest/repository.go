package datarequest

import (
	"context"
	"sort"
	"sync"
)

// Repository persists data requests.
type Repository interface {
	// Create stores a new request.
	Create(ctx context.Context, req *Request) error

	// Get returns a request by ID, or ErrRequestNotFound.
	Get(ctx context.Context, id string) (*Request, error)

	// List returns requests filtered by status. An empty status returns
	// all requests, newest first.
	List(ctx context.Context, status Status) ([]*Request, error)

	// UpdateStatus moves a request to a new status, or returns
	// ErrRequestNotFound.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// SaveExport stores the rendered export for a request, replacing any
	// earlier one.
	SaveExport(ctx context.Context, exp *Export) error

	// GetExport returns the rendered export for a request, or
	// ErrExportNotFound.
	GetExport(ctx context.Context, requestID string) (*Export, error)
}

// MemoryRepository is an in-memory Repository for tests and local
// development.
type MemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*Request
	exports  map[string]*Export
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		requests: make(map[string]*Request),
		exports:  make(map[string]*Export),
	}
}

func (r *MemoryRepository) Create(_ context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *MemoryRepository) List(_ context.Context, status Status) ([]*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Request, 0, len(r.requests))
	for _, req := range r.requests {
		if status != "" && req.Status != status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	req.Status = status
	return nil
}

func (r *MemoryRepository) SaveExport(_ context.Context, exp *Export) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *exp
	r.exports[exp.RequestID] = &cp
	return nil
}

func (r *MemoryRepository) GetExport(_ context.Context, requestID string) (*Export, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exp, ok := r.exports[requestID]
	if !ok {
		return nil, ErrExportNotFound
	}
	cp := *exp
	return &cp, nil
}
