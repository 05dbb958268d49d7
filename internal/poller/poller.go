// Package poller provides a generic polling controller for remote resources.
// A Poller owns its ticker and in-flight request exclusively: it refreshes on
// a fixed cadence, keeps last-known data visible when a refresh fails, and
// discards superseded responses so state always reflects the newest request.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FetchFunc retrieves the remote resource. Implementations must honor
// context cancellation; the poller aborts in-flight fetches on timeout,
// supersession, and teardown through the context.
type FetchFunc[T any] func(ctx context.Context) (*T, error)

// State is a snapshot of the poller's view of the resource.
// Data and Err are not mutually exclusive: after a failed refresh the
// previous Data stays visible alongside the new Err.
type State[T any] struct {
	// Data is the most recently fetched value, nil before the first success.
	Data *T

	// Loading is true only while a non-silent request is outstanding.
	Loading bool

	// Err is the classified failure of the latest completed refresh,
	// nil after a success.
	Err *Error

	// LastUpdated is the completion time of the latest successful refresh.
	LastUpdated time.Time
}

// Config governs a poller's cadence.
type Config struct {
	// Interval between automatic silent refreshes. Default: 30 seconds.
	Interval time.Duration

	// Timeout for a single fetch. Default: 10 seconds.
	Timeout time.Duration

	// Logger for refresh outcomes.
	Logger zerolog.Logger
}

// Poller polls a single resource. Create one per resource key; switching
// keys means stopping the old poller and starting a new one.
type Poller[T any] struct {
	fetch FetchFunc[T]
	cfg   Config

	mu       sync.Mutex
	state    State[T]
	gen      uint64 // generation of the newest issued request
	cancel   context.CancelFunc
	stopped  bool
	stopOnce sync.Once
	stopTick context.CancelFunc

	updates chan State[T]
}

// New creates a poller for the given fetch function.
func New[T any](fetch FetchFunc[T], cfg Config) *Poller[T] {
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Poller[T]{
		fetch:   fetch,
		cfg:     cfg,
		updates: make(chan State[T], 32),
	}
}

// State returns the current snapshot.
func (p *Poller[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Updates returns a channel of state snapshots, one per state change.
// The channel is closed by Stop. Slow consumers miss intermediate
// snapshots rather than blocking the poller.
func (p *Poller[T]) Updates() <-chan State[T] {
	return p.updates
}

// Start performs an initial refresh and then refreshes silently every
// Interval until Stop is called or ctx is cancelled. The first refresh is
// not silent so consumers can show a loading indicator on mount.
func (p *Poller[T]) Start(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.stopped || p.stopTick != nil {
		p.mu.Unlock()
		cancel()
		return
	}
	p.stopTick = cancel
	p.mu.Unlock()

	go func() {
		p.Refresh(tickCtx, false)

		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				p.Refresh(tickCtx, true)
			}
		}
	}()
}

// Stop tears the poller down: the ticker stops, any in-flight request is
// aborted, the updates channel is closed, and no state mutation happens
// afterwards. Stop is idempotent.
func (p *Poller[T]) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.state.Loading = false
		if p.stopTick != nil {
			p.stopTick()
		}
		if p.cancel != nil {
			p.cancel()
		}
		p.mu.Unlock()

		close(p.updates)
	})
}

// Refresh fetches the resource once and applies the result to the state.
// A refresh issued while another is outstanding cancels the outstanding
// one; whichever request was issued last wins, regardless of the order in
// which responses arrive. When silent is true the loading flag is left
// untouched so background ticks do not flicker the UI.
func (p *Poller[T]) Refresh(ctx context.Context, silent bool) State[T] {
	p.mu.Lock()
	if p.stopped {
		defer p.mu.Unlock()
		return p.state
	}

	// Cancel the outstanding request, if any. Last request wins.
	if p.cancel != nil {
		p.cancel()
	}

	p.gen++
	gen := p.gen

	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	p.cancel = cancel

	if !silent {
		p.state.Loading = true
		p.publishLocked()
	}
	p.mu.Unlock()

	data, err := p.fetch(reqCtx)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Discard results that arrive after teardown or after a newer request
	// was issued. The generation check, not completion order, decides.
	if p.stopped || gen != p.gen {
		return p.state
	}
	p.cancel = nil

	// No request is outstanding once a result is applied, even when this
	// silent refresh superseded a non-silent one that had set the flag.
	p.state.Loading = false

	if err != nil {
		// A cancelled parent context means teardown raced the fetch;
		// leave the state as-is rather than reporting a phantom failure.
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return p.state
		}

		perr := Classify(err)
		p.state.Err = perr
		p.cfg.Logger.Warn().
			Str("kind", string(perr.Kind)).
			Int("status", perr.Status).
			Err(err).
			Msg("refresh failed, keeping stale data")
		p.publishLocked()
		return p.state
	}

	p.state.Data = data
	p.state.Err = nil
	p.state.LastUpdated = time.Now()
	p.publishLocked()
	return p.state
}

// publishLocked sends the current state to subscribers without blocking.
// Callers must hold p.mu.
func (p *Poller[T]) publishLocked() {
	select {
	case p.updates <- p.state:
	default:
	}
}
