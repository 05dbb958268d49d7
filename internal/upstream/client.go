// Package upstream provides a resilient HTTP client for the collector's
// calls to external data providers. Requests retry with exponential backoff
// behind a circuit breaker. The dashboard polling path does not use this
// package: pollers retry on their own fixed cadence.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrUnavailable is returned when the circuit breaker refuses the call.
	ErrUnavailable = errors.New("upstream provider unavailable")
)

// StatusError reports a retryable 5xx response from the provider.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

// ClientConfig holds configuration for a resilient upstream client.
type ClientConfig struct {
	// Name identifies the provider for circuit breaker naming and health.
	Name string

	// Timeout per HTTP attempt. Default: 15 seconds.
	Timeout time.Duration

	// MaxRetries per request. Default: 3.
	MaxRetries uint64

	// InitialInterval is the first backoff delay. Default: 200ms.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay. Default: 5 seconds.
	MaxInterval time.Duration

	// BreakerTimeout is how long the circuit stays open. Default: 60s.
	BreakerTimeout time.Duration

	// Metrics records per-request instruments when set.
	Metrics *Metrics
}

// Client wraps http.Client with retries and a circuit breaker, and records
// per-provider health for the ops status endpoint.
type Client struct {
	name    string
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]

	mu            sync.RWMutex
	lastSuccessAt time.Time
	lastFailureAt time.Time
	lastError     string
}

// NewClient creates a resilient client for the named provider.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip at a 50% failure rate once we have a real sample.
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.5
		},
	})

	return &Client{
		name:    cfg.Name,
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Do executes the request, retrying network failures and 5xx responses.
// Returns ErrUnavailable immediately while the circuit is open. The caller
// owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var result *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, doErr := c.http.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 {
				_ = r.Body.Close()
				return nil, &StatusError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrUnavailable)
			}
			return err
		}

		result = resp
		return nil
	}

	start := time.Now()
	if err := backoff.Retry(operation, policy); err != nil {
		c.recordFailure(err)
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.RecordRequest(c.name, req.URL.Path, time.Since(start), err)
		}
		return nil, err
	}

	c.recordSuccess()
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.RecordRequest(c.name, req.URL.Path, time.Since(start), nil)
	}
	return result, nil
}

// Health returns the client's current health snapshot.
func (c *Client) Health() Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Health{
		Provider:      c.name,
		CircuitState:  c.breaker.State(),
		LastSuccessAt: c.lastSuccessAt,
		LastFailureAt: c.lastFailureAt,
		LastError:     c.lastError,
	}
}

func (c *Client) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSuccessAt = time.Now()
	c.lastError = ""
}

func (c *Client) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFailureAt = time.Now()
	c.lastError = err.Error()
}
