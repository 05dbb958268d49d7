package upstream

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Health is a point-in-time view of a provider client.
type Health struct {
	Provider      string
	CircuitState  gobreaker.State
	LastSuccessAt time.Time
	LastFailureAt time.Time
	LastError     string
}

// Healthy reports whether the circuit is closed.
func (h Health) Healthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Degraded reports whether the circuit is probing (half-open).
func (h Health) Degraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}
