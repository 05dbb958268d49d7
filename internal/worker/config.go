// Package worker provides background job processing for StationWatch:
// cache warming for station readings and the river gauge, and fulfillment
// of historical-data requests.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the refresh job.
type RefreshConfig struct {
	// StationIDs are the stations to refresh. If empty, all active
	// stations from the registry are refreshed.
	StationIDs []string

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshWeather enables warming the latest-reading cache.
	// Default: true
	RefreshWeather bool

	// RefreshRiver enables refreshing the river gauge snapshot.
	// Default: true
	RefreshRiver bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency:    3,
		Timeout:        30 * time.Second,
		RefreshWeather: true,
		RefreshRiver:   true,
	}
}
