// Package river provides the river monitoring snapshot: current water
// level, rainfall, alert classification, and a short level forecast.
package river

import (
	"errors"
	"time"
)

// River errors.
var (
	ErrUnavailable = errors.New("river data unavailable")
)

// Alert thresholds in meters for the monitored gauge.
const (
	ThresholdNormal  = 3.0
	ThresholdWatch   = 4.0
	ThresholdWarning = 5.0
)

// AlertLevel classifies a water level against the gauge thresholds.
type AlertLevel string

const (
	AlertNormal   AlertLevel = "normal"
	AlertWatch    AlertLevel = "watch"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// AlertFor returns the alert level for a water level in meters.
func AlertFor(waterLevel float64) AlertLevel {
	switch {
	case waterLevel < ThresholdNormal:
		return AlertNormal
	case waterLevel < ThresholdWatch:
		return AlertWatch
	case waterLevel < ThresholdWarning:
		return AlertWarning
	default:
		return AlertCritical
	}
}

// Snapshot is the dashboard's view of the river gauge.
type Snapshot struct {
	WaterLevel     float64 // meters
	WaterLevelTime time.Time
	Rainfall       float64 // mm over the reporting window
	RainfallTime   time.Time
	Alert          AlertLevel
	Forecast       []float64 // projected levels, one per forecast step
	FetchedAt      time.Time
}
