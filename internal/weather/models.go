// Package weather provides storage and cached access to station sensor
// readings.
package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrNoReading      = errors.New("no reading for station")
	ErrInvalidReading = errors.New("invalid reading")
)

// Reading is a single observation reported by a station.
type Reading struct {
	StationID string

	// Temperature in Celsius
	Temperature float64

	// Humidity percentage (0-100)
	Humidity float64

	// AirPressure in hPa
	AirPressure float64

	// Wind data
	WindSpeedAvg  float64 // km/h, averaged over the reporting window
	WindDirection float64 // degrees (0-360, 0=N)

	// Rainfall accumulations in mm
	Rainfall1h  float64
	Rainfall24h float64

	// Timestamps
	ObservedAt time.Time
	StoredAt   time.Time
}

// Validate checks the reading's fields against physical bounds.
func (r *Reading) Validate() error {
	if r.StationID == "" {
		return ErrInvalidReading
	}
	if r.Humidity < 0 || r.Humidity > 100 {
		return ErrInvalidReading
	}
	if r.Rainfall1h < 0 || r.Rainfall24h < 0 {
		return ErrInvalidReading
	}
	if r.WindDirection < 0 || r.WindDirection > 360 {
		return ErrInvalidReading
	}
	if r.ObservedAt.IsZero() {
		return ErrInvalidReading
	}
	return nil
}
