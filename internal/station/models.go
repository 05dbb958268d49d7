// Package station provides the weather-station registry.
package station

import (
	"errors"
	"time"
)

// Station errors.
var (
	ErrStationNotFound = errors.New("station not found")
	ErrStationExists   = errors.New("station already exists")
	ErrInvalidStation  = errors.New("invalid station")
)

// Status indicates whether a station is live or still being commissioned.
type Status string

const (
	StatusActive      Status = "active"
	StatusDevelopment Status = "development"
)

// Station describes a physical weather station. Descriptors are immutable
// at runtime except through the admin endpoints.
type Station struct {
	ID       string
	Name     string
	Location string
	Lat      float64
	Lon      float64
	Status   Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the descriptor's fields.
func (s *Station) Validate() error {
	if s.ID == "" || s.Name == "" {
		return ErrInvalidStation
	}
	if s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 {
		return ErrInvalidStation
	}
	switch s.Status {
	case StatusActive, StatusDevelopment:
	default:
		return ErrInvalidStation
	}
	return nil
}

// Seed returns the initial station set for the Kerala deployment.
func Seed() []Station {
	return []Station{
		{
			ID:       "1",
			Name:     "ASIET Kalady",
			Location: "Kalady, Ernakulam",
			Lat:      10.1681,
			Lon:      76.4307,
			Status:   StatusActive,
		},
		{
			ID:       "2",
			Name:     "Kochi",
			Location: "Ernakulam",
			Lat:      9.9312,
			Lon:      76.2673,
			Status:   StatusActive,
		},
		{
			ID:       "3",
			Name:     "Kozhikode",
			Location: "Kozhikode",
			Lat:      11.2588,
			Lon:      75.7804,
			Status:   StatusActive,
		},
		{
			ID:       "4",
			Name:     "Munnar",
			Location: "Idukki",
			Lat:      10.0889,
			Lon:      77.0595,
			Status:   StatusDevelopment,
		},
	}
}
