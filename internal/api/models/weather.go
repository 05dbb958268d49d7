package models

import (
	"time"

	"github.com/stationwatch/stationwatch/internal/weather"
)

// WeatherResponse is the live reading served by GET /api/weather.
// Field names are part of the dashboard wire contract.
type WeatherResponse struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	AirPressure   float64 `json:"airPressure"`
	WindSpeedAvg  float64 `json:"WindSpeedAvg"`
	WindDirection float64 `json:"windDirection"`
	Rainfall1h    float64 `json:"rainfall1h"`
	Rainfall24h   float64 `json:"rainfall24h"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
}

// NewWeatherResponse converts a stored reading to the wire shape. The
// observation instant is split into separate date and time fields.
func NewWeatherResponse(r *weather.Reading) *WeatherResponse {
	return &WeatherResponse{
		Temperature:   r.Temperature,
		Humidity:      r.Humidity,
		AirPressure:   r.AirPressure,
		WindSpeedAvg:  r.WindSpeedAvg,
		WindDirection: r.WindDirection,
		Rainfall1h:    r.Rainfall1h,
		Rainfall24h:   r.Rainfall24h,
		Date:          r.ObservedAt.Format("2006-01-02"),
		Time:          r.ObservedAt.Format("15:04:05"),
	}
}

// HistoricalPoint is one sample in the historical series.
type HistoricalPoint struct {
	Timestamp    string  `json:"timestamp"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	AirPressure  float64 `json:"airPressure"`
	WindSpeedAvg float64 `json:"WindSpeedAvg"`
	Rainfall1h   float64 `json:"rainfall1h"`
	Rainfall24h  float64 `json:"rainfall24h"`
}

// HistoricalDataResponse is served by GET /api/historical-data.
type HistoricalDataResponse struct {
	Data []HistoricalPoint `json:"data"`
}

// NewHistoricalDataResponse converts stored readings to the wire shape.
func NewHistoricalDataResponse(readings []weather.Reading) *HistoricalDataResponse {
	points := make([]HistoricalPoint, 0, len(readings))
	for _, r := range readings {
		points = append(points, HistoricalPoint{
			Timestamp:    r.ObservedAt.Format(time.RFC3339),
			Temperature:  r.Temperature,
			Humidity:     r.Humidity,
			AirPressure:  r.AirPressure,
			WindSpeedAvg: r.WindSpeedAvg,
			Rainfall1h:   r.Rainfall1h,
			Rainfall24h:  r.Rainfall24h,
		})
	}
	return &HistoricalDataResponse{Data: points}
}

// IngestReadingRequest is the body of POST /api/admin/stations/{stationId}/readings,
// used by station firmware to push observations.
type IngestReadingRequest struct {
	Temperature   float64    `json:"temperature"`
	Humidity      float64    `json:"humidity"`
	AirPressure   float64    `json:"airPressure"`
	WindSpeedAvg  float64    `json:"WindSpeedAvg"`
	WindDirection float64    `json:"windDirection"`
	Rainfall1h    float64    `json:"rainfall1h"`
	Rainfall24h   float64    `json:"rainfall24h"`
	ObservedAt    *Timestamp `json:"observedAt,omitempty"`
}

// Reading converts the request to a domain reading for the given station.
// A missing observedAt defaults to the ingestion time.
func (req *IngestReadingRequest) Reading(stationID string) *weather.Reading {
	observedAt := time.Now()
	if req.ObservedAt != nil {
		observedAt = req.ObservedAt.Time()
	}

	return &weather.Reading{
		StationID:     stationID,
		Temperature:   req.Temperature,
		Humidity:      req.Humidity,
		AirPressure:   req.AirPressure,
		WindSpeedAvg:  req.WindSpeedAvg,
		WindDirection: req.WindDirection,
		Rainfall1h:    req.Rainfall1h,
		Rainfall24h:   req.Rainfall24h,
		ObservedAt:    observedAt,
	}
}
