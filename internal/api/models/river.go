package models

import (
	"time"

	"github.com/stationwatch/stationwatch/internal/river"
)

// RiverDataResponse is served by GET /api/river-data.
type RiverDataResponse struct {
	CurrentWaterLevel float64   `json:"currentWaterLevel"`
	CurrentAlert      string    `json:"currentAlert"`
	WaterLevelTime    string    `json:"waterLevelTime"`
	Rainfall1h        float64   `json:"rainfall1h,omitempty"`
	Forecast          []float64 `json:"forecast"`
}

// NewRiverDataResponse converts a gauge snapshot to the wire shape.
func NewRiverDataResponse(snap *river.Snapshot) *RiverDataResponse {
	return &RiverDataResponse{
		CurrentWaterLevel: snap.WaterLevel,
		CurrentAlert:      string(snap.Alert),
		WaterLevelTime:    snap.WaterLevelTime.Format(time.RFC3339),
		Rainfall1h:        snap.Rainfall,
		Forecast:          snap.Forecast,
	}
}
