package models

import (
	"github.com/stationwatch/stationwatch/internal/station"
)

// StationResponse is one station in GET /api/stations.
type StationResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Status   string  `json:"status"`
}

// NewStationResponse converts a station to the wire shape.
func NewStationResponse(s *station.Station) *StationResponse {
	return &StationResponse{
		ID:       s.ID,
		Name:     s.Name,
		Location: s.Location,
		Lat:      s.Lat,
		Lon:      s.Lon,
		Status:   string(s.Status),
	}
}

// NewStationListResponse converts a station list to the wire shape.
func NewStationListResponse(stations []*station.Station) []*StationResponse {
	out := make([]*StationResponse, 0, len(stations))
	for _, s := range stations {
		out = append(out, NewStationResponse(s))
	}
	return out
}

// StationRequest is the body for admin station create and update.
type StationRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Status   string  `json:"status"`
}

// Station converts the request to a domain station. For updates the path
// ID wins over any ID in the body.
func (req *StationRequest) Station(pathID string) *station.Station {
	id := req.ID
	if pathID != "" {
		id = pathID
	}
	return &station.Station{
		ID:       id,
		Name:     req.Name,
		Location: req.Location,
		Lat:      req.Lat,
		Lon:      req.Lon,
		Status:   station.Status(req.Status),
	}
}
