// Package handler provides HTTP handlers for the StationWatch API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/stationwatch/stationwatch/internal/api/models"
	"github.com/stationwatch/stationwatch/internal/api/response"
	"github.com/stationwatch/stationwatch/internal/station"
	"github.com/stationwatch/stationwatch/internal/weather"
)

// History query bounds for /api/historical-data.
const (
	defaultHistoryDays = 7
	maxHistoryDays     = 90
)

// defaultStationID is used when the dashboard omits station_id; it is the
// first station of the seed set.
const defaultStationID = "1"

// WeatherHandler serves live and historical readings.
type WeatherHandler struct {
	weatherService *weather.Service
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(weatherService *weather.Service) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// GetWeather handles GET /api/weather?station_id=<id>.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		stationID = defaultStationID
	}

	reading, err := h.weatherService.Latest(r.Context(), stationID)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrNoReading), errors.Is(err, station.ErrStationNotFound):
			response.NotFound(w, r, "no reading for station "+stationID)
		default:
			response.InternalError(w, r, "failed to load weather reading")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewWeatherResponse(reading))
}

// GetHistorical handles GET /api/historical-data?days=<n>&station_id=<id>.
func (h *WeatherHandler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		stationID = defaultStationID
	}

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryDays {
			response.BadRequest(w, r, "invalid days parameter", []models.FieldError{
				{Field: "days", Message: "must be an integer between 1 and 90"},
			})
			return
		}
		days = parsed
	}

	readings, err := h.weatherService.History(r.Context(), stationID, days)
	if err != nil {
		response.InternalError(w, r, "failed to load historical data")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewHistoricalDataResponse(readings))
}
