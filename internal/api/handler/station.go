package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stationwatch/stationwatch/internal/api/models"
	"github.com/stationwatch/stationwatch/internal/api/response"
	"github.com/stationwatch/stationwatch/internal/station"
	"github.com/stationwatch/stationwatch/internal/weather"
)

// StationHandler serves the station registry and the admin endpoints for
// managing stations and ingesting readings.
type StationHandler struct {
	stationService *station.Service
	weatherService *weather.Service
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(stationService *station.Service, weatherService *weather.Service) *StationHandler {
	return &StationHandler{
		stationService: stationService,
		weatherService: weatherService,
	}
}

// List handles GET /api/stations.
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stationService.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list stations")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewStationListResponse(stations))
}

// Get handles GET /api/stations/{stationId}.
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stationId")

	st, err := h.stationService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, station.ErrStationNotFound) {
			response.NotFound(w, r, "station not found")
			return
		}
		response.InternalError(w, r, "failed to load station")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewStationResponse(st))
}

// Create handles POST /api/admin/stations.
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body models.StationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	st := body.Station("")
	if err := h.stationService.Create(r.Context(), st); err != nil {
		switch {
		case errors.Is(err, station.ErrInvalidStation):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, station.ErrStationExists):
			response.Conflict(w, r, "station "+st.ID+" already exists")
		default:
			response.InternalError(w, r, "failed to create station")
		}
		return
	}

	response.Created(w, r, "/api/stations/"+st.ID, models.NewStationResponse(st))
}

// Update handles PUT /api/admin/stations/{stationId}.
func (h *StationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stationId")

	var body models.StationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	st := body.Station(id)
	if err := h.stationService.Update(r.Context(), st); err != nil {
		switch {
		case errors.Is(err, station.ErrInvalidStation):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, station.ErrStationNotFound):
			response.NotFound(w, r, "station not found")
		default:
			response.InternalError(w, r, "failed to update station")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewStationResponse(st))
}

// IngestReading handles POST /api/admin/stations/{stationId}/readings,
// the push path used by station firmware.
func (h *StationHandler) IngestReading(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stationId")

	if _, err := h.stationService.Get(r.Context(), id); err != nil {
		if errors.Is(err, station.ErrStationNotFound) {
			response.NotFound(w, r, "station not found")
			return
		}
		response.InternalError(w, r, "failed to load station")
		return
	}

	var body models.IngestReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	if err := h.weatherService.Ingest(r.Context(), body.Reading(id)); err != nil {
		if errors.Is(err, weather.ErrInvalidReading) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "failed to store reading")
		return
	}

	response.NoContent(w, r)
}
