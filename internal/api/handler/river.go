package handler

import (
	"errors"
	"net/http"

	"github.com/stationwatch/stationwatch/internal/api/models"
	"github.com/stationwatch/stationwatch/internal/api/response"
	"github.com/stationwatch/stationwatch/internal/river"
)

// RiverHandler serves the river gauge snapshot.
type RiverHandler struct {
	riverService *river.Service
}

// NewRiverHandler creates a new RiverHandler.
func NewRiverHandler(riverService *river.Service) *RiverHandler {
	return &RiverHandler{riverService: riverService}
}

// GetRiverData handles GET /api/river-data.
func (h *RiverHandler) GetRiverData(w http.ResponseWriter, r *http.Request) {
	snap, err := h.riverService.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, river.ErrUnavailable) {
			response.ServiceUnavailable(w, r, "river gauge data is currently unavailable")
			return
		}
		response.InternalError(w, r, "failed to load river data")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewRiverDataResponse(snap))
}
