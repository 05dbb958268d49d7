package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stationwatch/stationwatch/internal/api/models"
	"github.com/stationwatch/stationwatch/internal/api/response"
	"github.com/stationwatch/stationwatch/internal/datarequest"
	"github.com/stationwatch/stationwatch/internal/station"
)

// DataRequestHandler handles historical-data request submission and the
// admin views over stored requests.
type DataRequestHandler struct {
	service *datarequest.Service
}

// NewDataRequestHandler creates a new DataRequestHandler.
func NewDataRequestHandler(service *datarequest.Service) *DataRequestHandler {
	return &DataRequestHandler{service: service}
}

// Submit handles POST /api/request-data.
func (h *DataRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body models.DataRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	req, err := h.service.Submit(r.Context(), body.Request())
	if err != nil {
		var verr *datarequest.ValidationError
		switch {
		case errors.As(err, &verr):
			response.BadRequest(w, r, "invalid data request", models.FieldErrorsFrom(verr))
		case errors.Is(err, station.ErrStationNotFound):
			response.BadRequest(w, r, "unknown station", []models.FieldError{
				{Field: "stationId", Message: "station does not exist"},
			})
		default:
			response.InternalError(w, r, "failed to store data request")
		}
		return
	}

	response.Accepted(w, r, "/api/admin/data-requests/"+req.ID, models.DataRequestAccepted{
		ID:     req.ID,
		Status: string(req.Status),
	})
}

// List handles GET /api/admin/data-requests?status=<status>.
func (h *DataRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	status := datarequest.Status(r.URL.Query().Get("status"))

	requests, err := h.service.List(r.Context(), status)
	if err != nil {
		response.InternalError(w, r, "failed to list data requests")
		return
	}

	out := make([]*models.DataRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, models.NewDataRequestResponse(req))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Get handles GET /api/admin/data-requests/{requestId}.
func (h *DataRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestId")

	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, datarequest.ErrRequestNotFound) {
			response.NotFound(w, r, "data request not found")
			return
		}
		response.InternalError(w, r, "failed to load data request")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewDataRequestResponse(req))
}

// Export handles GET /api/admin/data-requests/{requestId}/export - the
// rendered artifact for a fulfilled request.
func (h *DataRequestHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestId")

	exp, err := h.service.Export(r.Context(), id)
	if err != nil {
		if errors.Is(err, datarequest.ErrExportNotFound) {
			response.NotFound(w, r, "no export for this request yet")
			return
		}
		response.InternalError(w, r, "failed to load export")
		return
	}

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Body)
}
