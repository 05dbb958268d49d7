package models

import (
	"time"

	"github.com/stationwatch/stationwatch/internal/datarequest"
)

// DataRequestBody is the body of POST /api/request-data.
type DataRequestBody struct {
	Email        string   `json:"email"`
	Organization string   `json:"organization"`
	Purpose      string   `json:"purpose"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	StationID    string   `json:"stationId"`
	DataFormat   string   `json:"dataFormat"`
	Parameters   []string `json:"parameters"`
}

// dateLayout is the form's date format.
const dateLayout = "2006-01-02"

// Request converts the body to a domain request. Unparseable dates are
// left zero so domain validation reports them as missing.
func (b *DataRequestBody) Request() *datarequest.Request {
	req := &datarequest.Request{
		Email:        b.Email,
		Organization: b.Organization,
		Purpose:      b.Purpose,
		StationID:    b.StationID,
		Format:       datarequest.Format(b.DataFormat),
		Parameters:   b.Parameters,
	}
	if t, err := time.Parse(dateLayout, b.StartDate); err == nil {
		req.StartDate = t
	}
	if t, err := time.Parse(dateLayout, b.EndDate); err == nil {
		req.EndDate = t
	}
	return req
}

// DataRequestAccepted is returned when a data request is accepted.
type DataRequestAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DataRequestResponse is the admin view of a stored data request.
type DataRequestResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Organization string    `json:"organization"`
	Purpose      string    `json:"purpose"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	StationID    string    `json:"stationId"`
	DataFormat   string    `json:"dataFormat"`
	Parameters   []string  `json:"parameters"`
	Status       string    `json:"status"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// NewDataRequestResponse converts a domain request to the admin wire shape.
func NewDataRequestResponse(req *datarequest.Request) *DataRequestResponse {
	return &DataRequestResponse{
		ID:           req.ID,
		Email:        req.Email,
		Organization: req.Organization,
		Purpose:      req.Purpose,
		StartDate:    req.StartDate.Format(dateLayout),
		EndDate:      req.EndDate.Format(dateLayout),
		StationID:    req.StationID,
		DataFormat:   string(req.Format),
		Parameters:   req.Parameters,
		Status:       string(req.Status),
		CreatedAt:    Timestamp(req.CreatedAt),
		UpdatedAt:    Timestamp(req.UpdatedAt),
	}
}

// FieldErrorsFrom converts domain validation errors to wire field errors.
func FieldErrorsFrom(verr *datarequest.ValidationError) []FieldError {
	out := make([]FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
