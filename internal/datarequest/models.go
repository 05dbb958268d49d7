// Package datarequest handles historical-data requests submitted through
// the dashboard form: validation, persistence, and hand-off to the
// fulfillment worker.
package datarequest

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Data request errors.
var (
	ErrRequestNotFound = errors.New("data request not found")
)

// Status tracks a request through fulfillment.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusRejected   Status = "REJECTED"
)

// Format is the requested export format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

// Parameters the export can include, matching the reading fields.
var validParameters = map[string]bool{
	"temperature":   true,
	"humidity":      true,
	"airPressure":   true,
	"WindSpeedAvg":  true,
	"windDirection": true,
	"rainfall1h":    true,
	"rainfall24h":   true,
}

// Request is a historical-data request.
type Request struct {
	ID           string
	Email        string
	Organization string
	Purpose      string
	StartDate    time.Time
	EndDate      time.Time
	StationID    string
	Format       Format
	Parameters   []string
	Status       Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldError describes a single invalid form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates the form's field errors.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("invalid data request: %s", strings.Join(names, ", "))
}

// Validate checks the request's form fields. Returns a *ValidationError
// listing every failing field, or nil.
func (r *Request) Validate() error {
	var fields []FieldError

	if _, err := mail.ParseAddress(r.Email); err != nil {
		fields = append(fields, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if strings.TrimSpace(r.Organization) == "" {
		fields = append(fields, FieldError{Field: "organization", Message: "is required"})
	}
	if strings.TrimSpace(r.Purpose) == "" {
		fields = append(fields, FieldError{Field: "purpose", Message: "is required"})
	}
	if r.StationID == "" {
		fields = append(fields, FieldError{Field: "stationId", Message: "is required"})
	}

	if r.StartDate.IsZero() {
		fields = append(fields, FieldError{Field: "start_date", Message: "is required"})
	}
	if r.EndDate.IsZero() {
		fields = append(fields, FieldError{Field: "end_date", Message: "is required"})
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		fields = append(fields, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}

	switch r.Format {
	case FormatCSV, FormatJSON, FormatExcel:
	default:
		fields = append(fields, FieldError{Field: "dataFormat", Message: "must be one of csv, json, excel"})
	}

	if len(r.Parameters) == 0 {
		fields = append(fields, FieldError{Field: "parameters", Message: "at least one parameter is required"})
	}
	for _, p := range r.Parameters {
		if !validParameters[p] {
			fields = append(fields, FieldError{Field: "parameters", Message: "unknown parameter: " + p})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
