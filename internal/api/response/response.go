// Package response writes the API's success and problem+json payloads.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/stationwatch/stationwatch/internal/api/middleware"
	"github.com/stationwatch/stationwatch/internal/api/models"
)

// writeBody is the single place success responses are serialized: request
// ID echo, optional Location, and JSON encoding all flow through here so
// station, reading, and data-request handlers behave identically.
func writeBody(w http.ResponseWriter, r *http.Request, status int, location string, data interface{}) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	if location != "" {
		w.Header().Set("Location", location)
	}
	if data != nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeBody(w, r, status, "", data)
}

// Created writes a 201 Created response with an optional Location header.
func Created(w http.ResponseWriter, r *http.Request, location string, data interface{}) {
	writeBody(w, r, http.StatusCreated, location, data)
}

// Accepted writes a 202 Accepted response with an optional Location
// header, used when a data request is queued for the collector.
func Accepted(w http.ResponseWriter, r *http.Request, location string, data interface{}) {
	writeBody(w, r, http.StatusAccepted, location, data)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	writeBody(w, r, http.StatusNoContent, "", nil)
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// problem builds the standard error constructors into one path so each
// helper below stays a one-liner.
func problem(w http.ResponseWriter, r *http.Request, build func(traceID string) *models.Problem) {
	Error(w, r, build(middleware.GetRequestID(r.Context())))
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	problem(w, r, func(traceID string) *models.Problem {
		return models.NewBadRequest(traceID, detail, errors)
	})
}

// Unauthorized writes a 401 Unauthorized error response.
func Unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, func(traceID string) *models.Problem {
		return models.NewUnauthorized(traceID, detail)
	})
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, func(traceID string) *models.Problem {
		return models.NewNotFound(traceID, detail)
	})
}

// Conflict writes a 409 Conflict error response.
func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, func(traceID string) *models.Problem {
		return models.NewConflict(traceID, detail)
	})
}

// RateLimitInfo carries the rate-limit window state echoed on 429s.
type RateLimitInfo struct {
	// Limit is the maximum number of requests allowed in the window.
	Limit int
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is the Unix timestamp when the rate limit window resets.
	ResetAt int64
	// RetryAfter is the number of seconds until the client should retry.
	RetryAfter int
}

// TooManyRequests writes a 429 Too Many Requests error response.
func TooManyRequests(w http.ResponseWriter, r *http.Request, detail string) {
	TooManyRequestsWithInfo(w, r, detail, nil)
}

// TooManyRequestsWithInfo writes a 429 with X-RateLimit-* headers so
// station firmware can back off its reporting interval.
func TooManyRequestsWithInfo(w http.ResponseWriter, r *http.Request, detail string, info *RateLimitInfo) {
	if info != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt, 10))
		if info.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfter))
		}
	}
	problem(w, r, func(traceID string) *models.Problem {
		return models.NewTooManyRequests(traceID, detail)
	})
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, func(traceID string) *models.Problem {
		return models.NewInternalError(traceID, detail)
	})
}

// ServiceUnavailable writes a 503 Service Unavailable error response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, func(traceID string) *models.Problem {
		return models.NewServiceUnavailable(traceID, detail)
	})
}
