package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a refresh failure. Every failure degrades to "keep the
// last-known data and surface a message"; none is fatal to the poller.
type Kind string

const (
	// KindTimeout means the request exceeded the configured timeout.
	KindTimeout Kind = "timeout"

	// KindNetwork means the request never produced an HTTP response.
	KindNetwork Kind = "network"

	// KindHTTP means the server responded with a non-2xx status.
	KindHTTP Kind = "http-error"

	// KindParse means the response body could not be decoded.
	KindParse Kind = "parse-error"
)

// Error is a classified refresh failure.
type Error struct {
	Kind   Kind
	Status int // HTTP status code, only set for KindHTTP
	cause  error
}

// NewHTTPError creates an Error for an unexpected HTTP status.
func NewHTTPError(status int) *Error {
	return &Error{Kind: KindHTTP, Status: status}
}

// NewParseError creates an Error for an undecodable response body.
func NewParseError(cause error) *Error {
	return &Error{Kind: KindParse, cause: cause}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("http-error: unexpected status %d", e.Status)
	default:
		if e.cause != nil {
			return string(e.Kind) + ": " + e.cause.Error()
		}
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Message returns the user-facing message for this failure.
func (e *Error) Message() string {
	switch e.Kind {
	case KindTimeout:
		return "The request timed out. Retrying shortly."
	case KindNetwork:
		return "Unable to reach the server. Retrying shortly."
	case KindHTTP:
		return fmt.Sprintf("The server returned an error (%s).", http.StatusText(e.Status))
	case KindParse:
		return "Received an unreadable response from the server."
	default:
		return "Something went wrong while refreshing."
	}
}

// Classify converts a raw fetch error into a poller Error. Errors already
// carrying a Kind pass through unchanged; context deadline errors become
// timeouts, JSON decode errors become parse errors, everything else is
// treated as a network failure.
func Classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, cause: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &Error{Kind: KindParse, cause: err}
	}

	return &Error{Kind: KindNetwork, cause: err}
}
