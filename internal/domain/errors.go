package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced checkin or comment does not
	// exist remotely.
	ErrNotFound = errors.New("not found")

	// ErrAuth is returned when the oauth token is missing, invalid or expired.
	ErrAuth = errors.New("authentication failed")

	// ErrInvalidSignature is returned when the API rejects a checkin signature.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrValidation is returned for input rejected either locally, before any
	// request is sent, or by the API as a parameter error.
	ErrValidation = errors.New("validation error")

	ErrRateLimited      = errors.New("rate limited")
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRemote covers unexpected API responses: unknown status codes,
	// server errors and bodies that cannot be decoded.
	ErrRemote = errors.New("remote error")
)

// APIError carries the Foursquare meta block of a failed response.
// It unwraps to one of the sentinels above.
type APIError struct {
	Status int
	Type   string
	Detail string
	Kind   error
}

func (e *APIError) Error() string {
	kind := ErrRemote
	if e.Kind != nil {
		kind = e.Kind
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d %s: %s", kind, e.Status, e.Type, e.Detail)
	}
	return fmt.Sprintf("%s: status %d %s", kind, e.Status, e.Type)
}

func (e *APIError) Unwrap() error {
	if e.Kind == nil {
		return ErrRemote
	}
	return e.Kind
}

// Invalid builds a local validation error.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
