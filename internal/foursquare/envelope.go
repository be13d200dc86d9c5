package foursquare

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/NordCoder/checkins/internal/domain"
)

// envelope is the wrapper every v2 endpoint answers with.
type envelope struct {
	Meta     meta            `json:"meta"`
	Response json.RawMessage `json:"response"`
}

type meta struct {
	Code        int    `json:"code"`
	ErrorType   string `json:"errorType"`
	ErrorDetail string `json:"errorDetail"`
}

const (
	errInvalidAuth   = "invalid_auth"
	errParam         = "param_error"
	errEndpoint      = "endpoint_error"
	errNotAuthorized = "not_authorized"
	errRateLimit     = "rate_limit_exceeded"
	errServer        = "server_error"
)

// classify maps a failed response onto the domain error taxonomy.
func classify(status int, m meta) *domain.APIError {
	if m.Code != 0 {
		status = m.Code
	}
	e := &domain.APIError{Status: status, Type: m.ErrorType, Detail: m.ErrorDetail}
	detail := strings.ToLower(m.ErrorDetail)

	switch {
	case status == http.StatusUnauthorized || m.ErrorType == errInvalidAuth:
		e.Kind = domain.ErrAuth
	case status == http.StatusTooManyRequests || m.ErrorType == errRateLimit:
		e.Kind = domain.ErrRateLimited
	case status == http.StatusForbidden || m.ErrorType == errNotAuthorized:
		e.Kind = domain.ErrPermissionDenied
	case status == http.StatusNotFound || m.ErrorType == errEndpoint:
		e.Kind = domain.ErrNotFound
	case status == http.StatusBadRequest || m.ErrorType == errParam:
		switch {
		case strings.Contains(detail, "signature"):
			e.Kind = domain.ErrInvalidSignature
		case strings.Contains(detail, "not found"), strings.Contains(detail, "invalid for id"),
			strings.Contains(detail, "no such"):
			e.Kind = domain.ErrNotFound
		default:
			e.Kind = domain.ErrValidation
		}
	default:
		e.Kind = domain.ErrRemote
	}
	return e
}

func retryable(status int, m meta) bool {
	return status >= http.StatusInternalServerError || m.ErrorType == errServer
}
