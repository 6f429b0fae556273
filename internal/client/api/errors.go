package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated is returned when a request is aborted or rejected
	// because no usable credential exists. The user is already being sent to
	// the login page when this surfaces; callers should not act further on
	// the stale session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned when the refresh endpoint itself rejects
	// the refresh token. The logout flow has already run.
	ErrSessionExpired = errors.New("session expired")
)

// NetworkError means the backend could not be reached at all (DNS, refused
// connection, timeout). The message names the configured base URL to aid
// diagnosis of connectivity misconfiguration.
type NetworkError struct {
	BaseURL string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error contacting %s: %v", e.BaseURL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is any non-2xx response that is not handled by the token
// recovery logic.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Detail)
}

// newHTTPError extracts a human-readable detail from the response body,
// preferring a server-supplied message/detail/error field, then the standard
// status text, then a generic fallback.
func newHTTPError(status int, body []byte) *HTTPError {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}

	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			detail = payload.Message
		case payload.Detail != "":
			detail = payload.Detail
		case payload.Error != "":
			detail = payload.Error
		}
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	if detail == "" {
		detail = "unknown error"
	}
	return &HTTPError{Status: status, Detail: detail}
}
