package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned for every request answered with HTTP 401.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrRequestFailed wraps network and transport failures.
	ErrRequestFailed = errors.New("request failed")
	// ErrInvalidResponse is returned when a 2xx body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response body")
	// ErrInvalidBaseURL is returned by New for an unusable base URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// UnauthorizedError reports a 401 response. By the time it is returned the session
// has been cleared and navigation to the login route has been requested.
type UnauthorizedError struct {
	Method string
	Path   string
	Detail string
}

func (e *UnauthorizedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, ErrUnauthenticated, e.Detail)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, ErrUnauthenticated)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthenticated
}

// APIError is a non-2xx, non-401 response.
type APIError struct {
	StatusCode int
	Detail     string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// UserMessage returns the message a view should show for err: the backend detail
// when one was sent, fallback otherwise. A nil err yields "".
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var unauth *UnauthorizedError
	if errors.As(err, &unauth) && unauth.Detail != "" {
		return unauth.Detail
	}
	return fallback
}
