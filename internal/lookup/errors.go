package lookup

import (
	"errors"
	"fmt"
)

// Common errors returned by lookup services.
var (
	// ErrNotFound indicates the service responded but had no match.
	ErrNotFound = errors.New("no match found")

	// ErrNetworkError indicates a transport-level failure or timeout.
	ErrNetworkError = errors.New("network error")

	// ErrInvalidResponse indicates an unexpected payload from a service.
	ErrInvalidResponse = errors.New("invalid service response")
)

// APIError represents a non-success HTTP response from a service.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d)", e.Service, e.StatusCode)
}

// IsNotFound returns true if the error indicates the query had no match.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// checkStatus returns an error for non-2xx responses.
func checkStatus(service string, statusCode int) error {
	if statusCode == 404 {
		return ErrNotFound
	}
	if statusCode < 200 || statusCode >= 300 {
		return &APIError{Service: service, StatusCode: statusCode, Message: fmt.Sprintf("HTTP %d", statusCode)}
	}
	return nil
}
