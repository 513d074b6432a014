package api

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnreachable is returned when no response was received.
	ErrServiceUnreachable = errors.New("service unreachable")

	// ErrMalformedResponse is returned when a response body cannot be
	// decoded or does not match the expected shape.
	ErrMalformedResponse = errors.New("malformed service response")
)

// ServiceError is returned when the service answered with a non-2xx status.
type ServiceError struct {
	StatusCode int
	// Detail is the human-readable message reported by the service, if any.
	Detail string
	// Body is the raw response body when no detail could be parsed.
	Body string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Body)
}
