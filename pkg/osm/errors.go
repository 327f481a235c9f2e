package osm

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by every client operation invoked before
// Connect or after Disconnect.
var ErrNotConnected = errors.New("osm: client not connected")

// ErrNoRoute is returned when the routing service finds no route between
// the requested points.
var ErrNoRoute = errors.New("osm: no route found")

// APIError represents a non-2xx response from one of the upstream
// OpenStreetMap services. It carries the HTTP status and the endpoint
// that produced it so callers can surface actionable context.
type APIError struct {
	Service    string // Service name (e.g. "Nominatim", "Overpass", "OSRM")
	StatusCode int    // HTTP status code
	Endpoint   string // Endpoint path or URL that failed
	Message    string // Human-readable error message
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (%d) at %s: %s", e.Service, e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s API error (%d) at %s", e.Service, e.StatusCode, e.Endpoint)
}

// newAPIError builds an APIError for a failed upstream request.
func newAPIError(service string, statusCode int, endpoint, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}
