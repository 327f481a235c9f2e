package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
)

// Common error guidance messages surfaced alongside upstream failures.
const (
	GuidanceRateLimit    = "The service is experiencing high load. Please try again in a few moments."
	GuidanceTimeout      = "The request timed out. Try reducing the search area or simplifying the query."
	GuidanceBadRequest   = "The request was invalid. Check your parameters and try again."
	GuidanceServerError  = "The service encountered an error. This is likely temporary, please try again later."
	GuidanceNotConnected = "The OSM client has not been connected. This indicates a server startup problem."
	GuidanceGeneral      = "Please try again later or modify your request parameters."
)

// ErrorResponse is used for consistent error reporting in tool results.
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// serviceErrorResponse converts a client operation failure into a tool
// error result, logging it and attaching recovery guidance.
func serviceErrorResponse(logger *slog.Logger, op string, err error) *mcp.CallToolResult {
	logger.Error("operation failed", "op", op, "error", err)

	if errors.Is(err, osm.ErrNotConnected) {
		return ErrorResponse(fmt.Sprintf("Error: %s\n\nGuidance: %s", err, GuidanceNotConnected))
	}

	var apiErr *osm.APIError
	if errors.As(err, &apiErr) {
		return ErrorResponse(fmt.Sprintf("Error: %s\n\nGuidance: %s", apiErr, guidanceForStatus(apiErr.StatusCode)))
	}

	return ErrorResponse(fmt.Sprintf("Failed to %s: %s", op, err))
}

// guidanceForStatus infers user guidance from an upstream status code.
func guidanceForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusTooManyRequests:
		return GuidanceRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return GuidanceTimeout
	case http.StatusBadRequest:
		return GuidanceBadRequest
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return GuidanceServerError
	default:
		return GuidanceGeneral
	}
}
