package tools

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// GeocodeAddressTool returns a tool definition for geocoding addresses
func GeocodeAddressTool() mcp.Tool {
	return mcp.NewTool("geocode_address",
		mcp.WithDescription("Convert an address or place name to geographic coordinates"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The address or place name to geocode"),
		),
	)
}

// HandleGeocodeAddress implements the geocoding functionality
func (r *Registry) HandleGeocodeAddress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "geocode_address")

	address := mcp.ParseString(req, "address", "")
	if address == "" {
		return ErrorResponse("Address must not be empty"), nil
	}

	results, err := r.client.Geocode(ctx, address, 5)
	if err != nil {
		return serviceErrorResponse(logger, "geocode address", err), nil
	}

	// Enhance each raw Nominatim result with a parsed coordinates object.
	for _, result := range results {
		lat, latOK := parseNominatimCoordinate(result["lat"])
		lon, lonOK := parseNominatimCoordinate(result["lon"])
		if latOK && lonOK {
			result["coordinates"] = map[string]float64{
				"latitude":  lat,
				"longitude": lon,
			}
		}
	}

	resultBytes, err := json.Marshal(results)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	return mcp.NewToolResultText(string(resultBytes)), nil
}

// parseNominatimCoordinate parses a Nominatim coordinate value, which is
// encoded as a JSON string in most API versions.
func parseNominatimCoordinate(v any) (float64, bool) {
	switch value := v.(type) {
	case string:
		f, err := strconv.ParseFloat(value, 64)
		return f, err == nil
	case float64:
		return value, true
	default:
		return 0, false
	}
}

// ReverseGeocodeTool returns a tool definition for reverse geocoding
func ReverseGeocodeTool() mcp.Tool {
	return mcp.NewTool("reverse_geocode",
		mcp.WithDescription("Convert geographic coordinates to a human-readable address"),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("The latitude coordinate"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("The longitude coordinate"),
		),
	)
}

// HandleReverseGeocode implements the reverse geocoding functionality
func (r *Registry) HandleReverseGeocode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "reverse_geocode")

	latitude := mcp.ParseFloat64(req, "latitude", 0)
	longitude := mcp.ParseFloat64(req, "longitude", 0)

	if latitude < -90 || latitude > 90 {
		return ErrorResponse("Latitude must be between -90 and 90"), nil
	}
	if longitude < -180 || longitude > 180 {
		return ErrorResponse("Longitude must be between -180 and 180"), nil
	}

	address, err := r.client.ReverseGeocode(ctx, latitude, longitude)
	if err != nil {
		return serviceErrorResponse(logger, "reverse geocode", err), nil
	}

	resultBytes, err := json.Marshal(address)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	return mcp.NewToolResultText(string(resultBytes)), nil
}
