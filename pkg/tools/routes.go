package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
)

// routingModes maps user-facing travel modes to OSRM profiles.
var routingModes = map[string]string{
	"car":  "driving",
	"bike": "cycling",
	"foot": "walking",
}

// GetRouteDirectionsTool returns a tool definition for routing between
// two points.
func GetRouteDirectionsTool() mcp.Tool {
	return mcp.NewTool("get_route_directions",
		mcp.WithDescription("Get turn-by-turn directions between two locations"),
		mcp.WithNumber("from_lat",
			mcp.Required(),
			mcp.Description("Starting point latitude"),
		),
		mcp.WithNumber("from_lon",
			mcp.Required(),
			mcp.Description("Starting point longitude"),
		),
		mcp.WithNumber("to_lat",
			mcp.Required(),
			mcp.Description("Destination latitude"),
		),
		mcp.WithNumber("to_lon",
			mcp.Required(),
			mcp.Description("Destination longitude"),
		),
		mcp.WithString("mode",
			mcp.Description("Travel mode: car, bike, or foot"),
			mcp.DefaultString("car"),
		),
	)
}

// HandleGetRouteDirections implements routing via OSRM.
func (r *Registry) HandleGetRouteDirections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "get_route_directions")

	from := geo.Location{
		Latitude:  mcp.ParseFloat64(req, "from_lat", 0),
		Longitude: mcp.ParseFloat64(req, "from_lon", 0),
	}
	to := geo.Location{
		Latitude:  mcp.ParseFloat64(req, "to_lat", 0),
		Longitude: mcp.ParseFloat64(req, "to_lon", 0),
	}
	mode := mcp.ParseString(req, "mode", "car")

	for _, loc := range []geo.Location{from, to} {
		if loc.Latitude < -90 || loc.Latitude > 90 {
			return ErrorResponse("Latitude must be between -90 and 90"), nil
		}
		if loc.Longitude < -180 || loc.Longitude > 180 {
			return ErrorResponse("Longitude must be between -180 and 180"), nil
		}
	}

	if _, ok := routingModes[mode]; !ok {
		logger.Warn("unknown travel mode, falling back to car", "mode", mode)
		mode = "car"
	}

	logger.Info("requesting route",
		"from_lat", from.Latitude, "from_lon", from.Longitude,
		"to_lat", to.Latitude, "to_lon", to.Longitude, "mode", mode)

	route, err := r.client.GetRoute(ctx, from, to, routingModes[mode])
	if err != nil {
		if errors.Is(err, osm.ErrNoRoute) {
			return ErrorResponse(fmt.Sprintf("No %s route found between the given locations", mode)), nil
		}
		return serviceErrorResponse(logger, "get route directions", err), nil
	}

	best := route.Routes[0]

	type direction struct {
		Instruction string  `json:"instruction"`
		Distance    float64 `json:"distance"`
		Duration    float64 `json:"duration"`
		Name        string  `json:"name"`
	}

	var directions []direction
	for _, leg := range best.Legs {
		for _, step := range leg.Steps {
			directions = append(directions, direction{
				Instruction: generateInstruction(step.Maneuver.Type, step.Maneuver.Modifier, step.Name),
				Distance:    step.Distance,
				Duration:    step.Duration,
				Name:        step.Name,
			})
		}
	}

	output := struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
			Mode     string  `json:"mode"`
		} `json:"summary"`
		Directions []direction     `json:"directions"`
		Geometry   json.RawMessage `json:"geometry,omitempty"`
		Waypoints  json.RawMessage `json:"waypoints,omitempty"`
	}{
		Directions: directions,
		Geometry:   best.Geometry,
		Waypoints:  route.Waypoints,
	}
	output.Summary.Distance = best.Distance
	output.Summary.Duration = best.Duration
	output.Summary.Mode = mode

	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	return mcp.NewToolResultText(string(resultBytes)), nil
}

// generateInstruction builds a human-readable instruction from an OSRM
// maneuver. Unknown maneuver types fall back to "Continue".
func generateInstruction(maneuverType, modifier, roadName string) string {
	onRoad := ""
	if roadName != "" {
		onRoad = " onto " + roadName
	}

	switch maneuverType {
	case "depart":
		if roadName != "" {
			return "Depart on " + roadName
		}
		return "Depart"
	case "arrive":
		return "Arrive at your destination"
	case "turn":
		if modifier != "" {
			return fmt.Sprintf("Turn %s%s", modifier, onRoad)
		}
		return "Turn" + onRoad
	case "merge":
		if modifier != "" {
			return fmt.Sprintf("Merge %s%s", modifier, onRoad)
		}
		return "Merge" + onRoad
	case "on ramp":
		return "Take the ramp" + onRoad
	case "off ramp":
		return "Take the exit" + onRoad
	case "fork":
		if modifier != "" {
			return fmt.Sprintf("Keep %s at the fork%s", modifier, onRoad)
		}
		return "Continue at the fork" + onRoad
	case "roundabout", "rotary":
		return "Enter the roundabout" + onRoad
	case "exit roundabout", "exit rotary":
		return "Exit the roundabout" + onRoad
	case "end of road":
		if modifier != "" {
			return fmt.Sprintf("At the end of the road, turn %s%s", modifier, onRoad)
		}
		return "Continue at the end of the road" + onRoad
	case "continue", "new name":
		if roadName != "" {
			return "Continue on " + roadName
		}
		return "Continue"
	default:
		if roadName != "" {
			return "Continue on " + roadName
		}
		return "Continue"
	}
}

const (
	meetingPointRadius         = 500.0
	meetingPointExpandedRadius = 1000.0
	maxMeetingVenues           = 5
)

// SuggestMeetingPointTool returns a tool definition for suggesting a
// meeting point for multiple people.
func SuggestMeetingPointTool() mcp.Tool {
	return mcp.NewTool("suggest_meeting_point",
		mcp.WithDescription("Suggest an optimal meeting point and nearby venues for multiple people"),
		mcp.WithArray("locations",
			mcp.Required(),
			mcp.Description("List of participant locations, each with latitude and longitude"),
		),
		mcp.WithString("venue_type",
			mcp.Description("Type of venue to suggest (e.g. cafe, restaurant, bar)"),
			mcp.DefaultString("cafe"),
		),
	)
}

// HandleSuggestMeetingPoint computes the centroid of the given locations
// and suggests venues of the requested type near it. The search expands
// once when the initial radius yields no matching venues.
func (r *Registry) HandleSuggestMeetingPoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "suggest_meeting_point")

	locations, err := extractLocations(req.Params.Arguments["locations"])
	if err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid locations: %s", err)), nil
	}
	if len(locations) < 2 {
		return ErrorResponse("At least two locations are required"), nil
	}
	for _, loc := range locations {
		if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
			return ErrorResponse("All locations must have valid coordinates"), nil
		}
	}

	venueType := mcp.ParseString(req, "venue_type", "cafe")
	center := geo.Centroid(locations)

	logger.Info("suggesting meeting point",
		"participants", len(locations),
		"center_lat", center.Latitude, "center_lon", center.Longitude,
		"venue_type", venueType)

	venues, err := r.findVenuesNear(ctx, center, meetingPointRadius, venueType)
	if err != nil {
		return serviceErrorResponse(logger, "suggest meeting point", err), nil
	}
	if len(venues) == 0 {
		logger.Info("no venues in initial radius, expanding search",
			"radius", meetingPointExpandedRadius)
		venues, err = r.findVenuesNear(ctx, center, meetingPointExpandedRadius, venueType)
		if err != nil {
			return serviceErrorResponse(logger, "suggest meeting point", err), nil
		}
	}

	// total_options reports how many venues matched, not how many made
	// the suggestion cut.
	totalOptions := len(venues)
	if len(venues) > maxMeetingVenues {
		venues = venues[:maxMeetingVenues]
	}

	output := struct {
		CenterPoint     geo.Location `json:"center_point"`
		SuggestedVenues []PlaceInfo  `json:"suggested_venues"`
		VenueType       string       `json:"venue_type"`
		TotalOptions    int          `json:"total_options"`
	}{
		CenterPoint:     center,
		SuggestedVenues: venues,
		VenueType:       venueType,
		TotalOptions:    totalOptions,
	}

	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	return mcp.NewToolResultText(string(resultBytes)), nil
}

// findVenuesNear fetches amenity POIs around a point and keeps those
// matching the requested venue type.
func (r *Registry) findVenuesNear(ctx context.Context, center geo.Location, radius float64, venueType string) ([]PlaceInfo, error) {
	pois, err := r.client.GetNearbyPOIs(ctx, center.Latitude, center.Longitude, radius, []string{"amenity"})
	if err != nil {
		return nil, err
	}
	return filterVenuesByType(pois, venueType), nil
}

// filterVenuesByType keeps amenity nodes whose amenity tag matches the
// requested venue type.
func filterVenuesByType(pois []osm.Element, venueType string) []PlaceInfo {
	var venues []PlaceInfo
	for _, poi := range pois {
		if poi.Tags["amenity"] != venueType {
			continue
		}
		venues = append(venues, PlaceInfo{
			ID:        poi.ID,
			Name:      poi.Name(),
			Latitude:  poi.Lat,
			Longitude: poi.Lon,
			Tags:      poi.Tags,
		})
	}
	return venues
}

// extractLocations converts the raw locations argument into typed
// locations via a JSON round trip.
func extractLocations(raw any) ([]geo.Location, error) {
	if raw == nil {
		return nil, errors.New("locations argument is required")
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("could not read locations: %w", err)
	}

	var locations []geo.Location
	if err := json.Unmarshal(encoded, &locations); err != nil {
		return nil, errors.New("locations must be a list of objects with latitude and longitude")
	}
	return locations, nil
}
