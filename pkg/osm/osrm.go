package osm

import "encoding/json"

// RouteResponse represents the response from the OSRM routing service.
type RouteResponse struct {
	Code      string          `json:"code"`
	Message   string          `json:"message,omitempty"`
	Routes    []Route         `json:"routes,omitempty"`
	Waypoints json.RawMessage `json:"waypoints,omitempty"`
}

// Route represents a single route in the OSRM response. Geometry is kept
// as raw GeoJSON and passed through to callers unmodified.
type Route struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Geometry json.RawMessage `json:"geometry"`
	Legs     []RouteLeg      `json:"legs"`
}

// RouteLeg represents a leg of an OSRM route.
type RouteLeg struct {
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
	Summary  string      `json:"summary"`
	Steps    []RouteStep `json:"steps"`
}

// RouteStep represents a single maneuver-to-maneuver step in a leg.
type RouteStep struct {
	Distance float64  `json:"distance"`
	Duration float64  `json:"duration"`
	Name     string   `json:"name"`
	Maneuver Maneuver `json:"maneuver"`
}

// Maneuver describes the action taken at the start of a step.
type Maneuver struct {
	Type     string    `json:"type"`
	Modifier string    `json:"modifier,omitempty"`
	Location []float64 `json:"location"`
}
