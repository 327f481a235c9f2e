// Package tools provides the OpenStreetMap MCP tool and resource
// implementations.
package tools

import (
	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
)

// PlaceInfo is the simplified representation of a POI node returned by
// the place search tools.
type PlaceInfo struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Tags      map[string]string `json:"tags"`
}

// FeatureInfo is the simplified representation of an OSM feature
// (node, way, or relation) with resolved coordinates. Category and
// Subcategory are set only by the category search tool.
type FeatureInfo struct {
	ID          int64             `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Coordinates geo.Location      `json:"coordinates"`
	Category    string            `json:"category,omitempty"`
	Subcategory string            `json:"subcategory,omitempty"`
	Tags        map[string]string `json:"tags"`
}

// newFeatureInfo converts an Overpass element to a FeatureInfo. ok is
// false for elements without resolvable coordinates (e.g. relations
// without a precomputed centroid); such features are dropped from tool
// output rather than included with null coordinates.
func newFeatureInfo(el osm.Element) (FeatureInfo, bool) {
	lat, lon, ok := el.Coordinates()
	if !ok {
		return FeatureInfo{}, false
	}
	return FeatureInfo{
		ID:          el.ID,
		Type:        el.Type,
		Name:        el.Name(),
		Coordinates: geo.Location{Latitude: lat, Longitude: lon},
		Tags:        el.Tags,
	}, true
}
