// Package geo provides common geographic types and calculations.
// It centralizes location-based data structures and algorithms to ensure
// consistency across the codebase.
package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean radius of Earth according to WGS-84 in meters
const EarthRadius = 6371000.0

// MetersPerDegree is the approximate length of one degree of latitude in
// meters. One degree of longitude spans MetersPerDegree * cos(latitude).
const MetersPerDegree = 111000.0

// Location represents a geographic coordinate (latitude and longitude)
// with standardized JSON field names.
//
// Example:
//
//	loc := geo.Location{Latitude: 37.7749, Longitude: -122.4194}
//	dist := geo.HaversineDistance(loc.Latitude, loc.Longitude, 34.0522, -118.2437)
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox represents a geographic bounding box with southwest and northeast corners
type BoundingBox struct {
	MinLat float64 // Southern edge (minimum latitude)
	MinLon float64 // Western edge (minimum longitude)
	MaxLat float64 // Northern edge (maximum latitude)
	MaxLon float64 // Eastern edge (maximum longitude)
}

// BoundingBoxAround returns the bounding box covering a circle of the given
// radius in meters centered on (lat, lon). It uses the flat-earth
// approximation of 111,000 m per degree of latitude and
// 111,000 m * cos(lat) per degree of longitude, which is accurate for the
// small regions these APIs operate on. The approximation degrades near the
// poles and does not wrap across the antimeridian; the box is instead
// clamped to valid coordinate ranges.
func BoundingBoxAround(lat, lon, radiusMeters float64) BoundingBox {
	latDelta := radiusMeters / MetersPerDegree
	lonDelta := radiusMeters / (MetersPerDegree * math.Cos(lat*math.Pi/180))

	box := BoundingBox{
		MinLat: lat - latDelta,
		MinLon: lon - lonDelta,
		MaxLat: lat + latDelta,
		MaxLon: lon + lonDelta,
	}
	box.clamp()
	return box
}

// clamp restricts the box to valid latitude and longitude ranges.
func (bb *BoundingBox) clamp() {
	if bb.MinLat < -90 {
		bb.MinLat = -90
	}
	if bb.MaxLat > 90 {
		bb.MaxLat = 90
	}
	if bb.MinLon < -180 {
		bb.MinLon = -180
	}
	if bb.MaxLon > 180 {
		bb.MaxLon = 180
	}
}

// Contains reports whether the point lies strictly inside the box.
func (bb BoundingBox) Contains(lat, lon float64) bool {
	return lat > bb.MinLat && lat < bb.MaxLat && lon > bb.MinLon && lon < bb.MaxLon
}

// String returns the box in Overpass bounding-box order (south,west,north,east).
func (bb BoundingBox) String() string {
	return fmt.Sprintf("%f,%f,%f,%f", bb.MinLat, bb.MinLon, bb.MaxLat, bb.MaxLon)
}

// Centroid returns the arithmetic mean of the given locations.
// It returns the zero Location for an empty slice.
func Centroid(locations []Location) Location {
	if len(locations) == 0 {
		return Location{}
	}
	var lat, lon float64
	for _, loc := range locations {
		lat += loc.Latitude
		lon += loc.Longitude
	}
	n := float64(len(locations))
	return Location{Latitude: lat / n, Longitude: lon / n}
}

// HaversineDistance calculates the great-circle distance between two points
// on the Earth's surface given their latitude and longitude in degrees.
// The result is returned in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	// Haversine formula
	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	// Calculate distance in meters
	return EarthRadius * c
}
