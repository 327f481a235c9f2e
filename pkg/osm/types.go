// Package osm provides a client for the public OpenStreetMap service
// family: Nominatim for geocoding, Overpass for feature queries, OSRM for
// routing, and raster tile servers for map imagery.
package osm

// Element represents a single element returned from the Overpass API.
// Nodes carry coordinates directly; ways and relations only carry a
// centroid when the query requested "out center".
type Element struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Lat    float64 `json:"lat,omitempty"`
	Lon    float64 `json:"lon,omitempty"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center,omitempty"`
	Tags map[string]string `json:"tags,omitempty"`
}

// Coordinates returns the element's position. For nodes this is the node
// position; for ways and relations it is the precomputed centroid when
// present. ok is false when the element carries no usable position.
func (e Element) Coordinates() (lat, lon float64, ok bool) {
	if e.Type == "node" {
		return e.Lat, e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// Name returns the element's name tag, or "Unnamed" when absent.
func (e Element) Name() string {
	if name, ok := e.Tags["name"]; ok && name != "" {
		return name
	}
	return "Unnamed"
}

// overpassResponse is the JSON envelope returned by the Overpass API.
type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// GeocodeResult is a single Nominatim search result. Nominatim's document
// shape varies with the requested detail level, so results are kept as
// loosely typed documents and passed through to callers.
type GeocodeResult map[string]any
