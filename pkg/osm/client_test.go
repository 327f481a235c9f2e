package osm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
	"github.com/ninowalker/open-streetmap-mcp/pkg/testutil"
)

// permissiveLimits returns a rate limiter that never blocks, so tests
// can issue many requests without waiting out the public API budgets.
func permissiveLimits() *RateLimiter {
	rl := NewRateLimiter()
	for _, service := range []string{ServiceNominatim, ServiceOverpass, ServiceOSRM, ServiceTiles} {
		rl.SetLimit(service, rate.Inf, 1)
	}
	return rl
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithLogger(testutil.DiscardLogger()),
		WithRateLimiter(permissiveLimits()),
	}, opts...)
	c := NewClient(opts...)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c
}

func TestOperationsRequireConnect(t *testing.T) {
	c := NewClient(WithLogger(testutil.DiscardLogger()))
	ctx := context.Background()

	ops := map[string]func() error{
		"Geocode": func() error {
			_, err := c.Geocode(ctx, "Berlin", 1)
			return err
		},
		"ReverseGeocode": func() error {
			_, err := c.ReverseGeocode(ctx, 52.5, 13.4)
			return err
		},
		"GetRoute": func() error {
			_, err := c.GetRoute(ctx, geo.Location{}, geo.Location{}, "driving")
			return err
		},
		"GetNearbyPOIs": func() error {
			_, err := c.GetNearbyPOIs(ctx, 52.5, 13.4, 500, []string{"amenity"})
			return err
		},
		"SearchFeaturesByCategory": func() error {
			_, err := c.SearchFeaturesByCategory(ctx, geo.BoundingBox{}, "amenity", nil)
			return err
		},
		"GetMapTile": func() error {
			_, err := c.GetMapTile(ctx, "standard", 10, 512, 340)
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrNotConnected) {
				t.Errorf("%s before Connect: error = %v, want ErrNotConnected", name, err)
			}
		})
	}
}

func TestGeocode(t *testing.T) {
	var gotQuery url.Values
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`[{"lat": "52.52", "lon": "13.405", "display_name": "Berlin, Germany"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t,
		WithNominatimBaseURL(srv.URL),
		WithUserAgent("test-agent/1.0"),
	)

	results, err := c.Geocode(context.Background(), "Berlin", 3)
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Geocode() returned %d results, want 1", len(results))
	}
	if results[0]["display_name"] != "Berlin, Germany" {
		t.Errorf("display_name = %v", results[0]["display_name"])
	}
	if gotQuery.Get("q") != "Berlin" || gotQuery.Get("format") != "json" || gotQuery.Get("limit") != "3" {
		t.Errorf("request query = %v", gotQuery)
	}
	if gotUserAgent != "test-agent/1.0" {
		t.Errorf("User-Agent = %q", gotUserAgent)
	}
}

func TestGeocodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, WithNominatimBaseURL(srv.URL))

	_, err := c.Geocode(context.Background(), "Berlin", 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Geocode() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
	if apiErr.Service != "Nominatim" {
		t.Errorf("Service = %q, want Nominatim", apiErr.Service)
	}
}

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Error("reverse request missing lat/lon parameters")
		}
		w.Write([]byte(`{"display_name": "Unter den Linden, Berlin", "address": {"city": "Berlin"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, WithNominatimBaseURL(srv.URL))

	result, err := c.ReverseGeocode(context.Background(), 52.517, 13.389)
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if result["display_name"] != "Unter den Linden, Berlin" {
		t.Errorf("display_name = %v", result["display_name"])
	}
}

func TestGetRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("steps") != "true" || q.Get("geometries") != "geojson" {
			t.Errorf("unexpected route query: %v", q)
		}
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 1523.4,
				"duration": 312.7,
				"geometry": {"type": "LineString", "coordinates": []},
				"legs": [{
					"distance": 1523.4,
					"duration": 312.7,
					"summary": "Main Street",
					"steps": [{
						"distance": 100,
						"duration": 20,
						"name": "Main Street",
						"maneuver": {"type": "depart", "location": [13.4, 52.5]}
					}]
				}]
			}],
			"waypoints": []
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, WithOSRMBaseURL(srv.URL))

	route, err := c.GetRoute(context.Background(),
		geo.Location{Latitude: 52.5, Longitude: 13.4},
		geo.Location{Latitude: 52.51, Longitude: 13.41},
		"driving")
	if err != nil {
		t.Fatalf("GetRoute() error = %v", err)
	}
	if len(route.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(route.Routes))
	}
	if route.Routes[0].Distance != 1523.4 {
		t.Errorf("distance = %f", route.Routes[0].Distance)
	}
	if route.Routes[0].Legs[0].Steps[0].Maneuver.Type != "depart" {
		t.Errorf("maneuver type = %q", route.Routes[0].Legs[0].Steps[0].Maneuver.Type)
	}
}

func TestGetRouteNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": "NoRoute", "message": "Impossible route between points"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, WithOSRMBaseURL(srv.URL))

	_, err := c.GetRoute(context.Background(), geo.Location{}, geo.Location{Latitude: 1}, "driving")
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("GetRoute() error = %v, want ErrNoRoute", err)
	}
}

func TestGetNearbyPOIs(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("overpass request method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing overpass form: %v", err)
		}
		gotQuery = r.PostForm.Get("data")
		w.Write([]byte(`{"elements": [
			{"type": "node", "id": 42, "lat": 52.5, "lon": 13.4, "tags": {"amenity": "cafe", "name": "Espresso Bar"}}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, WithOverpassBaseURL(srv.URL))

	pois, err := c.GetNearbyPOIs(context.Background(), 52.5, 13.4, 500, []string{"amenity", "shop"})
	if err != nil {
		t.Fatalf("GetNearbyPOIs() error = %v", err)
	}
	if len(pois) != 1 || pois[0].ID != 42 {
		t.Fatalf("pois = %+v", pois)
	}
	if pois[0].Name() != "Espresso Bar" {
		t.Errorf("Name() = %q", pois[0].Name())
	}

	for _, want := range []string{"[out:json];", `node["amenity"]`, `node["shop"]`, "out body;"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("overpass query %q missing %q", gotQuery, want)
		}
	}
}

func TestSearchFeaturesByCategory(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing overpass form: %v", err)
		}
		gotQuery = r.PostForm.Get("data")
		w.Write([]byte(`{"elements": [
			{"type": "way", "id": 7, "center": {"lat": 52.5, "lon": 13.4}, "tags": {"amenity": "restaurant"}}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, WithOverpassBaseURL(srv.URL))

	box := geo.BoundingBox{MinLat: 52.4, MinLon: 13.3, MaxLat: 52.6, MaxLon: 13.5}
	features, err := c.SearchFeaturesByCategory(context.Background(), box, "amenity", []string{"restaurant", "cafe"})
	if err != nil {
		t.Fatalf("SearchFeaturesByCategory() error = %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("features = %d, want 1", len(features))
	}

	lat, lon, ok := features[0].Coordinates()
	if !ok || lat != 52.5 || lon != 13.4 {
		t.Errorf("Coordinates() = (%f, %f, %v)", lat, lon, ok)
	}

	for _, want := range []string{`["amenity"~"^(restaurant|cafe)$"]`, "out center;"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("overpass query %q missing %q", gotQuery, want)
		}
	}
}

func TestGetMapTile(t *testing.T) {
	tileBytes := []byte{0x89, 'P', 'N', 'G'}
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(tileBytes)
	}))
	defer srv.Close()

	c := newTestClient(t, WithTileServer("standard", srv.URL+"/%d/%d/%d.png"))

	tile, err := c.GetMapTile(context.Background(), "standard", 12, 2200, 1343)
	if err != nil {
		t.Fatalf("GetMapTile() error = %v", err)
	}
	if string(tile) != string(tileBytes) {
		t.Errorf("tile bytes = %v", tile)
	}
	if gotPath != "/12/2200/1343.png" {
		t.Errorf("tile path = %q", gotPath)
	}
}

func TestGetMapTileStyleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tile"))
	}))
	defer srv.Close()

	// Only the standard style points at the test server; an unknown
	// style must fall back to it rather than hitting a real host.
	c := newTestClient(t, WithTileServer("standard", srv.URL+"/%d/%d/%d.png"))

	if _, err := c.GetMapTile(context.Background(), "watercolor", 1, 0, 0); err != nil {
		t.Errorf("GetMapTile() with unknown style error = %v", err)
	}
}

func TestResolveTileStyle(t *testing.T) {
	c := NewClient()

	if got := c.ResolveTileStyle("cycle"); got != "cycle" {
		t.Errorf("ResolveTileStyle(cycle) = %q", got)
	}
	if got := c.ResolveTileStyle("watercolor"); got != DefaultTileStyle {
		t.Errorf("ResolveTileStyle(watercolor) = %q, want %q", got, DefaultTileStyle)
	}
}
