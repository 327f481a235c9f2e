package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm/queries"
)

const (
	// Default API endpoints
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	DefaultOverpassBaseURL  = "https://overpass-api.de/api/interpreter"
	DefaultOSRMBaseURL      = "https://router.project-osrm.org"

	// DefaultUserAgent identifies this server to the upstream services.
	// Nominatim's usage policy requires a meaningful User-Agent.
	DefaultUserAgent = "open-streetmap-mcp/0.1.0"

	// DefaultTileStyle is substituted for unrecognized tile styles.
	DefaultTileStyle = "standard"
)

// defaultTileServers maps map styles to raster tile URL patterns.
// Patterns take z, x, y in that order.
func defaultTileServers() map[string]string {
	return map[string]string{
		"standard":  "https://tile.openstreetmap.org/%d/%d/%d.png",
		"cycle":     "https://tile.thunderforest.com/cycle/%d/%d/%d.png",
		"transport": "https://tile.thunderforest.com/transport/%d/%d/%d.png",
		"landscape": "https://tile.thunderforest.com/landscape/%d/%d/%d.png",
		"outdoor":   "https://tile.thunderforest.com/outdoors/%d/%d/%d.png",
	}
}

// Client is a pooled HTTP client for the OpenStreetMap service family.
// Connect must be called before any operation; Disconnect releases the
// connection pool. The client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limits     *RateLimiter
	logger     *slog.Logger
	userAgent  string

	nominatimURL string
	overpassURL  string
	osrmURL      string
	tileServers  map[string]string
	tileAPIKey   string

	connected atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent overrides the User-Agent sent to upstream services.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithNominatimBaseURL overrides the Nominatim endpoint.
func WithNominatimBaseURL(u string) Option {
	return func(c *Client) { c.nominatimURL = u }
}

// WithOverpassBaseURL overrides the Overpass interpreter endpoint.
func WithOverpassBaseURL(u string) Option {
	return func(c *Client) { c.overpassURL = u }
}

// WithOSRMBaseURL overrides the OSRM endpoint.
func WithOSRMBaseURL(u string) Option {
	return func(c *Client) { c.osrmURL = u }
}

// WithTileServer overrides or adds the tile URL pattern for a style.
func WithTileServer(style, pattern string) Option {
	return func(c *Client) { c.tileServers[style] = pattern }
}

// WithTileAPIKey sets the API key appended to Thunderforest tile requests.
func WithTileAPIKey(key string) Option {
	return func(c *Client) { c.tileAPIKey = key }
}

// WithRateLimiter replaces the default per-service rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) { c.limits = rl }
}

// NewClient creates an OSM client. The client is not usable until
// Connect is called.
func NewClient(opts ...Option) *Client {
	c := &Client{
		limits:       NewRateLimiter(),
		logger:       slog.Default(),
		userAgent:    DefaultUserAgent,
		nominatimURL: DefaultNominatimBaseURL,
		overpassURL:  DefaultOverpassBaseURL,
		osrmURL:      DefaultOSRMBaseURL,
		tileServers:  defaultTileServers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect initializes the pooled HTTP transport. It must be called
// before any operation.
func (c *Client) Connect() error {
	c.httpClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 30 * time.Second,
	}
	c.connected.Store(true)
	c.logger.Debug("osm client connected")
	return nil
}

// Disconnect releases pooled connections and marks the client unusable.
func (c *Client) Disconnect() {
	if !c.connected.CompareAndSwap(true, false) {
		return
	}
	c.httpClient.CloseIdleConnections()
	c.logger.Debug("osm client disconnected")
}

// ready returns ErrNotConnected when Connect has not been called.
func (c *Client) ready() error {
	if !c.connected.Load() {
		return ErrNotConnected
	}
	return nil
}

// do performs a rate-limited request with the configured User-Agent.
func (c *Client) do(ctx context.Context, service string, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if err := c.limits.Wait(ctx, service); err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// Geocode resolves an address or place name to a list of Nominatim
// search results, at most limit entries.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]GeocodeResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	reqURL, err := url.Parse(c.nominatimURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse nominatim URL: %w", err)
	}
	q := reqURL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", fmt.Sprintf("%d", limit))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, ServiceNominatim, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError("Nominatim", resp.StatusCode, "/search",
			fmt.Sprintf("failed to geocode %q", query))
	}

	var results []GeocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return results, nil
}

// ReverseGeocode resolves coordinates to a Nominatim address document.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (map[string]any, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	reqURL, err := url.Parse(c.nominatimURL + "/reverse")
	if err != nil {
		return nil, fmt.Errorf("parse nominatim URL: %w", err)
	}
	q := reqURL.Query()
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("format", "json")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, ServiceNominatim, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError("Nominatim", resp.StatusCode, "/reverse",
			fmt.Sprintf("failed to reverse geocode (%f, %f)", lat, lon))
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode reverse geocode response: %w", err)
	}
	return result, nil
}

// GetRoute calculates a route between two points using the given OSRM
// profile (car, bike, foot). It returns ErrNoRoute when the service
// finds no route.
func (c *Client) GetRoute(ctx context.Context, from, to geo.Location, mode string) (*RouteResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/route/v1/%s/%f,%f;%f,%f",
		mode, from.Longitude, from.Latitude, to.Longitude, to.Latitude)
	reqURL, err := url.Parse(c.osrmURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse OSRM URL: %w", err)
	}
	q := reqURL.Query()
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	q.Set("steps", "true")
	q.Set("annotations", "true")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, ServiceOSRM, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// OSRM reports "no route" as a 400 with code NoRoute; treat that as
	// a no-result rather than an upstream failure.
	var routeResp RouteResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&routeResp); decodeErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, newAPIError("OSRM", resp.StatusCode, endpoint, "failed to get route")
		}
		return nil, fmt.Errorf("decode route response: %w", decodeErr)
	}
	if routeResp.Code == "NoRoute" || (routeResp.Code == "Ok" && len(routeResp.Routes) == 0) {
		return nil, ErrNoRoute
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError("OSRM", resp.StatusCode, endpoint, routeResp.Message)
	}
	if routeResp.Code != "Ok" {
		return nil, newAPIError("OSRM", resp.StatusCode, endpoint, routeResp.Message)
	}
	return &routeResp, nil
}

// GetNearbyPOIs returns points of interest within radius meters of the
// center, matching any of the given category keys (amenity, shop, ...).
func (c *Client) GetNearbyPOIs(ctx context.Context, lat, lon, radius float64, categories []string) ([]Element, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	box := geo.BoundingBoxAround(lat, lon, radius)
	return c.postOverpass(ctx, queries.NearbyPOIs(box, categories))
}

// SearchFeaturesByCategory returns OSM features in the bounding box that
// carry the category key, optionally restricted to specific subcategory
// values. Ways and relations include centroids.
func (c *Client) SearchFeaturesByCategory(ctx context.Context, box geo.BoundingBox, category string, subcategories []string) ([]Element, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.postOverpass(ctx, queries.CategorySearch(box, category, subcategories))
}

// postOverpass executes an Overpass QL query and returns its elements.
func (c *Client) postOverpass(ctx context.Context, query string) ([]Element, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(ctx, ServiceOverpass, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError("Overpass", resp.StatusCode, "/api/interpreter",
			"feature query failed")
	}

	var overpassResp overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return overpassResp.Elements, nil
}

// ResolveTileStyle returns the style itself when known, or
// DefaultTileStyle when unrecognized.
func (c *Client) ResolveTileStyle(style string) string {
	if _, ok := c.tileServers[style]; ok {
		return style
	}
	return DefaultTileStyle
}

// GetMapTile fetches a raster map tile. Unrecognized styles silently
// fall back to the standard style.
func (c *Client) GetMapTile(ctx context.Context, style string, z, x, y int) ([]byte, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	style = c.ResolveTileStyle(style)
	tileURL := fmt.Sprintf(c.tileServers[style], z, x, y)
	if c.tileAPIKey != "" && strings.Contains(tileURL, "thunderforest") {
		tileURL += "?apikey=" + url.QueryEscape(c.tileAPIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, ServiceTiles, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError("Tiles", resp.StatusCode, tileURL,
			fmt.Sprintf("failed to get %s tile at %d/%d/%d", style, z, x, y))
	}
	return io.ReadAll(resp.Body)
}
