package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlaceResourceTemplate returns the resource template for looking up a
// place by free-form query.
func PlaceResourceTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"osm://place/{query}",
		"OSM Place Lookup",
		mcp.WithTemplateDescription("Geocoded information about a place, looked up by name or address"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleReadPlaceResource resolves an osm://place/{query} URI to the
// best geocoding match for the query. Results are cached by URI.
func (r *Registry) HandleReadPlaceResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger := r.logger.With("resource", "place")
	uri := req.Params.URI

	if cached, ok := r.cache.Get(uri); ok {
		logger.Debug("serving place resource from cache", "uri", uri)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(cached)},
		}, nil
	}

	raw := strings.TrimPrefix(uri, "osm://place/")
	if raw == "" || raw == uri {
		return nil, fmt.Errorf("invalid place resource URI: %s", uri)
	}
	query, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid place query encoding: %w", err)
	}

	results, err := r.client.Geocode(ctx, query, 1)
	if err != nil {
		return nil, fmt.Errorf("place lookup failed: %w", err)
	}

	var doc any
	if len(results) == 0 {
		doc = map[string]any{"error": fmt.Sprintf("No place found for query: %s", query)}
	} else {
		doc = results[0]
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode place document: %w", err)
	}
	r.cache.Set(uri, payload)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(payload)},
	}, nil
}

// MapTileResourceTemplate returns the resource template for map tile
// images.
func MapTileResourceTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"osm://map/{style}/{z}/{x}/{y}",
		"OSM Map Tile",
		mcp.WithTemplateDescription("A rendered map tile image at the given style and tile coordinates"),
		mcp.WithTemplateMIMEType("image/png"),
	)
}

// HandleReadMapTileResource resolves an osm://map/{style}/{z}/{x}/{y}
// URI to a PNG tile. Unknown styles fall back to the standard style,
// and the cache key uses the resolved style so aliases share entries.
func (r *Registry) HandleReadMapTileResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger := r.logger.With("resource", "map_tile")
	uri := req.Params.URI

	style, z, x, y, err := parseMapTileURI(uri)
	if err != nil {
		return nil, err
	}

	resolvedStyle := r.client.ResolveTileStyle(style)
	cacheKey := fmt.Sprintf("osm://map/%s/%d/%d/%d", resolvedStyle, z, x, y)

	if cached, ok := r.cache.Get(cacheKey); ok {
		logger.Debug("serving map tile from cache", "uri", uri)
		return []mcp.ResourceContents{
			mcp.BlobResourceContents{URI: uri, MIMEType: "image/png", Blob: string(cached)},
		}, nil
	}

	tile, err := r.client.GetMapTile(ctx, resolvedStyle, z, x, y)
	if err != nil {
		return nil, fmt.Errorf("map tile fetch failed: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(tile)
	r.cache.Set(cacheKey, []byte(encoded))

	return []mcp.ResourceContents{
		mcp.BlobResourceContents{URI: uri, MIMEType: "image/png", Blob: encoded},
	}, nil
}

// parseMapTileURI splits an osm://map/{style}/{z}/{x}/{y} URI into its
// components.
func parseMapTileURI(uri string) (style string, z, x, y int, err error) {
	raw := strings.TrimPrefix(uri, "osm://map/")
	if raw == uri {
		return "", 0, 0, 0, fmt.Errorf("invalid map tile URI: %s", uri)
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 4 || parts[0] == "" {
		return "", 0, 0, 0, fmt.Errorf("map tile URI must have style/z/x/y segments: %s", uri)
	}

	z, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid zoom level %q: %w", parts[1], err)
	}
	x, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid tile x %q: %w", parts[2], err)
	}
	y, err = strconv.Atoi(parts[3])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid tile y %q: %w", parts[3], err)
	}
	if z < 0 || z > 19 {
		return "", 0, 0, 0, fmt.Errorf("zoom level %d out of range [0, 19]", z)
	}

	return parts[0], z, x, y, nil
}
