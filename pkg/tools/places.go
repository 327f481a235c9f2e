package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
)

// defaultPOICategories is the category key list used when the caller
// does not narrow the search.
var defaultPOICategories = []string{"amenity", "shop", "tourism", "leisure"}

const (
	defaultNearbyRadius = 1000.0
	maxNearbyRadius     = 10000.0
	defaultNearbyLimit  = 20
	maxNearbyLimit      = 100
)

// FindNearbyPlacesTool returns a tool definition for finding nearby places
func FindNearbyPlacesTool() mcp.Tool {
	return mcp.NewTool("find_nearby_places",
		mcp.WithDescription("Find points of interest near a specific location, grouped by category"),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("The latitude coordinate of the center point"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("The longitude coordinate of the center point"),
		),
		mcp.WithNumber("radius",
			mcp.Description(fmt.Sprintf("Search radius in meters (max %.0f)", maxNearbyRadius)),
			mcp.DefaultNumber(defaultNearbyRadius),
		),
		mcp.WithArray("categories",
			mcp.Description("Place categories to search for (amenity, shop, tourism, leisure, ...)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results to return (max %d)", maxNearbyLimit)),
			mcp.DefaultNumber(defaultNearbyLimit),
		),
	)
}

// HandleFindNearbyPlaces implements finding nearby POIs grouped by
// category and subcategory.
func (r *Registry) HandleFindNearbyPlaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "find_nearby_places")

	latitude := mcp.ParseFloat64(req, "latitude", 0)
	longitude := mcp.ParseFloat64(req, "longitude", 0)
	radius := mcp.ParseFloat64(req, "radius", defaultNearbyRadius)
	limit := int(mcp.ParseFloat64(req, "limit", defaultNearbyLimit))
	categories := parseStringArray(req, "categories", defaultPOICategories)

	if latitude < -90 || latitude > 90 {
		return ErrorResponse("Latitude must be between -90 and 90"), nil
	}
	if longitude < -180 || longitude > 180 {
		return ErrorResponse("Longitude must be between -180 and 180"), nil
	}
	if radius <= 0 || radius > maxNearbyRadius {
		return ErrorResponse(fmt.Sprintf("Radius must be between 1 and %.0f meters", maxNearbyRadius)), nil
	}
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	if limit > maxNearbyLimit {
		limit = maxNearbyLimit
	}

	logger.Info("searching for nearby places",
		"latitude", latitude, "longitude", longitude, "radius", radius)

	places, err := r.client.GetNearbyPOIs(ctx, latitude, longitude, radius, categories)
	if err != nil {
		return serviceErrorResponse(logger, "find nearby places", err), nil
	}

	// The limit applies to the raw element list before grouping.
	if len(places) > limit {
		places = places[:limit]
	}

	grouped, totalCount := groupPlacesByCategory(places, categories)

	output := struct {
		Query struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Radius    float64 `json:"radius"`
		} `json:"query"`
		Categories map[string]map[string][]PlaceInfo `json:"categories"`
		TotalCount int                               `json:"total_count"`
	}{
		Categories: grouped,
		TotalCount: totalCount,
	}
	output.Query.Latitude = latitude
	output.Query.Longitude = longitude
	output.Query.Radius = radius

	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	return mcp.NewToolResultText(string(resultBytes)), nil
}

// groupPlacesByCategory groups POI nodes by category and subcategory. A
// place carrying tags for several candidate categories is grouped under
// the first matching category in list order. The returned count is the
// total number of grouped places; categories and subcategories without
// matches never appear as empty entries.
func groupPlacesByCategory(places []osm.Element, categories []string) (map[string]map[string][]PlaceInfo, int) {
	grouped := make(map[string]map[string][]PlaceInfo)
	total := 0

	for _, place := range places {
		for _, category := range categories {
			subcategory, ok := place.Tags[category]
			if !ok || subcategory == "" {
				continue
			}

			if grouped[category] == nil {
				grouped[category] = make(map[string][]PlaceInfo)
			}
			grouped[category][subcategory] = append(grouped[category][subcategory], PlaceInfo{
				ID:        place.ID,
				Name:      place.Name(),
				Latitude:  place.Lat,
				Longitude: place.Lon,
				Tags:      place.Tags,
			})
			total++
			break
		}
	}

	return grouped, total
}

// parseStringArray extracts an array-of-strings argument, falling back
// to defaults when the argument is absent or empty.
func parseStringArray(req mcp.CallToolRequest, key string, defaults []string) []string {
	raw, ok := req.Params.Arguments[key]
	if !ok {
		return defaults
	}
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return defaults
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	if len(values) == 0 {
		return defaults
	}
	return values
}
