package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
)

// SearchCategoryTool returns a tool definition for category searches
// within a bounding box.
func SearchCategoryTool() mcp.Tool {
	return mcp.NewTool("search_category",
		mcp.WithDescription("Search for OSM features of a specific category within a bounding box"),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("The OSM tag key to search for (e.g. amenity, shop, tourism)"),
		),
		mcp.WithNumber("min_lat",
			mcp.Required(),
			mcp.Description("Southern boundary of the bounding box"),
		),
		mcp.WithNumber("min_lon",
			mcp.Required(),
			mcp.Description("Western boundary of the bounding box"),
		),
		mcp.WithNumber("max_lat",
			mcp.Required(),
			mcp.Description("Northern boundary of the bounding box"),
		),
		mcp.WithNumber("max_lon",
			mcp.Required(),
			mcp.Description("Eastern boundary of the bounding box"),
		),
		mcp.WithArray("subcategories",
			mcp.Description("Optional tag values to narrow the search (e.g. restaurant, cafe)"),
		),
	)
}

// HandleSearchCategory implements searching for features of a category
// within a bounding box, optionally narrowed to specific subcategories.
func (r *Registry) HandleSearchCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "search_category")

	category := mcp.ParseString(req, "category", "")
	if category == "" {
		return ErrorResponse("Category must not be empty"), nil
	}

	box := geo.BoundingBox{
		MinLat: mcp.ParseFloat64(req, "min_lat", 0),
		MinLon: mcp.ParseFloat64(req, "min_lon", 0),
		MaxLat: mcp.ParseFloat64(req, "max_lat", 0),
		MaxLon: mcp.ParseFloat64(req, "max_lon", 0),
	}
	if box.MinLat < -90 || box.MaxLat > 90 || box.MinLat >= box.MaxLat {
		return ErrorResponse("Invalid latitude bounds: min_lat must be less than max_lat, both within [-90, 90]"), nil
	}
	if box.MinLon < -180 || box.MaxLon > 180 || box.MinLon >= box.MaxLon {
		return ErrorResponse("Invalid longitude bounds: min_lon must be less than max_lon, both within [-180, 180]"), nil
	}

	subcategories := parseStringArray(req, "subcategories", nil)

	logger.Info("searching category",
		"category", category, "subcategories", subcategories, "bbox", box.String())

	elements, err := r.client.SearchFeaturesByCategory(ctx, box, category, subcategories)
	if err != nil {
		return serviceErrorResponse(logger, "search category", err), nil
	}

	features := make([]FeatureInfo, 0, len(elements))
	for _, el := range elements {
		info, ok := newFeatureInfo(el)
		if !ok {
			continue
		}
		info.Category = category
		info.Subcategory = el.Tags[category]
		features = append(features, info)
	}

	output := struct {
		Query struct {
			Category      string          `json:"category"`
			Subcategories []string        `json:"subcategories,omitempty"`
			BoundingBox   geo.BoundingBox `json:"bounding_box"`
		} `json:"query"`
		Results []FeatureInfo `json:"results"`
		Count   int           `json:"count"`
	}{
		Results: features,
		Count:   len(features),
	}
	output.Query.Category = category
	output.Query.Subcategories = subcategories
	output.Query.BoundingBox = box

	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	return mcp.NewToolResultText(string(resultBytes)), nil
}
