package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
)

const defaultExploreRadius = 500.0

// ExploreAreaTool returns a tool definition for exploring all feature
// categories around a point.
func ExploreAreaTool() mcp.Tool {
	return mcp.NewTool("explore_area",
		mcp.WithDescription("Explore an area and survey its features across all major categories"),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("The latitude coordinate of the center point"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("The longitude coordinate of the center point"),
		),
		mcp.WithNumber("radius",
			mcp.Description("Search radius in meters"),
			mcp.DefaultNumber(defaultExploreRadius),
		),
	)
}

// HandleExploreArea surveys the area around a point, one Overpass query
// per category, reporting progress after each. A failed category query
// yields an empty entry rather than aborting the survey.
func (r *Registry) HandleExploreArea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "explore_area")

	latitude := mcp.ParseFloat64(req, "latitude", 0)
	longitude := mcp.ParseFloat64(req, "longitude", 0)
	radius := mcp.ParseFloat64(req, "radius", defaultExploreRadius)

	if latitude < -90 || latitude > 90 {
		return ErrorResponse("Latitude must be between -90 and 90"), nil
	}
	if longitude < -180 || longitude > 180 {
		return ErrorResponse("Longitude must be between -180 and 180"), nil
	}
	if radius <= 0 || radius > maxNearbyRadius {
		return ErrorResponse(fmt.Sprintf("Radius must be between 1 and %.0f meters", maxNearbyRadius)), nil
	}

	logger.Info("exploring area",
		"latitude", latitude, "longitude", longitude, "radius", radius)

	notify := r.progress(ctx, req, logger)
	box := geo.BoundingBoxAround(latitude, longitude, radius)
	explorer := osm.NewCategoryExplorer(r.client, box, nil)

	categories := make(map[string]map[string][]FeatureInfo)
	totalFeatures := 0

	for {
		step, ok := explorer.Next(ctx)
		if !ok {
			break
		}
		if step.Err != nil {
			logger.Warn("category query failed",
				"category", step.Category, "error", step.Err)
			categories[step.Category] = map[string][]FeatureInfo{}
		} else {
			grouped, count := groupFeaturesBySubcategory(step.Category, step.Features)
			categories[step.Category] = grouped
			totalFeatures += count
		}
		notify(step.Index, step.Total)
	}

	address, err := r.client.ReverseGeocode(ctx, latitude, longitude)
	if err != nil {
		logger.Warn("reverse geocode failed during area exploration", "error", err)
		address = map[string]any{"error": "Could not retrieve address information"}
	}

	notify(explorer.Len(), explorer.Len())

	output := struct {
		Query struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Radius    float64 `json:"radius"`
		} `json:"query"`
		Address       map[string]any                     `json:"address"`
		Categories    map[string]map[string][]FeatureInfo `json:"categories"`
		TotalFeatures int                                `json:"total_features"`
		Timestamp     string                             `json:"timestamp"`
	}{
		Address:       address,
		Categories:    categories,
		TotalFeatures: totalFeatures,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
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

// groupFeaturesBySubcategory groups features by their value for the
// given category key. Features without that tag or without resolvable
// coordinates are skipped.
func groupFeaturesBySubcategory(category string, features []osm.Element) (map[string][]FeatureInfo, int) {
	grouped := make(map[string][]FeatureInfo)
	count := 0

	for _, el := range features {
		subcategory := el.Tags[category]
		if subcategory == "" {
			continue
		}
		info, ok := newFeatureInfo(el)
		if !ok {
			continue
		}
		grouped[subcategory] = append(grouped[subcategory], info)
		count++
	}

	return grouped, count
}

// progressReporter returns a function reporting step progress to the
// client. It degrades to a no-op when the request carries no progress
// token or no server is attached to the context.
func progressReporter(ctx context.Context, req mcp.CallToolRequest, logger *slog.Logger) func(progress, total int) {
	srv := server.ServerFromContext(ctx)
	if srv == nil || req.Params.Meta == nil || req.Params.Meta.ProgressToken == nil {
		return func(int, int) {}
	}
	token := req.Params.Meta.ProgressToken

	return func(progress, total int) {
		err := srv.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": token,
			"progress":      progress,
			"total":         total,
		})
		if err != nil {
			logger.Debug("failed to send progress notification", "error", err)
		}
	}
}
