package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ninowalker/open-streetmap-mcp/pkg/cache"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
)

// Registry wires the OSM client and resource cache into tool and
// resource handlers.
type Registry struct {
	logger *slog.Logger
	client *osm.Client
	cache  *cache.ResourceCache

	// progress builds the per-request progress callback for long-running
	// tools. Replaceable so tests can observe emitted updates.
	progress func(ctx context.Context, req mcp.CallToolRequest, logger *slog.Logger) func(progress, total int)
}

// NewRegistry creates a registry around the given client. A nil logger
// uses the default logger; a nil cache gets a default-sized one.
func NewRegistry(logger *slog.Logger, client *osm.Client, c *cache.ResourceCache) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.New(cache.DefaultSize, cache.DefaultTTL)
	}
	return &Registry{logger: logger, client: client, cache: c, progress: progressReporter}
}

// ToolDefinition pairs a tool schema with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Tools returns all tool definitions provided by this registry.
func (r *Registry) Tools() []ToolDefinition {
	return []ToolDefinition{
		{GeocodeAddressTool(), r.HandleGeocodeAddress},
		{ReverseGeocodeTool(), r.HandleReverseGeocode},
		{FindNearbyPlacesTool(), r.HandleFindNearbyPlaces},
		{SearchCategoryTool(), r.HandleSearchCategory},
		{GetRouteDirectionsTool(), r.HandleGetRouteDirections},
		{SuggestMeetingPointTool(), r.HandleSuggestMeetingPoint},
		{ExploreAreaTool(), r.HandleExploreArea},
	}
}

// ResourceDefinition pairs a resource template with its handler.
type ResourceDefinition struct {
	Template mcp.ResourceTemplate
	Handler  func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)
}

// Resources returns all resource template definitions provided by this
// registry.
func (r *Registry) Resources() []ResourceDefinition {
	return []ResourceDefinition{
		{PlaceResourceTemplate(), r.HandleReadPlaceResource},
		{MapTileResourceTemplate(), r.HandleReadMapTileResource},
	}
}

// Register adds all tools and resource templates to the MCP server.
func (r *Registry) Register(s *server.MCPServer) {
	for _, def := range r.Tools() {
		s.AddTool(def.Tool, def.Handler)
	}
	for _, def := range r.Resources() {
		s.AddResourceTemplate(def.Template, def.Handler)
	}
	r.logger.Debug("registered tools and resources",
		"tools", len(r.Tools()), "resources", len(r.Resources()))
}
