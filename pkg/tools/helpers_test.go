package tools

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/time/rate"

	"github.com/ninowalker/open-streetmap-mcp/pkg/cache"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
	"github.com/ninowalker/open-streetmap-mcp/pkg/testutil"
)

// newTestRegistry builds a registry around a connected client whose
// rate limits never block, pointing at the given test endpoints.
func newTestRegistry(t *testing.T, opts ...osm.Option) *Registry {
	t.Helper()

	limits := osm.NewRateLimiter()
	for _, service := range []string{osm.ServiceNominatim, osm.ServiceOverpass, osm.ServiceOSRM, osm.ServiceTiles} {
		limits.SetLimit(service, rate.Inf, 1)
	}

	opts = append([]osm.Option{
		osm.WithLogger(testutil.DiscardLogger()),
		osm.WithRateLimiter(limits),
	}, opts...)

	client := osm.NewClient(opts...)
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(client.Disconnect)

	return NewRegistry(testutil.DiscardLogger(), client, cache.New(16, time.Minute))
}

// newToolRequest builds a tool call request with the given arguments.
func newToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload of a tool result, failing the
// test when the result is an error.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool returned error result: %v", res.Content)
	}
	if len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("tool result content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// decodeResult unmarshals a tool result's text payload into out.
func decodeResult(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	if err := json.Unmarshal([]byte(resultText(t, res)), out); err != nil {
		t.Fatalf("tool result is not valid JSON: %v", err)
	}
}

// errorText extracts the message of an error tool result, failing the
// test when the result is not an error.
func errorText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if !res.IsError {
		t.Fatalf("tool result is not an error: %v", res.Content)
	}
	if len(res.Content) == 0 {
		t.Fatal("tool error result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("tool error content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}
