// Package server provides the MCP server implementation for the
// OpenStreetMap integration.
package server

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ninowalker/open-streetmap-mcp/pkg/cache"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
	"github.com/ninowalker/open-streetmap-mcp/pkg/tools"
	"github.com/ninowalker/open-streetmap-mcp/pkg/version"
)

const (
	// ServerName is the name of the MCP server
	ServerName = "osm-mcp-server"
)

// Server encapsulates the MCP server with OpenStreetMap tools and
// resources, and owns the upstream client lifecycle.
type Server struct {
	logger *slog.Logger
	srv    *server.MCPServer
	client *osm.Client
}

// NewServer creates an OpenStreetMap MCP server with all tools and
// resources registered, and connects the upstream client.
func NewServer(logger *slog.Logger, opts ...osm.Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing OpenStreetMap MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	client := osm.NewClient(append([]osm.Option{osm.WithLogger(logger)}, opts...)...)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect OSM client: %w", err)
	}

	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
	)

	registry := tools.NewRegistry(logger, client, cache.New(cache.DefaultSize, cache.DefaultTTL))
	registry.Register(srv)

	return &Server{logger: logger, srv: srv, client: client}, nil
}

// Run starts the MCP server using stdin/stdout for communication. It
// blocks until the transport closes.
func (s *Server) Run() error {
	return server.ServeStdio(s.srv)
}

// RunSSE starts the MCP server over the SSE transport on the given
// address. It blocks until the HTTP server stops.
func (s *Server) RunSSE(addr string) error {
	s.logger.Info("starting SSE transport", "addr", addr)
	return server.NewSSEServer(s.srv).Start(addr)
}

// Close disconnects the upstream client.
func (s *Server) Close() {
	s.client.Disconnect()
}
