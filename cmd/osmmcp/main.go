package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/ninowalker/open-streetmap-mcp/pkg/osm"
	"github.com/ninowalker/open-streetmap-mcp/pkg/server"
	"github.com/ninowalker/open-streetmap-mcp/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	transport       string
	addr            string
	generateConfig  string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&transport, "transport", "stdio", "Transport to serve on: stdio or sse")
	flag.StringVar(&addr, "addr", ":8080", "Listen address for the SSE transport")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
}

func main() {
	flag.Parse()

	// A missing .env file is fine; environment variables still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if showVersionFlag {
		fmt.Println(version.String())
		return
	}

	if generateConfig != "" {
		if err := generateClientConfig(generateConfig); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", generateConfig)
		return
	}

	logger.Info("starting OpenStreetMap MCP server",
		"version", version.BuildVersion,
		"transport", transport,
		"log_level", logLevel.String())

	srv, err := server.NewServer(logger, clientOptionsFromEnv()...)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	logger.Info("server initialized, waiting for requests")
	switch transport {
	case "stdio":
		err = srv.Run()
	case "sse":
		err = srv.RunSSE(addr)
	default:
		logger.Error("unknown transport", "transport", transport)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// clientOptionsFromEnv builds client options from the process
// environment. Supported variables: OSM_USER_AGENT, TILE_API_KEY,
// NOMINATIM_URL, OVERPASS_URL, OSRM_URL.
func clientOptionsFromEnv() []osm.Option {
	var opts []osm.Option
	if ua := os.Getenv("OSM_USER_AGENT"); ua != "" {
		opts = append(opts, osm.WithUserAgent(ua))
	}
	if key := os.Getenv("TILE_API_KEY"); key != "" {
		opts = append(opts, osm.WithTileAPIKey(key))
	}
	if u := os.Getenv("NOMINATIM_URL"); u != "" {
		opts = append(opts, osm.WithNominatimBaseURL(u))
	}
	if u := os.Getenv("OVERPASS_URL"); u != "" {
		opts = append(opts, osm.WithOverpassBaseURL(u))
	}
	if u := os.Getenv("OSRM_URL"); u != "" {
		opts = append(opts, osm.WithOSRMBaseURL(u))
	}
	return opts
}

// generateClientConfig creates or updates a Claude Desktop Client config file
func generateClientConfig(outputPath string) error {
	logger := slog.Default()

	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	osmConfig := map[string]interface{}{
		"command": absExecPath,
		"args":    []string{},
	}

	var config map[string]interface{}
	if _, err := os.Stat(outputPath); err == nil {
		data, err := os.ReadFile(outputPath)
		if err != nil {
			return fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			config = make(map[string]interface{})
		}
	} else {
		config = make(map[string]interface{})
	}

	mcpServers, ok := config["mcpServers"].(map[string]interface{})
	if !ok {
		mcpServers = make(map[string]interface{})
		config["mcpServers"] = mcpServers
	}
	mcpServers["OSM"] = osmConfig

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
