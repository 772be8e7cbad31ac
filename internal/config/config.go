package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	SimLink   SimLinkConfig   `toml:"simlink"`   // Simulator link session settings
	Dashboard DashboardConfig `toml:"dashboard"` // Dashboard client settings
	Map       MapConfig       `toml:"map"`       // Map view defaults
	Station   StationConfig   `toml:"station"`   // Physical location settings
	Storage   StorageConfig   `toml:"storage"`   // Data persistence settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	AdditionalPorts    []int    `toml:"additional_ports"`      // Additional HTTP ports to listen on (useful for multiple interfaces)
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve static files from (e.g., "www")
}

// SimLinkConfig contains settings for the simulator link session
type SimLinkConfig struct {
	// Provider selection. Allowed values:
	// - "simulated": built-in dead-reckoning flight, no external simulator needed
	// - "none": no provider installed; connect attempts fail with a message
	Provider string `toml:"provider"`

	UpdateIntervalMs int  `toml:"update_interval_ms"` // Push update cadence while connected (default: 500)
	AutoConnect      bool `toml:"auto_connect"`       // Attempt to connect at server startup

	// Initial state for the simulated provider
	InitialAltitudeFt  float64 `toml:"initial_altitude_ft"`  // Starting altitude in feet
	InitialHeadingDeg  float64 `toml:"initial_heading_deg"`  // Starting true heading in degrees (0-359)
	InitialSpeedKts    float64 `toml:"initial_speed_kts"`    // Starting true airspeed in knots
	InitialVerticalFPM float64 `toml:"initial_vertical_fpm"` // Starting vertical rate in feet per minute
	AircraftTitle      string  `toml:"aircraft_title"`       // Reported aircraft title (e.g., "Cessna 172")
	Callsign           string  `toml:"callsign"`             // Reported ATC callsign
}

// DashboardConfig contains settings for the dashboard client session
type DashboardConfig struct {
	ServerURL           string `toml:"server_url"`              // Base URL of the FlyCharts server (e.g., http://localhost:5500)
	PollIntervalSecs    int    `toml:"poll_interval_seconds"`   // Fallback poll period (default: 5)
	StatusIntervalSecs  int    `toml:"status_interval_seconds"` // Link status check period (default: 10)
	AutoUpdate          bool   `toml:"auto_update"`             // Apply incoming position updates to the map
	AirportsPath        string `toml:"airports_path"`           // Path to the airports.json resource
	DefaultLayer        string `toml:"default_layer"`           // Base layer selected at startup (default: "street")
	RequestTimeoutSecs  int    `toml:"request_timeout_seconds"` // HTTP request timeout (default: 10)
	HandshakeTimeoutSec int    `toml:"handshake_timeout_seconds"`
}

// MapConfig contains map view defaults
type MapConfig struct {
	DefaultLat  float64 `toml:"default_lat"`  // Initial map center latitude
	DefaultLon  float64 `toml:"default_lon"`  // Initial map center longitude
	DefaultZoom float64 `toml:"default_zoom"` // Initial zoom level
}

// StationConfig contains physical location configuration, used as the
// simulated flight's starting point
type StationConfig struct {
	Latitude    float64 `toml:"latitude"`     // Latitude in decimal degrees
	Longitude   float64 `toml:"longitude"`    // Longitude in decimal degrees
	AirportCode string  `toml:"airport_code"` // ICAO code of the home airport (e.g., "KSEA")
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	SQLiteBasePath    string `toml:"sqlite_base_path"`     // Base path for SQLite database files (filename is generated as flycharts-YYYY-MM-DD.db)
	MaxPositionsInAPI int    `toml:"max_positions_in_api"` // Maximum number of positions returned by the history API
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration and applies defaults
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	portsSeen := make(map[int]bool)
	portsSeen[c.Server.Port] = true
	for _, p := range c.Server.AdditionalPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid additional server port: %d", p)
		}
		if portsSeen[p] {
			return fmt.Errorf("duplicate port configured: %d (primary or additional)", p)
		}
		portsSeen[p] = true
	}

	if c.Server.StaticFilesDir == "" {
		c.Server.StaticFilesDir = "www"
	}

	// Validate simlink config
	if c.SimLink.Provider == "" {
		c.SimLink.Provider = "simulated"
	}
	if c.SimLink.Provider != "simulated" && c.SimLink.Provider != "none" {
		return fmt.Errorf("invalid simlink provider: %s (must be 'simulated' or 'none')", c.SimLink.Provider)
	}
	if c.SimLink.UpdateIntervalMs <= 0 {
		c.SimLink.UpdateIntervalMs = 500
	}
	if c.SimLink.InitialHeadingDeg < 0 || c.SimLink.InitialHeadingDeg >= 360 {
		return fmt.Errorf("invalid initial heading: %.1f (must be 0-359)", c.SimLink.InitialHeadingDeg)
	}
	if c.SimLink.InitialSpeedKts < 0 {
		return fmt.Errorf("invalid initial speed: %.1f", c.SimLink.InitialSpeedKts)
	}

	// Validate station config
	if c.Station.Latitude < -90 || c.Station.Latitude > 90 {
		return fmt.Errorf("invalid station latitude: %f", c.Station.Latitude)
	}
	if c.Station.Longitude < -180 || c.Station.Longitude > 180 {
		return fmt.Errorf("invalid station longitude: %f", c.Station.Longitude)
	}

	// Validate dashboard config
	if c.Dashboard.ServerURL == "" {
		c.Dashboard.ServerURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Dashboard.PollIntervalSecs <= 0 {
		c.Dashboard.PollIntervalSecs = 5
	}
	if c.Dashboard.StatusIntervalSecs <= 0 {
		c.Dashboard.StatusIntervalSecs = 10
	}
	if c.Dashboard.RequestTimeoutSecs <= 0 {
		c.Dashboard.RequestTimeoutSecs = 10
	}
	if c.Dashboard.HandshakeTimeoutSec <= 0 {
		c.Dashboard.HandshakeTimeoutSec = 10
	}
	if c.Dashboard.AirportsPath == "" {
		c.Dashboard.AirportsPath = "www/airports.json"
	}
	if c.Dashboard.DefaultLayer == "" {
		c.Dashboard.DefaultLayer = "street"
	}

	// Validate map config
	if c.Map.DefaultZoom <= 0 {
		c.Map.DefaultZoom = 7
	}

	// Validate storage config
	if c.Storage.SQLiteBasePath == "" {
		c.Storage.SQLiteBasePath = "data"
	}
	if c.Storage.MaxPositionsInAPI <= 0 {
		c.Storage.MaxPositionsInAPI = 60
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid
	case "":
		c.Logging.Level = "info"
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
		// Valid
	case "":
		c.Logging.Format = "console"
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}
