package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
	AirportDB AirportDBConfig `toml:"airportdb"` // Airport database and cache settings
	Storage   StorageConfig   `toml:"storage"`   // Index mirror persistence settings
	Metrics   MetricsConfig   `toml:"metrics"`   // Prometheus metrics settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // Primary HTTP port for the server
	Host             string `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`        // Log level: debug, info, warn, error
	Format     string `toml:"format"`       // Log format: console or json
	File       string `toml:"file"`         // Optional log file (rotated); empty disables file logging
	MaxSizeMB  int    `toml:"max_size_mb"`  // Maximum size of a log file before rotation
	MaxBackups int    `toml:"max_backups"`  // Number of rotated files to keep
	MaxAgeDays int    `toml:"max_age_days"` // Maximum age of rotated files
}

// AirportDBConfig contains airport database settings
type AirportDBConfig struct {
	SimDir             string  `toml:"sim_dir"`              // Simulator root containing scenery and navdata
	CacheDir           string  `toml:"cache_dir"`            // Directory holding the tile cache and global index
	AppVersion         int     `toml:"app_version"`          // Application cache version; bumping it forces a rebuild (0 = ignore)
	IFROnly            *bool   `toml:"ifr_only"`             // Keep only hard-surface runways and airports with instrument approaches (default true)
	NormalizeGateNames bool    `toml:"normalize_gate_names"` // Reduce ramp start names to their first alphanumeric token
	OverrideSettings   bool    `toml:"override_settings"`    // Use the settings above instead of the ones stored in the cache
	LoadLimitNM        float64 `toml:"load_limit_nm"`        // Radius used by nearest-airport searches
}

// StorageConfig contains settings for the SQLite mirror of the global index
type StorageConfig struct {
	Enabled    bool   `toml:"enabled"`     // Mirror the global index into SQLite for attribute searches
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file
}

// MetricsConfig contains Prometheus exporter settings
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"` // Expose Prometheus metrics
	Path    string `toml:"path"`    // HTTP path for the metrics endpoint
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // Default location in configs/ folder
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
			// File exists, try to load it
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

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSecs < 0 || c.Server.WriteTimeoutSecs < 0 || c.Server.IdleTimeoutSecs < 0 {
		return fmt.Errorf("server timeouts must be >= 0")
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = 60
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 64
	}

	if err := c.ValidateAirportDB(); err != nil {
		return err
	}

	// Storage
	if c.Storage.Enabled && c.Storage.SQLitePath == "" {
		// the cache directory is wiped on rebuild, so keep the mirror beside it
		c.Storage.SQLitePath = filepath.Join(filepath.Dir(c.AirportDB.CacheDir), "airportdb.db")
	}

	// Metrics
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	return nil
}

// ValidateAirportDB validates the airport database section
func (c *Config) ValidateAirportDB() error {
	if c.AirportDB.SimDir == "" {
		return fmt.Errorf("airportdb.sim_dir is required")
	}
	if c.AirportDB.CacheDir == "" {
		return fmt.Errorf("airportdb.cache_dir is required")
	}
	if c.AirportDB.AppVersion < 0 || c.AirportDB.AppVersion > 0x7fff {
		return fmt.Errorf("invalid airportdb.app_version: %d", c.AirportDB.AppVersion)
	}
	if c.AirportDB.IFROnly == nil {
		ifrOnly := true
		c.AirportDB.IFROnly = &ifrOnly
	}
	if c.AirportDB.LoadLimitNM < 0 {
		return fmt.Errorf("invalid airportdb.load_limit_nm: %f", c.AirportDB.LoadLimitNM)
	}
	if c.AirportDB.LoadLimitNM == 0 {
		c.AirportDB.LoadLimitNM = 8
	}
	return nil
}
