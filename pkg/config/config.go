package config

import (
	"fmt"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Remote   RemoteConfig   `yaml:"remote"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Transfer TransferConfig `yaml:"transfer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RemoteConfig identifies the manifest and file host.
type RemoteConfig struct {
	// Host is the scheme+host of the remote server.
	Host string `yaml:"host"`
	// RootPath is the server path prefix that file remote paths are
	// joined under. Must end with '/'.
	RootPath string `yaml:"root_path"`
	// ManifestPath is the server path of the manifest document.
	ManifestPath string `yaml:"manifest_path"`
	// LegacyManifestPath is the server path of the old-generation
	// manifest used only for courtesy cleanup.
	LegacyManifestPath string `yaml:"legacy_manifest_path"`
}

// TimeoutConfig holds transport timeouts, in seconds. FileSeconds bounds
// a whole file transfer; zero means no overall limit, so large downloads
// only fail when the connection itself does.
type TimeoutConfig struct {
	ConnectSeconds  int `yaml:"connect_seconds"`
	ManifestSeconds int `yaml:"manifest_seconds"`
	FileSeconds     int `yaml:"file_seconds"`
}

// TransferConfig holds transfer tuning.
type TransferConfig struct {
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"`
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = disabled)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			Host:               "https://istaria-mappack.s3.us-west-2.amazonaws.com",
			RootPath:           "/resources_override/",
			ManifestPath:       "/mappack_manifest.json",
			LegacyManifestPath: "/mappack_manifest_old.json",
		},
		Timeouts: TimeoutConfig{
			ConnectSeconds:  15,
			ManifestSeconds: 120,
			FileSeconds:     0,
		},
		Transfer: TransferConfig{
			BufferSize:     65536,
			BandwidthLimit: 0,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Remote.Host, "http://") && !strings.HasPrefix(c.Remote.Host, "https://") {
		return fmt.Errorf("remote.host must start with http:// or https://, got %q", c.Remote.Host)
	}
	if !strings.HasSuffix(c.Remote.RootPath, "/") {
		return fmt.Errorf("remote.root_path must end with '/', got %q", c.Remote.RootPath)
	}
	if c.Remote.ManifestPath == "" {
		return fmt.Errorf("remote.manifest_path must not be empty")
	}
	if c.Timeouts.ConnectSeconds < 1 {
		return fmt.Errorf("timeouts.connect_seconds must be at least 1, got %d", c.Timeouts.ConnectSeconds)
	}
	if c.Timeouts.ManifestSeconds < 1 {
		return fmt.Errorf("timeouts.manifest_seconds must be at least 1, got %d", c.Timeouts.ManifestSeconds)
	}
	if c.Timeouts.FileSeconds < 0 {
		return fmt.Errorf("timeouts.file_seconds must not be negative, got %d", c.Timeouts.FileSeconds)
	}
	if c.Transfer.BufferSize < 4096 {
		return fmt.Errorf("transfer.buffer_size must be at least 4096, got %d", c.Transfer.BufferSize)
	}
	if c.Transfer.BandwidthLimit < 0 {
		return fmt.Errorf("transfer.bandwidth_limit must not be negative, got %d", c.Transfer.BandwidthLimit)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// ManifestURL returns the full URL of the manifest document.
func (c *Config) ManifestURL() string {
	return joinURL(c.Remote.Host, c.Remote.ManifestPath)
}

// LegacyManifestURL returns the full URL of the legacy manifest.
func (c *Config) LegacyManifestURL() string {
	return joinURL(c.Remote.Host, c.Remote.LegacyManifestPath)
}

// FileBaseURL returns the base URL that file remote paths are joined to
// when the manifest itself does not carry a base_url.
func (c *Config) FileBaseURL() string {
	return joinURL(c.Remote.Host, c.Remote.RootPath)
}

func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(path, "/") {
		return base + "/" + path
	}
	return base + path
}
