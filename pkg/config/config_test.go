package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !strings.HasSuffix(cfg.Remote.RootPath, "/") {
		t.Error("default root path must end with '/'")
	}
}

func TestValidate(t *testing.T) {
	mutate := func(f func(*Config)) *Config {
		cfg := Default()
		f(cfg)
		return cfg
	}

	invalid := []struct {
		name string
		cfg  *Config
	}{
		{"BadHostScheme", mutate(func(c *Config) { c.Remote.Host = "ftp://host" })},
		{"RootPathNoTrailingSlash", mutate(func(c *Config) { c.Remote.RootPath = "/resources_override" })},
		{"EmptyManifestPath", mutate(func(c *Config) { c.Remote.ManifestPath = "" })},
		{"ZeroConnectTimeout", mutate(func(c *Config) { c.Timeouts.ConnectSeconds = 0 })},
		{"TinyBuffer", mutate(func(c *Config) { c.Transfer.BufferSize = 512 })},
		{"NegativeBandwidth", mutate(func(c *Config) { c.Transfer.BandwidthLimit = -1 })},
		{"BadLogFormat", mutate(func(c *Config) { c.Logging.Format = "xml" })},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestURLHelpers(t *testing.T) {
	cfg := Default()
	cfg.Remote.Host = "https://example.com"
	cfg.Remote.RootPath = "/pack/"
	cfg.Remote.ManifestPath = "/manifest.json"
	cfg.Remote.LegacyManifestPath = "/manifest_old.json"

	if got := cfg.ManifestURL(); got != "https://example.com/manifest.json" {
		t.Errorf("ManifestURL() = %q", got)
	}
	if got := cfg.LegacyManifestURL(); got != "https://example.com/manifest_old.json" {
		t.Errorf("LegacyManifestURL() = %q", got)
	}
	if got := cfg.FileBaseURL(); got != "https://example.com/pack/" {
		t.Errorf("FileBaseURL() = %q", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		cfg := Default()
		cfg.Transfer.BandwidthLimit = 1024 * 1024
		if err := SaveToFile(cfg, path); err != nil {
			t.Fatalf("SaveToFile() error = %v", err)
		}

		loaded, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if loaded.Transfer.BandwidthLimit != 1024*1024 {
			t.Errorf("BandwidthLimit = %d", loaded.Transfer.BandwidthLimit)
		}
		if loaded.Remote.Host != cfg.Remote.Host {
			t.Errorf("Host = %q", loaded.Remote.Host)
		}
	})

	t.Run("PartialFileKeepsDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("transfer:\n  buffer_size: 131072\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		loaded, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if loaded.Transfer.BufferSize != 131072 {
			t.Errorf("BufferSize = %d", loaded.Transfer.BufferSize)
		}
		if loaded.Remote.Host == "" {
			t.Error("defaults should fill unspecified fields")
		}
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("remote: ["), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFromFile(path); err == nil {
			t.Error("invalid YAML should fail")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("missing file should fail")
		}
	})
}
