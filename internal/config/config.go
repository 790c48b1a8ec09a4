package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/datapivot/schemabridge/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig         `toml:"server"`
	Platform PlatformConfig       `toml:"platform"`
	Manifest ManifestConfig       `toml:"manifest"`
	Storage  StorageConfig        `toml:"storage"`
	Auth     AuthConfig           `toml:"auth"`
	Logging  common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// PlatformConfig contains the host platform's model-invocation API settings.
// Embedding and rerank calls are proxied through this endpoint.
type PlatformConfig struct {
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the platform request timeout.
func (c *PlatformConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// ManifestConfig contains tool manifest settings.
// Defaults supplies values for form-scoped parameters omitted from a tool call,
// keyed by parameter name.
type ManifestConfig struct {
	Dir      string            `toml:"dir"`
	Defaults map[string]string `toml:"defaults"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// AuthConfig contains authentication settings for the HTTP transport.
// APIKey, when set, is required as a bearer token on /mcp requests.
type AuthConfig struct {
	APIKey string `toml:"api_key"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies SCHEMABRIDGE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("SCHEMABRIDGE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCHEMABRIDGE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if url := os.Getenv("SCHEMABRIDGE_PLATFORM_URL"); url != "" {
		config.Platform.URL = url
	}
	if key := os.Getenv("SCHEMABRIDGE_PLATFORM_API_KEY"); key != "" {
		config.Platform.APIKey = key
	}
	if dir := os.Getenv("SCHEMABRIDGE_MANIFEST_DIR"); dir != "" {
		config.Manifest.Dir = dir
	}
	if badgerPath := os.Getenv("SCHEMABRIDGE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if key := os.Getenv("SCHEMABRIDGE_AUTH_API_KEY"); key != "" {
		config.Auth.APIKey = key
	}
	if level := os.Getenv("SCHEMABRIDGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks mandatory configuration and returns a list of issues.
// An empty list means the configuration is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.Manifest.Dir == "" {
		issues = append(issues, "manifest.dir is required (directory containing tool manifests)")
	}
	if c.Platform.URL != "" && !strings.HasPrefix(c.Platform.URL, "http://") && !strings.HasPrefix(c.Platform.URL, "https://") {
		issues = append(issues, fmt.Sprintf("platform.url must be an http(s) URL (got %q)", c.Platform.URL))
	}
	if c.Storage.Badger.Path == "" {
		issues = append(issues, "storage.badger.path is required (knowledge store location)")
	}

	return issues
}

// BaseURL returns the externally visible base URL of the HTTP server.
func (c *Config) BaseURL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}
