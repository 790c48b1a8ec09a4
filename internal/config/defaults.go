package config

import "github.com/datapivot/schemabridge/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "schemabridge",
			Port: 4360,
			Host: "localhost",
		},
		Platform: PlatformConfig{
			URL:     "http://localhost:4361",
			Timeout: "60s",
		},
		Manifest: ManifestConfig{
			Dir:      "./manifests",
			Defaults: map[string]string{},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/schemabridge",
			},
		},
		Logging: common.LoggingConfig{
			Level:     "info",
			Outputs:   []string{"console", "file"},
			FilePath:  "logs/schemabridge.log",
			MaxSizeMB: 100,
		},
	}
}
