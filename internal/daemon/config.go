// Package daemon manages the MindWell daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	User      UserConfig      `toml:"user"`
	API       APIConfig       `toml:"api"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// UserConfig identifies this install's single user.
type UserConfig struct {
	ID          string `toml:"id"`
	DisplayName string `toml:"display_name"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// TelemetryConfig controls metric exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := mindwellHome()
	return Config{
		User: UserConfig{
			DisplayName: "You",
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8419,
			CORSOrigins: []string{"*"},
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      filepath.Join(homeDir, "mindwell.log"),
			MaxSizeMB: 50,
			MaxFiles:  5,
		},
	}
}

// LoadConfig reads config from ~/.mindwell/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(mindwellHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.mindwell/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(mindwellHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// mindwellHome returns the MindWell data directory.
func mindwellHome() string {
	if env := os.Getenv("MINDWELL_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mindwell")
}

// Home is exported for use by other packages.
func Home() string {
	return mindwellHome()
}
