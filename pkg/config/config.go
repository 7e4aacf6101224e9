// Package config handles tool configuration loading
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ueforge/ueforge/pkg/types"
)

// Config is the on-disk UEForge configuration. All fields are optional;
// Validate fills in defaults.
type Config struct {
	// EngineRoot overrides the stored engine location
	EngineRoot string `json:"engineRoot,omitempty" yaml:"engineRoot,omitempty"`

	// DefaultPlatform is used when a command omits --platform
	DefaultPlatform types.Platform `json:"defaultPlatform,omitempty" yaml:"defaultPlatform,omitempty"`

	// DefaultConfiguration is used when a command omits --configuration
	DefaultConfiguration types.Configuration `json:"defaultConfiguration,omitempty" yaml:"defaultConfiguration,omitempty"`

	// Notifications toggles desktop notifications on run completion
	Notifications *bool `json:"notifications,omitempty" yaml:"notifications,omitempty"`

	// LogLevel is the logger verbosity (debug, info, warn, error)
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// StateDir is where projects.json and engine.json live.
	// Defaults to ~/.ueforge.
	StateDir string `json:"stateDir,omitempty" yaml:"stateDir,omitempty"`
}

// NotificationsEnabled resolves the notification toggle (default on)
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// Load reads a configuration file, trying JSON first and YAML second
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err == nil {
		return validate(&cfg)
	}
	if err := yaml.Unmarshal(data, &cfg); err == nil {
		return validate(&cfg)
	}
	return nil, fmt.Errorf("failed to parse %s as JSON or YAML", path)
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func validate(cfg *Config) (*Config, error) {
	if cfg.DefaultPlatform != "" {
		if _, err := types.ParsePlatform(string(cfg.DefaultPlatform)); err != nil {
			return nil, err
		}
	}
	if cfg.DefaultConfiguration != "" {
		if _, err := types.ParseConfiguration(string(cfg.DefaultConfiguration)); err != nil {
			return nil, err
		}
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DefaultPlatform == "" {
		cfg.DefaultPlatform = types.PlatformWin64
	}
	if cfg.DefaultConfiguration == "" {
		cfg.DefaultConfiguration = types.ConfigurationDevelopment
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.StateDir = filepath.Join(home, ".ueforge")
	}
}
