// Package config provides configuration management for Axiomarium.
//
// Config file locations (priority order):
//  1. $AXIOMARIUM_CONFIG
//  2. ./axiomarium.yaml
//  3. ~/.config/axiomarium/config.yaml
//  4. /etc/axiomarium/config.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the persisted application configuration
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Theory   TheoryConfig   `yaml:"theory"`
	Export   ExportConfig   `yaml:"export"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds declaration log settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TheoryConfig points at the theory file to load on startup
type TheoryConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch"`
}

// ExportConfig holds export defaults
type ExportConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "./axiomarium.db"},
		Theory:   TheoryConfig{Watch: true},
		Export:   ExportConfig{DefaultFormat: "json"},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./axiomarium.db"
	}
	if c.Export.DefaultFormat == "" {
		c.Export.DefaultFormat = "json"
	}
}
