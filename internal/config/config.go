// Package config provides configuration management for the fleet registry.
//
// Config file locations (priority order):
//  1. $FLEETYARD_CONFIG
//  2. ./fleetyard.yaml
//  3. ~/.config/fleetyard/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fleetyard/internal/domain"
	"fleetyard/internal/storage"
)

// Config is the root configuration structure.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Seeds    []SeedConfig   `yaml:"seeds,omitempty"`
}

// DatabaseConfig locates the embedded store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SeedConfig is a default account inserted when the credential table is
// empty on first start.
type SeedConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
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

// FindConfigPath returns the first config path that exists, or "".
func FindConfigPath() string {
	if env := os.Getenv("FLEETYARD_CONFIG"); env != "" {
		return env
	}

	candidates := []string{"./fleetyard.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "fleetyard", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// DefaultConfig returns sensible defaults for a new installation. The seed
// accounts mirror the registry's historical defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./fleetyard.db"},
		Log:      LogConfig{Level: "info"},
		Seeds: []SeedConfig{
			{Username: "admin", Password: "admin123", Role: string(domain.RoleAdmin)},
			{Username: "user", Password: "user123", Role: string(domain.RoleUser)},
		},
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "./fleetyard.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.Seeds) == 0 {
		c.Seeds = DefaultConfig().Seeds
	}
}

// SeedAccounts converts the configured seeds to storage options.
func (c *Config) SeedAccounts() []storage.SeedAccount {
	out := make([]storage.SeedAccount, 0, len(c.Seeds))
	for _, s := range c.Seeds {
		out = append(out, storage.SeedAccount{
			Username: s.Username,
			Password: s.Password,
			Role:     domain.Role(s.Role),
		})
	}
	return out
}
