// Package config provides configuration loading and validation for the server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config represents the server configuration that can be loaded from a YAML
// or JSON file. All fields are optional; missing values come from the
// environment or CLI flags.
type Config struct {
	// Server
	Port               int      `yaml:"port,omitempty" json:"port,omitempty"`                                 // HTTP listen port
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins,omitempty" json:"cors_allowed_origins,omitempty"` // Origins allowed by CORS; "*" allows any

	// Storage
	Store       string `yaml:"store,omitempty" json:"store,omitempty"`               // Store backend: postgres or memory
	DatabaseURL string `yaml:"database_url,omitempty" json:"database_url,omitempty"` // PostgreSQL connection URL

	// Identity
	GoogleClientID string `yaml:"google_client_id,omitempty" json:"google_client_id,omitempty"` // OAuth client the Google ID tokens are issued for
}

// LoadConfig loads configuration from a YAML or JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// YAML is a superset of JSON, so one decoder handles both.
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables.
func FromEnv() Config {
	cfg := Config{
		Store:          os.Getenv("STORE"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = port
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config error: unknown store %q", c.Store)
	}

	if c.GoogleClientID == "" {
		return fmt.Errorf("config error: 'google_client_id' is required")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer flags over env over the config file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Store == "" {
		result.Store = defaults.Store
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.GoogleClientID == "" {
		result.GoogleClientID = defaults.GoogleClientID
	}
	if len(result.CORSAllowedOrigins) == 0 {
		result.CORSAllowedOrigins = defaults.CORSAllowedOrigins
	}

	return result
}

// Defaults returns the values used when nothing else sets a field.
func Defaults() Config {
	return Config{
		Port:               8080,
		Store:              StorePostgres,
		CORSAllowedOrigins: []string{"*"},
	}
}
