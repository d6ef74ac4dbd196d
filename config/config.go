// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server      Server      `yaml:"server"`
	Database    Database    `yaml:"database"`
	Admin       Admin       `yaml:"admin"`
	Submissions Submissions `yaml:"submissions"`
	Logging     Logging     `yaml:"logging"`
	Metrics     Metrics     `yaml:"metrics"`
}

// Server configures the HTTP server.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Database configures the database.
type Database struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// Admin configures the admin API. The token authorizes every write
// endpoint; when empty the admin surface is disabled entirely.
type Admin struct {
	Token      string `yaml:"token"`
	BcryptCost int    `yaml:"bcrypt_cost"`
}

// Submissions configures the anonymous capture log.
type Submissions struct {
	ListLimit int `yaml:"list_limit"` // default page size for admin listings
}

// Logging configures logging.
type Logging struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Metrics configures Prometheus metrics.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: /metrics
}

// Default returns the configuration defaults. Loading unmarshals on
// top of these, so absent keys keep their default.
func Default() *Config {
	return &Config{
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			Driver: "sqlite",
			DSN:    "formgate.db",
		},
		Admin: Admin{
			BcryptCost: 10,
		},
		Submissions: Submissions{
			ListLimit: 50,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	FORMGATE_SERVER_HOST      - Server host (default: 0.0.0.0)
//	FORMGATE_SERVER_PORT      - Server port (default: 8080)
//	FORMGATE_DATABASE_DSN     - Database path (default: formgate.db)
//	FORMGATE_ADMIN_TOKEN      - Admin API token (empty disables admin API)
//	FORMGATE_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	FORMGATE_LOG_FORMAT       - Log format: json or console (default: json)
//	FORMGATE_METRICS_ENABLED  - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	cfg := Default()

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies FORMGATE_* environment variables to the
// config. Environment variables always override file-based settings.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FORMGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FORMGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FORMGATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("FORMGATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("FORMGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("FORMGATE_ADMIN_TOKEN"); v != "" {
		cfg.Admin.Token = v
	}
	if v := os.Getenv("FORMGATE_SUBMISSIONS_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Submissions.ListLimit = n
		}
	}
	if v := os.Getenv("FORMGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FORMGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FORMGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("FORMGATE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}
	if cfg.Admin.Token != "" && len(cfg.Admin.Token) < 16 {
		return fmt.Errorf("admin.token must be at least 16 characters")
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
