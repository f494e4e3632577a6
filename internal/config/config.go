// Package config holds the service configuration: YAML file, environment
// overrides, defaults, and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string `yaml:"host" env:"GRIDLOCK_HOST"`
	Port       int    `yaml:"port" env:"GRIDLOCK_PORT"`
	CORSOrigin string `yaml:"cors_origin" env:"GRIDLOCK_CORS_ORIGIN"`
}

// EngineConfig holds recovery-engine settings.
type EngineConfig struct {
	// MaxSubsets bounds the termination-set search; exceeding it is an
	// explicit error, never a silently truncated answer.
	MaxSubsets int `yaml:"max_subsets" env:"GRIDLOCK_MAX_SUBSETS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"GRIDLOCK_LOG_LEVEL"`
	Format string `yaml:"format" env:"GRIDLOCK_LOG_FORMAT"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "localhost",
			Port:       8080,
			CORSOrigin: "*",
		},
		Engine: EngineConfig{
			MaxSubsets: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from an optional YAML file, applies
// environment overrides, and validates the result. An empty path skips
// the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if host := os.Getenv("GRIDLOCK_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("GRIDLOCK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if origin := os.Getenv("GRIDLOCK_CORS_ORIGIN"); origin != "" {
		c.Server.CORSOrigin = origin
	}
	if max := os.Getenv("GRIDLOCK_MAX_SUBSETS"); max != "" {
		if m, err := strconv.Atoi(max); err == nil {
			c.Engine.MaxSubsets = m
		}
	}
	if level := os.Getenv("GRIDLOCK_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("GRIDLOCK_LOG_FORMAT"); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Engine.MaxSubsets <= 0 {
		return fmt.Errorf("engine max_subsets must be positive, got %d", c.Engine.MaxSubsets)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, want text or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}

// ServerAddr returns the host:port the HTTP server binds.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
