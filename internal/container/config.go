// Package container provides dependency injection and lifecycle management
// for the procurement portal following Clean Architecture principles.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Server configuration
	Server ServerConfig

	// Auth configuration
	Auth AuthConfig

	// Lark messaging configuration
	Lark LarkConfig

	// Notification delivery configuration
	Notification NotificationConfig

	// Numbering configuration
	Numbering NumberingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration

	// AllowOrigins for CORS and websocket upgrades. Empty allows any origin.
	AllowOrigins []string
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	// JWTSecret is the HS256 key tokens are signed with
	JWTSecret string
}

// LarkConfig holds Lark API settings.
type LarkConfig struct {
	// Enabled turns on the Lark delivery channel
	Enabled bool

	// AppID is the Lark application ID
	AppID string

	// AppSecret is the Lark application secret
	AppSecret string

	// PortalBaseURL prefixes the entity link in messages
	PortalBaseURL string
}

// NotificationConfig holds delivery retry settings.
type NotificationConfig struct {
	MaxAttempts  int
	PollInterval time.Duration
	BatchSize    int
}

// NumberingConfig holds human-readable number settings.
type NumberingConfig struct {
	// Year is embedded in request numbers
	Year int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/procurement.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Notification: NotificationConfig{
			MaxAttempts:  5,
			PollInterval: 30 * time.Second,
			BatchSize:    50,
		},
		Numbering: NumberingConfig{
			Year: 1404,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required when lark is enabled")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required when lark is enabled")
		}
	}

	if c.Numbering.Year <= 0 {
		return fmt.Errorf("numbering.year must be positive")
	}

	return nil
}
