// Package config provides configuration management for the Zedalytics services.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Feed     FeedConfig     `mapstructure:"feed" validate:"required"`
	Ingest   IngestConfig   `mapstructure:"ingest" validate:"required"`
	Backfill BackfillConfig `mapstructure:"backfill" validate:"required"`
	API      APIConfig      `mapstructure:"api" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Health   HealthConfig   `mapstructure:"health" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// FeedConfig represents the race event feed connection configuration
type FeedConfig struct {
	Endpoint                string `mapstructure:"endpoint" validate:"required"`
	BearerToken             string `mapstructure:"bearer_token" validate:"required"`
	HandshakeTimeoutSeconds int    `mapstructure:"handshake_timeout_seconds" validate:"required,gt=0"`
	ReadTimeoutSeconds      int    `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
}

// IngestConfig represents ingestion pipeline configuration
type IngestConfig struct {
	SeenTTLMinutes             int `mapstructure:"seen_ttl_minutes" validate:"required,gt=0"`
	ReconnectBackoffSeconds    int `mapstructure:"reconnect_backoff_seconds" validate:"required,gt=0"`
	ReconnectMaxBackoffSeconds int `mapstructure:"reconnect_max_backoff_seconds" validate:"required,gt=0"`
}

// BackfillConfig represents historical CSV backfill configuration
type BackfillConfig struct {
	Enabled               bool    `mapstructure:"enabled"`
	RepoOwner             string  `mapstructure:"repo_owner" validate:"required"`
	RepoName              string  `mapstructure:"repo_name" validate:"required"`
	SyncSchedule          string  `mapstructure:"sync_schedule" validate:"required"`
	RateLimit             float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	MaxRetries            int     `mapstructure:"max_retries" validate:"gte=0"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// APIConfig represents the read-side stats API configuration
type APIConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FeedHandshakeTimeout returns the handshake timeout as a duration
func (c *Config) FeedHandshakeTimeout() time.Duration {
	return time.Duration(c.Feed.HandshakeTimeoutSeconds) * time.Second
}

// FeedReadTimeout returns the feed read timeout as a duration
func (c *Config) FeedReadTimeout() time.Duration {
	return time.Duration(c.Feed.ReadTimeoutSeconds) * time.Second
}

// SeenTTL returns how long a race id stays in the dedupe cache
func (c *Config) SeenTTL() time.Duration {
	return time.Duration(c.Ingest.SeenTTLMinutes) * time.Minute
}
