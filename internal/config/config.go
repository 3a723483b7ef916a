// Package config provides configuration management for the CFB market edge engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Feeds      FeedsConfig      `mapstructure:"feeds" validate:"required"`
	Model      ModelSettings    `mapstructure:"model" validate:"required"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" validate:"required"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
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

// FeedsConfig represents external data feed configuration
type FeedsConfig struct {
	GamesAPIURL        string   `mapstructure:"games_api_url" validate:"required,url"`
	GamesAPIKey        string   `mapstructure:"games_api_key"`
	WeatherAPIURL      string   `mapstructure:"weather_api_url" validate:"required,url"`
	WeatherAPIKey      string   `mapstructure:"weather_api_key"`
	RateLimitPerSecond float64  `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	MaxRetries         int      `mapstructure:"max_retries" validate:"gte=0"`
	TimeoutSeconds     int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	CacheTTLMinutes    int      `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
	Sportsbooks        []string `mapstructure:"sportsbooks" validate:"required,min=1"`
}

// ModelSettings selects the active model version and its runtime knobs.
// The frozen coefficient tables themselves live in model_config.go and are
// addressed by version, not loaded from this file.
type ModelSettings struct {
	Version            string  `mapstructure:"version" validate:"required"`
	HomeFieldAdvantage float64 `mapstructure:"home_field_advantage" validate:"gte=0"`
}

// PipelineConfig represents pipeline step configuration
type PipelineConfig struct {
	StepTimeoutSeconds      int     `mapstructure:"step_timeout_seconds" validate:"required,gt=0"`
	MinProjectionCoverage   float64 `mapstructure:"min_projection_coverage" validate:"required,gt=0,lte=1"`
	ScheduleCron            string  `mapstructure:"schedule_cron"`
	SlateLockTimeoutSeconds int     `mapstructure:"slate_lock_timeout_seconds" validate:"required,gt=0"`
}

// MonitoringConfig represents outcome monitoring and alerting configuration
type MonitoringConfig struct {
	MinSampleBets  int     `mapstructure:"min_sample_bets" validate:"required,gt=0"`
	MinSampleWeeks int     `mapstructure:"min_sample_weeks" validate:"required,gt=0"`
	MinCLVPoints   float64 `mapstructure:"min_clv_points"`
	MinWinRate     float64 `mapstructure:"min_win_rate" validate:"gte=0,lte=1"`
	MinROI         float64 `mapstructure:"min_roi" validate:"gte=-1"`
	MinPersistence float64 `mapstructure:"min_persistence" validate:"gte=0,lte=1"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
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

// StepTimeout returns the per-step pipeline timeout as a duration.
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Pipeline.StepTimeoutSeconds) * time.Second
}

// FeedCacheTTL returns the feed response cache TTL as a duration.
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.Feeds.CacheTTLMinutes) * time.Minute
}
