// Package config provides configuration management for the leverage ranker.
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App              AppConfig              `mapstructure:"app" validate:"required"`
	ElectionMetadata ElectionMetadataConfig `mapstructure:"election_metadata" validate:"required"`
	PredictionMarket PredictionMarketConfig `mapstructure:"prediction_market"`
	CampaignFinance  CampaignFinanceConfig  `mapstructure:"campaign_finance"`
	Demographic      DemographicConfig      `mapstructure:"demographic"`
	HTTPClient       HTTPClientConfig       `mapstructure:"http_client" validate:"required"`
	Ranking          RankingConfig          `mapstructure:"ranking" validate:"required"`
	Schedule         ScheduleConfig         `mapstructure:"schedule"`
	Metrics          MetricsConfig          `mapstructure:"metrics" validate:"required"`
	AWSSecrets       AWSSecretsConfig       `mapstructure:"aws_secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ElectionMetadataConfig configures the GraphQL election metadata service.
type ElectionMetadataConfig struct {
	Endpoint     string `mapstructure:"endpoint" validate:"required,url"`
	Token        string `mapstructure:"token"`
	MaxElections int    `mapstructure:"max_elections" validate:"gte=0"`
}

// PredictionMarketConfig configures the prediction-market search API.
type PredictionMarketConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
}

// CampaignFinanceConfig configures the campaign-finance API.
type CampaignFinanceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
}

// DemographicConfig points at the county-level party-share file.
type DemographicConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DataPath string `mapstructure:"data_path" validate:"required_if=Enabled true"`
}

// HTTPClientConfig configures retries and rate limits for every upstream.
type HTTPClientConfig struct {
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxAttempts         int     `mapstructure:"max_attempts" validate:"required,gt=0,lte=10"`
	RetryWaitMinMillis  int     `mapstructure:"retry_wait_min_ms" validate:"gte=0"`
	RetryWaitMaxMillis  int     `mapstructure:"retry_wait_max_ms" validate:"gte=0"`
	RateLimitPerSecond  float64 `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	CircuitBreakerLimit int     `mapstructure:"circuit_breaker_limit" validate:"gte=0"`
	// Seconds an open breaker waits before sending a trial request.
	CircuitBreakerCooldownSeconds int `mapstructure:"circuit_breaker_cooldown_seconds" validate:"gte=0"`
}

// RankingConfig holds the run defaults passed to the ranking service.
type RankingConfig struct {
	LookaheadMonths int    `mapstructure:"lookahead_months" validate:"required,gt=0"`
	ExcludePast     bool   `mapstructure:"exclude_past"`
	Limit           int    `mapstructure:"limit" validate:"required,gt=0"`
	OutputPath      string `mapstructure:"output_path"`
}

// ScheduleConfig represents recurring ranking runs
type ScheduleConfig struct {
	Cron string `mapstructure:"cron" validate:"omitempty,cronspec"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// AWSSecretsConfig enables the Secrets Manager overlay.
type AWSSecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Timeout returns the per-request timeout.
func (h HTTPClientConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// RetryWaitMin returns the first backoff delay.
func (h HTTPClientConfig) RetryWaitMin() time.Duration {
	return time.Duration(h.RetryWaitMinMillis) * time.Millisecond
}

// RetryWaitMax returns the backoff ceiling.
func (h HTTPClientConfig) RetryWaitMax() time.Duration {
	return time.Duration(h.RetryWaitMaxMillis) * time.Millisecond
}
