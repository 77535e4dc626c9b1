// Package config provides configuration management for the leverage ranker.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "LEVERAGE"
	defaultConfigPath = "config/config.yaml"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(envPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers defaults for every optional key. Registering a key
// also lets LEVERAGE_* variables override it when no file mentions it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "leverage")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("election_metadata.endpoint", "https://bpi.civicengine.com/graphql")
	v.SetDefault("election_metadata.token", "")
	v.SetDefault("election_metadata.max_elections", 100)

	v.SetDefault("prediction_market.enabled", true)
	v.SetDefault("prediction_market.base_url", "https://api.elections.kalshi.com")
	v.SetDefault("prediction_market.api_key", "")

	v.SetDefault("campaign_finance.enabled", true)
	v.SetDefault("campaign_finance.base_url", "https://api.open.fec.gov/v1")
	v.SetDefault("campaign_finance.api_key", "DEMO_KEY")

	v.SetDefault("demographic.enabled", false)
	v.SetDefault("demographic.data_path", "data/nanda.tsv")

	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("http_client.max_attempts", 3)
	v.SetDefault("http_client.retry_wait_min_ms", 1000)
	v.SetDefault("http_client.retry_wait_max_ms", 4000)
	v.SetDefault("http_client.rate_limit_per_second", 5.0)
	v.SetDefault("http_client.circuit_breaker_limit", 5)
	v.SetDefault("http_client.circuit_breaker_cooldown_seconds", 30)

	v.SetDefault("ranking.lookahead_months", 18)
	v.SetDefault("ranking.exclude_past", true)
	v.SetDefault("ranking.limit", 20)
	v.SetDefault("ranking.output_path", "")

	v.SetDefault("schedule.cron", "0 6 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("aws_secrets.enabled", false)
	v.SetDefault("aws_secrets.region", "")
	v.SetDefault("aws_secrets.secret_name", "")
}

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
