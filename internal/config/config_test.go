package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
)

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "leverage", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 3, cfg.HTTPClient.MaxAttempts)
	assert.Equal(t, 18, cfg.Ranking.LookaheadMonths)
	assert.True(t, cfg.Ranking.ExcludePast)
	assert.Equal(t, 20, cfg.Ranking.Limit)
	assert.NoError(t, Validate(cfg))
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	assert.Error(t, err)
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("LEVERAGE_APP_NAME", "test-app")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "test-app", cfg.App.Name)
}

func TestLoadConfigExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_CIVIC_TOKEN", "expanded_secret_value")

	cfg, err := Load(expansionConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded_secret_value", cfg.ElectionMetadata.Token)
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 18, cfg.Ranking.LookaheadMonths)
	assert.True(t, cfg.Ranking.ExcludePast)
	assert.Equal(t, 20, cfg.Ranking.Limit)
	assert.Equal(t, 3, cfg.HTTPClient.MaxAttempts)
	assert.Equal(t, 1000, cfg.HTTPClient.RetryWaitMinMillis)
	assert.Equal(t, 4000, cfg.HTTPClient.RetryWaitMaxMillis)
	assert.NoError(t, Validate(cfg))
}

func TestLoadWithDefaultsFileOverridesDefaults(t *testing.T) {
	t.Setenv("TEST_CIVIC_TOKEN", "tok")

	cfg, err := LoadWithDefaults(expansionConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 12, cfg.Ranking.LookaheadMonths)
	assert.Equal(t, 10, cfg.Ranking.Limit)
	// Not in the file, so defaults apply.
	assert.True(t, cfg.Ranking.ExcludePast)
	assert.Equal(t, 4000, cfg.HTTPClient.RetryWaitMaxMillis)
}

func TestLoadWithDefaultsEnvOverride(t *testing.T) {
	t.Setenv("LEVERAGE_RANKING_LIMIT", "5")

	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Ranking.Limit)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid environment", func(c *Config) { c.App.Environment = "invalid" }, "Environment"},
		{"invalid log level", func(c *Config) { c.App.LogLevel = "verbose" }, "LogLevel"},
		{"invalid cron", func(c *Config) { c.Schedule.Cron = "every day" }, "Cron"},
		{"zero limit", func(c *Config) { c.Ranking.Limit = 0 }, "Limit"},
		{"bad endpoint", func(c *Config) { c.ElectionMetadata.Endpoint = "not a url" }, "Endpoint"},
		{"demographic without path", func(c *Config) {
			c.Demographic.Enabled = true
			c.Demographic.DataPath = ""
		}, "DataPath"},
		{"retry window inverted", func(c *Config) {
			c.HTTPClient.RetryWaitMinMillis = 5000
			c.HTTPClient.RetryWaitMaxMillis = 1000
		}, "retry_wait_max_ms"},
		{"production without token", func(c *Config) {
			c.App.Environment = "production"
			c.ElectionMetadata.Token = ""
		}, "token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(validConfigPath)
			require.NoError(t, err)
			tt.mutate(cfg)

			err = Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "staging"}}
	assert.True(t, cfg.IsStaging())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

type fakeSecretsClient struct {
	output *secretsmanager.GetSecretValueOutput
	err    error
}

func (f *fakeSecretsClient) GetSecretValue(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return f.output, f.err
}

func TestFetchSecretsOverlay(t *testing.T) {
	client := &fakeSecretsClient{output: &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"civic_engine_token":"ce","fec_api_key":"fec"}`),
	}}

	secrets, err := fetchSecrets(context.Background(), client, "leverage/prod")
	require.NoError(t, err)

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	overlaySecretsOnConfig(cfg, secrets)

	assert.Equal(t, "ce", cfg.ElectionMetadata.Token)
	assert.Equal(t, "fec", cfg.CampaignFinance.APIKey)
	// Empty secrets leave existing values alone.
	assert.Equal(t, "", cfg.PredictionMarket.APIKey)
}

func TestFetchSecretsErrors(t *testing.T) {
	_, err := fetchSecrets(context.Background(), &fakeSecretsClient{err: errors.New("denied")}, "x")
	assert.ErrorContains(t, err, "denied")

	_, err = fetchSecrets(context.Background(), &fakeSecretsClient{output: &secretsmanager.GetSecretValueOutput{}}, "x")
	assert.ErrorContains(t, err, "no secret data")

	_, err = fetchSecrets(context.Background(), &fakeSecretsClient{output: &secretsmanager.GetSecretValueOutput{
		SecretBinary: []byte("{not json"),
	}}, "x")
	assert.ErrorContains(t, err, "secret binary")
}

func TestLoadSecretsFromAWSDisabled(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, LoadSecretsFromAWS(context.Background(), cfg))
}
