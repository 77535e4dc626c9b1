package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaynaArora/neo-hackathon/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ElectionMetadata: config.ElectionMetadataConfig{Endpoint: "http://localhost/graphql", Token: "tok"},
		PredictionMarket: config.PredictionMarketConfig{Enabled: true},
		CampaignFinance:  config.CampaignFinanceConfig{Enabled: true, APIKey: "key"},
		HTTPClient: config.HTTPClientConfig{
			TimeoutSeconds:     5,
			MaxAttempts:        3,
			RetryWaitMinMillis: 1,
			RetryWaitMaxMillis: 4,
		},
	}
}

func TestFactoryNewSources(t *testing.T) {
	set, err := NewFactory(testConfig(), nil).NewSources()
	require.NoError(t, err)
	defer set.Close()

	assert.Equal(t, []string{"civicengine", "kalshi", "fec"}, set.Names())
	assert.Nil(t, set.Demographic)
	assert.Len(t, set.clients, 3)
}

func TestFactoryDisabledSourcesAreNil(t *testing.T) {
	cfg := testConfig()
	cfg.PredictionMarket.Enabled = false
	cfg.CampaignFinance.Enabled = false

	set, err := NewFactory(cfg, nil).NewSources()
	require.NoError(t, err)

	assert.Nil(t, set.Markets)
	assert.Nil(t, set.Finance)
	assert.Equal(t, []string{"civicengine"}, set.Names())
}

func TestFactoryDemographicFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nanda.tsv")
	require.NoError(t, os.WriteFile(path, []byte(nandaFixture), 0o600))

	cfg := testConfig()
	cfg.Demographic = config.DemographicConfig{Enabled: true, DataPath: path}
	set, err := NewFactory(cfg, nil).NewSources()
	require.NoError(t, err)
	require.NotNil(t, set.Demographic)
	assert.Equal(t, "nanda", set.Demographic.Name())

	cfg.Demographic.DataPath = filepath.Join(t.TempDir(), "missing.tsv")
	_, err = NewFactory(cfg, nil).NewSources()
	assert.Error(t, err)

	_, err = NewFactory(nil, nil).NewSources()
	assert.Error(t, err)
}
