package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/config"
)

// Set is the group of upstream adapters built from configuration. Disabled
// sources are left nil.
type Set struct {
	Elections   ElectionSource
	Markets     MarketSource
	Finance     FinanceSource
	Demographic DemographicSource

	clients []*RateLimitedHTTPClient
}

// Close releases the HTTP clients held by the set.
func (s *Set) Close() error {
	for _, c := range s.clients {
		c.Close()
	}
	return nil
}

// Names lists the configured sources in lookup order.
func (s *Set) Names() []string {
	var names []string
	if s.Elections != nil {
		names = append(names, s.Elections.Name())
	}
	if s.Markets != nil {
		names = append(names, s.Markets.Name())
	}
	if s.Finance != nil {
		names = append(names, s.Finance.Name())
	}
	if s.Demographic != nil {
		names = append(names, s.Demographic.Name())
	}
	return names
}

// Factory creates source adapters based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewHTTPClientConfig converts the configuration section into client settings.
func NewHTTPClientConfig(cfg config.HTTPClientConfig) HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxAttempts:       cfg.MaxAttempts,
		RetryWaitMin:      time.Duration(cfg.RetryWaitMinMillis) * time.Millisecond,
		RetryWaitMax:      time.Duration(cfg.RetryWaitMaxMillis) * time.Millisecond,
		RateLimit:         cfg.RateLimitPerSecond,
		CircuitBreakerMax: cfg.CircuitBreakerLimit,

		CircuitBreakerCooldown: time.Duration(cfg.CircuitBreakerCooldownSeconds) * time.Second,
	}
}

// newClient gives each upstream its own limiter and circuit breaker so one
// failing service does not trip the others.
func (f *Factory) newClient(set *Set) *RateLimitedHTTPClient {
	c := NewRateLimitedHTTPClient(NewHTTPClientConfig(f.config.HTTPClient), f.logger)
	set.clients = append(set.clients, c)
	return c
}

// NewSources creates every enabled source. The election metadata service is
// required; the others are optional.
func (f *Factory) NewSources() (*Set, error) {
	if f.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	cfg := f.config
	set := &Set{}

	set.Elections = NewCivicEngineClient(f.newClient(set), cfg.ElectionMetadata.Endpoint,
		cfg.ElectionMetadata.Token, cfg.ElectionMetadata.MaxElections, f.logger)

	if cfg.PredictionMarket.Enabled {
		set.Markets = NewKalshiClient(f.newClient(set), cfg.PredictionMarket.BaseURL, cfg.PredictionMarket.APIKey, f.logger)
	} else {
		f.logSkipped("prediction_market")
	}

	if cfg.CampaignFinance.Enabled {
		set.Finance = NewFECClient(f.newClient(set), cfg.CampaignFinance.BaseURL, cfg.CampaignFinance.APIKey, f.logger)
	} else {
		f.logSkipped("campaign_finance")
	}

	if cfg.Demographic.Enabled {
		nanda, err := LoadNANDAFile(cfg.Demographic.DataPath, f.logger)
		if err != nil {
			set.Close()
			return nil, fmt.Errorf("failed to create demographic source: %w", err)
		}
		set.Demographic = nanda
	} else {
		f.logSkipped("demographic")
	}

	if f.logger != nil {
		f.logger.WithField("sources", set.Names()).Info("Created data sources")
	}
	return set, nil
}

func (f *Factory) logSkipped(name string) {
	if f.logger != nil {
		f.logger.WithField("source", name).Info("Skipping disabled data source")
	}
}
