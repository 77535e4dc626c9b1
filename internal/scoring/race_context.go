package scoring

import (
	"context"
	"time"

	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// RunConfig carries everything time-dependent about a run. Scoring never
// reads the wall clock, so equal snapshots and equal AsOf give equal results.
type RunConfig struct {
	AsOf time.Time
}

// MarketLookup is the resolved prediction-market state for one race.
type MarketLookup struct {
	Match *MarketMatch // nil when no market was found
	Err   error        // upstream failure, distinct from absence
}

// RaceContext is the per-race state shared by the estimators. The market
// lookup is performed at most once and reused by every consumer.
type RaceContext struct {
	Race models.Race
	AsOf time.Time

	markets  datasource.MarketSource
	resolved bool
	market   MarketLookup
}

// NewRaceContext prepares the shared state for scoring race.
func NewRaceContext(race models.Race, cfg RunConfig, markets datasource.MarketSource) *RaceContext {
	return &RaceContext{Race: race, AsOf: cfg.AsOf, markets: markets}
}

// Market resolves and caches the best matching market for the race.
func (rc *RaceContext) Market(ctx context.Context) MarketLookup {
	if rc.resolved {
		return rc.market
	}
	rc.resolved = true
	if rc.markets == nil {
		return rc.market
	}

	sets, err := rc.markets.FindMarkets(ctx, rc.Race)
	switch {
	case err == nil:
		rc.market.Match = SelectBestMarket(sets, rc.Race)
	case datasource.IsNotFound(err), datasource.IsMalformed(err):
		// Treated as absence.
	default:
		rc.market.Err = err
	}
	return rc.market
}
