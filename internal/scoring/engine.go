package scoring

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/cache"
	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/logger"
	"github.com/RaynaArora/neo-hackathon/internal/metrics"
	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// Sources bundles the upstream collaborators. Any of them may be nil, in
// which case the corresponding signal is absent.
type Sources struct {
	Elections   datasource.ElectionSource
	Markets     datasource.MarketSource
	Finance     datasource.FinanceSource
	Demographic datasource.DemographicSource
}

// Engine scores one race at a time. Estimation runs sequentially: market,
// historical and demographic competitiveness, then the saturation path
// selected by jurisdiction level.
type Engine struct {
	markets    datasource.MarketSource
	strategies []CompetitivenessSource
	saturation SaturationEstimator
	log        *logger.ScoringLogger
}

// NewEngine wires the standard strategies over src. The regional cache is
// shared by every race scored with this engine.
func NewEngine(src Sources, regional *cache.RegionalCache, log *logrus.Logger) *Engine {
	return &Engine{
		markets: src.Markets,
		strategies: []CompetitivenessSource{
			MarketStrategy{},
			HistoricalStrategy{Elections: src.Elections, Finance: src.Finance},
			DemographicStrategy{Source: src.Demographic, Cache: regional},
		},
		saturation: NewSaturationSelector(src.Finance),
		log:        logger.NewScoringLogger(log),
	}
}

// Score computes the leverage result for race. The only time input is
// cfg.AsOf. Errors wrap ErrContractViolation and affect only this race.
func (e *Engine) Score(ctx context.Context, race models.Race, cfg RunConfig) (*LeverageResult, error) {
	if !race.Level.Valid() {
		return nil, contractViolation("race %s has unknown jurisdiction level %q", race.ID, race.Level)
	}

	rc := NewRaceContext(race, cfg, e.markets)

	var (
		estimates []SignalEstimate
		warnings  []string
	)
	for _, strategy := range e.strategies {
		out, err := strategy.Estimate(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("%s estimate for race %s: %w", strategy.Name(), race.ID, err)
		}
		e.recordOutcome(race.ID, string(strategy.Name()), out.Status, out.Err)
		if out.Estimate != nil {
			estimates = append(estimates, *out.Estimate)
		}
		warnings = append(warnings, out.Warnings...)
	}

	comp, err := Fuse(estimates)
	if err != nil {
		return nil, fmt.Errorf("fusing race %s: %w", race.ID, err)
	}

	sat, err := e.saturation.Estimate(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("saturation for race %s: %w", race.ID, err)
	}
	satStatus := StatusAbsent
	if sat.Available() {
		satStatus = StatusValue
	}
	e.recordOutcome(race.ID, "saturation_"+sat.Method, satStatus, nil)

	result, err := Combine(race, comp, sat, race.DaysUntil(cfg.AsOf), warnings, Caveats(race))
	if err != nil {
		return nil, fmt.Errorf("combining race %s: %w", race.ID, err)
	}

	e.log.LogRaceScored(race.ID, string(race.Level), result.Competitiveness, result.Saturation, result.Score,
		result.QualityCompetitiveness.String(), result.QualitySaturation.String(), len(result.Warnings))
	return result, nil
}

func (e *Engine) recordOutcome(raceID, source, status string, err error) {
	metrics.RecordSourceOutcome(source, status)
	e.log.LogSourceOutcome(raceID, source, status, err)
}

// Caveats lists known approximations that apply to race. Runoff and recall
// elections are scored as general elections.
func Caveats(race models.Race) []string {
	switch race.ElectionType {
	case models.ElectionRunoff:
		return []string{"Runoff election scored as general election"}
	case models.ElectionRecall:
		return []string{"Recall election scored as general election"}
	default:
		return nil
	}
}
