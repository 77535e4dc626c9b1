package scoring

import (
	"math"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// Election proximity boosts.
const (
	nearWindowDays  = 90
	midWindowDays   = 180
	nearWindowBoost = 1.10
	midWindowBoost  = 1.05
	noBoost         = 1.0
)

// TimeBoost returns the proximity multiplier for an election days away.
// Past elections get no boost.
func TimeBoost(days int) float64 {
	switch {
	case days < 0:
		return noBoost
	case days <= nearWindowDays:
		return nearWindowBoost
	case days <= midWindowDays:
		return midWindowBoost
	default:
		return noBoost
	}
}

// LeverageResult is the scored, annotated outcome for one race. It is built
// once per race per run and not modified afterwards.
type LeverageResult struct {
	Race                   models.Race      `json:"race"`
	Competitiveness        float64          `json:"competitiveness"`
	Saturation             *float64         `json:"saturation"`
	SaturationMethod       string           `json:"saturation_method"`
	TimeBoost              float64          `json:"time_boost"`
	DaysUntilElection      int              `json:"days_until_election"`
	Score                  float64          `json:"score"`
	QualityCompetitiveness Quality          `json:"quality_competitiveness"`
	QualitySaturation      Quality          `json:"quality_saturation"`
	Signals                []SignalEstimate `json:"signals"`
	Warnings               []string         `json:"warnings"`
}

// Combine multiplies fused competitiveness by saturation and the time boost.
// It performs no I/O. Warnings are the de-duplicated union of source
// warnings, saturation warnings and caveats, in that order.
func Combine(race models.Race, comp FusionResult, sat Saturation, days int, sourceWarnings, caveats []string) (*LeverageResult, error) {
	if math.IsNaN(comp.Value) || comp.Value < 0 || comp.Value > 1 {
		return nil, contractViolation("competitiveness %v outside [0,1]", comp.Value)
	}
	if v, ok := sat.Value(); ok && (math.IsNaN(v) || v <= 0 || v > 1) {
		return nil, contractViolation("saturation %v outside (0,1]", v)
	}

	boost := TimeBoost(days)
	return &LeverageResult{
		Race:                   race,
		Competitiveness:        comp.Value,
		Saturation:             sat.Pointer(),
		SaturationMethod:       sat.Method,
		TimeBoost:              boost,
		DaysUntilElection:      days,
		Score:                  comp.Value * sat.Multiplier() * boost,
		QualityCompetitiveness: comp.Quality,
		QualitySaturation:      sat.Quality,
		Signals:                append([]SignalEstimate(nil), comp.Sources...),
		Warnings:               unionWarnings(sourceWarnings, sat.Warnings, caveats),
	}, nil
}

func unionWarnings(groups ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, g := range groups {
		for _, w := range g {
			if w == "" {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
