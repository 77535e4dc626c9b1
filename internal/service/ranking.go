// Package service runs ranking passes over upcoming races.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/logger"
	"github.com/RaynaArora/neo-hackathon/internal/metrics"
	"github.com/RaynaArora/neo-hackathon/internal/models"
	"github.com/RaynaArora/neo-hackathon/internal/scoring"
)

// DefaultLimit is the number of results kept when RankOptions.Limit is unset.
const DefaultLimit = 20

// RaceScorer scores a single race. *scoring.Engine satisfies it.
type RaceScorer interface {
	Score(ctx context.Context, race models.Race, cfg scoring.RunConfig) (*scoring.LeverageResult, error)
}

// RankOptions are the explicit inputs of a ranking run.
type RankOptions struct {
	AsOf            time.Time
	LookaheadMonths int
	ExcludePast     bool
	Limit           int
}

// SkippedRace records a race that could not be scored.
type SkippedRace struct {
	RaceID string `json:"race_id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Ranking is the output of one run: the top results by score plus the races
// dropped along the way.
type Ranking struct {
	RunID   string                    `json:"run_id"`
	AsOf    time.Time                 `json:"as_of"`
	Results []*scoring.LeverageResult `json:"results"`
	Skipped []SkippedRace             `json:"skipped,omitempty"`
	Stats   RunStats                  `json:"stats"`
}

// RankingService fetches upcoming races and ranks them by leverage.
type RankingService struct {
	scorer    RaceScorer
	elections datasource.ElectionSource
	log       *logger.ScoringLogger
}

// NewRankingService creates a ranking service over scorer and elections.
func NewRankingService(scorer RaceScorer, elections datasource.ElectionSource, log *logrus.Logger) *RankingService {
	return &RankingService{
		scorer:    scorer,
		elections: elections,
		log:       logger.NewScoringLogger(log),
	}
}

// Rank runs one ranking pass. Races are scored one at a time; a race whose
// scoring fails is skipped and logged, never silently dropped. Only a
// failure to list races fails the run.
func (s *RankingService) Rank(ctx context.Context, opts RankOptions) (*Ranking, error) {
	if opts.AsOf.IsZero() {
		return nil, fmt.Errorf("rank options: as-of time is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	runID := uuid.New().String()
	log := s.log.WithRun(runID)
	stats := NewRunStats()
	window := RaceWindow{AsOf: opts.AsOf, LookaheadMonths: opts.LookaheadMonths, ExcludePast: opts.ExcludePast}

	races, err := s.elections.UpcomingRaces(ctx, window.Since())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch races: %w", err)
	}
	stats.RacesFetched = len(races)
	log.LogRunStarted(len(races), opts.LookaheadMonths, opts.Limit, opts.ExcludePast)

	ranking := &Ranking{RunID: runID, AsOf: opts.AsOf}
	seen := make(map[string]struct{}, len(races))
	cfg := scoring.RunConfig{AsOf: opts.AsOf}

	for i := range races {
		race := races[i]

		if _, dup := seen[race.ID]; dup {
			stats.Duplicates++
			continue
		}
		seen[race.ID] = struct{}{}

		if reasons := window.Reject(&race); len(reasons) > 0 {
			stats.OutOfWindow++
			log.WithFields(logrus.Fields{"race_id": race.ID, "reasons": reasons}).Debug("Race outside window")
			continue
		}

		result, err := s.scorer.Score(ctx, race, cfg)
		if err != nil {
			stats.Skipped++
			ranking.Skipped = append(ranking.Skipped, SkippedRace{RaceID: race.ID, Name: race.Name, Reason: err.Error()})
			log.LogRaceSkipped(race.ID, err.Error())
			metrics.RecordRaceSkipped(string(race.Level))
			continue
		}

		stats.Scored++
		metrics.RecordRaceScored(string(race.Level), result.Score)
		ranking.Results = append(ranking.Results, result)
	}

	SortResults(ranking.Results)
	if len(ranking.Results) > opts.Limit {
		ranking.Results = ranking.Results[:opts.Limit]
	}

	stats.Finish(len(ranking.Results))
	ranking.Stats = *stats
	metrics.RecordRankingRun(stats.Duration.Seconds(), float64(time.Now().Unix()))
	log.LogRunCompleted(stats.Scored, stats.Skipped, stats.Returned, float64(stats.Duration.Milliseconds()))

	return ranking, nil
}

// ScoreRace scores the race with the given ID, looking back one year from
// asOf so recently held races can still be found.
func (s *RankingService) ScoreRace(ctx context.Context, raceID string, asOf time.Time) (*scoring.LeverageResult, error) {
	window := RaceWindow{AsOf: asOf}
	races, err := s.elections.UpcomingRaces(ctx, window.Since())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch races: %w", err)
	}

	for _, race := range races {
		if race.ID == raceID {
			return s.scorer.Score(ctx, race, scoring.RunConfig{AsOf: asOf})
		}
	}
	return nil, datasource.NotFound(s.elections.Name(), "race "+raceID+" not found")
}

// SortResults orders results by score descending, breaking ties by race ID.
func SortResults(results []*scoring.LeverageResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Race.ID < results[j].Race.ID
	})
}
