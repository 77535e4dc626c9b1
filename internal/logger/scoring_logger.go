// Package logger provides scoring-run logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ScoringLogger provides dedicated logging for ranking runs.
type ScoringLogger struct {
	*logrus.Entry
}

// NewScoringLogger creates a new scoring logger. A nil base logger discards.
func NewScoringLogger(baseLogger *logrus.Logger) *ScoringLogger {
	if baseLogger == nil {
		baseLogger = NewDiscardLogger()
	}
	return &ScoringLogger{
		Entry: baseLogger.WithField("component", "scoring"),
	}
}

// WithRun returns a logger tagged with a run ID.
func (sl *ScoringLogger) WithRun(runID string) *ScoringLogger {
	return &ScoringLogger{Entry: sl.WithField("run_id", runID)}
}

// LogRunStarted logs the start of a ranking run.
func (sl *ScoringLogger) LogRunStarted(racesFetched, lookaheadMonths, limit int, excludePast bool) {
	sl.WithFields(logrus.Fields{
		"races_fetched":    racesFetched,
		"lookahead_months": lookaheadMonths,
		"limit":            limit,
		"exclude_past":     excludePast,
	}).Info("Ranking run started")
}

// LogRaceScored logs one completed race result.
func (sl *ScoringLogger) LogRaceScored(raceID, level string, competitiveness float64, saturation *float64, score float64, qualityComp, qualitySat string, warnings int) {
	fields := logrus.Fields{
		"race_id":                 raceID,
		"level":                   level,
		"competitiveness":         competitiveness,
		"score":                   score,
		"quality_competitiveness": qualityComp,
		"quality_saturation":      qualitySat,
		"warnings":                warnings,
	}
	if saturation != nil {
		fields["saturation"] = *saturation
	}
	sl.WithFields(fields).Debug("Race scored")
}

// LogSourceOutcome logs how a single upstream lookup resolved for a race.
func (sl *ScoringLogger) LogSourceOutcome(raceID, source, outcome string, err error) {
	entry := sl.WithFields(logrus.Fields{
		"race_id": raceID,
		"source":  source,
		"outcome": outcome,
	})
	if err != nil {
		entry.WithError(err).Warn("Source lookup degraded")
		return
	}
	entry.Debug("Source lookup completed")
}

// LogRaceSkipped logs a race dropped from the run and why.
func (sl *ScoringLogger) LogRaceSkipped(raceID, reason string) {
	sl.WithFields(logrus.Fields{
		"race_id": raceID,
		"reason":  reason,
	}).Warn("Race skipped")
}

// LogRunCompleted logs the end of a ranking run.
func (sl *ScoringLogger) LogRunCompleted(scored, skipped, returned int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"races_scored":  scored,
		"races_skipped": skipped,
		"results":       returned,
		"duration_ms":   durationMs,
	}).Info("Ranking run completed")
}
