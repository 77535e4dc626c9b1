// Package metrics provides the Prometheus registry for ranking runs and upstream adapters.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leverage",
		Name:      "races_scored_total",
		Help:      "Races processed by outcome (scored or skipped)",
	}, []string{"level", "outcome"})
	SourceOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leverage",
		Name:      "source_outcomes_total",
		Help:      "Per-race signal lookups by source and outcome",
	}, []string{"source", "outcome"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leverage",
		Name:      "upstream_requests_total",
		Help:      "Upstream HTTP requests by service and result",
	}, []string{"service", "result"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "leverage",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	})
)

// Gauge metrics
var (
	RegionalCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "leverage",
		Name:      "regional_cache_hit_ratio",
		Help:      "Hit ratio of the regional party-split cache",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "leverage",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed ranking run",
	})
)

// Histogram metrics
var (
	LeverageScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "leverage",
		Name:      "score",
		Help:      "Distribution of final leverage scores",
		Buckets:   []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.1},
	})
	RankingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "leverage",
		Name:      "ranking_duration_seconds",
		Help:      "Duration of ranking runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RacesScoredTotal)
		registry.MustRegister(SourceOutcomesTotal)
		registry.MustRegister(UpstreamRequestsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register gauge metrics
		registry.MustRegister(RegionalCacheHitRatio)
		registry.MustRegister(LastRunTimestamp)

		// Register histogram metrics
		registry.MustRegister(LeverageScore)
		registry.MustRegister(RankingDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRaceScored records a scored race and its final score.
func RecordRaceScored(level string, score float64) {
	RacesScoredTotal.WithLabelValues(level, "scored").Inc()
	LeverageScore.Observe(score)
}

// RecordRaceSkipped records a race dropped from a run.
func RecordRaceSkipped(level string) {
	RacesScoredTotal.WithLabelValues(level, "skipped").Inc()
}

// RecordSourceOutcome records how one signal lookup resolved.
func RecordSourceOutcome(source, outcome string) {
	SourceOutcomesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordUpstreamRequest records one upstream request result.
func RecordUpstreamRequest(service, result string) {
	UpstreamRequestsTotal.WithLabelValues(service, result).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateRegionalCacheHitRatio sets the regional cache hit ratio.
func UpdateRegionalCacheHitRatio(ratio float64) {
	RegionalCacheHitRatio.Set(ratio)
}

// RecordRankingRun records the duration and completion time of a run.
func RecordRankingRun(durationSeconds float64, completedUnix float64) {
	RankingDuration.Observe(durationSeconds)
	LastRunTimestamp.Set(completedUnix)
}
