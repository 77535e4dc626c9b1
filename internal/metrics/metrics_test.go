package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleValue reads a counter or gauge sample from the registry.
func sampleValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched != len(labels) {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordRaceOutcomes(t *testing.T) {
	InitRegistry()

	scored := map[string]string{"level": "federal", "outcome": "scored"}
	before := sampleValue(t, "leverage_races_scored_total", scored)
	RecordRaceScored("federal", 0.42)
	assert.Equal(t, before+1, sampleValue(t, "leverage_races_scored_total", scored))

	skipped := map[string]string{"level": "state", "outcome": "skipped"}
	before = sampleValue(t, "leverage_races_scored_total", skipped)
	RecordRaceSkipped("state")
	assert.Equal(t, before+1, sampleValue(t, "leverage_races_scored_total", skipped))
}

func TestRecordUpstreamRequest(t *testing.T) {
	InitRegistry()

	labels := map[string]string{"service": "fec", "result": "rate_limited"}
	before := sampleValue(t, "leverage_upstream_requests_total", labels)
	RecordUpstreamRequest("fec", "rate_limited")
	assert.Equal(t, before+1, sampleValue(t, "leverage_upstream_requests_total", labels))
}

func TestUpdateRegionalCacheHitRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
	}{
		{"empty cache", 0},
		{"half hits", 0.5},
		{"all hits", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitRegistry()
			UpdateRegionalCacheHitRatio(tt.ratio)
			assert.Equal(t, tt.ratio, sampleValue(t, "leverage_regional_cache_hit_ratio", nil))
		})
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordSourceOutcome("market", "value")
	RecordRankingRun(1.5, 1700000000)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leverage_source_outcomes_total")
	assert.Contains(t, rec.Body.String(), "leverage_ranking_duration_seconds")
}
