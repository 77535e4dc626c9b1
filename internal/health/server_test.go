package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaynaArora/neo-hackathon/internal/scheduler"
	"github.com/RaynaArora/neo-hackathon/internal/service"
)

type fakeRuns struct {
	last   *scheduler.RunStatus
	latest *service.Ranking
}

func (f *fakeRuns) LastRun() (scheduler.RunStatus, bool) {
	if f.last == nil {
		return scheduler.RunStatus{}, false
	}
	return *f.last, true
}

func (f *fakeRuns) Latest() *service.Ranking { return f.latest }

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthAndLive(t *testing.T) {
	runs := &fakeRuns{last: &scheduler.RunStatus{RunID: "run-7", Results: 3}}
	h := NewServer(Config{ServiceName: "leverage", Version: "1.0.0", Runs: runs}).Handler()

	rec, body := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leverage", body["service"])
	lastRun := body["last_run"].(map[string]interface{})
	assert.Equal(t, "run-7", lastRun["run_id"])

	rec, body = get(t, h, "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyReflectsLastRun(t *testing.T) {
	runs := &fakeRuns{}
	srv := NewServer(Config{ServiceName: "leverage", Runs: runs})
	h := srv.Handler()

	rec, _ := get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.SetReady(true)
	rec, body := get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", body["checks"].(map[string]interface{})["last_run"])

	runs.last = &scheduler.RunStatus{Error: "election service down"}
	rec, body = get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])

	runs.last = &scheduler.RunStatus{RunID: "ok"}
	rec, _ = get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRankingEndpoint(t *testing.T) {
	runs := &fakeRuns{}
	h := NewServer(Config{Runs: runs}).Handler()

	rec, _ := get(t, h, "/ranking")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	runs.latest = &service.Ranking{RunID: "run-9"}
	rec, body := get(t, h, "/ranking")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-9", body["run_id"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewServer(Config{MetricsPath: "/metrics"}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leverage_")
}

func TestNewServerPort(t *testing.T) {
	assert.Equal(t, "9090", NewServer(Config{Port: 9090}).port)

	t.Setenv("HEALTH_PORT", "7070")
	assert.Equal(t, "7070", NewServer(Config{}).port)
}
