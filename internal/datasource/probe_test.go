package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetProbe(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer empty.Close()

	demographic, err := ParseNANDA(strings.NewReader(nandaFixture), nil)
	require.NoError(t, err)

	set := &Set{
		Markets:     NewKalshiClient(newTestClient(fastClientConfig()), down.URL, "", nil),
		Finance:     NewFECClient(newTestClient(fastClientConfig()), empty.URL, "key", nil),
		Demographic: demographic,
	}

	results := set.Probe(context.Background(), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.Len(t, results, 3)

	assert.Equal(t, "kalshi", results[0].Source)
	assert.False(t, results[0].Reachable)
	assert.True(t, IsTransient(results[0].Err))

	assert.Equal(t, "fec", results[1].Source)
	assert.True(t, results[1].Reachable)

	// GA is absent from the fixture but the file answered.
	assert.Equal(t, "nanda", results[2].Source)
	assert.True(t, results[2].Reachable)
	assert.True(t, IsNotFound(results[2].Err))
}
