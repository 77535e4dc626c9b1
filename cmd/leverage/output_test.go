package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/models"
	"github.com/RaynaArora/neo-hackathon/internal/scoring"
	"github.com/RaynaArora/neo-hackathon/internal/service"
)

func TestPrintRanking(t *testing.T) {
	sat := 0.1105
	ranking := &service.Ranking{
		RunID: "run-1",
		AsOf:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Results: []*scoring.LeverageResult{
			{Race: models.Race{ID: "a", Name: "NC-07", Level: models.LevelFederal}, Competitiveness: 0.96, Saturation: &sat, Score: 0.1061},
			{Race: models.Race{ID: "b", Name: "Wake County", Level: models.LevelCounty}, Competitiveness: 0.7, Score: 0.7},
		},
		Skipped: []service.SkippedRace{{RaceID: "c", Name: "Broken", Reason: "contract violation"}},
	}

	var buf bytes.Buffer
	printRanking(&buf, ranking)
	out := buf.String()
	assert.Contains(t, out, "Run run-1 as of 2026-01-15")
	assert.Contains(t, out, "0.1105")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Broken (c): contract violation")
}

func TestPrintProbe(t *testing.T) {
	var buf bytes.Buffer
	printProbe(&buf, []datasource.ProbeResult{
		{Source: "civicengine", Reachable: true},
		{Source: "kalshi", Err: errors.New("server_error")},
	})
	assert.Contains(t, buf.String(), "civicengine")
	assert.Contains(t, buf.String(), "server_error")
}
