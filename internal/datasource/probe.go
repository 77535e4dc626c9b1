package datasource

import (
	"context"
	"time"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// ProbeResult reports whether one upstream answered a minimal query.
type ProbeResult struct {
	Source    string
	Reachable bool
	Latency   time.Duration
	Err       error
}

// probeRace is a statewide federal race every upstream can be asked about.
func probeRace(asOf time.Time) models.Race {
	year := asOf.Year()
	return models.Race{
		ID:           "probe",
		Name:         "U.S. Senate - Georgia",
		Level:        models.LevelFederal,
		Office:       models.OfficeSenate,
		State:        "GA",
		Year:         year,
		ElectionDate: time.Date(year, time.November, 3, 0, 0, 0, 0, time.UTC),
	}
}

// Probe queries each configured source once. A not-found answer still proves
// the service is reachable.
func (s *Set) Probe(ctx context.Context, asOf time.Time) []ProbeResult {
	race := probeRace(asOf)
	cycle, _ := race.FinanceCycle(asOf)

	var results []ProbeResult
	run := func(name string, call func() error) {
		start := time.Now()
		err := call()
		results = append(results, ProbeResult{
			Source:    name,
			Reachable: err == nil || IsNotFound(err),
			Latency:   time.Since(start),
			Err:       err,
		})
	}

	if s.Elections != nil {
		run(s.Elections.Name(), func() error {
			_, err := s.Elections.UpcomingRaces(ctx, asOf)
			return err
		})
	}
	if s.Markets != nil {
		run(s.Markets.Name(), func() error {
			_, err := s.Markets.FindMarkets(ctx, race)
			return err
		})
	}
	if s.Finance != nil {
		run(s.Finance.Name(), func() error {
			_, err := s.Finance.TotalReceipts(ctx, race, cycle)
			return err
		})
	}
	if s.Demographic != nil {
		run(s.Demographic.Name(), func() error {
			_, err := s.Demographic.PartySplit(ctx, race.State)
			return err
		})
	}
	return results
}
