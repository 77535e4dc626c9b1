package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaynaArora/neo-hackathon/internal/cache"
	"github.com/RaynaArora/neo-hackathon/internal/models"
)

func TestBinaryCompetitiveness(t *testing.T) {
	assert.InDelta(t, 1.0, BinaryCompetitiveness(50), 1e-9)
	assert.InDelta(t, 0.4, BinaryCompetitiveness(80), 1e-9)
	assert.InDelta(t, 0.4, BinaryCompetitiveness(20), 1e-9)
	assert.InDelta(t, 0.0, BinaryCompetitiveness(100), 1e-9)
	assert.InDelta(t, 0.0, BinaryCompetitiveness(0), 1e-9)

	prev := BinaryCompetitiveness(50)
	for p := 51.0; p <= 100; p++ {
		cur := BinaryCompetitiveness(p)
		assert.Less(t, cur, prev, "price %v", p)
		assert.InDelta(t, cur, BinaryCompetitiveness(100-p), 1e-9)
		prev = cur
	}
}

func TestMultiCandidateCompetitiveness(t *testing.T) {
	even, err := MultiCandidateCompetitiveness([]float64{34, 33, 33})
	require.NoError(t, err)
	assert.Greater(t, even, 0.95)

	lopsided, err := MultiCandidateCompetitiveness([]float64{90, 5, 5})
	require.NoError(t, err)
	assert.Less(t, lopsided, even)

	three, err := MultiCandidateCompetitiveness([]float64{40, 35, 25})
	require.NoError(t, err)
	assert.InDelta(t, 0.970, three, 1e-3)

	four, err := MultiCandidateCompetitiveness([]float64{40, 35, 25, 20})
	require.NoError(t, err)
	assert.Greater(t, four, three)
	assert.LessOrEqual(t, four, 1.0)
}

func TestMultiCandidateCompetitivenessRejectsBadPrices(t *testing.T) {
	_, err := MultiCandidateCompetitiveness([]float64{50, math.NaN(), 10})
	assert.ErrorIs(t, err, ErrContractViolation)

	_, err = MultiCandidateCompetitiveness([]float64{0, 0, 0})
	assert.ErrorIs(t, err, ErrContractViolation)

	_, err = MultiCandidateCompetitiveness([]float64{50})
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestMarketEstimateWeightAndQuality(t *testing.T) {
	set := binaryMarket("KXGOVPA-26", "Pennsylvania governor 2026", 40, 500, 3)

	tests := []struct {
		name        string
		match       MarketMatch
		volume      float64
		wantWeight  float64
		wantQuality Quality
	}{
		{"valid high volume", MarketMatch{MatchScore: 1, IsValid: true}, 500, 1, QualityHigh},
		{"valid medium volume", MarketMatch{MatchScore: 1, IsValid: true}, 100, 1, QualityMedium},
		{"invalid discounted", MarketMatch{MatchScore: 0.3, IsValid: false}, 500, 0.15, QualityMedium},
		{"low volume", MarketMatch{MatchScore: 0.75, IsValid: true}, 5, 0.75, QualityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := set
			s.Volume = tt.volume
			tt.match.Market = &s

			est, err := MarketEstimate(tt.match)
			require.NoError(t, err)
			assert.InDelta(t, 0.8, est.Value, 1e-9)
			assert.InDelta(t, tt.wantWeight, est.Weight, 1e-9)
			assert.Equal(t, tt.wantQuality, est.Quality)
			assert.Equal(t, SourceMarket, est.Source)
		})
	}
}

func TestMarketEstimateNegativeVolume(t *testing.T) {
	set := binaryMarket("KXGOVPA-26", "Pennsylvania governor 2026", 40, -1, 3)
	_, err := MarketEstimate(MarketMatch{MatchScore: 1, IsValid: true, Market: &set})
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestMarketStrategyOutcomes(t *testing.T) {
	ctx := context.Background()

	absent := NewRaceContext(stateRace(), RunConfig{AsOf: testAsOf}, &fakeMarkets{})
	out, err := MarketStrategy{}.Estimate(ctx, absent)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, out.Status)
	assert.Nil(t, out.Estimate)

	failing := NewRaceContext(stateRace(), RunConfig{AsOf: testAsOf}, &fakeMarkets{err: transientErr("kalshi")})
	out, err = MarketStrategy{}.Estimate(ctx, failing)
	require.NoError(t, err)
	assert.Equal(t, StatusTransient, out.Status)
	assert.Error(t, out.Err)

	markets := &fakeMarkets{sets: []models.MarketCandidateSet{
		binaryMarket("KXGOVPA-26", "Pennsylvania governor 2026", 45, 500, 3),
	}}
	found := NewRaceContext(stateRace(), RunConfig{AsOf: testAsOf}, markets)
	out, err = MarketStrategy{}.Estimate(ctx, found)
	require.NoError(t, err)
	require.NotNil(t, out.Estimate)
	assert.InDelta(t, 0.9, out.Estimate.Value, 1e-9)

	// The lookup is shared with later consumers.
	found.Market(ctx)
	assert.Equal(t, 1, markets.calls)
}

func TestHistoricalEstimate(t *testing.T) {
	tests := []struct {
		name        string
		parties     []string
		wantValue   float64
		wantWeight  float64
		wantQuality Quality
	}{
		{"single cycle", []string{"DEM"}, 0.3, 0.3, QualityLow},
		{"safe seat", []string{"REP", "REP", "REP"}, 0.3, 0.3 + 2*0.7/3, QualityHigh},
		{"two cycles flip", []string{"DEM", "REP"}, 0.8, 0.3 + 0.7/3, QualityMedium},
		{"alternating", []string{"DEM", "REP", "DEM", "REP"}, 0.8, 1.0, QualityHigh},
		{"single flip", []string{"DEM", "DEM", "DEM", "REP"}, 0.5, 1.0, QualityHigh},
		{"three parties", []string{"DEM", "REP", "IND"}, 0.9, 0.3 + 2*0.7/3, QualityHigh},
		{"many cycles capped", []string{"DEM", "DEM", "DEM", "DEM", "DEM", "DEM"}, 0.3, 1.0, QualityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := HistoricalEstimate(tt.parties)
			assert.InDelta(t, tt.wantValue, est.Value, 1e-9)
			assert.InDelta(t, tt.wantWeight, est.Weight, 1e-9)
			assert.Equal(t, tt.wantQuality, est.Quality)
			assert.Equal(t, SourceHistorical, est.Source)
		})
	}
}

func TestHistoricalStrategyResolvesMissingParties(t *testing.T) {
	record := &models.HistoricalRecord{Outcomes: []models.HistoricalOutcome{
		{Year: 2020, WinnerName: "Alice Smith", Party: "Democratic"},
		{Year: 2022, WinnerName: "Bob Jones"},
		{Year: 2024, WinnerName: "Carol White"},
	}}
	finance := &fakeFinance{parties: map[string]string{"Bob Jones": "REPUBLICAN PARTY"}}
	strategy := HistoricalStrategy{Elections: &fakeElections{record: record}, Finance: finance}

	out, err := strategy.Estimate(context.Background(), NewRaceContext(houseRace(), RunConfig{AsOf: testAsOf}, nil))
	require.NoError(t, err)
	require.NotNil(t, out.Estimate)

	// DEM, REP: Carol White could not be attributed.
	assert.InDelta(t, 0.8, out.Estimate.Value, 1e-9)
	assert.Equal(t, QualityMedium, out.Estimate.Quality)
	assert.Equal(t, 2, finance.partyCalls)
	assert.Empty(t, record.Outcomes[1].Party, "source record must not be mutated")
}

func TestHistoricalStrategyAbsenceAndFailure(t *testing.T) {
	ctx := context.Background()
	rc := NewRaceContext(houseRace(), RunConfig{AsOf: testAsOf}, nil)

	out, err := HistoricalStrategy{Elections: &fakeElections{err: notFoundErr()}}.Estimate(ctx, rc)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, out.Status)
	assert.Contains(t, out.Warnings, "No historical results found")

	out, err = HistoricalStrategy{Elections: &fakeElections{err: transientErr("civicengine")}}.Estimate(ctx, rc)
	require.NoError(t, err)
	assert.Equal(t, StatusTransient, out.Status)
	assert.Nil(t, out.Estimate)

	noParties := &models.HistoricalRecord{Outcomes: []models.HistoricalOutcome{{Year: 2022, WinnerName: "X"}}}
	out, err = HistoricalStrategy{Elections: &fakeElections{record: noParties}}.Estimate(ctx, rc)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, out.Status)
	assert.Contains(t, out.Warnings, "No party data in historical results")
}

func TestDemographicEstimate(t *testing.T) {
	est, err := DemographicEstimate(&models.RegionalPartySplit{State: "NC", DemShare: 0.65, RepShare: 0.35}, models.OfficeHouse)
	require.NoError(t, err)
	assert.InDelta(t, 0.70, est.Value, 1e-9)
	assert.InDelta(t, 0.2, est.Weight, 1e-9)
	assert.Equal(t, QualityMedium, est.Quality)

	est, err = DemographicEstimate(&models.RegionalPartySplit{State: "NC", DemShare: 0.5, RepShare: 0.5}, models.OfficeHouse)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, est.Value, 1e-9)

	_, err = DemographicEstimate(&models.RegionalPartySplit{State: "NC", DemShare: math.NaN()}, models.OfficeHouse)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestDemographicEstimateUsesRawShare(t *testing.T) {
	// A third-party share must not be folded back into the two-party split.
	est, err := DemographicEstimate(&models.RegionalPartySplit{State: "UT", DemShare: 0.40, RepShare: 0.40}, models.OfficeHouse)
	require.NoError(t, err)
	assert.InDelta(t, 0.80, est.Value, 1e-9)
}

func TestDemographicEstimateSenateUsesSenateShare(t *testing.T) {
	split := &models.RegionalPartySplit{
		State: "GA", DemShare: 0.30, RepShare: 0.70,
		SenateDemShare: 0.50, SenateRepShare: 0.50, SenateCounties: 159,
	}

	senate, err := DemographicEstimate(split, models.OfficeSenate)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, senate.Value, 1e-9)

	house, err := DemographicEstimate(split, models.OfficeHouse)
	require.NoError(t, err)
	assert.InDelta(t, 0.60, house.Value, 1e-9)
}

func TestDemographicStrategyUsesCache(t *testing.T) {
	source := &fakeDemographic{splits: map[string]*models.RegionalPartySplit{
		"NC": {State: "NC", DemShare: 0.48, RepShare: 0.52},
	}}
	strategy := DemographicStrategy{Source: source, Cache: cache.NewRegionalCache()}
	ctx := context.Background()

	local := NewRaceContext(localRace(), RunConfig{AsOf: testAsOf}, nil)
	out, err := strategy.Estimate(ctx, local)
	require.NoError(t, err)
	require.NotNil(t, out.Estimate)
	assert.InDelta(t, 0.96, out.Estimate.Value, 1e-9)
	assert.Contains(t, out.Warnings, localDemographicCaveat)

	federal := NewRaceContext(houseRace(), RunConfig{AsOf: testAsOf}, nil)
	out, err = strategy.Estimate(ctx, federal)
	require.NoError(t, err)
	require.NotNil(t, out.Estimate)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, 1, source.calls)
}

func TestDemographicStrategyFailureNotCached(t *testing.T) {
	source := &fakeDemographic{err: errors.New("disk gone")}
	strategy := DemographicStrategy{Source: source, Cache: cache.NewRegionalCache()}
	rc := NewRaceContext(localRace(), RunConfig{AsOf: testAsOf}, nil)

	out, err := strategy.Estimate(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, StatusTransient, out.Status)

	_, _ = strategy.Estimate(context.Background(), rc)
	assert.Equal(t, 2, source.calls)
}
