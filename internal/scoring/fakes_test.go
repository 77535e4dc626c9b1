package scoring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/models"
)

var (
	testAsOf        = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	testElectionDay = time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
)

func intPtr(n int) *int { return &n }

func houseRace() models.Race {
	return models.Race{
		ID:           "race-nc-07",
		Name:         "U.S. House of Representatives - North Carolina 7th Congressional District",
		Level:        models.LevelFederal,
		Office:       models.OfficeHouse,
		State:        "NC",
		District:     intPtr(7),
		Year:         2026,
		ElectionDate: testElectionDay,
		ElectionType: models.ElectionGeneral,
	}
}

func stateRace() models.Race {
	return models.Race{
		ID:           "race-pa-gov",
		Name:         "Governor of Pennsylvania",
		Level:        models.LevelState,
		Office:       models.OfficeGovernor,
		State:        "PA",
		Year:         2026,
		ElectionDate: testElectionDay,
		ElectionType: models.ElectionGeneral,
	}
}

func localRace() models.Race {
	return models.Race{
		ID:           "race-wake-commission",
		Name:         "Wake County Board of Commissioners",
		Level:        models.LevelCounty,
		Office:       models.OfficeOther,
		State:        "NC",
		Year:         2026,
		ElectionDate: testElectionDay,
		ElectionType: models.ElectionGeneral,
	}
}

func binaryMarket(ticker, title string, price, volume, spread float64) models.MarketCandidateSet {
	return models.MarketCandidateSet{
		Ticker:     ticker,
		Title:      title,
		Year:       2026,
		Volume:     volume,
		Spread:     spread,
		Candidates: []models.MarketCandidate{{Name: "Democratic", Price: price}},
	}
}

type fakeMarkets struct {
	sets  []models.MarketCandidateSet
	err   error
	calls int
}

func (f *fakeMarkets) FindMarkets(context.Context, models.Race) ([]models.MarketCandidateSet, error) {
	f.calls++
	return f.sets, f.err
}

func (f *fakeMarkets) Name() string { return "fake-markets" }

type fakeElections struct {
	record *models.HistoricalRecord
	err    error
}

func (f *fakeElections) UpcomingRaces(context.Context, time.Time) ([]models.Race, error) {
	return nil, nil
}

func (f *fakeElections) HistoricalOutcomes(context.Context, models.Race) (*models.HistoricalRecord, error) {
	return f.record, f.err
}

func (f *fakeElections) Name() string { return "fake-elections" }

type fakeFinance struct {
	receipts   decimal.Decimal
	err        error
	cycles     []int
	parties    map[string]string
	partyCalls int
}

func (f *fakeFinance) TotalReceipts(_ context.Context, _ models.Race, cycle int) (decimal.Decimal, error) {
	f.cycles = append(f.cycles, cycle)
	return f.receipts, f.err
}

func (f *fakeFinance) CandidateParty(_ context.Context, name string, _ models.Race, _ int) (string, error) {
	f.partyCalls++
	if p, ok := f.parties[name]; ok {
		return p, nil
	}
	return "", datasource.NotFound("fake-finance", "no candidate "+name)
}

func (f *fakeFinance) Name() string { return "fake-finance" }

type fakeDemographic struct {
	splits map[string]*models.RegionalPartySplit
	err    error
	calls  int
}

func (f *fakeDemographic) PartySplit(_ context.Context, state string) (*models.RegionalPartySplit, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.splits[state]; ok {
		return s, nil
	}
	return nil, datasource.NotFound("fake-demographic", "no split for "+state)
}

func (f *fakeDemographic) Name() string { return "fake-demographic" }

func transientErr(source string) error {
	return datasource.NewDataSourceError(source, datasource.ErrCodeServerError, "upstream returned 503", nil)
}

func notFoundErr() error {
	return datasource.NotFound("fake", "no matching record")
}
