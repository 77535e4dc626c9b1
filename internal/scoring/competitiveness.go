package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/RaynaArora/neo-hackathon/internal/cache"
	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/models"
)

const (
	invalidMatchDiscount = 0.5
	entropyShare         = 0.6
	gapShare             = 0.4
	crowdedFieldSize     = 3
	crowdedFieldBoost    = 1.1
	highVolumeThreshold  = 100.0
	lowVolumeThreshold   = 10.0
	maxMarketPrice       = 100.0
	binaryToss           = 50.0

	historicalMinWeight  = 0.3
	historicalFullCycles = 4
	safeSeatValue        = 0.3
	occasionalFlipValue  = 0.5
	alternatingValue     = 0.8
	multiPartyValue      = 0.9
	alternationThreshold = 0.5

	demographicWeight  = 0.2
	demographicBalance = 0.5
	demographicStretch = 2.0

	localDemographicCaveat = "Demographic split is state-level for local races"
)

// CompetitivenessSource is one strategy producing a competitiveness estimate.
// Estimate returns an error only for contract violations; upstream absence or
// failure is reported through the Outcome.
type CompetitivenessSource interface {
	Name() SignalSource
	Estimate(ctx context.Context, rc *RaceContext) (Outcome, error)
}

// BinaryCompetitiveness maps a yes-price in [0,100] to closeness to a toss-up.
func BinaryCompetitiveness(price float64) float64 {
	return clamp01(1 - math.Abs(price-binaryToss)/binaryToss)
}

// MultiCandidateCompetitiveness blends normalized entropy with the gap between
// the two leaders. Prices are normalized to shares before use.
func MultiCandidateCompetitiveness(prices []float64) (float64, error) {
	n := len(prices)
	if n < 2 {
		return 0, contractViolation("multi-candidate market needs at least two prices, got %d", n)
	}

	var total float64
	for _, p := range prices {
		if math.IsNaN(p) || p < 0 || p > maxMarketPrice {
			return 0, contractViolation("market price %v outside [0,100]", p)
		}
		total += p
	}
	if total <= 0 {
		return 0, contractViolation("market prices sum to zero")
	}

	shares := make([]float64, n)
	for i, p := range prices {
		shares[i] = p / total
	}
	first, second := topTwo(shares)

	var entropy float64
	for _, s := range shares {
		if s > 0 {
			entropy -= s * math.Log(s)
		}
	}
	entropyNorm := entropy / math.Log(float64(n))

	value := entropyShare*entropyNorm + gapShare*(1-(first-second))
	if n > crowdedFieldSize {
		value *= crowdedFieldBoost
	}
	return clamp01(value), nil
}

func topTwo(shares []float64) (float64, float64) {
	first, second := math.Inf(-1), math.Inf(-1)
	for _, s := range shares {
		switch {
		case s > first:
			first, second = s, first
		case s > second:
			second = s
		}
	}
	return first, second
}

// MarketStrategy derives competitiveness from the best matching prediction market.
type MarketStrategy struct{}

// Name implements CompetitivenessSource.
func (MarketStrategy) Name() SignalSource { return SourceMarket }

// Estimate implements CompetitivenessSource.
func (s MarketStrategy) Estimate(ctx context.Context, rc *RaceContext) (Outcome, error) {
	lookup := rc.Market(ctx)
	if lookup.Err != nil {
		return Outcome{
			Status:   StatusTransient,
			Err:      lookup.Err,
			Warnings: []string{"Prediction market unavailable after retries"},
		}, nil
	}
	if lookup.Match == nil {
		return Outcome{Status: StatusAbsent, Warnings: []string{"No prediction market found"}}, nil
	}

	est, err := MarketEstimate(*lookup.Match)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Estimate: &est, Status: StatusValue, Warnings: lookup.Match.Warnings}, nil
}

// MarketEstimate converts a validated market into a weighted estimate.
func MarketEstimate(match MarketMatch) (SignalEstimate, error) {
	market := match.Market
	if market == nil || len(market.Candidates) == 0 {
		return SignalEstimate{}, contractViolation("market match without candidates")
	}
	if math.IsNaN(market.Volume) || market.Volume < 0 {
		return SignalEstimate{}, contractViolation("market volume %v is negative", market.Volume)
	}

	var value float64
	if market.IsBinary() {
		price := market.Candidates[0].Price
		if math.IsNaN(price) || price < 0 || price > maxMarketPrice {
			return SignalEstimate{}, contractViolation("market price %v outside [0,100]", price)
		}
		value = BinaryCompetitiveness(price)
	} else {
		v, err := MultiCandidateCompetitiveness(market.Prices())
		if err != nil {
			return SignalEstimate{}, err
		}
		value = v
	}

	weight := match.MatchScore
	if !match.IsValid {
		weight *= invalidMatchDiscount
	}

	return SignalEstimate{
		Value:   value,
		Weight:  weight,
		Quality: marketQuality(market.Volume, match.IsValid),
		Source:  SourceMarket,
	}, nil
}

func marketQuality(volume float64, valid bool) Quality {
	switch {
	case volume < lowVolumeThreshold:
		return QualityLow
	case !valid || volume <= highVolumeThreshold:
		return QualityMedium
	default:
		return QualityHigh
	}
}

// HistoricalStrategy derives competitiveness from past winners of the position.
// Finance is optional and resolves winners whose party is unknown.
type HistoricalStrategy struct {
	Elections datasource.ElectionSource
	Finance   datasource.FinanceSource
}

// Name implements CompetitivenessSource.
func (HistoricalStrategy) Name() SignalSource { return SourceHistorical }

// Estimate implements CompetitivenessSource.
func (s HistoricalStrategy) Estimate(ctx context.Context, rc *RaceContext) (Outcome, error) {
	if s.Elections == nil {
		return Outcome{Status: StatusAbsent}, nil
	}

	record, err := s.Elections.HistoricalOutcomes(ctx, rc.Race)
	switch {
	case err == nil && record != nil && len(record.Outcomes) > 0:
	case err == nil, datasource.IsNotFound(err):
		return Outcome{Status: StatusAbsent, Warnings: []string{"No historical results found"}}, nil
	case datasource.IsMalformed(err):
		return Outcome{Status: StatusMalformed, Err: err, Warnings: []string{"Historical results malformed; skipped"}}, nil
	default:
		return Outcome{Status: StatusTransient, Err: err, Warnings: []string{"Historical results unavailable after retries"}}, nil
	}

	attributed := s.attributeParties(ctx, rc.Race, record)
	parties := attributed.Parties()
	if len(parties) == 0 {
		return Outcome{Status: StatusAbsent, Warnings: []string{"No party data in historical results"}}, nil
	}

	est := HistoricalEstimate(parties)
	return Outcome{Estimate: &est, Status: StatusValue}, nil
}

// attributeParties returns a copy of record with missing winner parties
// filled through the finance source. Failed lookups stay unattributed.
func (s HistoricalStrategy) attributeParties(ctx context.Context, race models.Race, record *models.HistoricalRecord) *models.HistoricalRecord {
	out := &models.HistoricalRecord{
		PositionID: record.PositionID,
		Outcomes:   append([]models.HistoricalOutcome(nil), record.Outcomes...),
	}
	if s.Finance == nil {
		return out
	}
	for i := range out.Outcomes {
		o := &out.Outcomes[i]
		if o.Party != "" || o.WinnerName == "" {
			continue
		}
		cycle := o.Year
		if cycle%2 != 0 {
			cycle--
		}
		if party, err := s.Finance.CandidateParty(ctx, o.WinnerName, race, cycle); err == nil {
			o.Party = party
		}
	}
	return out
}

// HistoricalEstimate scores a year-ordered series of winning parties.
func HistoricalEstimate(parties []string) SignalEstimate {
	n := len(parties)

	distinct := make(map[string]struct{}, n)
	transitions := 0
	for i, p := range parties {
		distinct[p] = struct{}{}
		if i > 0 && p != parties[i-1] {
			transitions++
		}
	}

	var value float64
	switch len(distinct) {
	case 1:
		value = safeSeatValue
	case 2:
		value = occasionalFlipValue
		if float64(transitions)/float64(n-1) > alternationThreshold {
			value = alternatingValue
		}
	default:
		value = multiPartyValue
	}

	weight := historicalMinWeight + float64(n-1)*(1-historicalMinWeight)/float64(historicalFullCycles-1)

	quality := QualityLow
	switch {
	case n >= 3:
		quality = QualityHigh
	case n == 2:
		quality = QualityMedium
	}

	return SignalEstimate{
		Value:   value,
		Weight:  math.Min(1, weight),
		Quality: quality,
		Source:  SourceHistorical,
	}
}

// DemographicStrategy derives competitiveness from the state party split.
// Splits are shared across races through Cache.
type DemographicStrategy struct {
	Source datasource.DemographicSource
	Cache  *cache.RegionalCache
}

// Name implements CompetitivenessSource.
func (DemographicStrategy) Name() SignalSource { return SourceDemographic }

// Estimate implements CompetitivenessSource.
func (s DemographicStrategy) Estimate(ctx context.Context, rc *RaceContext) (Outcome, error) {
	if s.Source == nil || rc.Race.State == "" {
		return Outcome{Status: StatusAbsent}, nil
	}

	var (
		split *models.RegionalPartySplit
		err   error
	)
	if s.Cache != nil {
		split, err = s.Cache.GetOrLoad(ctx, rc.Race.State, s.Source.PartySplit)
	} else {
		split, err = s.Source.PartySplit(ctx, rc.Race.State)
	}
	switch {
	case err == nil && split != nil:
	case err == nil, datasource.IsNotFound(err):
		return Outcome{Status: StatusAbsent, Warnings: []string{fmt.Sprintf("No demographic data for %s", rc.Race.State)}}, nil
	case datasource.IsMalformed(err):
		return Outcome{Status: StatusMalformed, Err: err, Warnings: []string{"Demographic data malformed; skipped"}}, nil
	default:
		return Outcome{Status: StatusTransient, Err: err, Warnings: []string{"Demographic data unavailable"}}, nil
	}

	est, err := DemographicEstimate(split, rc.Race.Office)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Estimate: &est, Status: StatusValue}
	if rc.Race.Level.IsLocal() {
		out.Warnings = append(out.Warnings, localDemographicCaveat)
	}
	return out, nil
}

// DemographicEstimate scores how close the Democratic share for office is
// to even.
func DemographicEstimate(split *models.RegionalPartySplit, office models.OfficeKind) (SignalEstimate, error) {
	if split == nil {
		return SignalEstimate{}, contractViolation("nil party split")
	}
	dem := split.DemShareFor(office)
	if math.IsNaN(dem) || dem < 0 || dem > 1 {
		return SignalEstimate{}, contractViolation("democratic share %v outside [0,1]", dem)
	}
	return SignalEstimate{
		Value:   clamp01(1 - math.Abs(dem-demographicBalance)*demographicStretch),
		Weight:  demographicWeight,
		Quality: QualityMedium,
		Source:  SourceDemographic,
	}, nil
}
