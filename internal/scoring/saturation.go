package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// Saturation methods.
const (
	MethodCampaignFinance = "campaign_finance"
	MethodMarketProxy     = "market_proxy"
	MethodNone            = "none"
)

const (
	// conservativeSaturation stands in when finance data could not be fetched.
	conservativeSaturation = 0.5

	// minProxySpread keeps the proxy numerator positive for zero-spread markets.
	minProxySpread = 1.0

	proxyDisclaimer    = "Saturation for state races is proxied by prediction-market volume/spread, not campaign finance data"
	localUnavailable   = "Saturation unavailable: no data sources cover local races"
	noFundraisingFound = "No fundraising data found"
)

var receiptsUnit = decimal.NewFromInt(1000)

// Saturation is either Unavailable or a Value in (0,1]. Unavailable is
// multiplied as 1.0 but reports quality None, unlike a computed 1.0.
type Saturation struct {
	value     float64
	available bool

	Quality  Quality
	Method   string
	Warnings []string
}

// Unavailable builds an absent saturation with an explanatory warning.
func Unavailable(warnings ...string) Saturation {
	return Saturation{Quality: QualityNone, Method: MethodNone, Warnings: warnings}
}

// SaturationValue builds a computed saturation.
func SaturationValue(value float64, quality Quality, method string, warnings ...string) Saturation {
	return Saturation{value: value, available: true, Quality: quality, Method: method, Warnings: warnings}
}

// Available reports whether a value was computed.
func (s Saturation) Available() bool { return s.available }

// Value returns the computed value and whether one exists.
func (s Saturation) Value() (float64, bool) { return s.value, s.available }

// Multiplier returns the factor applied to competitiveness.
func (s Saturation) Multiplier() float64 {
	if !s.available {
		return 1.0
	}
	return s.value
}

// Pointer returns the value for serialization, nil when unavailable.
func (s Saturation) Pointer() *float64 {
	if !s.available {
		return nil
	}
	v := s.value
	return &v
}

// SaturationEstimator computes saturation for one jurisdiction family.
type SaturationEstimator interface {
	Estimate(ctx context.Context, rc *RaceContext) (Saturation, error)
}

// FederalSaturationValue maps total receipts in dollars to saturation.
// Receipts are measured in thousands of dollars.
func FederalSaturationValue(receipts decimal.Decimal) (float64, error) {
	if receipts.IsNegative() {
		return 0, contractViolation("total receipts %s are negative", receipts.String())
	}
	if receipts.IsZero() {
		return 1.0, nil
	}
	k := receipts.Div(receiptsUnit).InexactFloat64()
	return clampSaturation(1 / math.Log1p(k)), nil
}

// StateSaturationValue maps market activity to a saturation proxy. The
// boolean is false when volume is zero and no value can be derived.
func StateSaturationValue(volume, spread float64) (float64, bool, error) {
	if math.IsNaN(volume) || volume < 0 {
		return 0, false, contractViolation("market volume %v is negative", volume)
	}
	if math.IsNaN(spread) || spread < 0 {
		return 0, false, contractViolation("market spread %v is negative", spread)
	}
	if volume == 0 {
		return 0, false, nil
	}
	return clampSaturation(math.Log1p(math.Max(minProxySpread, spread)) / math.Log1p(volume)), true, nil
}

// clampSaturation keeps values in (0,1].
func clampSaturation(x float64) float64 {
	if x > 1 || math.IsInf(x, 1) {
		return 1
	}
	if x <= 0 {
		return math.SmallestNonzeroFloat64
	}
	return x
}

// FederalSaturation reads campaign-finance receipts for the race's cycle.
type FederalSaturation struct {
	Finance datasource.FinanceSource
}

// Estimate implements SaturationEstimator.
func (f FederalSaturation) Estimate(ctx context.Context, rc *RaceContext) (Saturation, error) {
	if f.Finance == nil {
		return Unavailable("Campaign finance source not configured"), nil
	}

	// Only an old cycle lowers quality; the future-cycle fallback stays High.
	cycle, caveat := rc.Race.FinanceCycle(rc.AsOf)
	quality := QualityHigh
	var warnings []string
	if caveat != "" {
		warnings = append(warnings, caveat)
	}
	if caveat == models.OldCycleCaveat {
		quality = QualityLow
	}

	receipts, err := f.Finance.TotalReceipts(ctx, rc.Race, cycle)
	switch {
	case err == nil:
	case datasource.IsNotFound(err), datasource.IsMalformed(err):
		return Unavailable(append(warnings, fmt.Sprintf("No campaign finance records for cycle %d", cycle))...), nil
	default:
		warnings = append(warnings, "Campaign finance unavailable after retries; using conservative saturation 0.5")
		return SaturationValue(conservativeSaturation, QualityLow, MethodCampaignFinance, warnings...), nil
	}

	value, err := FederalSaturationValue(receipts)
	if err != nil {
		return Saturation{}, err
	}
	if receipts.IsZero() {
		quality = QualityLow
		warnings = append(warnings, noFundraisingFound)
	}
	return SaturationValue(value, quality, MethodCampaignFinance, warnings...), nil
}

// StateSaturation proxies saturation with the matched market's activity.
type StateSaturation struct{}

// Estimate implements SaturationEstimator.
func (StateSaturation) Estimate(ctx context.Context, rc *RaceContext) (Saturation, error) {
	lookup := rc.Market(ctx)
	switch {
	case lookup.Err != nil:
		return Unavailable(proxyDisclaimer, "Prediction market unavailable; no saturation proxy"), nil
	case lookup.Match == nil || lookup.Match.Market == nil:
		return Unavailable(proxyDisclaimer, "No prediction market found for saturation proxy"), nil
	}

	market := lookup.Match.Market
	value, ok, err := StateSaturationValue(market.Volume, market.Spread)
	if err != nil {
		return Saturation{}, err
	}
	if !ok {
		return Unavailable(proxyDisclaimer, "Market has no trading volume"), nil
	}

	quality := QualityMedium
	if market.Volume < lowVolumeThreshold {
		quality = QualityLow
	}
	return SaturationValue(value, quality, MethodMarketProxy, proxyDisclaimer), nil
}

// LocalSaturation is always unavailable.
type LocalSaturation struct{}

// Estimate implements SaturationEstimator.
func (LocalSaturation) Estimate(context.Context, *RaceContext) (Saturation, error) {
	return Unavailable(localUnavailable), nil
}

// SaturationSelector dispatches to exactly one estimator by jurisdiction level.
type SaturationSelector struct {
	Federal SaturationEstimator
	State   SaturationEstimator
	Local   SaturationEstimator
}

// NewSaturationSelector wires the standard estimators.
func NewSaturationSelector(finance datasource.FinanceSource) SaturationSelector {
	return SaturationSelector{
		Federal: FederalSaturation{Finance: finance},
		State:   StateSaturation{},
		Local:   LocalSaturation{},
	}
}

// Estimate implements SaturationEstimator.
func (s SaturationSelector) Estimate(ctx context.Context, rc *RaceContext) (Saturation, error) {
	var est SaturationEstimator
	switch level := rc.Race.Level; {
	case level == models.LevelFederal:
		est = s.Federal
	case level == models.LevelState:
		est = s.State
	case level.IsLocal():
		est = s.Local
	default:
		return Saturation{}, contractViolation("unknown jurisdiction level %q", level)
	}
	if est == nil {
		return Unavailable(fmt.Sprintf("No saturation estimator for %s races", rc.Race.Level)), nil
	}
	return est.Estimate(ctx, rc)
}
