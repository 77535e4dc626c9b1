package datasource

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

const kalshiSourceName = "kalshi"

var (
	tickerYearRe         = regexp.MustCompile(`-(\d{2})(?:-|$)`)
	titleYearRe          = regexp.MustCompile(`\b(20\d{2})\b`)
	congressionalOrdRe   = regexp.MustCompile(`(\d+)(?:st|nd|rd|th) Congressional District`)
	houseNamePrefixRe    = regexp.MustCompile(`U\.S\. House of Representatives - `)
	multipleWhitespaceRe = regexp.MustCompile(`\s+`)
)

// KalshiClient implements MarketSource against the Kalshi series search API.
type KalshiClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// kalshiSearchResponse accepts either of the page shapes the search API returns.
type kalshiSearchResponse struct {
	CurrentPage []kalshiSeries `json:"current_page"`
	Series      []kalshiSeries `json:"series"`
}

type kalshiSeries struct {
	SeriesTicker      string         `json:"series_ticker"`
	SeriesTitle       string         `json:"series_title"`
	EventTicker       string         `json:"event_ticker"`
	EventTitle        string         `json:"event_title"`
	TotalSeriesVolume float64        `json:"total_series_volume"`
	Markets           []kalshiMarket `json:"markets"`
}

type kalshiMarket struct {
	Ticker      string   `json:"ticker"`
	YesSubtitle string   `json:"yes_subtitle"`
	LastPrice   *float64 `json:"last_price"`
	YesBid      *float64 `json:"yes_bid"`
	YesAsk      *float64 `json:"yes_ask"`
}

// NewKalshiClient creates a prediction-market client.
func NewKalshiClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *KalshiClient {
	if baseURL == "" {
		baseURL = "https://api.elections.kalshi.com"
	}
	return &KalshiClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     orDiscard(logger),
	}
}

// Name returns the data source name
func (c *KalshiClient) Name() string {
	return kalshiSourceName
}

// FindMarkets searches for series matching the race. An empty result means
// the service answered without any plausible market.
func (c *KalshiClient) FindMarkets(ctx context.Context, race models.Race) ([]models.MarketCandidateSet, error) {
	params := url.Values{}
	params.Set("query", CleanSearchQuery(race.Name))
	params.Set("embedding_search", "true")
	params.Set("order_by", "querymatch")

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var resp kalshiSearchResponse
	if err := c.httpClient.GetJSON(ctx, kalshiSourceName, c.baseURL+"/v1/search/series?"+params.Encode(), headers, &resp); err != nil {
		return nil, err
	}

	series := resp.CurrentPage
	if len(series) == 0 {
		series = resp.Series
	}

	sets := make([]models.MarketCandidateSet, 0, len(series))
	for _, s := range series {
		set, ok := convertSeries(s)
		if !ok {
			continue
		}
		if err := validateRecord(kalshiSourceName, set); err != nil {
			c.logger.WithFields(logrus.Fields{
				"race_id": race.ID,
				"ticker":  set.Ticker,
				"error":   err.Error(),
			}).Warn("Skipping malformed market record")
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// convertSeries maps a search hit onto a MarketCandidateSet. Series without
// any priced market are dropped.
func convertSeries(s kalshiSeries) (models.MarketCandidateSet, bool) {
	set := models.MarketCandidateSet{
		Ticker: s.SeriesTicker,
		Title:  s.SeriesTitle,
		Volume: s.TotalSeriesVolume,
	}
	if set.Ticker == "" {
		set.Ticker = s.EventTicker
	}
	if set.Title == "" {
		set.Title = s.EventTitle
	}
	if len(s.Markets) == 0 {
		return set, false
	}

	type priced struct {
		candidate models.MarketCandidate
		spread    float64
	}
	var markets []priced
	for _, m := range s.Markets {
		price, ok := marketPrice(m)
		if !ok {
			continue
		}
		name := m.YesSubtitle
		if name == "" {
			name = m.Ticker
		}
		spread := 0.0
		if m.YesAsk != nil && m.YesBid != nil && *m.YesAsk > *m.YesBid {
			spread = *m.YesAsk - *m.YesBid
		}
		markets = append(markets, priced{candidate: models.MarketCandidate{Name: name, Price: price}, spread: spread})
	}
	if len(markets) == 0 {
		return set, false
	}

	// Binary markets keep upstream order so the first outcome stays first.
	if len(markets) > 2 {
		sort.SliceStable(markets, func(i, j int) bool { return markets[i].candidate.Price > markets[j].candidate.Price })
	}
	set.Spread = markets[0].spread
	for _, m := range markets {
		set.Candidates = append(set.Candidates, m.candidate)
	}
	set.Year = marketYear(set.Ticker, set.Title)
	return set, true
}

func marketPrice(m kalshiMarket) (float64, bool) {
	for _, p := range []*float64{m.LastPrice, m.YesBid, m.YesAsk} {
		if p != nil && *p > 0 {
			return *p, true
		}
	}
	return 0, false
}

// marketYear reads the election year from a "-26" style ticker suffix or a
// four-digit year in the title. Zero means unknown.
func marketYear(ticker, title string) int {
	if m := tickerYearRe.FindStringSubmatch(ticker); m != nil {
		if yy, err := strconv.Atoi(m[1]); err == nil {
			return 2000 + yy
		}
	}
	if m := titleYearRe.FindStringSubmatch(title); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			return y
		}
	}
	return 0
}

// CleanSearchQuery turns an election-metadata position name into a short
// market search query.
func CleanSearchQuery(raceName string) string {
	q := raceName
	switch {
	case strings.Contains(q, "U.S. Senate"):
		q = strings.Replace(q, "U.S. Senate - ", "", 1) + " Senate"
	case strings.Contains(q, "U.S. House"):
		q = houseNamePrefixRe.ReplaceAllString(q, "")
		q = congressionalOrdRe.ReplaceAllString(q, " $1")
	case strings.Contains(q, "State Senate"):
		q = strings.Replace(q, "State Senate - ", "", 1)
	case strings.Contains(q, "House of Representatives"):
		q = strings.Replace(q, "House of Representatives - ", "", 1)
	}
	return strings.TrimSpace(multipleWhitespaceRe.ReplaceAllString(q, " "))
}
