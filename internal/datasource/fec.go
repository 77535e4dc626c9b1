package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

const fecSourceName = "fec"

// FECClient implements FinanceSource against the OpenFEC API.
type FECClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

type fecCandidate struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	PartyFull   string `json:"party_full"`
}

type fecCandidatesResponse struct {
	Results []fecCandidate `json:"results"`
}

type fecTotalsResponse struct {
	Results []struct {
		Cycle    int      `json:"cycle"`
		Receipts *float64 `json:"receipts"`
	} `json:"results"`
}

// NewFECClient creates a campaign finance client.
func NewFECClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *FECClient {
	if baseURL == "" {
		baseURL = "https://api.open.fec.gov/v1"
	}
	if apiKey == "" {
		apiKey = "DEMO_KEY"
	}
	return &FECClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     orDiscard(logger),
	}
}

// Name returns the data source name
func (c *FECClient) Name() string {
	return fecSourceName
}

// officeCode maps a race to the FEC office letter.
func officeCode(race models.Race) (string, bool) {
	if race.Level != models.LevelFederal {
		return "", false
	}
	switch race.Office {
	case models.OfficeHouse:
		return "H", true
	case models.OfficeSenate:
		return "S", true
	}
	if strings.Contains(strings.ToUpper(race.Name), "PRESIDENT") {
		return "P", true
	}
	return "", false
}

// financeCycles returns the cycles to consult, newest first. Candidates in
// recent cycles often report under the preceding cycle too.
func financeCycles(cycle int) []int {
	if cycle >= 2024 {
		return []int{cycle, cycle - 2}
	}
	return []int{cycle}
}

// TotalReceipts sums, over every candidate filed for the race, the largest
// receipts total reported across the consulted cycles. It returns NotFound
// when no candidate is on file.
func (c *FECClient) TotalReceipts(ctx context.Context, race models.Race, cycle int) (decimal.Decimal, error) {
	office, ok := officeCode(race)
	if !ok || race.State == "" {
		return decimal.Zero, NotFound(fecSourceName, "race is not covered by federal filings")
	}

	cycles := financeCycles(cycle)
	seen := make(map[string]bool)
	var candidateIDs []string
	for _, check := range cycles {
		params := url.Values{}
		params.Set("api_key", c.apiKey)
		params.Set("office", office)
		params.Set("state", race.State)
		params.Set("cycle", strconv.Itoa(check))
		params.Set("per_page", "100")
		if check == cycle {
			params.Set("election_year", strconv.Itoa(check))
		}
		if office == "H" && race.HasDistrict() {
			params.Set("district", fmt.Sprintf("%02d", *race.District))
		}

		var resp fecCandidatesResponse
		if err := c.httpClient.GetJSON(ctx, fecSourceName, c.baseURL+"/candidates/?"+params.Encode(), nil, &resp); err != nil {
			if IsNotFound(err) {
				continue
			}
			return decimal.Zero, err
		}
		for _, cand := range resp.Results {
			if cand.CandidateID == "" || seen[cand.CandidateID] {
				continue
			}
			seen[cand.CandidateID] = true
			candidateIDs = append(candidateIDs, cand.CandidateID)
		}
	}

	if len(candidateIDs) == 0 {
		return decimal.Zero, NotFound(fecSourceName, "no candidates on file")
	}

	total := decimal.Zero
	for _, id := range candidateIDs {
		receipts, err := c.candidateReceipts(ctx, id, cycles)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(receipts)
	}

	c.logger.WithFields(logrus.Fields{
		"race_id":    race.ID,
		"cycle":      cycle,
		"candidates": len(candidateIDs),
		"receipts":   total.StringFixed(2),
	}).Debug("Summed campaign receipts")

	return total, nil
}

func (c *FECClient) candidateReceipts(ctx context.Context, candidateID string, cycles []int) (decimal.Decimal, error) {
	best := decimal.Zero
	for _, cycle := range cycles {
		params := url.Values{}
		params.Set("api_key", c.apiKey)
		params.Set("cycle", strconv.Itoa(cycle))
		params.Set("per_page", "100")

		var resp fecTotalsResponse
		endpoint := fmt.Sprintf("%s/candidate/%s/totals/?%s", c.baseURL, url.PathEscape(candidateID), params.Encode())
		if err := c.httpClient.GetJSON(ctx, fecSourceName, endpoint, nil, &resp); err != nil {
			if IsNotFound(err) {
				continue
			}
			return decimal.Zero, err
		}
		for _, t := range resp.Results {
			if t.Receipts == nil {
				continue
			}
			if r := decimal.NewFromFloat(*t.Receipts); r.GreaterThan(best) {
				best = r
			}
		}
	}
	return best, nil
}

// CandidateParty looks up the party of a named candidate in a cycle.
func (c *FECClient) CandidateParty(ctx context.Context, candidateName string, race models.Race, cycle int) (string, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("q", candidateName)
	params.Set("per_page", "20")
	if cycle > 0 {
		params.Set("cycle", strconv.Itoa(cycle))
	}
	if race.State != "" {
		params.Set("state", race.State)
	}
	if office, ok := officeCode(race); ok {
		params.Set("office", office)
	}

	var resp fecCandidatesResponse
	if err := c.httpClient.GetJSON(ctx, fecSourceName, c.baseURL+"/candidates/search/?"+params.Encode(), nil, &resp); err != nil {
		return "", err
	}
	for _, cand := range resp.Results {
		party := cand.PartyFull
		if party == "" {
			party = cand.Party
		}
		if party != "" {
			return party, nil
		}
	}
	return "", NotFound(fecSourceName, "no party on file for "+candidateName)
}
