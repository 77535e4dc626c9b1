package scoring

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// Maximum contribution of each check to match_score.
const (
	stateMatchWeight    = 0.30
	officeMatchWeight   = 0.30
	districtMatchWeight = 0.20
	yearMatchWeight     = 0.20

	// yearTolerance allows markets listed before filing or redistricting settled.
	yearTolerance = 2
)

var (
	shortNumberRe  = regexp.MustCompile(`\d+`)
	titleTokenRe   = regexp.MustCompile(`[A-Za-z]+`)
	tickerStateRe  = regexp.MustCompile(`^([A-Z]{2})(\d{0,2})$`)
	tickerPrefixes = []string{"KX", "SENATE", "HOUSE", "GOVERNOR", "GOV", "MAYOR", "AG", "SOS"}
)

// MarketMatch is the result of validating a market record against a race.
type MarketMatch struct {
	MatchScore float64                    `json:"match_score"`
	IsValid    bool                       `json:"is_valid"`
	Warnings   []string                   `json:"warnings"`
	Market     *models.MarketCandidateSet `json:"-"`
}

// ValidateMatch scores how well set describes race. Four independent checks
// contribute to the score. The district check only applies to House races
// with a district and is otherwise left out of the denominator.
func ValidateMatch(set *models.MarketCandidateSet, race models.Race) MarketMatch {
	title := strings.ToLower(set.Title)
	ticker := strings.ToUpper(set.Ticker)
	districted := race.IsHouse() && race.HasDistrict()

	var (
		earned   float64
		warnings []string
	)

	stateOK := matchesState(race.State, set.Title, ticker)
	if stateOK {
		earned += stateMatchWeight
	} else {
		warnings = append(warnings, fmt.Sprintf("State not found: looking for %s", race.State))
	}

	officeOK := matchesOffice(race.Office, title, ticker)
	if officeOK {
		earned += officeMatchWeight
	} else {
		warnings = append(warnings, fmt.Sprintf("Office not found: looking for %s", race.Office))
	}

	possible := stateMatchWeight + officeMatchWeight + yearMatchWeight
	districtOK := true
	if districted {
		possible += districtMatchWeight
		districtOK = matchesDistrict(*race.District, title, ticker)
		if districtOK {
			earned += districtMatchWeight
		} else {
			warnings = append(warnings, fmt.Sprintf("District mismatch: looking for district %d", *race.District))
		}
	}

	yearOK, yearWarning := matchesYear(race.Year, set.Year, title, ticker)
	if yearOK {
		earned += yearMatchWeight
	}
	if yearWarning != "" {
		warnings = append(warnings, yearWarning)
	}

	return MarketMatch{
		MatchScore: clamp01(earned / possible),
		IsValid:    stateOK && officeOK && districtOK,
		Warnings:   warnings,
		Market:     set,
	}
}

// matchesState looks for the full state name as a word in the title, the abbreviation
// as an uppercase title token, or the abbreviation as a ticker segment.
func matchesState(state, rawTitle, ticker string) bool {
	if state == "" {
		return false
	}
	abbrev := strings.ToUpper(state)
	if models.MentionsState(rawTitle, abbrev) {
		return true
	}
	// Lowercase "in" or "or" in prose is not a state.
	for _, tok := range titleTokenRe.FindAllString(rawTitle, -1) {
		if tok == abbrev {
			return true
		}
	}
	for _, seg := range strings.Split(ticker, "-") {
		if m := tickerStateRe.FindStringSubmatch(trimTickerPrefixes(seg)); m != nil && m[1] == abbrev {
			return true
		}
	}
	return false
}

func matchesOffice(office models.OfficeKind, title, ticker string) bool {
	for _, kw := range office.Keywords() {
		if strings.Contains(title, kw) {
			return true
		}
		if strings.Contains(ticker, strings.ToUpper(strings.ReplaceAll(kw, " ", ""))) {
			return true
		}
	}
	return false
}

// matchesDistrict reads the district from the state segment of the ticker
// (TX12, NC7) or from short numbers in the title. Other ticker segments,
// such as the -26 cycle suffix, are never read as a district.
func matchesDistrict(district int, title, ticker string) bool {
	for _, seg := range strings.Split(ticker, "-") {
		seg = trimTickerPrefixes(seg)
		if m := tickerStateRe.FindStringSubmatch(seg); m != nil && m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil && n == district {
				return true
			}
		}
	}
	for _, run := range shortNumberRe.FindAllString(title, -1) {
		if len(run) > 2 {
			continue
		}
		if n, err := strconv.Atoi(run); err == nil && n == district {
			return true
		}
	}
	return false
}

func trimTickerPrefixes(seg string) string {
	for _, p := range tickerPrefixes {
		seg = strings.TrimPrefix(seg, p)
	}
	return seg
}

func matchesYear(raceYear, marketYear int, title, ticker string) (bool, string) {
	if raceYear == 0 {
		return false, "Year not found"
	}
	year := strconv.Itoa(raceYear)
	if strings.Contains(title, year) || strings.Contains(ticker, year) {
		return true, ""
	}
	if marketYear != 0 && abs(marketYear-raceYear) <= yearTolerance {
		if marketYear == raceYear {
			return true, ""
		}
		return true, fmt.Sprintf("Market year %d differs from race year %d", marketYear, raceYear)
	}
	return false, "Year not found"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// SelectBestMarket validates every candidate market and returns the best by
// validity then match score. It returns nil when sets is empty.
func SelectBestMarket(sets []models.MarketCandidateSet, race models.Race) *MarketMatch {
	if len(sets) == 0 {
		return nil
	}
	matches := make([]MarketMatch, len(sets))
	for i := range sets {
		matches[i] = ValidateMatch(&sets[i], race)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].IsValid != matches[j].IsValid {
			return matches[i].IsValid
		}
		return matches[i].MatchScore > matches[j].MatchScore
	})
	best := matches[0]
	return &best
}
