package models

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	congressionalDistrictRe = regexp.MustCompile(`(\d+)(?:st|nd|rd|th)?\s+Congressional District`)
	districtRe              = regexp.MustCompile(`(?i)District\s+(\d+)`)
	ordinalDistrictRe       = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)\s+District`)
)

// ParsedRaceName holds what can be read from an upstream position name.
type ParsedRaceName struct {
	Office   OfficeKind
	State    string
	District *int
}

// ParseRaceName extracts office, state and district from a position name
// such as "U.S. House of Representatives - North Carolina 2nd Congressional District".
func ParseRaceName(name string) ParsedRaceName {
	parsed := ParsedRaceName{Office: OfficeOther}
	if abbrev, ok := StateFromName(name); ok {
		parsed.State = abbrev
	}

	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "SENATE"):
		parsed.Office = OfficeSenate
	case strings.Contains(upper, "HOUSE") || strings.Contains(upper, "ASSEMBLY"):
		parsed.Office = OfficeHouse
	case strings.Contains(upper, "LIEUTENANT GOVERNOR"):
		parsed.Office = OfficeOther
	case strings.Contains(upper, "GOVERNOR"):
		parsed.Office = OfficeGovernor
	case strings.Contains(upper, "ATTORNEY GENERAL"):
		parsed.Office = OfficeAttorneyGeneral
	case strings.Contains(upper, "SECRETARY OF STATE"):
		parsed.Office = OfficeSecretaryOfState
	case strings.Contains(upper, "MAYOR"):
		parsed.Office = OfficeMayor
	case strings.Contains(upper, "JUDGE") || strings.Contains(upper, "JUSTICE") || strings.Contains(upper, "COURT"):
		parsed.Office = OfficeJudicial
	}

	if parsed.Office == OfficeHouse && !strings.Contains(upper, "AT LARGE") && !strings.Contains(upper, "AT-LARGE") {
		for _, re := range []*regexp.Regexp{congressionalDistrictRe, ordinalDistrictRe, districtRe} {
			if m := re.FindStringSubmatch(name); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
					parsed.District = &n
					break
				}
			}
		}
	}
	return parsed
}

// ClassifyElectionType reads the election type from an election name.
func ClassifyElectionType(electionName string) ElectionType {
	lower := strings.ToLower(electionName)
	switch {
	case strings.Contains(lower, "runoff"):
		return ElectionRunoff
	case strings.Contains(lower, "recall"):
		return ElectionRecall
	case strings.Contains(lower, "primary"):
		return ElectionPrimary
	default:
		return ElectionGeneral
	}
}

// ParseLevel maps an upstream level label to a JurisdictionLevel.
func ParseLevel(label string) (JurisdictionLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "FEDERAL":
		return LevelFederal, true
	case "STATE":
		return LevelState, true
	case "COUNTY", "LOCAL":
		return LevelCounty, true
	case "CITY", "TOWNSHIP":
		return LevelCity, true
	case "REGIONAL":
		return LevelRegional, true
	default:
		return "", false
	}
}

// NormalizeParty maps free-form party labels to short codes.
func NormalizeParty(party string) string {
	upper := strings.ToUpper(strings.TrimSpace(party))
	switch {
	case upper == "":
		return ""
	case strings.Contains(upper, "DEMOCRAT") || upper == "DEM" || upper == "D":
		return "DEM"
	case strings.Contains(upper, "REPUBLICAN") || upper == "REP" || upper == "R" || upper == "GOP":
		return "REP"
	case strings.Contains(upper, "INDEPENDENT") || upper == "IND" || upper == "I":
		return "IND"
	case strings.Contains(upper, "GREEN"):
		return "GRN"
	case strings.Contains(upper, "LIBERTARIAN"):
		return "LIB"
	case len(upper) > 3:
		return upper[:3]
	default:
		return upper
	}
}
