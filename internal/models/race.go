package models

import (
	"time"
)

// JurisdictionLevel classifies the government level of a race.
type JurisdictionLevel string

const (
	LevelFederal  JurisdictionLevel = "federal"
	LevelState    JurisdictionLevel = "state"
	LevelCounty   JurisdictionLevel = "county"
	LevelCity     JurisdictionLevel = "city"
	LevelRegional JurisdictionLevel = "regional"
)

// IsLocal reports whether the level is below the state level.
func (l JurisdictionLevel) IsLocal() bool {
	switch l {
	case LevelCounty, LevelCity, LevelRegional:
		return true
	default:
		return false
	}
}

// Valid reports whether l is one of the known levels.
func (l JurisdictionLevel) Valid() bool {
	switch l {
	case LevelFederal, LevelState, LevelCounty, LevelCity, LevelRegional:
		return true
	default:
		return false
	}
}

// ElectionType is the kind of election a race belongs to.
// Runoff and recall elections are scored exactly like general elections.
type ElectionType string

const (
	ElectionGeneral ElectionType = "general"
	ElectionPrimary ElectionType = "primary"
	ElectionRunoff  ElectionType = "runoff"
	ElectionRecall  ElectionType = "recall"
)

// OfficeKind is the coarse office classification used for market matching.
type OfficeKind string

const (
	OfficeHouse            OfficeKind = "house"
	OfficeSenate           OfficeKind = "senate"
	OfficeGovernor         OfficeKind = "governor"
	OfficeAttorneyGeneral  OfficeKind = "attorney_general"
	OfficeSecretaryOfState OfficeKind = "secretary_of_state"
	OfficeJudicial         OfficeKind = "judicial"
	OfficeMayor            OfficeKind = "mayor"
	OfficeOther            OfficeKind = "other"
)

// Keywords returns the lowercase words a market title uses for this office.
func (o OfficeKind) Keywords() []string {
	switch o {
	case OfficeHouse:
		return []string{"house"}
	case OfficeSenate:
		return []string{"senate"}
	case OfficeGovernor:
		return []string{"governor"}
	case OfficeAttorneyGeneral:
		return []string{"attorney general"}
	case OfficeSecretaryOfState:
		return []string{"secretary of state"}
	case OfficeMayor:
		return []string{"mayor"}
	case OfficeJudicial:
		return []string{"court", "justice", "judge"}
	default:
		return nil
	}
}

// Race is an electoral contest as reported by the election metadata service.
// Races are treated as immutable once fetched.
type Race struct {
	ID           string            `json:"id" validate:"required"`
	PositionID   string            `json:"position_id,omitempty"`
	Name         string            `json:"name" validate:"required"`
	ElectionName string            `json:"election_name,omitempty"`
	Level        JurisdictionLevel `json:"level" validate:"required"`
	Office       OfficeKind        `json:"office"`
	State        string            `json:"state" validate:"omitempty,len=2"`
	District     *int              `json:"district,omitempty"`
	Year         int               `json:"year" validate:"required,gt=1900"`
	ElectionDate time.Time         `json:"election_date" validate:"required"`
	ElectionType ElectionType      `json:"election_type"`
}

// IsHouse reports whether the race is for a districted House seat.
func (r *Race) IsHouse() bool {
	return r.Office == OfficeHouse
}

// HasDistrict reports whether the race carries a district number.
func (r *Race) HasDistrict() bool {
	return r.District != nil && *r.District > 0
}

// DaysUntil returns whole days from asOf until the election date.
// Negative values mean the election is in the past.
func (r *Race) DaysUntil(asOf time.Time) int {
	election := time.Date(r.ElectionDate.Year(), r.ElectionDate.Month(), r.ElectionDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(election.Sub(today).Hours() / 24)
}

// MonthsUntil returns the calendar-month distance from asOf to the election.
func (r *Race) MonthsUntil(asOf time.Time) int {
	return (r.ElectionDate.Year()-asOf.Year())*12 + int(r.ElectionDate.Month()) - int(asOf.Month())
}

// IsPast reports whether the election day is before asOf's calendar day.
func (r *Race) IsPast(asOf time.Time) bool {
	return r.DaysUntil(asOf) < 0
}

// FinanceCycle returns the two-year campaign finance cycle for the race,
// along with a caveat when the derived cycle is unreliable.
func (r *Race) FinanceCycle(asOf time.Time) (int, string) {
	year := r.Year
	if year == 0 {
		year = asOf.Year()
	}
	cycle := year
	if cycle%2 != 0 {
		cycle--
	}

	current := asOf.Year()
	if current%2 != 0 {
		current--
	}
	if cycle > current {
		return current, FutureCycleCaveat
	}
	if cycle < MinFinanceCycle {
		return cycle, OldCycleCaveat
	}
	return cycle, ""
}

// MinFinanceCycle is the oldest cycle with reliable receipts coverage.
const MinFinanceCycle = 2018

// Caveats returned by FinanceCycle.
const (
	FutureCycleCaveat = "Future cycle - using most recent finance cycle"
	OldCycleCaveat    = "Old cycle - finance data may be incomplete"
)
