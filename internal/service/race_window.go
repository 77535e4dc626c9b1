package service

import (
	"fmt"
	"time"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// RaceWindow decides which fetched races enter a ranking run.
type RaceWindow struct {
	AsOf            time.Time
	LookaheadMonths int
	ExcludePast     bool
}

// Reject returns the reasons race falls outside the window, or nil when it
// should be scored. A zero LookaheadMonths disables the horizon check.
func (w RaceWindow) Reject(race *models.Race) []string {
	var reasons []string

	if race.ElectionDate.IsZero() {
		reasons = append(reasons, "election_date is required")
		return reasons
	}

	if w.ExcludePast && race.IsPast(w.AsOf) {
		reasons = append(reasons, fmt.Sprintf("election held %d days ago", -race.DaysUntil(w.AsOf)))
	}

	if w.LookaheadMonths > 0 {
		if months := race.MonthsUntil(w.AsOf); months > w.LookaheadMonths {
			reasons = append(reasons, fmt.Sprintf("election %d months out exceeds lookahead of %d", months, w.LookaheadMonths))
		}
	}

	return reasons
}

// Since returns the earliest election day worth fetching. Including past
// races reaches back one year.
func (w RaceWindow) Since() time.Time {
	day := time.Date(w.AsOf.Year(), w.AsOf.Month(), w.AsOf.Day(), 0, 0, 0, 0, time.UTC)
	if w.ExcludePast {
		return day
	}
	return day.AddDate(-1, 0, 0)
}
