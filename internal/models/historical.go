package models

import "sort"

// HistoricalOutcome is the winner of one past cycle of a position.
type HistoricalOutcome struct {
	Year       int    `json:"year" validate:"required,gt=1900"`
	WinnerName string `json:"winner_name"`
	Party      string `json:"party,omitempty"`
}

// HistoricalRecord is the ordered series of past outcomes for a position.
type HistoricalRecord struct {
	PositionID string              `json:"position_id,omitempty"`
	Outcomes   []HistoricalOutcome `json:"outcomes"`
}

// Parties returns the normalized winning parties ordered by year, skipping
// outcomes without party attribution.
func (h *HistoricalRecord) Parties() []string {
	outcomes := make([]HistoricalOutcome, len(h.Outcomes))
	copy(outcomes, h.Outcomes)
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Year < outcomes[j].Year })

	parties := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if p := NormalizeParty(o.Party); p != "" {
			parties = append(parties, p)
		}
	}
	return parties
}
