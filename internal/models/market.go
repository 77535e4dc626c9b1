package models

import "sort"

// MarketCandidate is one outcome of a prediction market with its price.
// Price is probability-like in [0,100].
type MarketCandidate struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0,lte=100"`
}

// MarketCandidateSet is a prediction-market record that may correspond to a race.
type MarketCandidateSet struct {
	Ticker     string            `json:"ticker" validate:"required_without=Title"`
	Title      string            `json:"title" validate:"required_without=Ticker"`
	Year       int               `json:"year,omitempty"`
	Volume     float64           `json:"volume" validate:"gte=0"`
	Spread     float64           `json:"spread" validate:"gte=0"`
	Candidates []MarketCandidate `json:"candidates" validate:"required,min=1,dive"`
}

// IsBinary reports whether the market has at most two outcomes.
func (m *MarketCandidateSet) IsBinary() bool {
	return len(m.Candidates) <= 2
}

// Prices returns candidate prices ordered from highest to lowest.
func (m *MarketCandidateSet) Prices() []float64 {
	prices := make([]float64, 0, len(m.Candidates))
	for _, c := range m.Candidates {
		prices = append(prices, c.Price)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	return prices
}
