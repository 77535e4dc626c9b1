package models

// RegionalPartySplit is the aggregate party share for a state, averaged
// over its counties. County races use the split of their containing state.
// The Senate shares come from Senate contests and are only set when the
// source had Senate results for the state.
type RegionalPartySplit struct {
	State          string  `json:"state" validate:"required,len=2"`
	DemShare       float64 `json:"dem_share" validate:"gte=0,lte=1"`
	RepShare       float64 `json:"rep_share" validate:"gte=0,lte=1"`
	SenateDemShare float64 `json:"senate_dem_share,omitempty" validate:"gte=0,lte=1"`
	SenateRepShare float64 `json:"senate_rep_share,omitempty" validate:"gte=0,lte=1"`
	CountyCount    int     `json:"county_count"`
	SenateCounties int     `json:"senate_counties,omitempty"`
	SourceYear     int     `json:"source_year,omitempty"`
}

// DemShareFor returns the Democratic share to judge a race for office by.
// Senate races use Senate results when present; everything else, and
// Senate races in states without them, uses the presidential share.
func (s *RegionalPartySplit) DemShareFor(office OfficeKind) float64 {
	if office == OfficeSenate && s.SenateCounties > 0 {
		return s.SenateDemShare
	}
	return s.DemShare
}
