package scoring

const (
	// neutralCompetitiveness is reported when no source has an opinion.
	neutralCompetitiveness = 0.5

	// dominantShare is the normalized weight a source needs to set quality.
	dominantShare = 0.3
)

// FusionResult is the fused competitiveness of a race.
type FusionResult struct {
	Value   float64          `json:"value"`
	Quality Quality          `json:"quality"`
	Sources []SignalEstimate `json:"sources"`
}

// Fuse combines estimates into one competitiveness value as a weighted mean.
// With no estimates the result is 0.5 with quality None. A single estimate is
// returned unchanged regardless of its weight.
func Fuse(estimates []SignalEstimate) (FusionResult, error) {
	for _, e := range estimates {
		if err := e.check(); err != nil {
			return FusionResult{}, err
		}
	}

	switch len(estimates) {
	case 0:
		return FusionResult{Value: neutralCompetitiveness, Quality: QualityNone}, nil
	case 1:
		return FusionResult{Value: estimates[0].Value, Quality: estimates[0].Quality, Sources: estimates}, nil
	}

	var totalWeight float64
	for _, e := range estimates {
		totalWeight += e.Weight
	}

	var value float64
	if totalWeight == 0 {
		for _, e := range estimates {
			value += e.Value
		}
		value /= float64(len(estimates))
	} else {
		for _, e := range estimates {
			value += e.Value * e.Weight
		}
		value /= totalWeight
	}

	return FusionResult{
		Value:   clamp01(value),
		Quality: fusedQuality(estimates, totalWeight),
		Sources: estimates,
	}, nil
}

// fusedQuality is the best quality among sources carrying at least
// dominantShare of the total weight, or Medium when none does.
func fusedQuality(estimates []SignalEstimate, totalWeight float64) Quality {
	best := QualityNone
	for _, e := range estimates {
		share := 1 / float64(len(estimates))
		if totalWeight > 0 {
			share = e.Weight / totalWeight
		}
		// Tolerate rounding in shares such as 0.3/1.0.
		if share+1e-9 >= dominantShare && e.Quality > best {
			best = e.Quality
		}
	}
	if best == QualityNone {
		return QualityMedium
	}
	return best
}
