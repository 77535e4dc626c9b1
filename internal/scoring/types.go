// Package scoring turns upstream signals about a race into a leverage score.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrContractViolation marks malformed inputs to the scoring core, such as
// NaN values or negative market volume. It is fatal to one race only.
var ErrContractViolation = errors.New("contract violation")

func contractViolation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}

// Quality is a confidence tier attached to an estimate, independent of its value.
type Quality int

const (
	QualityNone Quality = iota
	QualityLow
	QualityMedium
	QualityHigh
)

var qualityNames = [...]string{"None", "Low", "Medium", "High"}

func (q Quality) String() string {
	if q < QualityNone || q > QualityHigh {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityNames[q]
}

// MarshalJSON encodes the tier by name.
func (q Quality) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON decodes a tier name.
func (q *Quality) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range qualityNames {
		if n == name {
			*q = Quality(i)
			return nil
		}
	}
	return fmt.Errorf("unknown quality %q", name)
}

// SignalSource identifies which strategy produced an estimate.
type SignalSource string

const (
	SourceMarket      SignalSource = "prediction_market"
	SourceHistorical  SignalSource = "historical"
	SourceDemographic SignalSource = "demographic"
)

// SignalEstimate is the common currency every competitiveness source emits
// before fusion.
type SignalEstimate struct {
	Value   float64      `json:"value"`
	Weight  float64      `json:"weight"`
	Quality Quality      `json:"quality"`
	Source  SignalSource `json:"source"`
}

func (s SignalEstimate) check() error {
	if math.IsNaN(s.Value) || s.Value < 0 || s.Value > 1 {
		return contractViolation("%s estimate value %v outside [0,1]", s.Source, s.Value)
	}
	if math.IsNaN(s.Weight) || s.Weight < 0 {
		return contractViolation("%s estimate weight %v is negative", s.Source, s.Weight)
	}
	return nil
}

// Outcome statuses reported per source lookup.
const (
	StatusValue     = "value"
	StatusAbsent    = "absent"
	StatusTransient = "transient"
	StatusMalformed = "malformed"
)

// Outcome is what a competitiveness source returns for one race: an
// estimate, or nil when the source has nothing to say, plus any warnings.
type Outcome struct {
	Estimate *SignalEstimate
	Status   string
	Warnings []string
	Err      error
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
