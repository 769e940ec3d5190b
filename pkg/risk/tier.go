package risk

import "fmt"

type Tier string

const (
	TierLow      Tier = "Low Risk"
	TierModerate Tier = "Moderate Risk"
	TierHigh     Tier = "High Risk"
)

// Bands classifies a survival probability. Probabilities at or above Low are
// low risk, at or above Moderate are moderate risk, anything else is high risk.
type Bands struct {
	Low      float64 `json:"low"`
	Moderate float64 `json:"moderate"`
}

func DefaultBands() Bands {
	return Bands{Low: 0.7, Moderate: 0.4}
}

func (b Bands) Validate() error {
	if !(0 < b.Moderate && b.Moderate < b.Low && b.Low < 1) {
		return fmt.Errorf("risk cutpoints must satisfy 0 < moderate (%v) < low (%v) < 1", b.Moderate, b.Low)
	}
	return nil
}

func (b Bands) Classify(probability float64) Tier {
	switch {
	case probability >= b.Low:
		return TierLow
	case probability >= b.Moderate:
		return TierModerate
	default:
		return TierHigh
	}
}

// Outcome is the sentence shown next to the probability.
func (t Tier) Outcome() string {
	return string(t) + " of Mortality"
}
