package contracts

import (
	"fmt"
	"math"
)

// WeightSumTolerance is the permitted deviation of a weight set's sum
// from 1.0.
const WeightSumTolerance = 0.001

// WeightSet holds the three pillar weights used to blend pillar scores
// into a composite. A WeightSet is only obtainable through NewWeightSet,
// which enforces the sum invariant; a zero WeightSet is invalid.
type WeightSet struct {
	Fundamental float64 `json:"fundamental" yaml:"fundamental"`
	Technical   float64 `json:"technical" yaml:"technical"`
	Sentiment   float64 `json:"sentiment" yaml:"sentiment"`
}

// NewWeightSet builds a WeightSet, failing if the weights do not sum to
// 1.0 within WeightSumTolerance.
func NewWeightSet(fundamental, technical, sentiment float64) (WeightSet, error) {
	w := WeightSet{
		Fundamental: fundamental,
		Technical:   technical,
		Sentiment:   sentiment,
	}
	if err := w.Validate(); err != nil {
		return WeightSet{}, err
	}
	return w, nil
}

// Validate checks the sum invariant. Per-pillar permissible ranges are
// policy, not an intrinsic property of the set, and are checked by the
// override validator against the active policy.
func (w WeightSet) Validate() error {
	sum := w.Fundamental + w.Technical + w.Sentiment
	if math.Abs(sum-1.0) > WeightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0 (±%.3f), got %.4f", WeightSumTolerance, sum)
	}
	return nil
}

// Sum returns the total of the three weights.
func (w WeightSet) Sum() float64 {
	return w.Fundamental + w.Technical + w.Sentiment
}
