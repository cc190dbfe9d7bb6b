package ranking

import "math"

// AveragePercentileRanks blends percentile ranks under renormalizing
// weights. This is the single aggregation primitive for every level of
// the pipeline (sub-component into pillar, pillar into composite); the
// drop-missing-and-renormalize rule lives here and nowhere else.
//
// NaN ranks are dropped together with their weights and the remaining
// weights are renormalized to sum to 1.0. A nil weights slice means
// equal weights. Returns ok=false when no rank survives, when the
// weights slice length does not match, or when the surviving weights
// sum to zero. The result is rounded to 2 decimals.
func AveragePercentileRanks(ranks []float64, weights []float64) (float64, bool) {
	if len(ranks) == 0 {
		return 0, false
	}
	if weights != nil && len(weights) != len(ranks) {
		return 0, false
	}

	var weightSum, total float64
	for i, r := range ranks {
		if math.IsNaN(r) {
			continue
		}
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		weightSum += w
		total += r * w
	}

	if weightSum == 0 {
		return 0, false
	}

	return round2(total / weightSum), true
}
