// Package ranking provides the percentile primitives every scoring
// level is built on: ranking a value against a universe of comparable
// values, and blending optional sub-scores under renormalizing weights.
// All functions are pure; absent values are represented as NaN.
package ranking

import "math"

// PercentileRank ranks value against universe where a higher raw value
// means a higher rank. NaN universe entries are filtered out first.
//
// The rank is the share of remaining universe values strictly less
// than value, expressed 0-100 and rounded to 2 decimals. Ties earn no
// fractional credit: a value equal to several universe members gets
// credit only for values strictly below it.
//
// When excludeSelf is set, every occurrence equal to value is removed
// before counting, not just one instance. With duplicate values this
// drops peers as well as self; RankUniverse depends on exactly this
// behavior for per-metric universe statistics.
//
// Returns ok=false when value is NaN or the universe holds no usable
// entries. If the universe becomes empty only because of
// self-exclusion, the value is its own whole universe and gets the
// neutral rank 50.
func PercentileRank(value float64, universe []float64, excludeSelf bool) (float64, bool) {
	return rank(value, universe, excludeSelf, false)
}

// PercentileRankInverted is the mirror of PercentileRank for metrics
// where a lower raw value is better: the rank counts universe values
// strictly greater than value.
func PercentileRankInverted(value float64, universe []float64, excludeSelf bool) (float64, bool) {
	return rank(value, universe, excludeSelf, true)
}

func rank(value float64, universe []float64, excludeSelf, inverted bool) (float64, bool) {
	if math.IsNaN(value) {
		return 0, false
	}

	filtered := make([]float64, 0, len(universe))
	for _, v := range universe {
		if !math.IsNaN(v) {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return 0, false
	}

	if excludeSelf {
		kept := filtered[:0]
		for _, v := range filtered {
			if v != value {
				kept = append(kept, v)
			}
		}
		filtered = kept
		if len(filtered) == 0 {
			// The value was the entire universe; rank it neutral.
			return 50.0, true
		}
	}

	favorable := 0
	for _, v := range filtered {
		if (!inverted && v < value) || (inverted && v > value) {
			favorable++
		}
	}

	return round2(float64(favorable) / float64(len(filtered)) * 100), true
}

// RankUniverse batch-ranks every value against all the others, self
// always excluded. Used to build per-metric universe statistics. The
// output is positional: out[i] is the rank of values[i], NaN when that
// value could not be ranked.
func RankUniverse(values []float64, inverted bool) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		var r float64
		var ok bool
		if inverted {
			r, ok = PercentileRankInverted(v, values, true)
		} else {
			r, ok = PercentileRank(v, values, true)
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = r
	}
	return out
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
