package audit

import (
	"math"
	"time"

	"github.com/stratum-quant/stratum/internal/contracts"
)

// Query filters the override log. Zero-valued fields are ignored:
// an empty ticker matches every entity and a zero time leaves that
// side of the range unbounded. Results come back in chronological
// order of application.
type Query struct {
	Ticker string
	From   time.Time
	To     time.Time
	Limit  int
}

func (q Query) matches(r contracts.OverrideResult) bool {
	if q.Ticker != "" && r.Ticker != q.Ticker {
		return false
	}
	if !q.From.IsZero() && r.AppliedAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.AppliedAt.After(q.To) {
		return false
	}
	return true
}

// Stats summarizes a set of override records for oversight review.
type Stats struct {
	Total                 int                            `json:"total"`
	ByType                map[contracts.OverrideType]int `json:"by_type"`
	ByConviction          map[contracts.Conviction]int   `json:"by_conviction"`
	MeanAbsImpact         float64                        `json:"mean_abs_impact"`
	RecommendationChanges int                            `json:"recommendation_changes"`
	Extreme               int                            `json:"extreme"`
	WithViolations        int                            `json:"with_violations"`
}

// Aggregate computes summary statistics over override records.
// MeanAbsImpact is zero when there are no records.
func Aggregate(records []contracts.OverrideResult) Stats {
	stats := Stats{
		Total:        len(records),
		ByType:       make(map[contracts.OverrideType]int),
		ByConviction: make(map[contracts.Conviction]int),
	}

	var impactSum float64
	for _, r := range records {
		stats.ByType[r.Type]++
		if r.Conviction != "" {
			stats.ByConviction[r.Conviction]++
		}
		impactSum += math.Abs(r.Impact)
		if r.RecommendationChanged {
			stats.RecommendationChanges++
		}
		if r.Extreme {
			stats.Extreme++
		}
		if len(r.Violations) > 0 {
			stats.WithViolations++
		}
	}

	if stats.Total > 0 {
		stats.MeanAbsImpact = impactSum / float64(stats.Total)
	}

	return stats
}
