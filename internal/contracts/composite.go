package contracts

import "time"

// CompositeResult is one entity's outcome from a scoring run: resolved
// pillar scores, the weights used, the weighted composite, the
// percentile rank within the run's universe and the recommendation
// bucket. Results are immutable once produced; a new run produces new
// results and never mutates old ones.
type CompositeResult struct {
	Ticker         string         `json:"ticker"`
	Fundamental    float64        `json:"fundamental"`
	Technical      float64        `json:"technical"`
	Sentiment      float64        `json:"sentiment"`
	Weights        WeightSet      `json:"weights"`
	Composite      float64        `json:"composite"`
	Percentile     float64        `json:"percentile"`
	Recommendation Recommendation `json:"recommendation"`
}

// UniverseSnapshot is the complete, ordered outcome of one scoring run.
// Results are sorted descending by percentile. Overrides are always
// applied against a snapshot of original pre-override composites, never
// against another entity's already-overridden value.
type UniverseSnapshot struct {
	Date       time.Time         `json:"date"`
	PolicyHash string            `json:"policy_hash"`
	Results    []CompositeResult `json:"results"`
	Skipped    []string          `json:"skipped,omitempty"` // tickers excluded from the run
}

// Find returns the result for a ticker, if present.
func (u *UniverseSnapshot) Find(ticker string) (CompositeResult, bool) {
	for _, r := range u.Results {
		if r.Ticker == ticker {
			return r, true
		}
	}
	return CompositeResult{}, false
}

// Composites returns a fresh slice of every entity's composite value.
// Callers own the returned slice; the snapshot itself is never exposed
// for mutation.
func (u *UniverseSnapshot) Composites() []float64 {
	out := make([]float64, len(u.Results))
	for i, r := range u.Results {
		out[i] = r.Composite
	}
	return out
}

// Count returns the number of scored entities.
func (u *UniverseSnapshot) Count() int {
	return len(u.Results)
}
