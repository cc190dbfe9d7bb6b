package contracts

import "time"

// PillarSet holds the three pillar scores for a single entity as
// produced by the upstream calculators. Each score is in [0,100] or
// absent (nil). An entity missing any pillar is excluded from the
// scored universe entirely; it is never given a filler value.
type PillarSet struct {
	Fundamental *float64 `json:"fundamental,omitempty"`
	Technical   *float64 `json:"technical,omitempty"`
	Sentiment   *float64 `json:"sentiment,omitempty"`
}

// Complete reports whether all three pillar scores are present.
func (p PillarSet) Complete() bool {
	return p.Fundamental != nil && p.Technical != nil && p.Sentiment != nil
}

// EntityScores pairs a ticker with its pillar scores for one scoring run.
type EntityScores struct {
	Ticker  string    `json:"ticker"`
	Pillars PillarSet `json:"pillars"`
}

// ScoreInput is the full input to one scoring run.
type ScoreInput struct {
	Date     time.Time      `json:"date"`
	Entities []EntityScores `json:"entities"`
}

// Score converts a raw pillar value into a score pointer. Convenience
// for building inputs in tests and file loaders.
func Score(v float64) *float64 {
	return &v
}
