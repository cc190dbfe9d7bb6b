package contracts

import "time"

// OverrideType tags which levers an override request pulls. Weights and
// sentiment are the only adjustable levers; fundamental and technical
// pillar values are never alterable by an override.
type OverrideType string

const (
	OverrideNone      OverrideType = "NONE"
	OverrideWeight    OverrideType = "WEIGHT"
	OverrideSentiment OverrideType = "SENTIMENT"
	OverrideBoth      OverrideType = "BOTH"
)

// Valid reports whether t is a known override type.
func (t OverrideType) Valid() bool {
	switch t {
	case OverrideNone, OverrideWeight, OverrideSentiment, OverrideBoth:
		return true
	}
	return false
}

// IncludesWeight reports whether the type adjusts weights.
func (t OverrideType) IncludesWeight() bool {
	return t == OverrideWeight || t == OverrideBoth
}

// IncludesSentiment reports whether the type adjusts the sentiment pillar.
func (t OverrideType) IncludesSentiment() bool {
	return t == OverrideSentiment || t == OverrideBoth
}

// Conviction expresses how strongly the analyst stands behind an
// override.
type Conviction string

const (
	ConvictionLow    Conviction = "LOW"
	ConvictionMedium Conviction = "MEDIUM"
	ConvictionHigh   Conviction = "HIGH"
)

// Valid reports whether c is a known conviction level.
func (c Conviction) Valid() bool {
	switch c {
	case ConvictionLow, ConvictionMedium, ConvictionHigh:
		return true
	}
	return false
}

// Evidence is one supporting piece attached to an override request.
type Evidence struct {
	Source      string `json:"source"`
	Description string `json:"description"`
}

// Documentation is the mandatory narrative for any non-NONE override.
// All three fields must be non-empty after trimming.
type Documentation struct {
	ModelMisses     string `json:"model_misses"`      // what the model misses
	WhyMoreAccurate string `json:"why_more_accurate"` // why the override is more accurate
	Falsification   string `json:"falsification"`     // what would falsify the thesis
}

// WeightOverride replaces the base weight set for one entity.
type WeightOverride struct {
	Weights WeightSet `json:"weights"`
}

// SentimentOverride shifts the entity's sentiment pillar by a signed
// number of points. The adjusted value is clamped to [0,100].
type SentimentOverride struct {
	Adjustment float64 `json:"adjustment"`
}

// OverrideRequest is a human-supplied adjustment to one entity's
// scoring inputs. The payload pointers must match the declared type:
// WEIGHT populates Weight, SENTIMENT populates Sentiment, BOTH
// populates both, NONE populates neither. The validator rejects any
// mismatch before computation.
type OverrideRequest struct {
	Ticker        string             `json:"ticker"`
	Type          OverrideType       `json:"type"`
	Weight        *WeightOverride    `json:"weight,omitempty"`
	Sentiment     *SentimentOverride `json:"sentiment,omitempty"`
	Documentation Documentation      `json:"documentation"`
	Conviction    Conviction         `json:"conviction"`
	Evidence      []Evidence         `json:"evidence,omitempty"`
	RequestedBy   string             `json:"requested_by,omitempty"`
}

// NewWeightOverrideRequest builds a well-formed WEIGHT request.
func NewWeightOverrideRequest(ticker string, weights WeightSet, doc Documentation, conviction Conviction) OverrideRequest {
	return OverrideRequest{
		Ticker:        ticker,
		Type:          OverrideWeight,
		Weight:        &WeightOverride{Weights: weights},
		Documentation: doc,
		Conviction:    conviction,
	}
}

// NewSentimentOverrideRequest builds a well-formed SENTIMENT request.
func NewSentimentOverrideRequest(ticker string, adjustment float64, doc Documentation, conviction Conviction) OverrideRequest {
	return OverrideRequest{
		Ticker:        ticker,
		Type:          OverrideSentiment,
		Sentiment:     &SentimentOverride{Adjustment: adjustment},
		Documentation: doc,
		Conviction:    conviction,
	}
}

// OverrideResult is the immutable outcome of applying an override:
// the untouched base result, the recomputed final result, the signed
// percentile impact and every guardrail violation raised. Guardrail
// violations are advisory; a result carrying them is still a valid,
// fully computed result.
type OverrideResult struct {
	ID                    string          `json:"id"`
	Ticker                string          `json:"ticker"`
	Type                  OverrideType    `json:"type"`
	Conviction            Conviction      `json:"conviction"`
	Base                  CompositeResult `json:"base"`
	Final                 CompositeResult `json:"final"`
	Impact                float64         `json:"impact"` // final percentile - base percentile
	RecommendationChanged bool            `json:"recommendation_changed"`
	Extreme               bool            `json:"extreme"`
	Violations            []string        `json:"violations,omitempty"`
	EvidenceCount         int             `json:"evidence_count"`
	PolicyHash            string          `json:"policy_hash,omitempty"`
	AppliedAt             time.Time       `json:"applied_at"`
}

// HasViolations reports whether any guardrail flagged the override.
func (r *OverrideResult) HasViolations() bool {
	return len(r.Violations) > 0
}
