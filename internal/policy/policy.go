// Package policy holds the scoring and override policy: base weights,
// permissible weight ranges, recommendation bands, guardrail ceilings
// and forbidden transitions. Components receive an immutable Policy
// value; nothing in the system reads policy from process-wide state.
package policy

import "github.com/stratum-quant/stratum/internal/contracts"

// Policy is the full scoring and override policy for one universe.
type Policy struct {
	Meta           Meta                 `yaml:"meta" json:"meta"`
	Weights        WeightsPolicy        `yaml:"weights" json:"weights"`
	Recommendation RecommendationPolicy `yaml:"recommendation" json:"recommendation"`
	Override       OverridePolicy       `yaml:"override" json:"override"`
}

// Meta identifies the policy document.
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// WeightsPolicy holds the base pillar weights and the permissible range
// for each pillar weight. Override requests may move weights only
// within these ranges.
type WeightsPolicy struct {
	Base   contracts.WeightSet `yaml:"base" json:"base"`
	Ranges PillarRanges        `yaml:"ranges" json:"ranges"`
}

// PillarRanges holds one permissible range per pillar.
type PillarRanges struct {
	Fundamental Range `yaml:"fundamental" json:"fundamental"`
	Technical   Range `yaml:"technical" json:"technical"`
	Sentiment   Range `yaml:"sentiment" json:"sentiment"`
}

// Range is a closed interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// RecommendationPolicy maps composite percentile to a recommendation
// bucket through ordered half-open bands. Bands are data, not code:
// editing policy means editing this table.
type RecommendationPolicy struct {
	Bands []Band `yaml:"bands" json:"bands"`
}

// Band assigns a label to percentiles at or above Min, below the
// previous band's Min. Bands must be ordered by strictly descending Min
// with the last at 0.
type Band struct {
	Label contracts.Recommendation `yaml:"label" json:"label"`
	Min   float64                  `yaml:"min" json:"min"`
}

// Bucket maps a percentile to its recommendation. The mapping is a pure
// deterministic function of the percentile.
func (p RecommendationPolicy) Bucket(percentile float64) contracts.Recommendation {
	for _, b := range p.Bands {
		if percentile >= b.Min {
			return b.Label
		}
	}
	// Unreachable with a validated policy (last band min is 0).
	return p.Bands[len(p.Bands)-1].Label
}

// OverridePolicy holds every override guardrail parameter.
type OverridePolicy struct {
	// SentimentCap bounds |sentiment adjustment| on a request.
	SentimentCap float64 `yaml:"sentiment_cap" json:"sentiment_cap"`

	// ImpactCeilings are advisory per-type ceilings on |percentile impact|.
	ImpactCeilings ImpactCeilings `yaml:"impact_ceilings" json:"impact_ceilings"`

	// Extreme configures the extreme-override flag and its requirements.
	Extreme ExtremePolicy `yaml:"extreme" json:"extreme"`

	// ForbiddenTransitions lists recommendation moves that require HIGH
	// conviction. HOLD is never part of a pair.
	ForbiddenTransitions []TransitionPair `yaml:"forbidden_transitions" json:"forbidden_transitions"`
}

// ImpactCeilings holds the per-override-type |impact| ceilings.
type ImpactCeilings struct {
	Weight    float64 `yaml:"weight" json:"weight"`
	Sentiment float64 `yaml:"sentiment" json:"sentiment"`
	Both      float64 `yaml:"both" json:"both"`
}

// For returns the ceiling for an override type, or 0 with ok=false for
// types without a ceiling (NONE).
func (c ImpactCeilings) For(t contracts.OverrideType) (float64, bool) {
	switch t {
	case contracts.OverrideWeight:
		return c.Weight, true
	case contracts.OverrideSentiment:
		return c.Sentiment, true
	case contracts.OverrideBoth:
		return c.Both, true
	}
	return 0, false
}

// ExtremePolicy marks overrides whose |impact| exceeds Threshold as
// extreme; extreme overrides additionally require HIGH conviction and
// at least MinEvidence evidence pieces.
type ExtremePolicy struct {
	Threshold   float64 `yaml:"threshold" json:"threshold"`
	MinEvidence int     `yaml:"min_evidence" json:"min_evidence"`
}

// TransitionPair is a forbidden before/after recommendation pair.
type TransitionPair struct {
	From contracts.Recommendation `yaml:"from" json:"from"`
	To   contracts.Recommendation `yaml:"to" json:"to"`
}

// Forbidden reports whether the move from base to final recommendation
// is on the forbidden list.
func (p OverridePolicy) Forbidden(from, to contracts.Recommendation) bool {
	for _, pair := range p.ForbiddenTransitions {
		if pair.From == from && pair.To == to {
			return true
		}
	}
	return false
}

// Default returns the built-in policy used when no YAML file is given.
func Default() Policy {
	return Policy{
		Meta: Meta{
			PolicyID: "default",
			Version:  "1",
		},
		Weights: WeightsPolicy{
			Base: contracts.WeightSet{
				Fundamental: 0.40,
				Technical:   0.35,
				Sentiment:   0.25,
			},
			Ranges: PillarRanges{
				Fundamental: Range{Min: 0.35, Max: 0.55},
				Technical:   Range{Min: 0.25, Max: 0.45},
				Sentiment:   Range{Min: 0.10, Max: 0.30},
			},
		},
		Recommendation: RecommendationPolicy{
			Bands: []Band{
				{Label: contracts.StrongBuy, Min: 85},
				{Label: contracts.Buy, Min: 70},
				{Label: contracts.Hold, Min: 30},
				{Label: contracts.Sell, Min: 16},
				{Label: contracts.StrongSell, Min: 0},
			},
		},
		Override: OverridePolicy{
			SentimentCap: 15,
			ImpactCeilings: ImpactCeilings{
				Weight:    10,
				Sentiment: 3,
				Both:      12,
			},
			Extreme: ExtremePolicy{
				Threshold:   15,
				MinEvidence: 3,
			},
			ForbiddenTransitions: []TransitionPair{
				{From: contracts.Sell, To: contracts.Buy},
				{From: contracts.Sell, To: contracts.StrongBuy},
				{From: contracts.StrongSell, To: contracts.Buy},
				{From: contracts.StrongSell, To: contracts.StrongBuy},
				{From: contracts.Buy, To: contracts.Sell},
				{From: contracts.Buy, To: contracts.StrongSell},
				{From: contracts.StrongBuy, To: contracts.Sell},
				{From: contracts.StrongBuy, To: contracts.StrongSell},
			},
		},
	}
}
