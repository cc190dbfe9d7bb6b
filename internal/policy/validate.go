package policy

import (
	"fmt"

	"github.com/stratum-quant/stratum/internal/contracts"
)

// ValidationError reports a single failed policy constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required policy constraints. A policy that fails
// validation must not be handed to any component.
func Validate(p *Policy) error {
	// === Meta ===
	if p.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}

	// === Weights ===
	if err := p.Weights.Base.Validate(); err != nil {
		return ValidationError{"weights.base", err.Error()}
	}
	if err := validateRange("weights.ranges.fundamental", p.Weights.Ranges.Fundamental); err != nil {
		return err
	}
	if err := validateRange("weights.ranges.technical", p.Weights.Ranges.Technical); err != nil {
		return err
	}
	if err := validateRange("weights.ranges.sentiment", p.Weights.Ranges.Sentiment); err != nil {
		return err
	}
	if !p.Weights.Ranges.Fundamental.Contains(p.Weights.Base.Fundamental) {
		return ValidationError{"weights.base.fundamental", "outside permissible range"}
	}
	if !p.Weights.Ranges.Technical.Contains(p.Weights.Base.Technical) {
		return ValidationError{"weights.base.technical", "outside permissible range"}
	}
	if !p.Weights.Ranges.Sentiment.Contains(p.Weights.Base.Sentiment) {
		return ValidationError{"weights.base.sentiment", "outside permissible range"}
	}

	// === Recommendation bands ===
	bands := p.Recommendation.Bands
	if len(bands) == 0 {
		return ValidationError{"recommendation.bands", "at least one band required"}
	}
	seen := make(map[contracts.Recommendation]bool)
	for i, b := range bands {
		field := fmt.Sprintf("recommendation.bands[%d]", i)
		if !b.Label.Valid() {
			return ValidationError{field, fmt.Sprintf("unknown label %q", b.Label)}
		}
		if seen[b.Label] {
			return ValidationError{field, fmt.Sprintf("duplicate label %q", b.Label)}
		}
		seen[b.Label] = true
		if b.Min < 0 || b.Min > 100 {
			return ValidationError{field, "min must be in [0,100]"}
		}
		if i > 0 && b.Min >= bands[i-1].Min {
			return ValidationError{field, "bands must be ordered by strictly descending min"}
		}
	}
	if bands[len(bands)-1].Min != 0 {
		return ValidationError{"recommendation.bands", "last band must start at 0"}
	}

	// === Override ===
	if p.Override.SentimentCap <= 0 {
		return ValidationError{"override.sentiment_cap", "must be > 0"}
	}
	if p.Override.ImpactCeilings.Weight <= 0 {
		return ValidationError{"override.impact_ceilings.weight", "must be > 0"}
	}
	if p.Override.ImpactCeilings.Sentiment <= 0 {
		return ValidationError{"override.impact_ceilings.sentiment", "must be > 0"}
	}
	if p.Override.ImpactCeilings.Both <= 0 {
		return ValidationError{"override.impact_ceilings.both", "must be > 0"}
	}
	if p.Override.Extreme.Threshold <= 0 {
		return ValidationError{"override.extreme.threshold", "must be > 0"}
	}
	if p.Override.Extreme.MinEvidence < 1 {
		return ValidationError{"override.extreme.min_evidence", "must be >= 1"}
	}
	for i, pair := range p.Override.ForbiddenTransitions {
		field := fmt.Sprintf("override.forbidden_transitions[%d]", i)
		if !pair.From.Valid() || !pair.To.Valid() {
			return ValidationError{field, "unknown recommendation label"}
		}
		if pair.From == pair.To {
			return ValidationError{field, "from and to must differ"}
		}
		if pair.From == contracts.Hold || pair.To == contracts.Hold {
			return ValidationError{field, "HOLD cannot be part of a forbidden pair"}
		}
	}

	return nil
}

func validateRange(field string, r Range) error {
	if r.Min < 0 || r.Max > 1 || r.Min >= r.Max {
		return ValidationError{field, "must satisfy 0 <= min < max <= 1"}
	}
	return nil
}
