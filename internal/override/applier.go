package override

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
	"github.com/stratum-quant/stratum/internal/ranking"
	"github.com/stratum-quant/stratum/internal/scoring"
)

// Applier recomputes one entity's composite and percentile under a
// hypothetical adjustment, against a frozen copy of the rest of the
// universe. It never mutates the base result or the snapshot.
type Applier struct {
	policy    policy.Policy
	validator *Validator
}

// NewApplier creates an applier bound to an immutable policy.
func NewApplier(p policy.Policy) *Applier {
	return &Applier{
		policy:    p,
		validator: NewValidator(p),
	}
}

// Apply validates the request and, if valid, recomputes the entity's
// result with the overridden inputs. The returned OverrideResult does
// not yet carry guardrail annotations; Guardrails.Annotate adds them.
//
// On any validation violation it returns *ValidationError with the
// full aggregated list and no other effect. Weights and sentiment are
// the only levers: fundamental and technical pillar values pass
// through untouched.
func (a *Applier) Apply(base contracts.CompositeResult, req contracts.OverrideRequest, frozen *contracts.UniverseSnapshot) (*contracts.OverrideResult, error) {
	// Re-validate: a hard failure, distinct from guardrail warnings.
	if violations := a.validator.Validate(req); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if req.Ticker != base.Ticker {
		return nil, fmt.Errorf("request ticker %s does not match base result %s", req.Ticker, base.Ticker)
	}
	if _, ok := frozen.Find(base.Ticker); !ok {
		return nil, fmt.Errorf("ticker %s not in frozen universe", base.Ticker)
	}

	// Effective weights.
	weights := base.Weights
	if req.Type.IncludesWeight() {
		weights = req.Weight.Weights
	}

	// Effective sentiment, clamped to the pillar scale.
	sentiment := base.Sentiment
	if req.Type.IncludesSentiment() {
		sentiment = clamp(base.Sentiment+req.Sentiment.Adjustment, 0, 100)
	}

	composite := scoring.Composite(base.Fundamental, base.Technical, sentiment, weights)

	// Substitute this entity's composite into a copy of the frozen
	// universe; every other entity's composite stays fixed, and the
	// canonical snapshot is never touched.
	universe := frozen.Composites()
	for i, r := range frozen.Results {
		if r.Ticker == base.Ticker {
			universe[i] = composite
			break
		}
	}

	percentile, ok := ranking.PercentileRank(composite, universe, false)
	if !ok {
		return nil, fmt.Errorf("failed to rank overridden composite for %s", base.Ticker)
	}

	final := contracts.CompositeResult{
		Ticker:         base.Ticker,
		Fundamental:    base.Fundamental,
		Technical:      base.Technical,
		Sentiment:      sentiment,
		Weights:        weights,
		Composite:      composite,
		Percentile:     percentile,
		Recommendation: a.policy.Recommendation.Bucket(percentile),
	}

	return &contracts.OverrideResult{
		ID:                    uuid.NewString(),
		Ticker:                base.Ticker,
		Type:                  req.Type,
		Conviction:            req.Conviction,
		Base:                  base,
		Final:                 final,
		Impact:                final.Percentile - base.Percentile,
		RecommendationChanged: final.Recommendation != base.Recommendation,
		EvidenceCount:         len(req.Evidence),
		PolicyHash:            frozen.PolicyHash,
		AppliedAt:             time.Now().UTC(),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
