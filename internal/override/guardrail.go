package override

import (
	"fmt"
	"math"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
)

// Guardrails runs the advisory policy checks on an applied override.
// Every check appends a violation message to the already-computed
// result; none of them blocks or rolls it back. Only pre-flight
// validation can reject a request outright.
type Guardrails struct {
	policy policy.OverridePolicy
}

// NewGuardrails creates a guardrail engine bound to an immutable policy.
func NewGuardrails(p policy.OverridePolicy) *Guardrails {
	return &Guardrails{policy: p}
}

// Annotate evaluates every guardrail against the result and writes the
// extreme flag and violation list onto it. The numeric fields of the
// result are never altered.
func (g *Guardrails) Annotate(req contracts.OverrideRequest, result *contracts.OverrideResult) {
	absImpact := math.Abs(result.Impact)

	// Per-type impact ceiling.
	if ceiling, ok := g.policy.ImpactCeilings.For(req.Type); ok && absImpact > ceiling {
		result.Violations = append(result.Violations,
			fmt.Sprintf("percentile impact %.2f exceeds the %.0fpt ceiling for %s overrides",
				absImpact, ceiling, req.Type))
	}

	// Extreme override: stricter conviction and evidence requirements.
	if absImpact > g.policy.Extreme.Threshold {
		result.Extreme = true
		if req.Conviction != contracts.ConvictionHigh {
			result.Violations = append(result.Violations,
				fmt.Sprintf("extreme override (impact %.2f > %.0f) requires HIGH conviction, got %s",
					absImpact, g.policy.Extreme.Threshold, req.Conviction))
		}
		if len(req.Evidence) < g.policy.Extreme.MinEvidence {
			result.Violations = append(result.Violations,
				fmt.Sprintf("extreme override requires at least %d evidence pieces, got %d",
					g.policy.Extreme.MinEvidence, len(req.Evidence)))
		}
	}

	// Forbidden recommendation transition without HIGH conviction.
	if g.policy.Forbidden(result.Base.Recommendation, result.Final.Recommendation) &&
		req.Conviction != contracts.ConvictionHigh {
		result.Violations = append(result.Violations,
			fmt.Sprintf("transition %s -> %s requires HIGH conviction, got %s",
				result.Base.Recommendation, result.Final.Recommendation, req.Conviction))
	}
}
