// Package override implements the human-override pipeline: pre-flight
// validation, hypothetical re-scoring against a frozen universe, and
// advisory guardrails. Validation is the only stage that can reject a
// request; guardrails annotate, never block.
package override

import (
	"fmt"
	"math"
	"strings"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
)

// ValidationError is the terminal pre-flight failure for a malformed
// request. It carries every violated rule, not just the first; no
// computation or side effect happens before it is returned.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("override request invalid: %s", strings.Join(e.Violations, "; "))
}

// Validator pre-flight checks override requests against the policy.
type Validator struct {
	policy policy.Policy
}

// NewValidator creates a validator bound to an immutable policy.
func NewValidator(p policy.Policy) *Validator {
	return &Validator{policy: p}
}

// Validate returns every rule the request violates; an empty slice
// means the request is valid. It is a pure function and collects all
// violations rather than failing fast.
func (v *Validator) Validate(req contracts.OverrideRequest) []string {
	var violations []string

	if strings.TrimSpace(req.Ticker) == "" {
		violations = append(violations, "ticker is required")
	}

	if !req.Type.Valid() {
		violations = append(violations, fmt.Sprintf("unknown override type %q", req.Type))
		return violations
	}

	// Payloads must match the declared type exactly.
	if req.Type.IncludesWeight() && req.Weight == nil {
		violations = append(violations, fmt.Sprintf("%s override requires a weight payload", req.Type))
	}
	if !req.Type.IncludesWeight() && req.Weight != nil {
		violations = append(violations, fmt.Sprintf("%s override must not carry a weight payload", req.Type))
	}
	if req.Type.IncludesSentiment() && req.Sentiment == nil {
		violations = append(violations, fmt.Sprintf("%s override requires a sentiment payload", req.Type))
	}
	if !req.Type.IncludesSentiment() && req.Sentiment != nil {
		violations = append(violations, fmt.Sprintf("%s override must not carry a sentiment payload", req.Type))
	}

	if req.Type != contracts.OverrideNone {
		violations = append(violations, v.validateDocumentation(req)...)
	}

	if req.Weight != nil {
		violations = append(violations, v.validateWeights(req.Weight.Weights)...)
	}

	if req.Sentiment != nil {
		limit := v.policy.Override.SentimentCap
		if math.Abs(req.Sentiment.Adjustment) > limit {
			violations = append(violations,
				fmt.Sprintf("sentiment adjustment %.2f exceeds cap of ±%.0f", req.Sentiment.Adjustment, limit))
		}
	}

	return violations
}

// validateDocumentation checks the mandatory narrative for non-NONE
// requests: all three fields non-empty after trimming, plus a known
// conviction level.
func (v *Validator) validateDocumentation(req contracts.OverrideRequest) []string {
	var violations []string

	doc := req.Documentation
	if strings.TrimSpace(doc.ModelMisses) == "" {
		violations = append(violations, "documentation must state what the model misses")
	}
	if strings.TrimSpace(doc.WhyMoreAccurate) == "" {
		violations = append(violations, "documentation must state why the override is more accurate")
	}
	if strings.TrimSpace(doc.Falsification) == "" {
		violations = append(violations, "documentation must state what would falsify the override")
	}
	if !req.Conviction.Valid() {
		violations = append(violations, fmt.Sprintf("unknown conviction level %q", req.Conviction))
	}

	return violations
}

// validateWeights checks each weight against its pillar's permissible
// range and the sum invariant.
func (v *Validator) validateWeights(w contracts.WeightSet) []string {
	var violations []string
	ranges := v.policy.Weights.Ranges

	if !ranges.Fundamental.Contains(w.Fundamental) {
		violations = append(violations,
			fmt.Sprintf("fundamental weight %.3f outside permissible range [%.2f, %.2f]",
				w.Fundamental, ranges.Fundamental.Min, ranges.Fundamental.Max))
	}
	if !ranges.Technical.Contains(w.Technical) {
		violations = append(violations,
			fmt.Sprintf("technical weight %.3f outside permissible range [%.2f, %.2f]",
				w.Technical, ranges.Technical.Min, ranges.Technical.Max))
	}
	if !ranges.Sentiment.Contains(w.Sentiment) {
		violations = append(violations,
			fmt.Sprintf("sentiment weight %.3f outside permissible range [%.2f, %.2f]",
				w.Sentiment, ranges.Sentiment.Min, ranges.Sentiment.Max))
	}
	if err := w.Validate(); err != nil {
		violations = append(violations, err.Error())
	}

	return violations
}
