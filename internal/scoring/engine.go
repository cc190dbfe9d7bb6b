// Package scoring turns per-entity pillar scores into ranked composite
// results: weighted composite, percentile within the universe, and a
// recommendation bucket from the policy's threshold bands.
package scoring

import (
	"fmt"
	"sort"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
	"github.com/stratum-quant/stratum/internal/ranking"
	"github.com/stratum-quant/stratum/pkg/logger"
)

// ComputationError marks an entity that could not be scored. It is
// entity-local: the entity is excluded from the run and the rest of the
// universe proceeds unaffected.
type ComputationError struct {
	Ticker string
	Reason string
}

func (e ComputationError) Error() string {
	return fmt.Sprintf("entity %s excluded: %s", e.Ticker, e.Reason)
}

// Composite blends the three pillar scores under the given weights.
// The blend goes through the shared aggregation primitive so every
// level of the pipeline uses the identical rule.
func Composite(fundamental, technical, sentiment float64, w contracts.WeightSet) float64 {
	// All three pillars are present by the time an entity is scored, so
	// nothing gets dropped; the primitive reduces to the weighted mean.
	composite, _ := ranking.AveragePercentileRanks(
		[]float64{fundamental, technical, sentiment},
		[]float64{w.Fundamental, w.Technical, w.Sentiment},
	)
	return composite
}

// Engine is the composite scoring engine for one policy. It is a
// pure-function pipeline over its inputs; the only side effect is
// logging excluded entities.
type Engine struct {
	policy     policy.Policy
	policyHash string
	logger     *logger.Logger
}

// NewEngine creates an engine bound to an immutable policy.
func NewEngine(p policy.Policy, log *logger.Logger) *Engine {
	hash, err := policy.Hash(&p)
	if err != nil {
		hash = ""
	}
	return &Engine{
		policy:     p,
		policyHash: hash,
		logger:     log,
	}
}

// Policy returns the engine's policy.
func (e *Engine) Policy() policy.Policy {
	return e.policy
}

// PolicyHash returns the SHA256 hash of the engine's policy.
func (e *Engine) PolicyHash() string {
	return e.policyHash
}

// scoreEntity resolves one entity's pillar values, or reports why it
// cannot be scored. Entities missing any pillar are excluded entirely,
// never given a filler value.
func (e *Engine) scoreEntity(entity contracts.EntityScores, w contracts.WeightSet) (contracts.CompositeResult, error) {
	if entity.Ticker == "" {
		return contracts.CompositeResult{}, ComputationError{Ticker: entity.Ticker, Reason: "empty ticker"}
	}
	if !entity.Pillars.Complete() {
		return contracts.CompositeResult{}, ComputationError{Ticker: entity.Ticker, Reason: "missing pillar score"}
	}
	if err := w.Validate(); err != nil {
		return contracts.CompositeResult{}, ComputationError{Ticker: entity.Ticker, Reason: err.Error()}
	}

	f := *entity.Pillars.Fundamental
	te := *entity.Pillars.Technical
	s := *entity.Pillars.Sentiment

	return contracts.CompositeResult{
		Ticker:      entity.Ticker,
		Fundamental: f,
		Technical:   te,
		Sentiment:   s,
		Weights:     w,
		Composite:   Composite(f, te, s, w),
	}, nil
}

// CalculateForUniverse scores every entity in the input against the
// policy's base weights, ranks composites within the run and maps each
// percentile to its recommendation bucket. Results are sorted
// descending by percentile; ties keep their input-relative order.
// Identical input produces identical output.
func (e *Engine) CalculateForUniverse(input contracts.ScoreInput) *contracts.UniverseSnapshot {
	snapshot := &contracts.UniverseSnapshot{
		Date:       input.Date,
		PolicyHash: e.policyHash,
		Results:    make([]contracts.CompositeResult, 0, len(input.Entities)),
	}

	for _, entity := range input.Entities {
		result, err := e.scoreEntity(entity, e.policy.Weights.Base)
		if err != nil {
			// Entity-local failure: log, exclude, continue.
			e.logger.WithFields(map[string]interface{}{
				"ticker": entity.Ticker,
				"reason": err.Error(),
			}).Warn("Entity excluded from scoring run")
			snapshot.Skipped = append(snapshot.Skipped, entity.Ticker)
			continue
		}
		snapshot.Results = append(snapshot.Results, result)
	}

	// Rank each composite against the full universe of composites. The
	// entity's own score legitimately belongs to the ranked universe,
	// so there is no self-exclusion here, unlike per-metric statistics.
	composites := snapshot.Composites()
	for i := range snapshot.Results {
		percentile, ok := ranking.PercentileRank(snapshot.Results[i].Composite, composites, false)
		if !ok {
			// Cannot happen for a scored entity in a non-empty universe.
			continue
		}
		snapshot.Results[i].Percentile = percentile
		snapshot.Results[i].Recommendation = e.policy.Recommendation.Bucket(percentile)
	}

	sort.SliceStable(snapshot.Results, func(i, j int) bool {
		return snapshot.Results[i].Percentile > snapshot.Results[j].Percentile
	})

	e.logger.WithFields(map[string]interface{}{
		"scored":  len(snapshot.Results),
		"skipped": len(snapshot.Skipped),
	}).Info("Universe scoring completed")

	return snapshot
}
