package override

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
)

// twentyEntityUniverse builds a frozen snapshot of 20 entities with
// composites 5, 10, ..., 100. The target (composite 55) carries real
// pillar values so weight overrides recompute exactly: with base
// weights 0.40/0.35/0.25, pillars 100/20/32 blend to 55, putting 10 of
// 20 composites strictly below it for a base percentile of 50.
func twentyEntityUniverse(t *testing.T, p policy.Policy) (*contracts.UniverseSnapshot, contracts.CompositeResult) {
	t.Helper()

	target := contracts.CompositeResult{
		Ticker:         "TGT",
		Fundamental:    100,
		Technical:      20,
		Sentiment:      32,
		Weights:        p.Weights.Base,
		Composite:      55,
		Percentile:     50,
		Recommendation: contracts.Hold,
	}

	snapshot := &contracts.UniverseSnapshot{
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PolicyHash: "testhash",
	}
	for i := 1; i <= 20; i++ {
		composite := float64(i * 5)
		if composite == 55 {
			snapshot.Results = append(snapshot.Results, target)
			continue
		}
		snapshot.Results = append(snapshot.Results, contracts.CompositeResult{
			Ticker:    fmt.Sprintf("E%02d", i),
			Weights:   p.Weights.Base,
			Composite: composite,
		})
	}

	return snapshot, target
}

func TestApply_NoneIsIdentity(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)

	result, err := NewApplier(p).Apply(base, contracts.OverrideRequest{
		Ticker: "TGT",
		Type:   contracts.OverrideNone,
	}, snapshot)
	require.NoError(t, err)

	// Bit-for-bit identical to the base.
	assert.Equal(t, base, result.Final)
	assert.Equal(t, 0.0, result.Impact)
	assert.False(t, result.RecommendationChanged)
}

func TestApply_WeightOverride(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)

	// 0.55/0.25/0.20 blends 100/20/32 to 66.4. With the target's old 55
	// replaced by 66.4, twelve of 20 composites sit strictly below it,
	// moving the percentile from 50 to 60.
	weights, err := contracts.NewWeightSet(0.55, 0.25, 0.20)
	require.NoError(t, err)

	req := contracts.NewWeightOverrideRequest("TGT", weights, validDoc(), contracts.ConvictionHigh)

	result, err := NewApplier(p).Apply(base, req, snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 66.4, result.Final.Composite, 0.001)
	assert.Equal(t, 60.0, result.Final.Percentile)
	assert.Equal(t, 10.0, result.Impact)
	assert.Equal(t, contracts.Hold, result.Final.Recommendation)
	assert.False(t, result.RecommendationChanged)

	// Fundamental and technical pillar values are never alterable.
	assert.Equal(t, base.Fundamental, result.Final.Fundamental)
	assert.Equal(t, base.Technical, result.Final.Technical)
	assert.Equal(t, base.Sentiment, result.Final.Sentiment)
}

func TestApply_SentimentOverride(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)

	req := contracts.NewSentimentOverrideRequest("TGT", 12, validDoc(), contracts.ConvictionMedium)

	result, err := NewApplier(p).Apply(base, req, snapshot)
	require.NoError(t, err)

	// Sentiment 32+12=44; composite 40 + 7 + 11 = 58. Moving from 55 to
	// 58 passes no other entity, so the percentile holds at 50.
	assert.Equal(t, 44.0, result.Final.Sentiment)
	assert.InDelta(t, 58.0, result.Final.Composite, 0.001)
	assert.Equal(t, 50.0, result.Final.Percentile)
	assert.Equal(t, 0.0, result.Impact)
}

func TestApply_SentimentClampedToScale(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)
	base.Sentiment = 95
	snapshot.Results[10] = base // keep the snapshot's copy in sync

	req := contracts.NewSentimentOverrideRequest("TGT", 10, validDoc(), contracts.ConvictionLow)

	result, err := NewApplier(p).Apply(base, req, snapshot)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Final.Sentiment)
}

func TestApply_RevalidatesRequest(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)

	// WEIGHT type with no payload and no documentation.
	req := contracts.OverrideRequest{Ticker: "TGT", Type: contracts.OverrideWeight}

	result, err := NewApplier(p).Apply(base, req, snapshot)
	require.Error(t, err)
	assert.Nil(t, result)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Violations), 4)
}

func TestApply_DoesNotMutateInputs(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)

	originalComposites := snapshot.Composites()
	originalBase := base

	weights, err := contracts.NewWeightSet(0.55, 0.25, 0.20)
	require.NoError(t, err)
	req := contracts.NewWeightOverrideRequest("TGT", weights, validDoc(), contracts.ConvictionHigh)

	_, err = NewApplier(p).Apply(base, req, snapshot)
	require.NoError(t, err)

	assert.Equal(t, originalBase, base)
	assert.Equal(t, originalComposites, snapshot.Composites())
}

func TestApply_TickerMismatch(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)

	req := contracts.OverrideRequest{Ticker: "E01", Type: contracts.OverrideNone}

	_, err := NewApplier(p).Apply(base, req, snapshot)
	assert.Error(t, err)
}

func TestApply_TickerNotInUniverse(t *testing.T) {
	p := policy.Default()
	_, base := twentyEntityUniverse(t, p)
	base.Ticker = "GHOST"

	empty := &contracts.UniverseSnapshot{}

	req := contracts.OverrideRequest{Ticker: "GHOST", Type: contracts.OverrideNone}

	_, err := NewApplier(p).Apply(base, req, empty)
	assert.Error(t, err)
}

func TestApply_StampsMetadata(t *testing.T) {
	p := policy.Default()
	snapshot, base := twentyEntityUniverse(t, p)

	req := contracts.NewSentimentOverrideRequest("TGT", 3, validDoc(), contracts.ConvictionLow)
	req.Evidence = []contracts.Evidence{{Source: "10-K", Description: "note 12"}}

	result, err := NewApplier(p).Apply(base, req, snapshot)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "testhash", result.PolicyHash)
	assert.Equal(t, 1, result.EvidenceCount)
	assert.Equal(t, contracts.OverrideSentiment, result.Type)
	assert.Equal(t, contracts.ConvictionLow, result.Conviction)
	assert.False(t, result.AppliedAt.IsZero())
}
