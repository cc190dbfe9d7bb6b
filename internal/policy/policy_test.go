package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratum-quant/stratum/internal/contracts"
)

func TestDefaultIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, Validate(&p))
}

func TestBucket(t *testing.T) {
	p := Default()

	tests := []struct {
		percentile float64
		want       contracts.Recommendation
	}{
		{100, contracts.StrongBuy},
		{85.0, contracts.StrongBuy},
		{84.999, contracts.Buy},
		{70.0, contracts.Buy},
		{69.999, contracts.Hold},
		{30.0, contracts.Hold},
		{29.999, contracts.Sell},
		{16.0, contracts.Sell},
		{15.999, contracts.StrongSell},
		{0, contracts.StrongSell},
	}

	for _, tt := range tests {
		got := p.Recommendation.Bucket(tt.percentile)
		assert.Equal(t, tt.want, got, "percentile %v", tt.percentile)
	}
}

func TestForbidden(t *testing.T) {
	p := Default()

	assert.True(t, p.Override.Forbidden(contracts.StrongSell, contracts.StrongBuy))
	assert.True(t, p.Override.Forbidden(contracts.Buy, contracts.Sell))
	assert.False(t, p.Override.Forbidden(contracts.Hold, contracts.Buy))
	assert.False(t, p.Override.Forbidden(contracts.Sell, contracts.Hold))
	assert.False(t, p.Override.Forbidden(contracts.Sell, contracts.StrongSell))
}

func TestImpactCeilingsFor(t *testing.T) {
	c := Default().Override.ImpactCeilings

	ceiling, ok := c.For(contracts.OverrideWeight)
	require.True(t, ok)
	assert.Equal(t, 10.0, ceiling)

	ceiling, ok = c.For(contracts.OverrideSentiment)
	require.True(t, ok)
	assert.Equal(t, 3.0, ceiling)

	ceiling, ok = c.For(contracts.OverrideBoth)
	require.True(t, ok)
	assert.Equal(t, 12.0, ceiling)

	_, ok = c.For(contracts.OverrideNone)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Policy)
		field  string
	}{
		{
			name:   "missing policy id",
			mutate: func(p *Policy) { p.Meta.PolicyID = "" },
			field:  "meta.policy_id",
		},
		{
			name:   "base weights do not sum to one",
			mutate: func(p *Policy) { p.Weights.Base.Fundamental = 0.50 },
			field:  "weights.base",
		},
		{
			name:   "base weight outside its range",
			mutate: func(p *Policy) { p.Weights.Base = contracts.WeightSet{Fundamental: 0.60, Technical: 0.25, Sentiment: 0.15} },
			field:  "weights.base.fundamental",
		},
		{
			name:   "inverted range",
			mutate: func(p *Policy) { p.Weights.Ranges.Technical = Range{Min: 0.5, Max: 0.3} },
			field:  "weights.ranges.technical",
		},
		{
			name:   "bands out of order",
			mutate: func(p *Policy) { p.Recommendation.Bands[1].Min = 90 },
			field:  "recommendation.bands[1]",
		},
		{
			name:   "last band not at zero",
			mutate: func(p *Policy) { p.Recommendation.Bands[4].Min = 5 },
			field:  "recommendation.bands",
		},
		{
			name:   "zero sentiment cap",
			mutate: func(p *Policy) { p.Override.SentimentCap = 0 },
			field:  "override.sentiment_cap",
		},
		{
			name:   "zero extreme evidence",
			mutate: func(p *Policy) { p.Override.Extreme.MinEvidence = 0 },
			field:  "override.extreme.min_evidence",
		},
		{
			name: "hold in forbidden pair",
			mutate: func(p *Policy) {
				p.Override.ForbiddenTransitions = append(p.Override.ForbiddenTransitions,
					TransitionPair{From: contracts.Hold, To: contracts.Buy})
			},
			field: "override.forbidden_transitions[8]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)

			err := Validate(&p)
			require.Error(t, err)

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "policy.yaml")

	p, raw, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NotEmpty(t, raw)

	assert.Equal(t, "test_policy", p.Meta.PolicyID)
	assert.Equal(t, 0.40, p.Weights.Base.Fundamental)
	assert.Len(t, p.Recommendation.Bands, 5)
	assert.Equal(t, 15.0, p.Override.SentimentCap)
	assert.Len(t, p.Override.ForbiddenTransitions, 8)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")

	bad := `
meta:
  policy_id: x
  version: "1"
  typo_field: true
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestHashIsDeterministic(t *testing.T) {
	p := Default()

	h1, err := Hash(&p)
	require.NoError(t, err)

	h2, err := Hash(&p)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	// Any edit changes the hash.
	p.Override.SentimentCap = 20
	h3, err := Hash(&p)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestNewDecisionSnapshot(t *testing.T) {
	p := Default()

	snap, err := NewDecisionSnapshot(&p, []byte("yaml"))
	require.NoError(t, err)

	assert.Equal(t, "default", snap.PolicyID)
	assert.NotEmpty(t, snap.PolicyHash)
	assert.Equal(t, "yaml", snap.PolicyYAML)
	assert.False(t, snap.CreatedAt.IsZero())
}
