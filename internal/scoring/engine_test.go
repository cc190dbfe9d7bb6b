package scoring

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
	"github.com/stratum-quant/stratum/pkg/logger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(policy.Default(), logger.Nop())
}

// flatEntity builds an entity whose three pillars all hold v, so its
// composite equals v under any valid weight set.
func flatEntity(ticker string, v float64) contracts.EntityScores {
	return contracts.EntityScores{
		Ticker: ticker,
		Pillars: contracts.PillarSet{
			Fundamental: contracts.Score(v),
			Technical:   contracts.Score(v),
			Sentiment:   contracts.Score(v),
		},
	}
}

func TestComposite(t *testing.T) {
	w, err := contracts.NewWeightSet(0.40, 0.35, 0.25)
	require.NoError(t, err)

	got := Composite(80, 60, 40, w)
	want := 80*0.40 + 60*0.35 + 40*0.25
	assert.InDelta(t, want, got, 0.01)
}

func TestCalculateForUniverse(t *testing.T) {
	engine := newTestEngine(t)

	input := contracts.ScoreInput{
		Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Entities: []contracts.EntityScores{
			flatEntity("AAA", 90),
			flatEntity("BBB", 80),
			flatEntity("CCC", 70),
			flatEntity("DDD", 60),
			flatEntity("EEE", 50),
		},
	}

	snapshot := engine.CalculateForUniverse(input)
	require.Equal(t, 5, snapshot.Count())
	assert.Empty(t, snapshot.Skipped)
	assert.NotEmpty(t, snapshot.PolicyHash)

	// Sorted descending by percentile.
	for i := 1; i < len(snapshot.Results); i++ {
		assert.GreaterOrEqual(t, snapshot.Results[i-1].Percentile, snapshot.Results[i].Percentile)
	}

	// Strictly-below counting: 2 of 5 composites sit below 70.
	ccc, ok := snapshot.Find("CCC")
	require.True(t, ok)
	assert.Equal(t, 70.0, ccc.Composite)
	assert.Equal(t, 40.0, ccc.Percentile)
	assert.Equal(t, contracts.Hold, ccc.Recommendation)

	top, ok := snapshot.Find("AAA")
	require.True(t, ok)
	assert.Equal(t, 80.0, top.Percentile)
	assert.Equal(t, contracts.Buy, top.Recommendation)

	bottom, ok := snapshot.Find("EEE")
	require.True(t, ok)
	assert.Equal(t, 0.0, bottom.Percentile)
	assert.Equal(t, contracts.StrongSell, bottom.Recommendation)
}

func TestCalculateForUniverse_ExcludesIncompleteEntities(t *testing.T) {
	engine := newTestEngine(t)

	incomplete := contracts.EntityScores{
		Ticker: "MISS",
		Pillars: contracts.PillarSet{
			Fundamental: contracts.Score(75),
			Technical:   contracts.Score(60),
			// sentiment absent
		},
	}

	input := contracts.ScoreInput{
		Entities: []contracts.EntityScores{
			flatEntity("AAA", 80),
			incomplete,
			flatEntity("BBB", 40),
		},
	}

	snapshot := engine.CalculateForUniverse(input)
	assert.Equal(t, 2, snapshot.Count())
	assert.Equal(t, []string{"MISS"}, snapshot.Skipped)

	_, found := snapshot.Find("MISS")
	assert.False(t, found)

	// The surviving entities rank against a universe of two.
	aaa, _ := snapshot.Find("AAA")
	assert.Equal(t, 50.0, aaa.Percentile)
}

func TestCalculateForUniverse_Deterministic(t *testing.T) {
	engine := newTestEngine(t)

	input := contracts.ScoreInput{
		Entities: []contracts.EntityScores{
			flatEntity("AAA", 62.5),
			flatEntity("BBB", 62.5), // tie with AAA
			flatEntity("CCC", 88),
			flatEntity("DDD", 12),
		},
	}

	first := engine.CalculateForUniverse(input)
	second := engine.CalculateForUniverse(input)

	assert.Equal(t, first, second)
}

func TestCalculateForUniverse_SingleEntity(t *testing.T) {
	engine := newTestEngine(t)

	snapshot := engine.CalculateForUniverse(contracts.ScoreInput{
		Entities: []contracts.EntityScores{flatEntity("ONLY", 55)},
	})

	require.Equal(t, 1, snapshot.Count())
	// Nothing below it in a universe of one.
	assert.Equal(t, 0.0, snapshot.Results[0].Percentile)
	assert.Equal(t, contracts.StrongSell, snapshot.Results[0].Recommendation)
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scores.json")

	content := `{
		"date": "2026-03-02T00:00:00Z",
		"entities": [
			{"ticker": "AAA", "pillars": {"fundamental": 80, "technical": 70, "sentiment": 60}},
			{"ticker": "BBB", "pillars": {"fundamental": 50, "technical": 40}}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	input, err := NewFileProvider(path).PillarScores(context.Background())
	require.NoError(t, err)

	require.Len(t, input.Entities, 2)
	assert.True(t, input.Entities[0].Pillars.Complete())
	assert.False(t, input.Entities[1].Pillars.Complete())
	assert.Equal(t, 80.0, *input.Entities[0].Pillars.Fundamental)
}

func TestFileProvider_MissingFile(t *testing.T) {
	_, err := NewFileProvider("/nonexistent/scores.json").PillarScores(context.Background())
	assert.Error(t, err)
}
