package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileRank(t *testing.T) {
	universe := []float64{90, 80, 70, 60, 50}

	tests := []struct {
		name     string
		value    float64
		wantRank float64
		wantOK   bool
	}{
		{"middle value", 70, 40, true},
		{"top value", 90, 80, true},
		{"bottom value", 50, 0, true},
		{"above all", 95, 100, true},
		{"below all", 10, 0, true},
		{"between members", 75, 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, ok := PercentileRank(tt.value, universe, false)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRank, rank)
		})
	}
}

func TestPercentileRank_RangeInvariant(t *testing.T) {
	universe := []float64{13.5, 2, 87.25, 41, 41, 99.9, 0.01}

	for _, v := range universe {
		rank, ok := PercentileRank(v, universe, false)
		require.True(t, ok)
		assert.GreaterOrEqual(t, rank, 0.0)
		assert.LessOrEqual(t, rank, 100.0)
	}
}

func TestPercentileRank_UniqueMinimumIsZero(t *testing.T) {
	universe := []float64{5, 9, 3, 12, 44}

	rank, ok := PercentileRank(3, universe, false)
	require.True(t, ok)
	assert.Equal(t, 0.0, rank)
}

func TestPercentileRank_CountsPartitionUniverse(t *testing.T) {
	universe := []float64{10, 20, 20, 30, 40, 20}
	value := 20.0

	below, above, equal := 0, 0, 0
	for _, v := range universe {
		switch {
		case v < value:
			below++
		case v > value:
			above++
		default:
			equal++
		}
	}
	assert.Equal(t, len(universe), below+above+equal)

	// Ties earn no fractional credit: only strictly-below counts.
	rank, ok := PercentileRank(value, universe, false)
	require.True(t, ok)
	assert.Equal(t, round2(float64(below)/float64(len(universe))*100), rank)
}

func TestPercentileRank_MissingValue(t *testing.T) {
	_, ok := PercentileRank(math.NaN(), []float64{1, 2, 3}, false)
	assert.False(t, ok)
}

func TestPercentileRank_EmptyUniverse(t *testing.T) {
	_, ok := PercentileRank(50, nil, false)
	assert.False(t, ok)

	// A universe of only NaN entries is empty after filtering.
	_, ok = PercentileRank(50, []float64{math.NaN(), math.NaN()}, false)
	assert.False(t, ok)
}

func TestPercentileRank_NaNEntriesFiltered(t *testing.T) {
	universe := []float64{90, math.NaN(), 70, math.NaN(), 50}

	// Effective universe is {90, 70, 50}; one value strictly below 70.
	rank, ok := PercentileRank(70, universe, false)
	require.True(t, ok)
	assert.InDelta(t, 33.33, rank, 0.001)
}

func TestPercentileRank_SelfExclusion(t *testing.T) {
	t.Run("removes all equal occurrences", func(t *testing.T) {
		// Both 70s drop out, not just one: remaining {90, 50}.
		universe := []float64{90, 70, 70, 50}

		rank, ok := PercentileRank(70, universe, true)
		require.True(t, ok)
		assert.Equal(t, 50.0, rank)
	})

	t.Run("neutral when self was whole universe", func(t *testing.T) {
		rank, ok := PercentileRank(70, []float64{70, 70}, true)
		require.True(t, ok)
		assert.Equal(t, 50.0, rank)
	})

	t.Run("single element universe", func(t *testing.T) {
		rank, ok := PercentileRank(70, []float64{70}, true)
		require.True(t, ok)
		assert.Equal(t, 50.0, rank)
	})
}

func TestPercentileRankInverted(t *testing.T) {
	universe := []float64{1.0, 2.0, 3.0, 4.0}

	// Lower is better: 1.0 beats the three larger values.
	rank, ok := PercentileRankInverted(1.0, universe, false)
	require.True(t, ok)
	assert.Equal(t, 75.0, rank)

	rank, ok = PercentileRankInverted(4.0, universe, false)
	require.True(t, ok)
	assert.Equal(t, 0.0, rank)
}

func TestRankUniverse(t *testing.T) {
	values := []float64{10, 20, 30}

	ranks := RankUniverse(values, false)
	require.Len(t, ranks, 3)

	// Each value ranked against the other two.
	assert.Equal(t, 0.0, ranks[0])
	assert.Equal(t, 50.0, ranks[1])
	assert.Equal(t, 100.0, ranks[2])
}

func TestRankUniverse_Inverted(t *testing.T) {
	values := []float64{10, 20, 30}

	ranks := RankUniverse(values, true)
	require.Len(t, ranks, 3)

	assert.Equal(t, 100.0, ranks[0])
	assert.Equal(t, 50.0, ranks[1])
	assert.Equal(t, 0.0, ranks[2])
}

func TestRankUniverse_MissingValues(t *testing.T) {
	values := []float64{10, math.NaN(), 30}

	ranks := RankUniverse(values, false)
	require.Len(t, ranks, 3)

	assert.Equal(t, 0.0, ranks[0])
	assert.True(t, math.IsNaN(ranks[1]))
	assert.Equal(t, 100.0, ranks[2])
}

func TestRankUniverse_Rounding(t *testing.T) {
	// 7 values: each rank is a multiple of 100/6, rounded to 2 decimals.
	values := []float64{1, 2, 3, 4, 5, 6, 7}

	ranks := RankUniverse(values, false)
	assert.InDelta(t, 16.67, ranks[1], 0.001)
	assert.InDelta(t, 83.33, ranks[5], 0.001)
}
