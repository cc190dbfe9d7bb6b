package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
	"github.com/stratum-quant/stratum/internal/scoring"
	"github.com/stratum-quant/stratum/pkg/logger"
)

type staticProvider struct {
	input contracts.ScoreInput
	err   error
}

func (p *staticProvider) PillarScores(context.Context) (contracts.ScoreInput, error) {
	return p.input, p.err
}

type captureBroadcaster struct {
	snapshots []*contracts.UniverseSnapshot
}

func (b *captureBroadcaster) BroadcastRankings(snapshot *contracts.UniverseSnapshot) {
	b.snapshots = append(b.snapshots, snapshot)
}

func TestScoringJob_Run(t *testing.T) {
	log := logger.Nop()
	provider := &staticProvider{input: contracts.ScoreInput{
		Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Entities: []contracts.EntityScores{
			{Ticker: "AAA", Pillars: contracts.PillarSet{Fundamental: contracts.Score(80), Technical: contracts.Score(70), Sentiment: contracts.Score(60)}},
			{Ticker: "BBB", Pillars: contracts.PillarSet{Fundamental: contracts.Score(40), Technical: contracts.Score(30), Sentiment: contracts.Score(20)}},
		},
	}}

	snapshots := scoring.NewSnapshotStore(nil, log)
	broadcaster := &captureBroadcaster{}
	job := NewScoringJob(provider, scoring.NewEngine(policy.Default(), log), snapshots, broadcaster, "@daily", log)

	assert.Equal(t, "universe_scoring", job.Name())
	assert.Equal(t, "@daily", job.Schedule())

	require.NoError(t, job.Run(context.Background()))

	snapshot := snapshots.Latest(context.Background())
	require.NotNil(t, snapshot)
	assert.Equal(t, 2, snapshot.Count())

	require.Len(t, broadcaster.snapshots, 1)
	assert.Equal(t, snapshot, broadcaster.snapshots[0])
}

func TestScoringJob_ProviderFailure(t *testing.T) {
	log := logger.Nop()
	provider := &staticProvider{err: errors.New("feed unavailable")}
	snapshots := scoring.NewSnapshotStore(nil, log)
	job := NewScoringJob(provider, scoring.NewEngine(policy.Default(), log), snapshots, nil, "@daily", log)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, snapshots.Latest(context.Background()))
}

func TestScoringJob_EmptyUniverse(t *testing.T) {
	log := logger.Nop()
	provider := &staticProvider{input: contracts.ScoreInput{}}
	job := NewScoringJob(provider, scoring.NewEngine(policy.Default(), log), scoring.NewSnapshotStore(nil, log), nil, "@daily", log)

	assert.Error(t, job.Run(context.Background()))
}
