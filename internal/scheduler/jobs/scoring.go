package jobs

import (
	"context"
	"fmt"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/scoring"
	"github.com/stratum-quant/stratum/pkg/logger"
)

// RankingsBroadcaster pushes a fresh snapshot to live subscribers.
type RankingsBroadcaster interface {
	BroadcastRankings(snapshot *contracts.UniverseSnapshot)
}

// ScoringJob runs a full universe scoring pass: pull pillar scores
// from the provider, compute composites and percentiles, publish the
// frozen snapshot.
type ScoringJob struct {
	provider    scoring.PillarProvider
	engine      *scoring.Engine
	snapshots   *scoring.SnapshotStore
	broadcaster RankingsBroadcaster
	schedule    string
	logger      *logger.Logger
}

// NewScoringJob creates the scoring job. broadcaster may be nil.
func NewScoringJob(provider scoring.PillarProvider, engine *scoring.Engine, snapshots *scoring.SnapshotStore, broadcaster RankingsBroadcaster, schedule string, log *logger.Logger) *ScoringJob {
	return &ScoringJob{
		provider:    provider,
		engine:      engine,
		snapshots:   snapshots,
		broadcaster: broadcaster,
		schedule:    schedule,
		logger:      log,
	}
}

// Name returns the job name.
func (j *ScoringJob) Name() string {
	return "universe_scoring"
}

// Schedule returns the cron schedule expression.
func (j *ScoringJob) Schedule() string {
	return j.schedule
}

// Run executes one scoring pass.
func (j *ScoringJob) Run(ctx context.Context) error {
	input, err := j.provider.PillarScores(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pillar scores: %w", err)
	}
	if len(input.Entities) == 0 {
		return fmt.Errorf("pillar provider returned an empty universe")
	}

	snapshot := j.engine.CalculateForUniverse(input)
	j.snapshots.Put(ctx, snapshot)

	if j.broadcaster != nil {
		j.broadcaster.BroadcastRankings(snapshot)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":    snapshot.Date.Format("2006-01-02"),
		"scored":  len(snapshot.Results),
		"skipped": len(snapshot.Skipped),
	}).Info("Scoring run published")

	return nil
}
