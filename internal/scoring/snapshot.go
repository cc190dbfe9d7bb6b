package scoring

import (
	"context"
	"sync"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/pkg/logger"
	"github.com/stratum-quant/stratum/pkg/redis"
)

// SnapshotStore holds the latest frozen universe snapshot. Reads and
// writes go through memory; when a Redis cache is attached, writes are
// mirrored to it and a cold start reads through it. Cache failures are
// logged and never surface to callers.
type SnapshotStore struct {
	mu     sync.RWMutex
	latest *contracts.UniverseSnapshot

	cache  *redis.Cache
	logger *logger.Logger
}

// NewSnapshotStore creates a snapshot store. cache may be nil.
func NewSnapshotStore(cache *redis.Cache, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		cache:  cache,
		logger: log,
	}
}

// Put replaces the current snapshot.
func (s *SnapshotStore) Put(ctx context.Context, snapshot *contracts.UniverseSnapshot) {
	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Set(ctx, redis.RankingsKey("latest"), snapshot, redis.TTLDaily); err != nil {
			s.logger.WithError(err).Warn("Failed to cache universe snapshot")
		}
	}
}

// Latest returns the current snapshot, or nil when no scoring run has
// completed yet.
func (s *SnapshotStore) Latest(ctx context.Context) *contracts.UniverseSnapshot {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest != nil {
		return latest
	}

	if s.cache != nil {
		var cached contracts.UniverseSnapshot
		found, err := s.cache.Get(ctx, redis.RankingsKey("latest"), &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to read cached universe snapshot")
			return nil
		}
		if found {
			s.mu.Lock()
			s.latest = &cached
			s.mu.Unlock()
			return &cached
		}
	}

	return nil
}
