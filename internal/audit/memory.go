package audit

import (
	"context"
	"sync"

	"github.com/stratum-quant/stratum/internal/contracts"
)

// MemoryStore is an in-process, append-only override log. It backs
// dry runs and tests where no database is configured. Records are held
// in application order; nothing is ever updated or removed.
type MemoryStore struct {
	mu      sync.RWMutex
	records []contracts.OverrideResult
}

// NewMemoryStore creates an empty in-memory override log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a record to the log.
func (s *MemoryStore) Append(_ context.Context, result contracts.OverrideResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, result)
	return nil
}

// Query returns matching records in application order.
func (s *MemoryStore) Query(_ context.Context, q Query) ([]contracts.OverrideResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contracts.OverrideResult, 0)
	for _, r := range s.records {
		if !q.matches(r) {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Stats aggregates the matching records.
func (s *MemoryStore) Stats(ctx context.Context, q Query) (Stats, error) {
	records, err := s.Query(ctx, q)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(records), nil
}
