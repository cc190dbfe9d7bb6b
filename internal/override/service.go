package override

import (
	"context"
	"fmt"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/policy"
	"github.com/stratum-quant/stratum/pkg/logger"
)

// AuditStore persists applied overrides. The audit log is the sole I/O
// boundary of the override pipeline and runs only after all in-memory
// computation completes.
type AuditStore interface {
	Append(ctx context.Context, result contracts.OverrideResult) error
}

// Broadcaster pushes applied overrides to live subscribers.
type Broadcaster interface {
	BroadcastOverride(result contracts.OverrideResult)
}

// Service wires the override pipeline end to end: validate, apply,
// annotate with guardrails, persist, broadcast.
type Service struct {
	applier     *Applier
	guardrails  *Guardrails
	store       AuditStore
	broadcaster Broadcaster
	logger      *logger.Logger
}

// NewService creates the override service. store may be nil for
// dry-run use; broadcaster is optional.
func NewService(p policy.Policy, store AuditStore, log *logger.Logger) *Service {
	return &Service{
		applier:    NewApplier(p),
		guardrails: NewGuardrails(p.Override),
		store:      store,
		logger:     log,
	}
}

// SetBroadcaster attaches a live-update broadcaster.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Process runs one override through the full pipeline against a frozen
// universe snapshot. A *ValidationError aborts with no side effects. A
// persistence failure does not discard the computed result: the result
// is returned alongside the audit error so callers can surface both.
func (s *Service) Process(ctx context.Context, req contracts.OverrideRequest, frozen *contracts.UniverseSnapshot) (*contracts.OverrideResult, error) {
	base, ok := frozen.Find(req.Ticker)
	if !ok {
		return nil, fmt.Errorf("ticker %s not found in universe snapshot", req.Ticker)
	}

	result, err := s.applier.Apply(base, req, frozen)
	if err != nil {
		return nil, err
	}

	s.guardrails.Annotate(req, result)

	s.logger.WithFields(map[string]interface{}{
		"ticker":     result.Ticker,
		"type":       result.Type,
		"impact":     result.Impact,
		"extreme":    result.Extreme,
		"violations": len(result.Violations),
	}).Info("Override applied")

	if s.store != nil {
		if err := s.store.Append(ctx, *result); err != nil {
			// Boundary-local failure: the in-memory result stays valid.
			s.logger.WithError(err).WithField("ticker", result.Ticker).
				Error("Failed to persist override audit record")
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastOverride(*result)
	}

	return result, nil
}
