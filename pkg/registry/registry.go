// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry holds the registered skill instances and composes
// validation, budget enforcement, confidence scoring and HITL routing into
// a single Invoke operation. The registry is the only component the outer
// orchestrator talks to.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/governor"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/routing"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// Registry dispatches skill invocations. Skill registration is write-once:
// descriptors are immutable after Register and the skill set is expected to
// be stable after startup.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]skill.Skill

	governor *governor.Governor
	policy   *routing.Policy
	store    RecordStore
	logger   *slog.Logger
	observer InvocationObserver
}

// InvocationObserver receives finalized records for metrics export.
type InvocationObserver interface {
	ObserveInvocation(ctx context.Context, record Record)
}

// Option configures a Registry.
type Option func(*Registry)

// WithGovernor sets the budget enforcer.
func WithGovernor(g *governor.Governor) Option {
	return func(r *Registry) { r.governor = g }
}

// WithPolicy sets the routing policy.
func WithPolicy(p *routing.Policy) Option {
	return func(r *Registry) { r.policy = p }
}

// WithStore sets the execution record store.
func WithStore(s RecordStore) Option {
	return func(r *Registry) { r.store = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithObserver sets the invocation metrics observer.
func WithObserver(o InvocationObserver) Option {
	return func(r *Registry) { r.observer = o }
}

// New creates a registry with default governor, routing policy and in-memory
// record store unless overridden.
func New(opts ...Option) *Registry {
	r := &Registry{
		skills:   make(map[string]skill.Skill),
		governor: governor.New(nil),
		policy:   routing.MustPolicy(routing.DefaultThresholds()),
		store:    NewMemoryStore(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "skill_registry"))
	return r
}

// Register adds a skill after verifying it satisfies the capability
// contract. Fails fast at construction time; no call-time probing.
func (r *Registry) Register(s skill.Skill) error {
	if err := skill.CheckContract(s); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	desc := s.Descriptor()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.skills[desc.ID]; exists {
		return fmt.Errorf("register: skill %s already registered", desc.ID)
	}
	r.skills[desc.ID] = s

	r.logger.Info("skill registered",
		slog.String("skill_id", desc.ID),
		slog.String("category", string(desc.Category)),
	)
	return nil
}

// Get returns a registered skill.
func (r *Registry) Get(skillID string) (skill.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[skillID]
	return s, ok
}

// List returns the descriptors of every registered skill.
func (r *Registry) List() []skill.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]skill.Descriptor, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s.Descriptor())
	}
	return out
}

// Records exposes the execution record store for audit consumers.
func (r *Registry) Records() RecordStore {
	return r.store
}

// Invoke runs a registered skill under the full envelope: input validation,
// governor-wrapped execution, confidence scoring and HITL routing. The
// finalized record is always persisted, success or failure, and failures are
// always re-signaled to the caller.
func (r *Registry) Invoke(ctx context.Context, skillID string, input map[string]any) (Record, error) {
	r.mu.RLock()
	s, ok := r.skills[skillID]
	r.mu.RUnlock()
	if !ok {
		return Record{}, fmt.Errorf("invoke: skill not found: %s", skillID)
	}
	desc := s.Descriptor()

	record := Record{
		InvocationID: uuid.NewString(),
		SkillID:      desc.ID,
		Category:     desc.Category,
		StartedAt:    time.Now().UTC(),
		Input:        input,
	}

	if err := skill.ValidateInput(s, input); err != nil {
		return r.finalize(ctx, record, nil, governor.Usage{}, err)
	}

	output, usage, err := r.governor.Run(ctx, desc.Category, func(ctx context.Context) (map[string]any, error) {
		return s.Execute(ctx, input)
	})
	if err != nil {
		return r.finalize(ctx, record, nil, usage, err)
	}

	if verr := skill.ValidateOutput(s, output); verr != nil {
		return r.finalize(ctx, record, nil, usage, verr)
	}

	ensureConfidence(s, output, usage, r.governor.LimitsFor(desc.Category))
	return r.finalize(ctx, record, output, usage, nil)
}

// ensureConfidence fills in confidence_score when a skill did not embed one,
// deriving the performance sub-metric from budget headroom. A reported score
// is normalized to float64 so integer-typed values are kept, not replaced.
func ensureConfidence(s skill.Skill, output map[string]any, usage governor.Usage, limits governor.Limits) {
	if score, ok := numericScore(output["confidence_score"]); ok {
		output["confidence_score"] = confidence.Clamp(score)
		return
	}
	performance := 1.0
	if limits.MaxDuration > 0 {
		performance = 1 - float64(usage.Elapsed)/float64(limits.MaxDuration)
	}
	output["confidence_score"] = s.Confidence(map[string]float64{
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: 1,
		confidence.MetricPerformance:        confidence.Clamp(performance),
	})
}

// numericScore normalizes the numeric types a skill may use for its score.
func numericScore(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// finalize closes the record, routes it, persists it and re-signals any
// failure. Each invocation owns its record exclusively; persistence is a
// single append keyed by the invocation id.
func (r *Registry) finalize(ctx context.Context, record Record, output map[string]any, usage governor.Usage, err error) (Record, error) {
	record.FinishedAt = time.Now().UTC()
	record.Usage = usage
	record.Output = output

	var skillErr *errors.SkillError
	if err != nil {
		skillErr = errors.AsSkillError(err)
		record.Status = StatusFailed
		record.Error = newErrorRecord(skillErr)
	} else {
		record.Status = StatusCompleted
		if score, ok := output["confidence_score"].(float64); ok {
			record.Confidence = score
		}
	}
	record.Disposition = r.policy.Disposition(record.Confidence, err)

	// Persist on every path. A store failure must not mask the skill error,
	// but it is never silently dropped either.
	if storeErr := r.store.Append(ctx, record); storeErr != nil {
		r.logger.Error("failed to persist execution record",
			slog.String("invocation_id", record.InvocationID),
			slog.String("skill_id", record.SkillID),
			slog.Any("error", storeErr),
		)
		if err == nil {
			return record, fmt.Errorf("invoke: persist record: %w", storeErr)
		}
	}

	if r.observer != nil {
		r.observer.ObserveInvocation(ctx, record)
	}

	if err != nil {
		r.logger.Warn("skill invocation failed",
			slog.String("invocation_id", record.InvocationID),
			slog.String("skill_id", record.SkillID),
			slog.String("error_type", string(skillErr.Type)),
			slog.String("recoverable", skillErr.RecoverableString()),
			slog.String("disposition", string(record.Disposition)),
		)
		return record, skillErr
	}

	r.logger.Info("skill invocation completed",
		slog.String("invocation_id", record.InvocationID),
		slog.String("skill_id", record.SkillID),
		slog.Float64("confidence_score", record.Confidence),
		slog.String("disposition", string(record.Disposition)),
		slog.Duration("elapsed", record.Usage.Elapsed),
	)
	return record, nil
}
