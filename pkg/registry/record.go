// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"sync"
	"time"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/governor"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/routing"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// Status is the terminal state of an invocation.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrorRecord is the immutable failure summary attached to a record.
type ErrorRecord struct {
	Type        errors.ErrorType `json:"error_type"`
	Message     string           `json:"message"`
	Recoverable bool             `json:"recoverable"`
}

// newErrorRecord snapshots a SkillError.
func newErrorRecord(err *errors.SkillError) *ErrorRecord {
	if err == nil {
		return nil
	}
	return &ErrorRecord{
		Type:        err.Type,
		Message:     err.Message,
		Recoverable: err.Recoverable,
	}
}

// Record is the audit trail entry for one invocation. Created at invocation
// start, finalized exactly once at completion or failure, and owned by the
// invoking call: no two invocations ever touch the same record.
type Record struct {
	InvocationID string              `json:"invocation_id"`
	SkillID      string              `json:"skill_id"`
	Category     skill.Category      `json:"category"`
	Status       Status              `json:"status"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at"`
	Input        map[string]any      `json:"input"`
	Output       map[string]any      `json:"output,omitempty"`
	Error        *ErrorRecord        `json:"error,omitempty"`
	Confidence   float64             `json:"confidence_score"`
	Disposition  routing.Disposition `json:"disposition"`
	Usage        governor.Usage      `json:"usage"`
}

// Filter selects records from a store.
type Filter struct {
	SkillID     string
	Status      Status
	Disposition routing.Disposition
	Limit       int
}

// RecordStore persists execution records. Appends from concurrent
// invocations must not corrupt the log; records are never updated in place.
type RecordStore interface {
	Append(ctx context.Context, record Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// MemoryStore is the in-process append-only record log.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates an empty in-memory record log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a finalized record to the log.
func (s *MemoryStore) Append(_ context.Context, record Record) error {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	return nil
}

// List returns records matching the filter in append order.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if !matches(r, filter) {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func matches(r Record, f Filter) bool {
	if f.SkillID != "" && r.SkillID != f.SkillID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Disposition != "" && r.Disposition != f.Disposition {
		return false
	}
	return true
}
