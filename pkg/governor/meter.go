// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package governor

import (
	"context"
	"sync"
)

// Meter accumulates the monetary cost a skill's collaborator calls report.
// Chimera has no internal cost model; collaborators are the source of truth
// and skills forward their figures through AddCost.
type Meter struct {
	mu   sync.Mutex
	cost float64
}

// Add records collaborator-reported spend in currency units.
func (m *Meter) Add(cost float64) {
	if m == nil || cost <= 0 {
		return
	}
	m.mu.Lock()
	m.cost += cost
	m.mu.Unlock()
}

// Cost returns the accumulated spend.
func (m *Meter) Cost() float64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cost
}

type meterKey struct{}

func withMeter(ctx context.Context, m *Meter) context.Context {
	return context.WithValue(ctx, meterKey{}, m)
}

// AddCost reports collaborator spend against the governing invocation.
// A no-op outside a governed run.
func AddCost(ctx context.Context, cost float64) {
	if m, ok := ctx.Value(meterKey{}).(*Meter); ok {
		m.Add(cost)
	}
}
