// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package governor enforces per-category resource budgets around skill
// invocations: a hard wall-clock deadline plus advisory memory and cost
// ceilings. The time budget is the load-bearing guarantee; it is enforced
// even when memory and cost metrics are unavailable.
package governor

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// Limits holds the ceilings for one skill category.
type Limits struct {
	MaxDuration time.Duration `koanf:"max_duration"`
	MaxMemoryMB float64       `koanf:"max_memory_mb"`
	MaxCost     float64       `koanf:"max_cost"`
}

// DefaultLimits returns the category budget table. Treated as versioned
// configuration: config may override it without touching invoker logic.
func DefaultLimits() map[skill.Category]Limits {
	return map[skill.Category]Limits{
		skill.CategoryContentCreation:    {MaxDuration: 45 * time.Second, MaxMemoryMB: 2048, MaxCost: 8.0},
		skill.CategoryMarketIntelligence: {MaxDuration: 15 * time.Second, MaxMemoryMB: 1024, MaxCost: 3.0},
		skill.CategorySocialEngagement:   {MaxDuration: 5 * time.Second, MaxMemoryMB: 512, MaxCost: 2.0},
	}
}

// Usage records what an invocation actually consumed. Attached to the
// execution record for audit.
type Usage struct {
	Elapsed  time.Duration `json:"elapsed"`
	MemoryMB float64       `json:"memory_mb"`
	Cost     float64       `json:"cost"`
}

// MemorySampler reports the current process footprint in MB. The second
// result is false when the host environment cannot report it.
type MemorySampler func() (float64, bool)

// Governor wraps skill work with budget enforcement.
type Governor struct {
	limits map[skill.Category]Limits
	sample MemorySampler

	// sampleInterval controls the advisory memory watchdog.
	sampleInterval time.Duration
}

// Option configures a Governor.
type Option func(*Governor)

// WithMemorySampler overrides the gopsutil-based sampler (used in tests and
// on hosts where process metrics are unavailable).
func WithMemorySampler(s MemorySampler) Option {
	return func(g *Governor) { g.sample = s }
}

// WithSampleInterval sets the memory watchdog period.
func WithSampleInterval(d time.Duration) Option {
	return func(g *Governor) {
		if d > 0 {
			g.sampleInterval = d
		}
	}
}

// New creates a Governor. Nil limits fall back to the default table; any
// category missing from the table gets the tightest default budget.
func New(limits map[skill.Category]Limits, opts ...Option) *Governor {
	if len(limits) == 0 {
		limits = DefaultLimits()
	}
	g := &Governor{
		limits:         limits,
		sample:         processRSS,
		sampleInterval: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LimitsFor returns the budget applied to a category.
func (g *Governor) LimitsFor(category skill.Category) Limits {
	if l, ok := g.limits[category]; ok {
		return l
	}
	return g.limits[skill.CategorySocialEngagement]
}

// Run executes fn under the category budget. The derived context carries the
// deadline and a cost meter; fn must honor cancellation so a timeout triggers
// the skill's cleanup path before the failure is reported. Usage is populated
// on every path, including failures.
func (g *Governor) Run(ctx context.Context, category skill.Category, fn func(ctx context.Context) (map[string]any, error)) (map[string]any, Usage, error) {
	limits := g.LimitsFor(category)
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, limits.MaxDuration)
	defer cancel()

	meter := &Meter{}
	runCtx = withMeter(runCtx, meter)

	baseline, baselineOK := g.sample()
	watch := newMemoryWatch(runCtx, g, baseline, baselineOK, limits, cancel)

	type result struct {
		output map[string]any
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := fn(runCtx)
		done <- result{output, err}
	}()

	usage := func() Usage {
		return Usage{
			Elapsed:  time.Since(start),
			MemoryMB: watch.peakDelta(),
			Cost:     meter.Cost(),
		}
	}

	select {
	case <-runCtx.Done():
		// Wait for fn to observe cancellation and release its resources
		// before reporting, so nothing is left running behind the failure.
		<-done
		watch.stop()
		u := usage()
		if watch.exceeded() {
			return nil, u, memoryError(category, u, limits)
		}
		if ctx.Err() != nil {
			// caller cancelled, not the budget
			return nil, u, errors.Classify(ctx.Err())
		}
		return nil, u, errors.New(errors.ProcessingTimeout, "skill exceeded category time budget", runCtx.Err()).
			WithContext("category", string(category)).
			WithContext("budget", limits.MaxDuration.String())
	case res := <-done:
		watch.stop()
		u := usage()
		if res.err != nil {
			return nil, u, errors.AsSkillError(res.err)
		}
		if watch.exceeded() || (baselineOK && limits.MaxMemoryMB > 0 && u.MemoryMB > limits.MaxMemoryMB) {
			return nil, u, memoryError(category, u, limits)
		}
		if limits.MaxCost > 0 && u.Cost > limits.MaxCost {
			return nil, u, errors.New(errors.InsufficientResources, "skill exceeded category cost ceiling", nil).
				WithContext("category", string(category)).
				WithContext("resource", "cost").
				WithContext("cost", u.Cost).
				WithContext("ceiling", limits.MaxCost)
		}
		return res.output, u, nil
	}
}

func memoryError(category skill.Category, u Usage, limits Limits) *errors.SkillError {
	return errors.New(errors.InsufficientResources, "skill exceeded category memory ceiling", nil).
		WithContext("category", string(category)).
		WithContext("resource", "memory").
		WithContext("memory_mb", u.MemoryMB).
		WithContext("ceiling_mb", limits.MaxMemoryMB)
}

// processRSS samples the resident set of the current process via gopsutil.
func processRSS() (float64, bool) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, false
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return 0, false
	}
	return float64(info.RSS) / (1024 * 1024), true
}

// memoryWatch periodically samples the process footprint while fn runs and
// cancels the run when the advisory ceiling is crossed mid-execution.
type memoryWatch struct {
	mu       sync.Mutex
	peak     float64
	baseline float64
	ok       bool
	over     bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newMemoryWatch(ctx context.Context, g *Governor, baseline float64, ok bool, limits Limits, cancel context.CancelFunc) *memoryWatch {
	w := &memoryWatch{baseline: baseline, ok: ok, stopCh: make(chan struct{})}
	if !ok || limits.MaxMemoryMB <= 0 {
		return w
	}
	go func() {
		ticker := time.NewTicker(g.sampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case <-ticker.C:
				current, sampled := g.sample()
				if !sampled {
					continue
				}
				w.mu.Lock()
				delta := current - w.baseline
				if delta > w.peak {
					w.peak = delta
				}
				if delta > limits.MaxMemoryMB {
					w.over = true
					w.mu.Unlock()
					cancel()
					return
				}
				w.mu.Unlock()
			}
		}
	}()
	return w
}

func (w *memoryWatch) stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *memoryWatch) peakDelta() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.peak < 0 {
		return 0
	}
	return w.peak
}

func (w *memoryWatch) exceeded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.over
}
