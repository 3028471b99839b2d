// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/registry"
)

// InvocationMetrics exports per-invocation measurements. It plugs into the
// registry as an InvocationObserver.
type InvocationMetrics struct {
	invocationCounter   metric.Int64Counter
	errorCounter        metric.Int64Counter
	confidenceHistogram metric.Float64Histogram
	durationHistogram   metric.Float64Histogram
	costCounter         metric.Float64Counter
}

// NewInvocationMetrics creates the OTEL instruments for invocation tracking.
func NewInvocationMetrics() (*InvocationMetrics, error) {
	meter := otel.Meter("chimera/skills")

	invocationCounter, err := meter.Int64Counter(
		"chimera.invocations.total",
		metric.WithDescription("Skill invocations by skill, category, status and disposition"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"chimera.invocations.errors",
		metric.WithDescription("Failed invocations by error type and recoverability"),
	)
	if err != nil {
		return nil, err
	}

	confidenceHistogram, err := meter.Float64Histogram(
		"chimera.invocations.confidence_score",
		metric.WithDescription("Confidence score distribution per skill"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"chimera.invocations.duration_ms",
		metric.WithDescription("Invocation wall-clock duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	costCounter, err := meter.Float64Counter(
		"chimera.invocations.cost",
		metric.WithDescription("Accumulated collaborator cost in budget units"),
	)
	if err != nil {
		return nil, err
	}

	return &InvocationMetrics{
		invocationCounter:   invocationCounter,
		errorCounter:        errorCounter,
		confidenceHistogram: confidenceHistogram,
		durationHistogram:   durationHistogram,
		costCounter:         costCounter,
	}, nil
}

// ObserveInvocation implements registry.InvocationObserver.
func (m *InvocationMetrics) ObserveInvocation(ctx context.Context, record registry.Record) {
	if m == nil {
		return
	}

	skillAttrs := []attribute.KeyValue{
		attribute.String(AttrSkillID, record.SkillID),
		attribute.String(AttrSkillCategory, string(record.Category)),
	}

	m.invocationCounter.Add(ctx, 1, metric.WithAttributes(append(skillAttrs,
		attribute.String(AttrStatus, string(record.Status)),
		attribute.String(AttrDisposition, string(record.Disposition)),
	)...))

	m.durationHistogram.Record(ctx, float64(record.Usage.Elapsed.Milliseconds()),
		metric.WithAttributes(skillAttrs...))

	if record.Usage.Cost > 0 {
		m.costCounter.Add(ctx, record.Usage.Cost, metric.WithAttributes(skillAttrs...))
	}

	if record.Status == registry.StatusCompleted {
		m.confidenceHistogram.Record(ctx, record.Confidence, metric.WithAttributes(skillAttrs...))
	}

	if record.Error != nil {
		recoverable := "false"
		if record.Error.Recoverable {
			recoverable = "true"
		}
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(append(skillAttrs,
			attribute.String(AttrErrorType, string(record.Error.Type)),
			attribute.String(AttrErrorRecoverable, recoverable),
		)...))
	}
}
