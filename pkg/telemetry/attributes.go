// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
)

// Semantic conventions for skill invocation telemetry.
const (
	// Skill attributes
	AttrSkillID       = "chimera.skill.id"
	AttrSkillCategory = "chimera.skill.category"
	AttrInvocationID  = "chimera.invocation.id"

	// Outcome attributes
	AttrStatus      = "chimera.invocation.status"
	AttrConfidence  = "chimera.invocation.confidence_score"
	AttrDisposition = "chimera.invocation.disposition"

	// Error attributes
	AttrErrorType        = "chimera.error.type"
	AttrErrorRecoverable = "chimera.error.recoverable"

	// Budget attributes
	AttrElapsedMs = "chimera.budget.elapsed_ms"
	AttrMemoryMB  = "chimera.budget.memory_mb"
	AttrCost      = "chimera.budget.cost"
)

// InvocationAttributes returns the common attributes for an invocation span.
func InvocationAttributes(invocationID, skillID, category string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrInvocationID, invocationID),
		attribute.String(AttrSkillID, skillID),
		attribute.String(AttrSkillCategory, category),
	}
}

// OutcomeAttributes returns attributes for a finalized invocation.
func OutcomeAttributes(status string, confidence float64, disposition string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStatus, status),
		attribute.Float64(AttrConfidence, confidence),
		attribute.String(AttrDisposition, disposition),
	}
}

// ErrorAttributes returns attributes describing a typed failure, including
// any attributes the error itself carries.
func ErrorAttributes(err *errors.SkillError) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrErrorType, string(err.Type)),
		attribute.String(AttrErrorRecoverable, err.RecoverableString()),
	}
	for k, v := range err.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

// BudgetAttributes returns attributes describing resource consumption.
func BudgetAttributes(elapsedMs int64, memoryMB, cost float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrElapsedMs, elapsedMs),
		attribute.Float64(AttrMemoryMB, memoryMB),
		attribute.Float64(AttrCost, cost),
	}
}
