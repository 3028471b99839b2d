// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package skill defines the capability contract every Chimera skill
// implements. A skill declares its shape (input/output schemas), executes
// asynchronously under the invoker's budget, and reports a bounded
// confidence score used for human-in-the-loop routing.
package skill

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
)

// Category groups skills under a shared performance budget.
type Category string

const (
	CategoryContentCreation    Category = "content_creation"
	CategoryMarketIntelligence Category = "market_intelligence"
	CategorySocialEngagement   Category = "social_engagement"
)

// Categories lists every known category.
func Categories() []Category {
	return []Category{
		CategoryContentCreation,
		CategoryMarketIntelligence,
		CategorySocialEngagement,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryContentCreation, CategoryMarketIntelligence, CategorySocialEngagement:
		return true
	}
	return false
}

// Descriptor identifies a skill. Immutable after registration.
type Descriptor struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Version  string   `json:"version,omitempty"`
}

// Skill is the capability contract. Implementations must be stateless with
// respect to invocations: concurrent Execute calls on one instance share
// nothing beyond the identity fields.
type Skill interface {
	// Descriptor returns the skill's immutable identity.
	Descriptor() Descriptor

	// InputSchema describes the accepted input. Always object-rooted.
	InputSchema() *schema.Schema

	// OutputSchema describes the produced output. Always object-rooted and
	// always declares confidence_score bounded to [0,1].
	OutputSchema() *schema.Schema

	// Execute runs the skill. It validates input against InputSchema before
	// doing work, suspends only on external I/O, and fails only with typed
	// errors from the taxonomy.
	Execute(ctx context.Context, input map[string]any) (map[string]any, error)

	// Confidence combines named sub-metric scores into a value in [0,1].
	// Total for any non-empty mapping; deterministic.
	Confidence(metrics map[string]float64) float64
}

// categoryWeights tunes the confidence combination per category. Content
// creation leans on output completeness (captions missing segments are worse
// than slow ones); social engagement leans on data quality because replies
// act on third-party text.
var categoryWeights = map[Category]confidence.Weights{
	CategoryContentCreation: {
		confidence.MetricDataQuality:        0.25,
		confidence.MetricProcessingSuccess:  0.30,
		confidence.MetricOutputCompleteness: 0.35,
		confidence.MetricPerformance:        0.10,
	},
	CategoryMarketIntelligence: {
		confidence.MetricDataQuality:        0.35,
		confidence.MetricProcessingSuccess:  0.30,
		confidence.MetricOutputCompleteness: 0.25,
		confidence.MetricPerformance:        0.10,
	},
	CategorySocialEngagement: {
		confidence.MetricDataQuality:        0.40,
		confidence.MetricProcessingSuccess:  0.30,
		confidence.MetricOutputCompleteness: 0.20,
		confidence.MetricPerformance:        0.10,
	},
}

// WeightsFor returns the confidence weighting for a category.
func WeightsFor(c Category) confidence.Weights {
	if w, ok := categoryWeights[c]; ok {
		return w
	}
	return confidence.DefaultWeights()
}

// Base supplies the common identity and scoring plumbing concrete skills
// embed. The generated skill_id and created_at exist for audit trails, not
// business logic.
type Base struct {
	skillID   string
	createdAt time.Time
	scorer    *confidence.Scorer
}

// NewBase creates the embedded base for a skill in the given category.
func NewBase(category Category) Base {
	return Base{
		skillID:   "skill_" + uuid.NewString(),
		createdAt: time.Now().UTC(),
		scorer:    confidence.NewScorer(WeightsFor(category)),
	}
}

// SkillID returns the generated stable instance identifier.
func (b Base) SkillID() string { return b.skillID }

// CreatedAt returns the instantiation timestamp.
func (b Base) CreatedAt() time.Time { return b.createdAt }

// Confidence implements the default weighted combination.
func (b Base) Confidence(metrics map[string]float64) float64 {
	return b.scorer.Score(metrics)
}

// ConfidenceScoreSchema is the property every output schema must declare.
func ConfidenceScoreSchema() *schema.Schema {
	return schema.NewNumber().
		Bounds(0, 1).
		WithDescription("Output trustworthiness estimate driving HITL routing")
}

// ValidateInput checks input against the skill's input schema, returning an
// InputValidation error carrying the violation list. Skills call this first
// in Execute.
func ValidateInput(s Skill, input map[string]any) error {
	violations := schema.Validate(s.InputSchema(), input)
	if len(violations) == 0 {
		return nil
	}
	return errors.New(errors.InputValidation, "input does not conform to schema", nil).
		WithContext("violations", violations).
		WithContext("skill", s.Descriptor().ID)
}

// ValidateOutput checks a produced output against the skill's output schema.
// A non-conforming output is a skill bug surfaced as ExternalAPIFailure so it
// still crosses the boundary typed.
func ValidateOutput(s Skill, output map[string]any) error {
	violations := schema.Validate(s.OutputSchema(), output)
	if len(violations) == 0 {
		return nil
	}
	return errors.New(errors.ExternalAPIFailure, "output does not conform to schema", nil).
		WithRecoverable(false).
		WithContext("violations", violations).
		WithContext("skill", s.Descriptor().ID)
}
