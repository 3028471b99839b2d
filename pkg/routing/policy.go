// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package routing maps confidence scores to human-in-the-loop dispositions.
package routing

import (
	"fmt"
	"math"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
)

// Disposition is the HITL outcome for one invocation.
type Disposition string

const (
	// AutoApprove lets the output proceed without human involvement.
	AutoApprove Disposition = "auto_approve"

	// HumanReviewRecommended queues the output for optional review.
	HumanReviewRecommended Disposition = "human_review_recommended"

	// HumanApprovalRequired blocks the output until a human approves it.
	HumanApprovalRequired Disposition = "human_approval_required"
)

// Thresholds holds the band boundaries. Versioned configuration: tune via
// config, not code. Bands are closed on their lower edge, so a score exactly
// at AutoApprove is auto-approved.
type Thresholds struct {
	AutoApprove       float64 `koanf:"auto_approve"`
	ReviewRecommended float64 `koanf:"review_recommended"`
}

// DefaultThresholds returns the production boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{AutoApprove: 0.90, ReviewRecommended: 0.70}
}

// Policy decides dispositions. Pure and deterministic; safe for concurrent use.
type Policy struct {
	thresholds Thresholds
}

// NewPolicy creates a routing policy, rejecting threshold tables that do not
// describe ordered bands inside [0,1].
func NewPolicy(t Thresholds) (*Policy, error) {
	if t.ReviewRecommended < 0 || t.AutoApprove > 1 || t.ReviewRecommended > t.AutoApprove {
		return nil, fmt.Errorf("routing thresholds must satisfy 0 <= review_recommended <= auto_approve <= 1, got %+v", t)
	}
	return &Policy{thresholds: t}, nil
}

// MustPolicy builds a policy from known-good thresholds.
func MustPolicy(t Thresholds) *Policy {
	p, err := NewPolicy(t)
	if err != nil {
		panic(err)
	}
	return p
}

// Route maps a confidence score to a disposition. Total over all float
// inputs: out-of-range and NaN scores route to the strictest band.
func (p *Policy) Route(score float64) Disposition {
	if math.IsNaN(score) {
		return HumanApprovalRequired
	}
	switch {
	case score >= p.thresholds.AutoApprove:
		return AutoApprove
	case score >= p.thresholds.ReviewRecommended:
		return HumanReviewRecommended
	default:
		return HumanApprovalRequired
	}
}

// Disposition routes an invocation outcome. A ContentSafetyViolation
// short-circuits the score bands: the output always requires human approval
// regardless of any computed confidence.
func (p *Policy) Disposition(score float64, err error) Disposition {
	if errors.IsType(err, errors.ContentSafetyViolation) {
		return HumanApprovalRequired
	}
	return p.Route(score)
}

// Thresholds returns the active band boundaries.
func (p *Policy) Thresholds() Thresholds {
	return p.thresholds
}
