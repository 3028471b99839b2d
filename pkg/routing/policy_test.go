// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
)

func defaultPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy(DefaultThresholds())
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return p
}

func TestRouteBands(t *testing.T) {
	p := defaultPolicy(t)
	cases := []struct {
		score float64
		want  Disposition
	}{
		{0.99, AutoApprove},
		{0.90, AutoApprove}, // lower edge closed
		{0.899, HumanReviewRecommended},
		{0.70, HumanReviewRecommended}, // lower edge closed
		{0.69, HumanApprovalRequired},
		{0.0, HumanApprovalRequired},
		{1.0, AutoApprove},
	}
	for _, tc := range cases {
		if got := p.Route(tc.score); got != tc.want {
			t.Errorf("Route(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestRouteTotalOverFloats(t *testing.T) {
	p := defaultPolicy(t)
	for _, score := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -5, 5} {
		got := p.Route(score)
		switch got {
		case AutoApprove, HumanReviewRecommended, HumanApprovalRequired:
		default:
			t.Errorf("Route(%v) returned unknown disposition %q", score, got)
		}
	}
	if p.Route(math.NaN()) != HumanApprovalRequired {
		t.Errorf("NaN must route to the strictest band")
	}
}

func TestRouteMonotonic(t *testing.T) {
	p := defaultPolicy(t)
	strictness := map[Disposition]int{
		AutoApprove:            0,
		HumanReviewRecommended: 1,
		HumanApprovalRequired:  2,
	}
	prev := p.Route(0)
	for score := 0.0; score <= 1.0; score += 0.001 {
		got := p.Route(score)
		if strictness[got] > strictness[prev] {
			t.Fatalf("routing not monotonic at %v: %s after %s", score, got, prev)
		}
		prev = got
	}
}

func TestSafetyViolationShortCircuits(t *testing.T) {
	p := defaultPolicy(t)
	err := errors.New(errors.ContentSafetyViolation, "brand risk detected", nil)

	if got := p.Disposition(0.99, err); got != HumanApprovalRequired {
		t.Fatalf("safety violation must force human approval, got %s", got)
	}
	if got := p.Disposition(0.99, nil); got != AutoApprove {
		t.Errorf("clean high-confidence output should auto-approve, got %s", got)
	}
	// other error types do not short-circuit the bands
	other := errors.New(errors.ExternalAPIFailure, "retryable", nil)
	if got := p.Disposition(0.95, other); got != AutoApprove {
		t.Errorf("non-safety errors leave routing to the score, got %s", got)
	}
}

func TestNewPolicyRejectsBadThresholds(t *testing.T) {
	bad := []Thresholds{
		{AutoApprove: 0.5, ReviewRecommended: 0.8}, // inverted
		{AutoApprove: 1.2, ReviewRecommended: 0.7},
		{AutoApprove: 0.9, ReviewRecommended: -0.1},
	}
	for _, tc := range bad {
		if _, err := NewPolicy(tc); err == nil {
			t.Errorf("expected rejection for %+v", tc)
		}
	}
}

func TestConsoleApprovalHook(t *testing.T) {
	review := Review{InvocationID: "inv-1", SkillID: "skill_reply_comments", Confidence: 0.42}

	var out strings.Builder
	h := NewConsoleApprovalHook(
		WithApprovalInput(strings.NewReader("y\n")),
		WithApprovalOutput(&out),
	)
	d := h.Request(context.Background(), review)
	if !d.Approved {
		t.Fatalf("expected approval, got %+v", d)
	}
	if !strings.Contains(out.String(), "skill_reply_comments") {
		t.Errorf("prompt should name the skill: %s", out.String())
	}

	h = NewConsoleApprovalHook(WithApprovalInput(strings.NewReader("n\n")), WithApprovalOutput(&out))
	if d := h.Request(context.Background(), review); d.Approved {
		t.Errorf("expected rejection")
	}
}

func TestStaticApprovalHook(t *testing.T) {
	h := StaticApprovalHook{Decision: Decision{Approved: true, Reason: "test"}}
	if d := h.Request(context.Background(), Review{}); !d.Approved {
		t.Errorf("static hook should return its configured decision")
	}
}
