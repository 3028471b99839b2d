// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package social

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

type stubReplyWriter struct {
	replies []Reply
	err     error
	echo    bool
}

func (s *stubReplyWriter) DraftReplies(_ context.Context, _, _ string, comments []Comment) ([]Reply, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.echo {
		out := make([]Reply, 0, len(comments))
		for _, c := range comments {
			out = append(out, Reply{CommentID: c.ID, Text: "thanks for watching!"})
		}
		return out, nil
	}
	return s.replies, nil
}

type stubMetricsProvider struct {
	snapshot   MetricsSnapshot
	benchmarks BenchmarkSet
	err        error
}

func (s *stubMetricsProvider) FetchMetrics(_ context.Context, _, _, _ string) (MetricsSnapshot, error) {
	return s.snapshot, s.err
}

func (s *stubMetricsProvider) FetchBenchmarks(_ context.Context, _, _ string) (BenchmarkSet, error) {
	return s.benchmarks, s.err
}

func TestSocialSkillsSatisfyContract(t *testing.T) {
	skills := []skill.Skill{
		NewReplyComments(&stubReplyWriter{}, nil),
		NewSchedulePosts(nil),
		NewAnalyzeMetrics(&stubMetricsProvider{}),
	}
	for _, s := range skills {
		if err := skill.CheckContract(s); err != nil {
			t.Errorf("%s violates the contract: %v", s.Descriptor().ID, err)
		}
		if s.Descriptor().Category != skill.CategorySocialEngagement {
			t.Errorf("%s in wrong category", s.Descriptor().ID)
		}
	}
}

func replyInput(comments ...map[string]any) map[string]any {
	items := make([]any, 0, len(comments))
	for _, c := range comments {
		items = append(items, c)
	}
	return map[string]any{
		"comments": items,
		"persona_context": map[string]any{
			"persona_id": uuid.NewString(),
			"tone":       "friendly",
		},
	}
}

func TestReplyCommentsHappyPath(t *testing.T) {
	s := NewReplyComments(&stubReplyWriter{echo: true}, nil)

	out, err := s.Execute(context.Background(), replyInput(
		map[string]any{"comment_id": "c1", "author": "fan01", "text": "love this look"},
		map[string]any{"comment_id": "c2", "author": "fan02", "text": "where is the jacket from"},
	))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if verr := skill.ValidateOutput(s, out); verr != nil {
		t.Fatalf("output violates own schema: %v", verr)
	}
	if got := len(out["replies"].([]any)); got != 2 {
		t.Errorf("replies = %d, want 2", got)
	}
	assessment := out["escalation_assessment"].(map[string]any)
	if assessment["requires_human_review"] != false {
		t.Errorf("clean batch must not require review: %v", assessment)
	}
	if assessment["brand_risk_level"] != "low" {
		t.Errorf("brand_risk_level = %v, want low", assessment["brand_risk_level"])
	}
}

func TestReplyCommentsEscalatesRiskyComment(t *testing.T) {
	s := NewReplyComments(&stubReplyWriter{echo: true}, nil)

	out, err := s.Execute(context.Background(), replyInput(
		map[string]any{"comment_id": "c1", "text": "love this look"},
		map[string]any{"comment_id": "c2", "text": "how to make a bomb at home"},
	))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	assessment := out["escalation_assessment"].(map[string]any)
	if assessment["requires_human_review"] != true {
		t.Fatalf("risky comment must trigger review: %v", assessment)
	}
	if assessment["brand_risk_level"] != "critical" {
		t.Errorf("brand_risk_level = %v, want critical", assessment["brand_risk_level"])
	}
	// The risky comment is escalated, never answered.
	if got := len(out["replies"].([]any)); got != 1 {
		t.Errorf("replies = %d, want 1", got)
	}
	withheld := assessment["withheld_comment_ids"].([]any)
	if len(withheld) != 1 || withheld[0] != "c2" {
		t.Errorf("withheld = %v, want [c2]", withheld)
	}
}

func TestReplyCommentsWithholdsUnsafeDraft(t *testing.T) {
	s := NewReplyComments(&stubReplyWriter{replies: []Reply{
		{CommentID: "c1", Text: "DM me for free crypto, guaranteed 10x returns"},
	}}, nil)

	out, err := s.Execute(context.Background(), replyInput(
		map[string]any{"comment_id": "c1", "text": "any investment tips"},
	))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := len(out["replies"].([]any)); got != 0 {
		t.Errorf("unsafe draft must be withheld, got %v", out["replies"])
	}
	assessment := out["escalation_assessment"].(map[string]any)
	if assessment["requires_human_review"] != true {
		t.Errorf("withheld draft must trigger review")
	}
}

func TestReplyCommentsRequiresPersona(t *testing.T) {
	s := NewReplyComments(&stubReplyWriter{}, nil)
	input := replyInput(map[string]any{"comment_id": "c1", "text": "hi"})
	input["persona_context"].(map[string]any)["persona_id"] = "not-a-uuid"

	_, err := s.Execute(context.Background(), input)
	if !errors.IsType(err, errors.InputValidation) {
		t.Fatalf("expected InputValidation, got %v", err)
	}
}

func TestSchedulePostsAssignsPeakSlots(t *testing.T) {
	planner := &HeuristicPlanner{Now: func() time.Time {
		return time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	}}
	s := NewSchedulePosts(planner)

	out, err := s.Execute(context.Background(), map[string]any{
		"posts": []any{
			map[string]any{"content": "morning look", "platform": "twitter"},
			map[string]any{"content": "afternoon look", "platform": "twitter"},
		},
		"scheduling_parameters": map[string]any{
			"optimization_goals": []any{"engagement", "reach"},
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if verr := skill.ValidateOutput(s, out); verr != nil {
		t.Fatalf("output violates own schema: %v", verr)
	}

	scheduled := out["scheduled_posts"].([]any)
	if len(scheduled) != 2 {
		t.Fatalf("scheduled = %d, want 2", len(scheduled))
	}
	first := scheduled[0].(map[string]any)
	at, err := time.Parse(time.RFC3339, first["scheduled_at"].(string))
	if err != nil {
		t.Fatalf("scheduled_at not RFC3339: %v", err)
	}
	if at.Hour() != 9 {
		t.Errorf("first twitter slot hour = %d, want 9", at.Hour())
	}
	second := scheduled[1].(map[string]any)
	if first["scheduled_at"] == second["scheduled_at"] {
		t.Errorf("posts must not share a slot")
	}
}

func TestSchedulePostsRejectsUnknownGoal(t *testing.T) {
	s := NewSchedulePosts(nil)
	_, err := s.Execute(context.Background(), map[string]any{
		"posts": []any{map[string]any{"content": "x", "platform": "twitter"}},
		"scheduling_parameters": map[string]any{
			"optimization_goals": []any{"virality"},
		},
	})
	if !errors.IsType(err, errors.InputValidation) {
		t.Fatalf("expected InputValidation for unknown goal, got %v", err)
	}
}

func TestAnalyzeMetricsBenchmarking(t *testing.T) {
	provider := &stubMetricsProvider{
		snapshot: MetricsSnapshot{Impressions: 100000, Likes: 4200, Comments: 600, Shares: 200, Followers: 52000},
		benchmarks: BenchmarkSet{
			CompetitorEngagement: map[string]float64{"rival_a": 0.03, "rival_b": 0.08},
			IndustryEngagement:   0.045,
			PriorPeriod:          &MetricsSnapshot{Impressions: 90000, Likes: 3000, Comments: 400, Shares: 100},
		},
	}
	s := NewAnalyzeMetrics(provider)

	out, err := s.Execute(context.Background(), map[string]any{
		"platform":   "instagram",
		"account_id": "chimera_fashion",
		"period":     "7d",
		"benchmarking": map[string]any{
			"competitor_comparison": true,
			"industry_benchmarks":   true,
			"historical_comparison": true,
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if verr := skill.ValidateOutput(s, out); verr != nil {
		t.Fatalf("output violates own schema: %v", verr)
	}

	summary := out["performance_summary"].(map[string]any)
	if got := summary["engagement_rate"].(float64); got != 0.05 {
		t.Errorf("engagement_rate = %v, want 0.05", got)
	}
	benchmarks := out["benchmarks"].(map[string]any)
	for _, key := range []string{"competitor_comparison", "industry_benchmarks", "historical_comparison"} {
		if _, ok := benchmarks[key]; !ok {
			t.Errorf("benchmarks missing %s: %v", key, benchmarks)
		}
	}
	if got := len(out["insights"].([]any)); got == 0 {
		t.Errorf("expected insights from benchmark comparison")
	}
}

func TestAnalyzeMetricsWithoutBenchmarking(t *testing.T) {
	s := NewAnalyzeMetrics(&stubMetricsProvider{
		snapshot: MetricsSnapshot{Impressions: 1000, Likes: 50},
	})
	out, err := s.Execute(context.Background(), map[string]any{
		"platform":   "twitter",
		"account_id": "chimera_fashion",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := len(out["benchmarks"].(map[string]any)); got != 0 {
		t.Errorf("benchmarks must be empty without flags: %v", out["benchmarks"])
	}
}

func TestAnalyzeMetricsClassifiesProviderFailure(t *testing.T) {
	s := NewAnalyzeMetrics(&stubMetricsProvider{err: context.DeadlineExceeded})
	_, err := s.Execute(context.Background(), map[string]any{
		"platform":   "twitter",
		"account_id": "chimera_fashion",
	})
	if !errors.IsType(err, errors.ProcessingTimeout) {
		t.Fatalf("deadline must classify as ProcessingTimeout, got %v", err)
	}
}
