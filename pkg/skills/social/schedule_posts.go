// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package social

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// Post is one piece of content waiting for a publishing slot.
type Post struct {
	Content  string
	Platform string
	MediaRef string
}

// ScheduledPost is a post bound to a publishing slot.
type ScheduledPost struct {
	PostID      string
	Platform    string
	ScheduledAt time.Time
}

// SlotPlanner picks publishing slots for a batch of posts, optimizing for the
// requested goals.
type SlotPlanner interface {
	PlanSlots(ctx context.Context, posts []Post, goals []string) ([]ScheduledPost, error)
}

// peakWindows is the fallback slot table, hour of day in UTC per platform.
var peakWindows = map[string][]int{
	"youtube":   {15, 19},
	"tiktok":    {12, 18, 21},
	"instagram": {11, 17, 20},
	"twitter":   {9, 13, 17},
}

// HeuristicPlanner spaces posts across the platform's peak windows starting
// from the next available one. It ignores the optimization goals; a real
// planner weighs them against audience analytics.
type HeuristicPlanner struct {
	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

func (p *HeuristicPlanner) PlanSlots(_ context.Context, posts []Post, _ []string) ([]ScheduledPost, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	base := now().UTC()

	out := make([]ScheduledPost, 0, len(posts))
	nextSlot := make(map[string]time.Time)
	for _, post := range posts {
		windows := peakWindows[post.Platform]
		if len(windows) == 0 {
			windows = []int{12}
		}
		slot, ok := nextSlot[post.Platform]
		if !ok {
			slot = base
		}
		slot = nextPeak(slot, windows)
		nextSlot[post.Platform] = slot.Add(time.Minute)

		out = append(out, ScheduledPost{
			PostID:      uuid.NewString(),
			Platform:    post.Platform,
			ScheduledAt: slot,
		})
	}
	return out, nil
}

// nextPeak returns the first peak-window hour strictly after t.
func nextPeak(t time.Time, windows []int) time.Time {
	for day := 0; day < 2; day++ {
		for _, hour := range windows {
			candidate := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC).AddDate(0, 0, day)
			if candidate.After(t) {
				return candidate
			}
		}
	}
	return t.Add(24 * time.Hour)
}

// SchedulePosts assigns publishing slots to a content batch.
type SchedulePosts struct {
	skill.Base
	planner SlotPlanner
}

// NewSchedulePosts creates the scheduling skill. A nil planner falls back to
// the peak-window heuristic.
func NewSchedulePosts(planner SlotPlanner) *SchedulePosts {
	if planner == nil {
		planner = &HeuristicPlanner{}
	}
	return &SchedulePosts{
		Base:    skill.NewBase(skill.CategorySocialEngagement),
		planner: planner,
	}
}

func (s *SchedulePosts) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_schedule_posts",
		Name:     "Schedule Posts",
		Category: skill.CategorySocialEngagement,
		Version:  "1.0.0",
	}
}

func (s *SchedulePosts) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("posts", schema.NewArray(schema.NewObject().
			Property("content", schema.NewString()).
			Property("platform", schema.NewEnum("youtube", "tiktok", "instagram", "twitter")).
			Property("media_ref", schema.NewString()).
			Require("content", "platform"))).
		Property("scheduling_parameters", schema.NewObject().
			Property("optimization_goals", schema.NewArray(
				schema.NewEnum("reach", "engagement", "conversions", "brand_awareness"))).
			Property("timezone", schema.NewString())).
		Require("posts")
}

func (s *SchedulePosts) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("scheduled_posts", schema.NewArray(schema.NewObject().
			Property("post_id", schema.NewString().WithFormat(schema.FormatUUID)).
			Property("platform", schema.NewString()).
			Property("scheduled_at", schema.NewString().WithFormat(schema.FormatDateTime)).
			Require("post_id", "platform", "scheduled_at"))).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("scheduled_posts", "confidence_score")
}

func (s *SchedulePosts) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	posts := postsFromInput(input["posts"])
	if len(posts) == 0 {
		return nil, errors.New(errors.InputValidation, "posts must not be empty", nil)
	}

	var goals []string
	if params, ok := input["scheduling_parameters"].(map[string]any); ok {
		if raw, ok := params["optimization_goals"].([]any); ok {
			for _, g := range raw {
				if goal, ok := g.(string); ok {
					goals = append(goals, goal)
				}
			}
		}
	}

	scheduled, err := s.planner.PlanSlots(ctx, posts, goals)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("posts", len(posts))
	}
	if len(scheduled) != len(posts) {
		return nil, errors.New(errors.ExternalAPIFailure, "planner did not schedule every post", nil).
			WithContext("posts", len(posts)).
			WithContext("scheduled", len(scheduled))
	}

	items := make([]any, 0, len(scheduled))
	for _, sp := range scheduled {
		items = append(items, map[string]any{
			"post_id":      sp.PostID,
			"platform":     sp.Platform,
			"scheduled_at": sp.ScheduledAt.UTC().Format(time.RFC3339),
		})
	}

	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        1,
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: 1,
	})

	return map[string]any{
		"scheduled_posts":  items,
		"confidence_score": score,
	}, nil
}

func postsFromInput(value any) []Post {
	items, _ := value.([]any)
	out := make([]Post, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := Post{}
		p.Content, _ = m["content"].(string)
		p.Platform, _ = m["platform"].(string)
		p.MediaRef, _ = m["media_ref"].(string)
		out = append(out, p)
	}
	return out
}
