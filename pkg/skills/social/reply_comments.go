// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package social holds the social engagement skill family: comment replies,
// post scheduling and account metrics analysis. These skills run under the
// tightest budgets in the network, so collaborators are expected to answer
// fast or not at all.
package social

import (
	"context"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/safety"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// Comment is one inbound audience comment to answer.
type Comment struct {
	ID     string
	Author string
	Text   string
}

// Reply pairs a drafted answer with the comment it addresses.
type Reply struct {
	CommentID string
	Text      string
}

// ReplyWriter drafts persona-voiced replies for a batch of comments.
type ReplyWriter interface {
	DraftReplies(ctx context.Context, personaID, tone string, comments []Comment) ([]Reply, error)
}

// ReplyComments drafts replies to audience comments and assesses whether the
// batch needs human review before anything is posted. Replies that trip the
// brand safety screen are dropped rather than failing the invocation; the
// escalation assessment tells the operator what was withheld.
type ReplyComments struct {
	skill.Base
	writer  ReplyWriter
	checker *safety.Checker
}

// NewReplyComments creates the reply skill. A nil checker enables the default
// brand safety categories.
func NewReplyComments(writer ReplyWriter, checker *safety.Checker) *ReplyComments {
	if checker == nil {
		checker = safety.NewChecker(nil)
	}
	return &ReplyComments{
		Base:    skill.NewBase(skill.CategorySocialEngagement),
		writer:  writer,
		checker: checker,
	}
}

func (s *ReplyComments) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_reply_comments",
		Name:     "Reply Comments",
		Category: skill.CategorySocialEngagement,
		Version:  "1.0.0",
	}
}

func (s *ReplyComments) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("comments", schema.NewArray(schema.NewObject().
			Property("comment_id", schema.NewString()).
			Property("author", schema.NewString()).
			Property("text", schema.NewString()).
			Require("comment_id", "text"))).
		Property("persona_context", schema.NewObject().
			Property("persona_id", schema.NewString().WithFormat(schema.FormatUUID)).
			Property("tone", schema.NewString()).
			Require("persona_id")).
		Require("comments", "persona_context")
}

func (s *ReplyComments) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("replies", schema.NewArray(schema.NewObject().
			Property("comment_id", schema.NewString()).
			Property("reply_text", schema.NewString()).
			Require("comment_id", "reply_text"))).
		Property("escalation_assessment", schema.NewObject().
			Property("requires_human_review", schema.NewBoolean()).
			Property("brand_risk_level", schema.NewEnum("low", "medium", "high", "critical")).
			Property("withheld_comment_ids", schema.NewArray(schema.NewString())).
			Require("requires_human_review", "brand_risk_level")).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("replies", "escalation_assessment", "confidence_score")
}

func (s *ReplyComments) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	comments := commentsFromInput(input["comments"])
	if len(comments) == 0 {
		return nil, errors.New(errors.InputValidation, "comments must not be empty", nil)
	}

	personaContext, _ := input["persona_context"].(map[string]any)
	personaID, _ := personaContext["persona_id"].(string)
	tone, _ := personaContext["tone"].(string)

	// Risky inbound comments are never answered automatically. They are
	// routed to a human along with the batch risk level.
	risk := safety.RiskLow
	var escalated []string
	escalatedSet := make(map[string]bool)
	for _, c := range comments {
		if result := s.checker.Check(ctx, c.Text); result.Violated {
			escalated = append(escalated, c.ID)
			escalatedSet[c.ID] = true
			if safety.RiskAtLeast(result.RiskLevel, risk) {
				risk = result.RiskLevel
			}
		}
	}

	answerable := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if !escalatedSet[c.ID] {
			answerable = append(answerable, c)
		}
	}

	var drafted []Reply
	if len(answerable) > 0 {
		var err error
		drafted, err = s.writer.DraftReplies(ctx, personaID, tone, answerable)
		if err != nil {
			return nil, errors.Classify(err).
				WithContext("persona_id", personaID).
				WithContext("comments", len(answerable))
		}
	}

	withheld := 0
	replies := make([]any, 0, len(drafted))
	for _, reply := range drafted {
		if result := s.checker.Check(ctx, reply.Text); result.Violated {
			withheld++
			escalated = append(escalated, reply.CommentID)
			if safety.RiskAtLeast(result.RiskLevel, risk) {
				risk = result.RiskLevel
			}
			continue
		}
		replies = append(replies, map[string]any{
			"comment_id": reply.CommentID,
			"reply_text": reply.Text,
		})
	}

	withheldIDs := make([]any, 0, len(escalated))
	for _, id := range escalated {
		withheldIDs = append(withheldIDs, id)
	}

	completeness := 1.0
	if len(replies) < len(comments) {
		completeness = float64(len(replies)) / float64(len(comments))
	}
	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        1,
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: completeness,
	})

	return map[string]any{
		"replies": replies,
		"escalation_assessment": map[string]any{
			"requires_human_review": len(escalated) > 0 || withheld > 0,
			"brand_risk_level":      string(risk),
			"withheld_comment_ids":  withheldIDs,
		},
		"confidence_score": score,
	}, nil
}

func commentsFromInput(value any) []Comment {
	items, _ := value.([]any)
	out := make([]Comment, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := Comment{}
		c.ID, _ = m["comment_id"].(string)
		c.Author, _ = m["author"].(string)
		c.Text, _ = m["text"].(string)
		out = append(out, c)
	}
	return out
}
