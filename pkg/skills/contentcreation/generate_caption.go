// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package contentcreation

import (
	"context"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/safety"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// CaptionRequest carries everything the writer needs about the content and
// the persona voicing it.
type CaptionRequest struct {
	PersonaID    string
	Tone         string
	Platform     string
	ContentTopic string
	ContentNotes string
}

// CaptionResult is the collaborator's generated caption set.
type CaptionResult struct {
	Variants []string
	Hashtags []string
}

// CaptionWriter generates persona-voiced captions.
type CaptionWriter interface {
	GenerateCaption(ctx context.Context, req CaptionRequest) (CaptionResult, error)
}

// GenerateCaption produces publishable captions. Every variant passes the
// brand safety screen before it leaves the skill; a single unsafe variant
// fails the whole invocation.
type GenerateCaption struct {
	skill.Base
	writer  CaptionWriter
	checker *safety.Checker
}

// NewGenerateCaption creates the caption skill. A nil checker enables the
// default brand safety categories.
func NewGenerateCaption(writer CaptionWriter, checker *safety.Checker) *GenerateCaption {
	if checker == nil {
		checker = safety.NewChecker(nil)
	}
	return &GenerateCaption{
		Base:    skill.NewBase(skill.CategoryContentCreation),
		writer:  writer,
		checker: checker,
	}
}

func (s *GenerateCaption) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_generate_caption",
		Name:     "Generate Caption",
		Category: skill.CategoryContentCreation,
		Version:  "1.0.0",
	}
}

func (s *GenerateCaption) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("content_context", schema.NewObject().
			Property("topic", schema.NewString()).
			Property("notes", schema.NewString()).
			Require("topic")).
		Property("persona_context", schema.NewObject().
			Property("persona_id", schema.NewString().WithFormat(schema.FormatUUID)).
			Property("tone", schema.NewString()).
			Require("persona_id")).
		Property("platform", schema.NewEnum("youtube", "tiktok", "instagram", "twitter")).
		Require("content_context", "persona_context")
}

func (s *GenerateCaption) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("captions", schema.NewArray(schema.NewString())).
		Property("hashtags", schema.NewArray(schema.NewString())).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("captions", "confidence_score")
}

func (s *GenerateCaption) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	contentContext, _ := input["content_context"].(map[string]any)
	personaContext, _ := input["persona_context"].(map[string]any)
	platform, _ := input["platform"].(string)

	req := CaptionRequest{Platform: platform}
	if personaContext != nil {
		req.PersonaID, _ = personaContext["persona_id"].(string)
		req.Tone, _ = personaContext["tone"].(string)
	}
	if contentContext != nil {
		req.ContentTopic, _ = contentContext["topic"].(string)
		req.ContentNotes, _ = contentContext["notes"].(string)
	}

	result, err := s.writer.GenerateCaption(ctx, req)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("persona_id", req.PersonaID)
	}
	if len(result.Variants) == 0 {
		return nil, errors.New(errors.ExternalAPIFailure, "writer returned no captions", nil).
			WithContext("persona_id", req.PersonaID)
	}

	for _, variant := range result.Variants {
		if err := s.checker.Screen(ctx, variant); err != nil {
			return nil, err
		}
	}

	captions := make([]any, 0, len(result.Variants))
	for _, v := range result.Variants {
		captions = append(captions, v)
	}
	hashtags := make([]any, 0, len(result.Hashtags))
	for _, h := range result.Hashtags {
		hashtags = append(hashtags, h)
	}

	completeness := 1.0
	if len(result.Hashtags) == 0 {
		completeness = 0.8
	}
	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        1,
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: completeness,
	})

	return map[string]any{
		"captions":         captions,
		"hashtags":         hashtags,
		"confidence_score": score,
	}, nil
}
