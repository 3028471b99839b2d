// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package contentcreation

import (
	"context"
	"strings"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// Transcription is the collaborator's speech-to-text result. ModelConfidence
// is the recognizer's own estimate, folded into the skill confidence as the
// data quality sub-metric.
type Transcription struct {
	Text            string
	Language        string
	Keywords        []string
	Summary         string
	ModelConfidence float64
}

// Transcriber converts an audio source into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioSource, language string) (Transcription, error)
}

// TranscribeAudio turns downloaded media into analyzable text.
type TranscribeAudio struct {
	skill.Base
	transcriber Transcriber
}

// NewTranscribeAudio creates the transcription skill over the collaborator.
func NewTranscribeAudio(transcriber Transcriber) *TranscribeAudio {
	return &TranscribeAudio{
		Base:        skill.NewBase(skill.CategoryContentCreation),
		transcriber: transcriber,
	}
}

func (s *TranscribeAudio) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_transcribe_audio",
		Name:     "Transcribe Audio",
		Category: skill.CategoryContentCreation,
		Version:  "1.0.0",
	}
}

func (s *TranscribeAudio) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("audio_source", schema.NewString()).
		Property("language", schema.NewString()).
		Property("include_analysis", schema.NewBoolean()).
		Require("audio_source")
}

func (s *TranscribeAudio) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("transcription", schema.NewObject().
			Property("text", schema.NewString()).
			Property("language", schema.NewString()).
			Property("word_count", schema.NewInteger()).
			Require("text")).
		Property("analysis", schema.NewObject().
			Property("keywords", schema.NewArray(schema.NewString())).
			Property("summary", schema.NewString())).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("transcription", "confidence_score")
}

func (s *TranscribeAudio) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	audioSource, _ := input["audio_source"].(string)
	language, _ := input["language"].(string)

	result, err := s.transcriber.Transcribe(ctx, audioSource, language)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("audio_source", audioSource)
	}
	if result.Text == "" {
		return nil, errors.New(errors.ExternalAPIFailure, "transcriber returned empty text", nil).
			WithContext("audio_source", audioSource)
	}

	analysis := map[string]any{}
	completeness := 0.7
	if includeAnalysis, _ := input["include_analysis"].(bool); includeAnalysis || result.Summary != "" || len(result.Keywords) > 0 {
		keywords := make([]any, 0, len(result.Keywords))
		for _, k := range result.Keywords {
			keywords = append(keywords, k)
		}
		analysis["keywords"] = keywords
		analysis["summary"] = result.Summary
		completeness = 1.0
	}

	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        confidence.Clamp(result.ModelConfidence),
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: completeness,
	})

	return map[string]any{
		"transcription": map[string]any{
			"text":       result.Text,
			"language":   result.Language,
			"word_count": len(strings.Fields(result.Text)),
		},
		"analysis":         analysis,
		"confidence_score": score,
	}, nil
}
