// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package marketintel

import (
	"context"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// EmotionBreakdown scores the six tracked emotions, each in [0, 1].
type EmotionBreakdown struct {
	Joy      float64
	Sadness  float64
	Anger    float64
	Fear     float64
	Surprise float64
	Trust    float64
}

// SentimentResult is the collaborator's aggregate over the analyzed texts.
// OverallScore spans [-1, 1].
type SentimentResult struct {
	OverallScore    float64
	Label           string
	Emotions        EmotionBreakdown
	ModelConfidence float64
}

// SentimentAnalyzer scores a batch of texts.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, texts []string) (SentimentResult, error)
}

// SentimentAnalysis breaks audience text down into sentiment and emotions.
type SentimentAnalysis struct {
	skill.Base
	analyzer SentimentAnalyzer
}

// NewSentimentAnalysis creates the sentiment skill over the analyzer.
func NewSentimentAnalysis(analyzer SentimentAnalyzer) *SentimentAnalysis {
	return &SentimentAnalysis{
		Base:     skill.NewBase(skill.CategoryMarketIntelligence),
		analyzer: analyzer,
	}
}

func (s *SentimentAnalysis) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_sentiment_analysis",
		Name:     "Sentiment Analysis",
		Category: skill.CategoryMarketIntelligence,
		Version:  "1.0.0",
	}
}

func (s *SentimentAnalysis) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("content", schema.NewArray(schema.NewString())).
		Property("language", schema.NewString()).
		Require("content")
}

func emotionSchema() *schema.Schema {
	unit := func() *schema.Schema { return schema.NewNumber().Bounds(0, 1) }
	return schema.NewObject().
		Property("joy", unit()).
		Property("sadness", unit()).
		Property("anger", unit()).
		Property("fear", unit()).
		Property("surprise", unit()).
		Property("trust", unit()).
		Require("joy", "sadness", "anger", "fear", "surprise", "trust")
}

func (s *SentimentAnalysis) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("sentiment_analysis", schema.NewObject().
			Property("overall_sentiment", schema.NewNumber().Bounds(-1, 1)).
			Property("sentiment_label", schema.NewEnum("positive", "neutral", "negative")).
			Property("emotion_breakdown", emotionSchema()).
			Require("overall_sentiment", "sentiment_label", "emotion_breakdown")).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("sentiment_analysis", "confidence_score")
}

func (s *SentimentAnalysis) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	texts := toStringSlice(input["content"])
	if len(texts) == 0 {
		return nil, errors.New(errors.InputValidation, "content must not be empty", nil)
	}

	result, err := s.analyzer.Analyze(ctx, texts)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("texts", len(texts))
	}

	label := result.Label
	if label == "" {
		switch {
		case result.OverallScore > 0.2:
			label = "positive"
		case result.OverallScore < -0.2:
			label = "negative"
		default:
			label = "neutral"
		}
	}

	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        confidence.Clamp(result.ModelConfidence),
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: 1,
	})

	return map[string]any{
		"sentiment_analysis": map[string]any{
			"overall_sentiment": result.OverallScore,
			"sentiment_label":   label,
			"emotion_breakdown": map[string]any{
				"joy":      result.Emotions.Joy,
				"sadness":  result.Emotions.Sadness,
				"anger":    result.Emotions.Anger,
				"fear":     result.Emotions.Fear,
				"surprise": result.Emotions.Surprise,
				"trust":    result.Emotions.Trust,
			},
		},
		"confidence_score": score,
	}, nil
}
