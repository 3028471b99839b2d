// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package marketintel holds the market intelligence skill family: trend
// analysis, news gathering and sentiment breakdowns feeding the content
// planning loop.
package marketintel

import (
	"context"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/trends"
)

// MarketAnalyzer aggregates trend observations into a market analysis.
// *trends.Fetcher is the production implementation.
type MarketAnalyzer interface {
	AnalyzeMarketTrends(ctx context.Context, scope trends.Scope) (trends.Analysis, error)
}

// AnalyzeTrends surfaces what is moving across the monitored platforms.
type AnalyzeTrends struct {
	skill.Base
	analyzer MarketAnalyzer
}

// NewAnalyzeTrends creates the trend analysis skill over the analyzer.
func NewAnalyzeTrends(analyzer MarketAnalyzer) *AnalyzeTrends {
	return &AnalyzeTrends{
		Base:     skill.NewBase(skill.CategoryMarketIntelligence),
		analyzer: analyzer,
	}
}

func (s *AnalyzeTrends) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_analyze_trends",
		Name:     "Analyze Trends",
		Category: skill.CategoryMarketIntelligence,
		Version:  "1.0.0",
	}
}

func platformEnum() *schema.Schema {
	values := make([]any, 0, len(trends.Platforms()))
	for _, p := range trends.Platforms() {
		values = append(values, string(p))
	}
	return schema.NewEnum(values...)
}

func timeRangeEnum() *schema.Schema {
	return schema.NewEnum("1h", "6h", "24h", "7d", "30d")
}

func (s *AnalyzeTrends) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("keywords", schema.NewArray(schema.NewString())).
		// flat platforms/time_range are accepted as a convenience and win
		// over analysis_scope when both are present
		Property("platforms", schema.NewArray(platformEnum())).
		Property("time_range", timeRangeEnum()).
		Property("analysis_scope", schema.NewObject().
			Property("platforms", schema.NewArray(platformEnum())).
			Property("time_range", timeRangeEnum())).
		Property("analysis_depth", schema.NewEnum("basic", "detailed", "comprehensive"))
}

func (s *AnalyzeTrends) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("trending_topics", schema.NewArray(schema.NewString())).
		Property("market_insights", schema.NewArray(schema.NewString())).
		Property("trend_scores", schema.NewObject()).
		Property("sentiment_analysis", schema.NewObject()).
		Property("recommended_actions", schema.NewArray(schema.NewString())).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("trending_topics", "trend_scores", "sentiment_analysis", "recommended_actions", "confidence_score")
}

func (s *AnalyzeTrends) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	scope := scopeFromInput(input)
	analysis, err := s.analyzer.AnalyzeMarketTrends(ctx, scope)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("time_range", scope.TimeRange)
	}

	dataQuality := 1.0
	if len(analysis.TrendingTopics) == 0 {
		dataQuality = 0.3
	}
	completeness := 1.0
	if len(analysis.MarketInsights) == 0 {
		completeness = 0.7
	}
	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        dataQuality,
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: completeness,
	})

	return map[string]any{
		"trending_topics":     toAnySlice(analysis.TrendingTopics),
		"market_insights":     toAnySlice(analysis.MarketInsights),
		"trend_scores":        toAnyMap(analysis.TrendScores),
		"sentiment_analysis":  toAnyMap(analysis.SentimentByTopic),
		"recommended_actions": toAnySlice(analysis.RecommendedActions),
		"confidence_score":    score,
	}, nil
}

func scopeFromInput(input map[string]any) trends.Scope {
	var scope trends.Scope
	if nested, ok := input["analysis_scope"].(map[string]any); ok {
		scope.Platforms = platformsFromAny(nested["platforms"])
		scope.TimeRange, _ = nested["time_range"].(string)
	}
	if flat := platformsFromAny(input["platforms"]); len(flat) > 0 {
		scope.Platforms = flat
	}
	if tr, ok := input["time_range"].(string); ok && tr != "" {
		scope.TimeRange = tr
	}
	for _, k := range toStringSlice(input["keywords"]) {
		scope.Keywords = append(scope.Keywords, k)
	}
	return scope
}

func platformsFromAny(value any) []trends.Platform {
	var out []trends.Platform
	for _, s := range toStringSlice(value) {
		out = append(out, trends.Platform(s))
	}
	return out
}

func toStringSlice(value any) []string {
	var out []string
	switch items := value.(type) {
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = items
	}
	return out
}

func toAnySlice(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func toAnyMap(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
