// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package marketintel

import (
	"context"
	"time"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/safety"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// Article is one news item from the provider.
type Article struct {
	Title       string
	URL         string
	Source      string
	Summary     string
	PublishedAt time.Time
}

// NewsProvider fetches recent articles for the given topics.
type NewsProvider interface {
	FetchArticles(ctx context.Context, topics []string, limit int) ([]Article, error)
}

// FetchNews gathers topical articles, dropping anything that fails the
// brand safety screen when filtering is requested.
type FetchNews struct {
	skill.Base
	provider NewsProvider
	checker  *safety.Checker
}

// NewFetchNews creates the news skill. A nil checker enables the default
// brand safety categories.
func NewFetchNews(provider NewsProvider, checker *safety.Checker) *FetchNews {
	if checker == nil {
		checker = safety.NewChecker(nil)
	}
	return &FetchNews{
		Base:     skill.NewBase(skill.CategoryMarketIntelligence),
		provider: provider,
		checker:  checker,
	}
}

func (s *FetchNews) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_fetch_news",
		Name:     "Fetch News",
		Category: skill.CategoryMarketIntelligence,
		Version:  "1.0.0",
	}
}

func (s *FetchNews) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("topics", schema.NewArray(schema.NewString())).
		Property("max_articles", schema.NewInteger().Bounds(1, 100)).
		Property("content_filtering", schema.NewObject().
			Property("brand_safety_filter", schema.NewBoolean()).
			Property("exclude_nsfw", schema.NewBoolean())).
		Require("topics")
}

func (s *FetchNews) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("articles", schema.NewArray(schema.NewObject().
			Property("title", schema.NewString()).
			Property("url", schema.NewString().WithFormat(schema.FormatURI)).
			Property("source", schema.NewString()).
			Property("summary", schema.NewString()).
			Property("published_at", schema.NewString().WithFormat(schema.FormatDateTime)).
			Require("title", "url"))).
		Property("filtered_count", schema.NewInteger()).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("articles", "confidence_score")
}

func (s *FetchNews) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	topics := toStringSlice(input["topics"])
	limit := 20
	if raw, ok := input["max_articles"]; ok {
		switch v := raw.(type) {
		case int:
			limit = v
		case float64:
			limit = int(v)
		}
	}

	filterUnsafe := false
	if filtering, ok := input["content_filtering"].(map[string]any); ok {
		brandFilter, _ := filtering["brand_safety_filter"].(bool)
		excludeNSFW, _ := filtering["exclude_nsfw"].(bool)
		filterUnsafe = brandFilter || excludeNSFW
	}

	articles, err := s.provider.FetchArticles(ctx, topics, limit)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("topics", topics)
	}

	filtered := 0
	items := make([]any, 0, len(articles))
	for _, a := range articles {
		if filterUnsafe {
			if result := s.checker.Check(ctx, a.Title+" "+a.Summary); result.Violated {
				filtered++
				continue
			}
		}
		items = append(items, map[string]any{
			"title":        a.Title,
			"url":          a.URL,
			"source":       a.Source,
			"summary":      a.Summary,
			"published_at": a.PublishedAt.UTC().Format(time.RFC3339),
		})
	}

	dataQuality := 1.0
	if len(items) == 0 {
		dataQuality = 0.3
	}
	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        dataQuality,
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: 1,
	})

	return map[string]any{
		"articles":         items,
		"filtered_count":   filtered,
		"confidence_score": score,
	}, nil
}
