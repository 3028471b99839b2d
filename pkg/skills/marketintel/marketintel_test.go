// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package marketintel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/registry"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/routing"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/trends"
)

type stubSource struct {
	platform     trends.Platform
	observations []trends.Observation
	err          error
}

func (s *stubSource) Platform() trends.Platform { return s.platform }
func (s *stubSource) CallCost() float64         { return 0.1 }

func (s *stubSource) FetchTrending(_ context.Context, _ time.Time) ([]trends.Observation, error) {
	return s.observations, s.err
}

type stubNewsProvider struct {
	articles []Article
	err      error
}

func (s *stubNewsProvider) FetchArticles(_ context.Context, _ []string, _ int) ([]Article, error) {
	return s.articles, s.err
}

type stubSentiment struct {
	result SentimentResult
	err    error
}

func (s *stubSentiment) Analyze(_ context.Context, _ []string) (SentimentResult, error) {
	return s.result, s.err
}

func twitterFetcher() *trends.Fetcher {
	source := &stubSource{
		platform: trends.PlatformTwitter,
		observations: []trends.Observation{
			trends.NewObservation("AI", trends.PlatformTwitter, 0.85, 0.72),
		},
	}
	return trends.NewFetcher(trends.NewInMemoryStore(), []trends.Source{source})
}

func TestMarketIntelSkillsSatisfyContract(t *testing.T) {
	skills := []skill.Skill{
		NewAnalyzeTrends(twitterFetcher()),
		NewFetchNews(&stubNewsProvider{}, nil),
		NewSentimentAnalysis(&stubSentiment{}),
	}
	for _, s := range skills {
		if err := skill.CheckContract(s); err != nil {
			t.Errorf("%s violates the contract: %v", s.Descriptor().ID, err)
		}
		if s.Descriptor().Category != skill.CategoryMarketIntelligence {
			t.Errorf("%s in wrong category", s.Descriptor().ID)
		}
	}
}

func TestAnalyzeTrendsThroughRegistry(t *testing.T) {
	r := registry.New()
	if err := r.Register(NewAnalyzeTrends(twitterFetcher())); err != nil {
		t.Fatalf("register: %v", err)
	}

	input := map[string]any{
		"keywords":   []any{"AI"},
		"platforms":  []any{"twitter"},
		"time_range": "1h",
	}
	record, err := r.Invoke(context.Background(), "skill_analyze_trends", input)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	scores, ok := record.Output["trend_scores"].(map[string]any)
	if !ok {
		t.Fatalf("trend_scores missing: %v", record.Output)
	}
	if got := scores["AI"].(float64); got != 0.85 {
		t.Errorf("trend score = %v, want 0.85", got)
	}
	sentiment, ok := record.Output["sentiment_analysis"].(map[string]any)
	if !ok {
		t.Fatalf("sentiment_analysis missing: %v", record.Output)
	}
	if got := sentiment["AI"].(float64); got != 0.72 {
		t.Errorf("sentiment = %v, want 0.72", got)
	}
	if actions := record.Output["recommended_actions"].([]any); len(actions) == 0 {
		t.Errorf("expected recommended actions for a viral positive topic")
	}
	score, ok := record.Output["confidence_score"].(float64)
	if !ok || score < 0 || score > 1 {
		t.Errorf("confidence_score = %v, want [0, 1]", record.Output["confidence_score"])
	}
	if record.Disposition == routing.Disposition("") {
		t.Errorf("record must carry a disposition")
	}
}

func TestAnalyzeTrendsConcurrentInvocations(t *testing.T) {
	r := registry.New()
	if err := r.Register(NewAnalyzeTrends(twitterFetcher())); err != nil {
		t.Fatalf("register: %v", err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Invoke(context.Background(), "skill_analyze_trends", map[string]any{
				"keywords":   []any{"AI"},
				"platforms":  []any{"twitter"},
				"time_range": "1h",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent invoke: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 15*time.Second {
		t.Errorf("5 concurrent invocations took %v, want under 15s", elapsed)
	}
}

func TestAnalyzeTrendsRejectsBadTimeRange(t *testing.T) {
	s := NewAnalyzeTrends(twitterFetcher())
	_, err := s.Execute(context.Background(), map[string]any{
		"keywords":   []any{"AI"},
		"time_range": "1h",
		"platforms":  []any{"myspace"},
	})
	if !errors.IsType(err, errors.InputValidation) {
		t.Fatalf("expected InputValidation for unknown platform, got %v", err)
	}
}

func TestAnalyzeTrendsNestedScope(t *testing.T) {
	s := NewAnalyzeTrends(twitterFetcher())
	out, err := s.Execute(context.Background(), map[string]any{
		"keywords": []any{"AI"},
		"analysis_scope": map[string]any{
			"platforms":  []any{"twitter"},
			"time_range": "24h",
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	topics := out["trending_topics"].([]any)
	if len(topics) != 1 || topics[0] != "AI" {
		t.Errorf("trending topics = %v, want [AI]", topics)
	}
}

func TestFetchNewsFiltersUnsafeArticles(t *testing.T) {
	provider := &stubNewsProvider{articles: []Article{
		{Title: "Solar adoption hits record high", URL: "https://news.test/solar", Source: "wire", PublishedAt: time.Now()},
		{Title: "DM me for free crypto, guaranteed 10x returns", URL: "https://news.test/scam", Source: "spamblog", PublishedAt: time.Now()},
	}}
	s := NewFetchNews(provider, nil)

	out, err := s.Execute(context.Background(), map[string]any{
		"topics": []any{"energy"},
		"content_filtering": map[string]any{
			"brand_safety_filter": true,
			"exclude_nsfw":        true,
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if verr := skill.ValidateOutput(s, out); verr != nil {
		t.Fatalf("output violates own schema: %v", verr)
	}
	articles := out["articles"].([]any)
	if len(articles) != 1 {
		t.Fatalf("expected one surviving article, got %v", articles)
	}
	if out["filtered_count"] != 1 {
		t.Errorf("filtered_count = %v, want 1", out["filtered_count"])
	}
}

func TestFetchNewsKeepsAllWithoutFiltering(t *testing.T) {
	provider := &stubNewsProvider{articles: []Article{
		{Title: "Solar adoption hits record high", URL: "https://news.test/solar", PublishedAt: time.Now()},
		{Title: "DM me for free crypto, guaranteed 10x returns", URL: "https://news.test/scam", PublishedAt: time.Now()},
	}}
	s := NewFetchNews(provider, nil)

	out, err := s.Execute(context.Background(), map[string]any{"topics": []any{"energy"}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := len(out["articles"].([]any)); got != 2 {
		t.Errorf("articles = %d, want 2 without filtering", got)
	}
}

func TestSentimentAnalysisEmotionBreakdown(t *testing.T) {
	s := NewSentimentAnalysis(&stubSentiment{result: SentimentResult{
		OverallScore: 0.64,
		Emotions: EmotionBreakdown{
			Joy: 0.7, Sadness: 0.05, Anger: 0.02, Fear: 0.03, Surprise: 0.4, Trust: 0.6,
		},
		ModelConfidence: 0.9,
	}})

	out, err := s.Execute(context.Background(), map[string]any{
		"content": []any{"loving the new drop", "this brand gets it"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if verr := skill.ValidateOutput(s, out); verr != nil {
		t.Fatalf("output violates own schema: %v", verr)
	}

	analysis := out["sentiment_analysis"].(map[string]any)
	if analysis["sentiment_label"] != "positive" {
		t.Errorf("label = %v, want positive for score 0.64", analysis["sentiment_label"])
	}
	breakdown := analysis["emotion_breakdown"].(map[string]any)
	for _, emotion := range []string{"joy", "sadness", "anger", "fear", "surprise", "trust"} {
		v, ok := breakdown[emotion].(float64)
		if !ok || v < 0 || v > 1 {
			t.Errorf("emotion %s = %v, want [0, 1]", emotion, breakdown[emotion])
		}
	}
}

func TestSentimentAnalysisRejectsEmptyContent(t *testing.T) {
	s := NewSentimentAnalysis(&stubSentiment{})
	_, err := s.Execute(context.Background(), map[string]any{"content": []any{}})
	if !errors.IsType(err, errors.InputValidation) {
		t.Fatalf("expected InputValidation, got %v", err)
	}
}
