// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package trends

import (
	"context"
	"testing"
	"time"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/resilience"
)

func TestObservationValidate(t *testing.T) {
	valid := NewObservation("AI fashion", PlatformTikTok, 0.85, 0.72)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid observation rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Observation)
	}{
		{"empty topic", func(o *Observation) { o.TrendTopic = "" }},
		{"unknown platform", func(o *Observation) { o.Platform = "myspace" }},
		{"virality above one", func(o *Observation) { o.ViralityScore = 1.2 }},
		{"virality below zero", func(o *Observation) { o.ViralityScore = -0.1 }},
		{"sentiment above one", func(o *Observation) { o.SentimentScore = 1.5 }},
		{"sentiment below minus one", func(o *Observation) { o.SentimentScore = -1.5 }},
		{"zero timestamp", func(o *Observation) { o.DetectedAt = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := valid
			tc.mutate(&o)
			err := o.Validate()
			if !errors.IsType(err, errors.InputValidation) {
				t.Errorf("expected InputValidation, got %v", err)
			}
		})
	}
}

func TestObservationBoundaryScores(t *testing.T) {
	for _, tc := range []struct{ virality, sentiment float64 }{
		{0, -1}, {1, 1}, {0.5, 0},
	} {
		o := NewObservation("topic", PlatformTwitter, tc.virality, tc.sentiment)
		if err := o.Validate(); err != nil {
			t.Errorf("boundary scores %v/%v must be accepted: %v", tc.virality, tc.sentiment, err)
		}
	}
}

func TestInMemoryStoreRejectsInvalid(t *testing.T) {
	store := NewInMemoryStore()
	o := NewObservation("topic", "friendster", 0.5, 0)
	err := store.StoreObservation(context.Background(), o)
	if !errors.IsType(err, errors.InputValidation) {
		t.Fatalf("invalid observation must not be persisted, got %v", err)
	}
	got, _ := store.Query(context.Background(), Query{})
	if len(got) != 0 {
		t.Errorf("store must stay empty after rejection")
	}
}

func TestInMemoryStoreQuery(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	old := NewObservation("legacy topic", PlatformTwitter, 0.3, 0.1)
	old.DetectedAt = time.Now().UTC().Add(-48 * time.Hour)
	recent := NewObservation("fresh topic", PlatformTwitter, 0.8, 0.5)
	other := NewObservation("tiktok topic", PlatformTikTok, 0.9, 0.2)

	for _, o := range []Observation{old, recent, other} {
		if err := store.StoreObservation(ctx, o); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	got, err := store.Query(ctx, Query{Platform: PlatformTwitter, Since: time.Now().UTC().Add(-24 * time.Hour)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].TrendTopic != "fresh topic" {
		t.Fatalf("filter mismatch: %+v", got)
	}
}

func TestInMemoryStoreSemanticSearch(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	for _, topic := range []string{"sustainable fashion", "AI avatars", "fashion week recap"} {
		if err := store.StoreObservation(ctx, NewObservation(topic, PlatformInstagram, 0.6, 0.3)); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	matches, err := store.SemanticSearch(ctx, "fashion", 10, 0.4)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected the two fashion topics, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Certainty < 0.4 {
			t.Errorf("match below certainty threshold: %v", m.Certainty)
		}
	}
}

// flakySource throttles the first failures requests, then serves.
type flakySource struct {
	platform     Platform
	failures     int
	calls        int
	observations []Observation
}

func (s *flakySource) Platform() Platform { return s.platform }
func (s *flakySource) CallCost() float64  { return 0.1 }

func (s *flakySource) FetchTrending(_ context.Context, _ time.Time) ([]Observation, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New(errors.RateLimitExceeded, "throttled", nil)
	}
	return s.observations, nil
}

func fastRetry() resilience.RetryConfig {
	return resilience.DefaultRetryConfig().
		WithInitialDelay(time.Millisecond).
		WithMaxDelay(5 * time.Millisecond)
}

func TestFetcherRetriesRateLimit(t *testing.T) {
	store := NewInMemoryStore()
	source := &flakySource{
		platform:     PlatformTikTok,
		failures:     2,
		observations: []Observation{NewObservation("AI fashion", PlatformTikTok, 0.85, 0.72)},
	}
	f := NewFetcher(store, []Source{source}, WithRetryConfig(fastRetry()))

	collected, err := f.Collect(context.Background(), nil, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(collected) != 1 {
		t.Fatalf("expected one observation after retries, got %d", len(collected))
	}
	if source.calls != 3 {
		t.Errorf("expected 3 calls (2 throttled), got %d", source.calls)
	}
}

func TestFetcherSurfacesExhaustedRetries(t *testing.T) {
	store := NewInMemoryStore()
	source := &flakySource{platform: PlatformTwitter, failures: 100}
	f := NewFetcher(store, []Source{source}, WithRetryConfig(fastRetry().WithMaxAttempts(2)))

	_, err := f.Collect(context.Background(), []Platform{PlatformTwitter}, time.Time{})
	if !errors.IsType(err, errors.RateLimitExceeded) {
		t.Fatalf("expected RateLimitExceeded after exhausting retries, got %v", err)
	}
}

func TestFetcherFallsBackToStoredObservations(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	held := NewObservation("AI fashion", PlatformTwitter, 0.85, 0.72)
	if err := store.StoreObservation(ctx, held); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	source := &flakySource{platform: PlatformTwitter, failures: 100}
	f := NewFetcher(store, []Source{source}, WithRetryConfig(fastRetry().WithMaxAttempts(2)))

	collected, err := f.Collect(ctx, []Platform{PlatformTwitter}, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("collect must degrade to stored observations, got %v", err)
	}
	if len(collected) != 1 || collected[0].ID != held.ID {
		t.Fatalf("expected the stored observation, got %+v", collected)
	}
}

func TestAnalyzeMarketTrends(t *testing.T) {
	store := NewInMemoryStore()
	source := &flakySource{
		platform: PlatformTikTok,
		observations: []Observation{
			NewObservation("AI fashion", PlatformTikTok, 0.85, 0.72),
			NewObservation("niche hobby", PlatformTikTok, 0.2, 0.1),
		},
	}
	f := NewFetcher(store, []Source{source}, WithRetryConfig(fastRetry()))

	analysis, err := f.AnalyzeMarketTrends(context.Background(), Scope{
		Platforms: []Platform{PlatformTikTok},
		TimeRange: "24h",
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.TrendingTopics) == 0 || analysis.TrendingTopics[0] != "AI fashion" {
		t.Fatalf("highest virality topic must rank first: %v", analysis.TrendingTopics)
	}
	if analysis.TrendScores["AI fashion"] != 0.85 {
		t.Errorf("trend score mismatch: %v", analysis.TrendScores)
	}
	if analysis.SentimentByTopic["AI fashion"] != 0.72 {
		t.Errorf("sentiment mismatch: %v", analysis.SentimentByTopic)
	}
	if len(analysis.RecommendedActions) == 0 {
		t.Errorf("viral positive topic must yield a recommended action")
	}
}

func TestAnalyzeMarketTrendsRejectsBadTimeRange(t *testing.T) {
	f := NewFetcher(NewInMemoryStore(), nil)
	_, err := f.AnalyzeMarketTrends(context.Background(), Scope{TimeRange: "fortnight"})
	if !errors.IsType(err, errors.InputValidation) {
		t.Fatalf("expected InputValidation, got %v", err)
	}
}
