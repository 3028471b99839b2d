// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package trends

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/governor"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/resilience"
)

// Source pulls raw trend observations from one platform API.
type Source interface {
	// Platform names the platform this source covers.
	Platform() Platform

	// FetchTrending returns current trend observations. Implementations
	// signal throttling with RateLimitExceeded so the fetcher can back off.
	FetchTrending(ctx context.Context, since time.Time) ([]Observation, error)

	// CallCost is the budget cost of one FetchTrending call.
	CallCost() float64
}

// Scope bounds a market analysis request.
type Scope struct {
	Platforms []Platform
	TimeRange string
	Keywords  []string
}

// Analysis is the aggregated view over the scoped observations.
type Analysis struct {
	TrendingTopics     []string           `json:"trending_topics"`
	TrendScores        map[string]float64 `json:"trend_scores"`
	SentimentByTopic   map[string]float64 `json:"sentiment_analysis"`
	MarketInsights     []string           `json:"market_insights"`
	RecommendedActions []string           `json:"recommended_actions"`
}

// Fetcher collects observations from platform sources and aggregates them
// into market analyses. Rate-limited sources are retried with backoff; a
// per-platform circuit breaker keeps a dead API from stalling the rest.
type Fetcher struct {
	sources  map[Platform]Source
	store    Store
	retry    resilience.RetryConfig
	breakers map[Platform]*resilience.CircuitBreaker
	logger   *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRetryConfig overrides the default retry policy.
func WithRetryConfig(rc resilience.RetryConfig) FetcherOption {
	return func(f *Fetcher) { f.retry = rc }
}

// WithFetcherLogger sets the structured logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a fetcher over the given sources, persisting into store.
func NewFetcher(store Store, sources []Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		sources:  make(map[Platform]Source, len(sources)),
		store:    store,
		retry:    resilience.DefaultRetryConfig(),
		breakers: make(map[Platform]*resilience.CircuitBreaker, len(sources)),
		logger:   slog.Default(),
	}
	for _, s := range sources {
		f.sources[s.Platform()] = s
		f.breakers[s.Platform()] = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: string(s.Platform()) + "_trend_source",
		})
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(slog.String("component", "trend_fetcher"))
	return f
}

// Collect pulls observations from every scoped platform, validates them and
// persists the valid ones. Platforms without a source are skipped; a platform
// that stays down after retries fails the collection.
func (f *Fetcher) Collect(ctx context.Context, platforms []Platform, since time.Time) ([]Observation, error) {
	if len(platforms) == 0 {
		for p := range f.sources {
			platforms = append(platforms, p)
		}
	}

	var collected []Observation
	for _, platform := range platforms {
		source, ok := f.sources[platform]
		if !ok {
			f.logger.Warn("no trend source for platform", slog.String("platform", string(platform)))
			continue
		}
		breaker := f.breakers[platform]

		var observations []Observation
		err := f.retry.Do(ctx, func() error {
			return breaker.Call(ctx, func() error {
				var fetchErr error
				observations, fetchErr = source.FetchTrending(ctx, since)
				return fetchErr
			})
		})
		if err != nil {
			// A platform that stays down degrades to the observations we
			// already hold for it; only a cold store fails the collection.
			value, fbErr := f.storedFallback(platform, since).Execute(ctx, err)
			if fbErr != nil {
				return nil, errors.Classify(err).
					WithContext("platform", string(platform))
			}
			stored := value.([]Observation)
			f.logger.Warn("live fetch failed, serving stored observations",
				slog.String("platform", string(platform)),
				slog.Int("observations", len(stored)),
				slog.Any("error", err),
			)
			collected = append(collected, stored...)
			continue
		}
		governor.AddCost(ctx, source.CallCost())

		for _, o := range observations {
			if err := f.store.StoreObservation(ctx, o); err != nil {
				f.logger.Warn("dropping invalid observation",
					slog.String("platform", string(platform)),
					slog.String("topic", o.TrendTopic),
					slog.Any("error", err),
				)
				continue
			}
			collected = append(collected, o)
		}
	}
	return collected, nil
}

// storedFallback serves observations already persisted for the platform when
// its live source is unavailable.
func (f *Fetcher) storedFallback(platform Platform, since time.Time) resilience.FallbackStrategy {
	return resilience.FallbackFunc(func(ctx context.Context, primaryErr error) (any, error) {
		stored, err := f.store.Query(ctx, Query{Platform: platform, Since: since})
		if err != nil || len(stored) == 0 {
			return nil, errors.New(errors.ExternalAPIFailure, "no stored observations to fall back on", primaryErr).
				WithContext("platform", string(platform))
		}
		return stored, nil
	})
}

// AnalyzeMarketTrends aggregates stored observations for the scope into
// trending topics, per-topic scores and sentiment, plus derived actions.
func (f *Fetcher) AnalyzeMarketTrends(ctx context.Context, scope Scope) (Analysis, error) {
	window, err := parseTimeRange(scope.TimeRange)
	if err != nil {
		return Analysis{}, err
	}
	since := time.Now().UTC().Add(-window)

	if _, err := f.Collect(ctx, scope.Platforms, since); err != nil {
		return Analysis{}, err
	}

	type topicStats struct {
		virality  float64
		sentiment float64
		count     int
	}
	stats := make(map[string]*topicStats)

	platforms := scope.Platforms
	if len(platforms) == 0 {
		platforms = Platforms()
	}
	for _, platform := range platforms {
		observations, err := f.store.Query(ctx, Query{Platform: platform, Since: since})
		if err != nil {
			return Analysis{}, err
		}
		for _, o := range observations {
			st, ok := stats[o.TrendTopic]
			if !ok {
				st = &topicStats{}
				stats[o.TrendTopic] = st
			}
			st.virality += o.ViralityScore
			st.sentiment += o.SentimentScore
			st.count++
		}
	}

	analysis := Analysis{
		TrendScores:      make(map[string]float64, len(stats)),
		SentimentByTopic: make(map[string]float64, len(stats)),
	}
	for topic, st := range stats {
		analysis.TrendScores[topic] = st.virality / float64(st.count)
		analysis.SentimentByTopic[topic] = st.sentiment / float64(st.count)
		analysis.TrendingTopics = append(analysis.TrendingTopics, topic)
	}
	sort.Slice(analysis.TrendingTopics, func(i, j int) bool {
		return analysis.TrendScores[analysis.TrendingTopics[i]] > analysis.TrendScores[analysis.TrendingTopics[j]]
	})

	for _, topic := range analysis.TrendingTopics {
		score := analysis.TrendScores[topic]
		sentiment := analysis.SentimentByTopic[topic]
		switch {
		case score >= 0.7 && sentiment > 0.2:
			analysis.MarketInsights = append(analysis.MarketInsights,
				fmt.Sprintf("%s is viral with positive sentiment", topic))
			analysis.RecommendedActions = append(analysis.RecommendedActions,
				fmt.Sprintf("create content around %s within 24h", topic))
		case score >= 0.7 && sentiment < -0.2:
			analysis.MarketInsights = append(analysis.MarketInsights,
				fmt.Sprintf("%s is viral but sentiment is hostile", topic))
			analysis.RecommendedActions = append(analysis.RecommendedActions,
				fmt.Sprintf("avoid %s until sentiment recovers", topic))
		case score >= 0.4:
			analysis.MarketInsights = append(analysis.MarketInsights,
				fmt.Sprintf("%s is gaining traction", topic))
			analysis.RecommendedActions = append(analysis.RecommendedActions,
				fmt.Sprintf("monitor %s for breakout", topic))
		}
	}
	return analysis, nil
}

// parseTimeRange accepts the scoped lookback windows.
func parseTimeRange(s string) (time.Duration, error) {
	switch s {
	case "", "24h":
		return 24 * time.Hour, nil
	case "1h":
		return time.Hour, nil
	case "6h":
		return 6 * time.Hour, nil
	case "7d":
		return 7 * 24 * time.Hour, nil
	case "30d":
		return 30 * 24 * time.Hour, nil
	}
	return 0, errors.New(errors.InputValidation, "unsupported time_range", nil).
		WithContext("time_range", s)
}
