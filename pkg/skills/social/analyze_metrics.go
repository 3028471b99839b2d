// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package social

import (
	"context"
	"fmt"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// MetricsSnapshot is one account's raw numbers for the requested period.
type MetricsSnapshot struct {
	Impressions int64
	Likes       int64
	Comments    int64
	Shares      int64
	Followers   int64
}

// BenchmarkSet is the comparison data the provider can supply. Nil maps mean
// the provider has nothing for that axis.
type BenchmarkSet struct {
	CompetitorEngagement map[string]float64
	IndustryEngagement   float64
	PriorPeriod          *MetricsSnapshot
}

// MetricsProvider fetches account metrics and benchmark data from the
// platform APIs.
type MetricsProvider interface {
	FetchMetrics(ctx context.Context, platform, accountID, period string) (MetricsSnapshot, error)
	FetchBenchmarks(ctx context.Context, platform, accountID string) (BenchmarkSet, error)
}

// AnalyzeMetrics turns raw account numbers into engagement analysis with
// optional competitor, industry and historical benchmarking.
type AnalyzeMetrics struct {
	skill.Base
	provider MetricsProvider
}

// NewAnalyzeMetrics creates the metrics skill over the provider.
func NewAnalyzeMetrics(provider MetricsProvider) *AnalyzeMetrics {
	return &AnalyzeMetrics{
		Base:     skill.NewBase(skill.CategorySocialEngagement),
		provider: provider,
	}
}

func (s *AnalyzeMetrics) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_analyze_metrics",
		Name:     "Analyze Metrics",
		Category: skill.CategorySocialEngagement,
		Version:  "1.0.0",
	}
}

func (s *AnalyzeMetrics) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("platform", schema.NewEnum("youtube", "tiktok", "instagram", "twitter")).
		Property("account_id", schema.NewString()).
		Property("period", schema.NewEnum("24h", "7d", "30d")).
		Property("benchmarking", schema.NewObject().
			Property("competitor_comparison", schema.NewBoolean()).
			Property("industry_benchmarks", schema.NewBoolean()).
			Property("historical_comparison", schema.NewBoolean())).
		Require("platform", "account_id")
}

func (s *AnalyzeMetrics) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("performance_summary", schema.NewObject().
			Property("impressions", schema.NewInteger()).
			Property("engagement_rate", schema.NewNumber().Bounds(0, 1)).
			Property("follower_count", schema.NewInteger()).
			Require("impressions", "engagement_rate")).
		Property("benchmarks", schema.NewObject()).
		Property("insights", schema.NewArray(schema.NewString())).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("performance_summary", "confidence_score")
}

func (s *AnalyzeMetrics) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	platform, _ := input["platform"].(string)
	accountID, _ := input["account_id"].(string)
	period, _ := input["period"].(string)
	if period == "" {
		period = "7d"
	}

	snapshot, err := s.provider.FetchMetrics(ctx, platform, accountID, period)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("platform", platform).
			WithContext("account_id", accountID)
	}

	rate := engagementRate(snapshot)
	insights := []any{}
	benchmarks := map[string]any{}
	benchmarkGaps := 0

	wantCompetitors, wantIndustry, wantHistory := benchmarkFlags(input["benchmarking"])
	if wantCompetitors || wantIndustry || wantHistory {
		set, err := s.provider.FetchBenchmarks(ctx, platform, accountID)
		if err != nil {
			return nil, errors.Classify(err).
				WithContext("platform", platform).
				WithContext("account_id", accountID)
		}

		if wantCompetitors {
			if len(set.CompetitorEngagement) > 0 {
				competitors := make(map[string]any, len(set.CompetitorEngagement))
				ahead := 0
				for name, competitorRate := range set.CompetitorEngagement {
					competitors[name] = competitorRate
					if rate > competitorRate {
						ahead++
					}
				}
				benchmarks["competitor_comparison"] = competitors
				insights = append(insights,
					fmt.Sprintf("outperforming %d of %d tracked competitors on engagement", ahead, len(set.CompetitorEngagement)))
			} else {
				benchmarkGaps++
			}
		}
		if wantIndustry {
			if set.IndustryEngagement > 0 {
				benchmarks["industry_benchmarks"] = map[string]any{
					"industry_engagement_rate": set.IndustryEngagement,
					"delta":                    rate - set.IndustryEngagement,
				}
				if rate < set.IndustryEngagement {
					insights = append(insights, "engagement rate is below the industry benchmark")
				}
			} else {
				benchmarkGaps++
			}
		}
		if wantHistory {
			if set.PriorPeriod != nil {
				priorRate := engagementRate(*set.PriorPeriod)
				benchmarks["historical_comparison"] = map[string]any{
					"prior_engagement_rate": priorRate,
					"delta":                 rate - priorRate,
				}
				if rate > priorRate {
					insights = append(insights, "engagement is trending up versus the prior period")
				}
			} else {
				benchmarkGaps++
			}
		}
	}

	dataQuality := 1.0
	if snapshot.Impressions == 0 {
		dataQuality = 0.3
	}
	completeness := 1.0
	if benchmarkGaps > 0 {
		completeness = 0.7
	}
	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        dataQuality,
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: completeness,
	})

	return map[string]any{
		"performance_summary": map[string]any{
			"impressions":     int(snapshot.Impressions),
			"engagement_rate": rate,
			"follower_count":  int(snapshot.Followers),
		},
		"benchmarks":       benchmarks,
		"insights":         insights,
		"confidence_score": score,
	}, nil
}

// engagementRate is interactions over impressions, clamped to [0, 1].
func engagementRate(m MetricsSnapshot) float64 {
	if m.Impressions == 0 {
		return 0
	}
	rate := float64(m.Likes+m.Comments+m.Shares) / float64(m.Impressions)
	return confidence.Clamp(rate)
}

func benchmarkFlags(value any) (competitors, industry, history bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return false, false, false
	}
	competitors, _ = m["competitor_comparison"].(bool)
	industry, _ = m["industry_benchmarks"].(bool)
	history, _ = m["historical_comparison"].(bool)
	return competitors, industry, history
}
