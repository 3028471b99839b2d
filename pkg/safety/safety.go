// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package safety screens generated content for brand-safety risk before it
// reaches a publishing skill. A violation is terminal for the invocation and
// always routes to a human.
package safety

import (
	"context"
	"regexp"
	"strings"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
)

// Category is a class of content a brand will not publish.
type Category string

const (
	CategoryHate        Category = "hate"
	CategoryViolence    Category = "violence"
	CategoryNSFW        Category = "nsfw"
	CategoryDangerous   Category = "dangerous"
	CategoryProfanity   Category = "profanity"
	CategoryControversy Category = "controversy"
	CategorySpam        Category = "spam"
)

// RiskLevel grades how badly a violation would damage the brand.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// RiskAtLeast reports whether a is at least as severe as b.
func RiskAtLeast(a, b RiskLevel) bool {
	return riskOrder[a] >= riskOrder[b]
}

// Result is the outcome of screening one piece of content.
type Result struct {
	Violated   bool
	Category   Category
	RiskLevel  RiskLevel
	Reason     string
	Confidence float64
	Metadata   map[string]any
}

type categoryPattern struct {
	patterns []*regexp.Regexp
	keywords []string
	risk     RiskLevel
}

// Checker screens text against category patterns. Pattern matching is a
// conservative first line; deployments layer an ML classifier behind it.
type Checker struct {
	categories map[Category]categoryPattern
}

// Option configures a Checker.
type Option func(*Checker)

var defaultPatterns = map[Category]struct {
	patterns []string
	keywords []string
	risk     RiskLevel
}{
	CategoryHate: {
		patterns: []string{
			`(?i)(all|every)\s+\w+\s+(people\s+)?(are|is)\s+(scum|trash|vermin)`,
			`(?i)go\s+back\s+to\s+your\s+country`,
		},
		risk: RiskCritical,
	},
	CategoryViolence: {
		patterns: []string{
			`(?i)(deserve[sd]?\s+to\s+(die|suffer))`,
			`(?i)(kill|hurt|attack)\s+(them|him|her)\s+all`,
		},
		risk: RiskCritical,
	},
	CategoryNSFW: {
		patterns: []string{
			`(?i)\b(explicit|nsfw)\s+content\b`,
			`(?i)onlyfans\.com`,
		},
		keywords: []string{"xxx"},
		risk:     RiskHigh,
	},
	CategoryDangerous: {
		patterns: []string{
			`(?i)how\s+to\s+(make|build)\s+(a\s+)?(bomb|weapon)`,
			`(?i)dangerous\s+(challenge|stunt)\s+tutorial`,
		},
		risk: RiskCritical,
	},
	CategoryProfanity: {
		keywords: []string{"wtf", "stfu"},
		risk:     RiskMedium,
	},
	CategoryControversy: {
		patterns: []string{
			`(?i)vote\s+for\s+\w+\s+or\s+else`,
			`(?i)(vaccines?|elections?)\s+(are|were)\s+(fake|rigged)`,
		},
		risk: RiskHigh,
	},
	CategorySpam: {
		patterns: []string{
			`(?i)(dm|click)\s+(me|here)\s+for\s+free\s+(money|crypto|followers)`,
			`(?i)guaranteed\s+\d+x\s+returns?`,
		},
		risk: RiskMedium,
	},
}

// NewChecker creates a checker for the given categories; with none given,
// every default category is enabled.
func NewChecker(categories []Category, opts ...Option) *Checker {
	if len(categories) == 0 {
		for cat := range defaultPatterns {
			categories = append(categories, cat)
		}
	}
	c := &Checker{categories: make(map[Category]categoryPattern)}
	for _, cat := range categories {
		def, ok := defaultPatterns[cat]
		if !ok {
			continue
		}
		cp := categoryPattern{keywords: def.keywords, risk: def.risk}
		for _, p := range def.patterns {
			if re, err := regexp.Compile(p); err == nil {
				cp.patterns = append(cp.patterns, re)
			}
		}
		c.categories[cat] = cp
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCustomPattern adds a brand-specific pattern to a category.
func WithCustomPattern(category Category, pattern string, risk RiskLevel) Option {
	return func(c *Checker) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return
		}
		cp := c.categories[category]
		cp.patterns = append(cp.patterns, re)
		if cp.risk == "" {
			cp.risk = risk
		}
		c.categories[category] = cp
	}
}

// WithKeywords adds blocked keywords to a category.
func WithKeywords(category Category, risk RiskLevel, keywords ...string) Option {
	return func(c *Checker) {
		cp := c.categories[category]
		cp.keywords = append(cp.keywords, keywords...)
		if cp.risk == "" {
			cp.risk = risk
		}
		c.categories[category] = cp
	}
}

// Check screens text and returns the first violation found.
func (c *Checker) Check(ctx context.Context, text string) Result {
	if text == "" {
		return Result{}
	}
	normalized := strings.ToLower(text)

	for cat, cp := range c.categories {
		select {
		case <-ctx.Done():
			return Result{}
		default:
		}

		for _, pattern := range cp.patterns {
			if pattern.MatchString(normalized) {
				return Result{
					Violated:   true,
					Category:   cat,
					RiskLevel:  cp.risk,
					Reason:     "brand safety violation: " + string(cat),
					Confidence: 0.9,
					Metadata:   map[string]any{"type": "pattern"},
				}
			}
		}
		for _, keyword := range cp.keywords {
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return Result{
					Violated:   true,
					Category:   cat,
					RiskLevel:  cp.risk,
					Reason:     "brand safety violation: " + string(cat),
					Confidence: 0.8,
					Metadata:   map[string]any{"type": "keyword", "keyword": keyword},
				}
			}
		}
	}
	return Result{}
}

// Screen checks text and converts a violation into the terminal taxonomy
// error. A nil return means the content is publishable.
func (c *Checker) Screen(ctx context.Context, text string) error {
	result := c.Check(ctx, text)
	if !result.Violated {
		return nil
	}
	return errors.New(errors.ContentSafetyViolation, result.Reason, nil).
		WithContext("category", string(result.Category)).
		WithContext("brand_risk_level", string(result.RiskLevel)).
		WithAttribute("safety.category", string(result.Category))
}
