// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package trends models market trend observations and the stores that hold
// them. Observations are produced by the market intelligence skills and
// consumed by content planning.
package trends

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
)

// Platform identifies a social network an observation came from.
type Platform string

const (
	PlatformTwitter       Platform = "twitter"
	PlatformInstagram     Platform = "instagram"
	PlatformTikTok        Platform = "tiktok"
	PlatformYouTubeShorts Platform = "youtube_shorts"
)

// Platforms returns all supported platforms.
func Platforms() []Platform {
	return []Platform{PlatformTwitter, PlatformInstagram, PlatformTikTok, PlatformYouTubeShorts}
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformInstagram, PlatformTikTok, PlatformYouTubeShorts:
		return true
	}
	return false
}

// Observation is a single trend measurement on one platform at one point
// in time. ViralityScore is normalized to [0, 1]; SentimentScore spans
// [-1, 1] with negative values meaning hostile sentiment.
type Observation struct {
	ID              string    `json:"id"`
	TrendTopic      string    `json:"trend_topic"`
	Platform        Platform  `json:"platform"`
	ViralityScore   float64   `json:"virality_score"`
	SentimentScore  float64   `json:"sentiment_score"`
	ContentExamples []string  `json:"content_examples,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
}

// NewObservation creates an observation with a fresh id and timestamp.
func NewObservation(topic string, platform Platform, virality, sentiment float64) Observation {
	return Observation{
		ID:             uuid.NewString(),
		TrendTopic:     topic,
		Platform:       platform,
		ViralityScore:  virality,
		SentimentScore: sentiment,
		DetectedAt:     time.Now().UTC(),
	}
}

// ObservationSchema declares the observation shape for contract checks and
// payload validation at ingestion boundaries.
func ObservationSchema() *schema.Schema {
	platforms := make([]any, 0, len(Platforms()))
	for _, p := range Platforms() {
		platforms = append(platforms, string(p))
	}
	return schema.NewObject().
		Property("trend_topic", schema.NewString().WithDescription("normalized topic label")).
		Property("platform", schema.NewEnum(platforms...)).
		Property("virality_score", schema.NewNumber().Bounds(0, 1)).
		Property("sentiment_score", schema.NewNumber().Bounds(-1, 1)).
		Property("content_examples", schema.NewArray(schema.NewString())).
		Property("detected_at", schema.NewString().WithFormat(schema.FormatDateTime)).
		Require("trend_topic", "platform", "virality_score", "sentiment_score", "detected_at")
}

// Validate checks the observation against its invariants. Violations come
// back as a typed InputValidation error so they are never persisted.
func (o Observation) Validate() error {
	var violations []string
	if o.TrendTopic == "" {
		violations = append(violations, "trend_topic: must not be empty")
	}
	if !o.Platform.Valid() {
		violations = append(violations, fmt.Sprintf("platform: unknown platform %q", o.Platform))
	}
	if o.ViralityScore < 0 || o.ViralityScore > 1 {
		violations = append(violations, fmt.Sprintf("virality_score: %v outside [0, 1]", o.ViralityScore))
	}
	if o.SentimentScore < -1 || o.SentimentScore > 1 {
		violations = append(violations, fmt.Sprintf("sentiment_score: %v outside [-1, 1]", o.SentimentScore))
	}
	if o.DetectedAt.IsZero() {
		violations = append(violations, "detected_at: must be set")
	}
	if len(violations) > 0 {
		return errors.New(errors.InputValidation, "invalid trend observation", nil).
			WithContext("violations", violations)
	}
	return nil
}

// Query selects observations from a store.
type Query struct {
	Platform Platform
	Topic    string
	Since    time.Time
	Limit    int
}

// Match is an observation returned from a semantic search together with
// its similarity score.
type Match struct {
	Observation Observation
	Certainty   float32
}

// Store persists trend observations. Implementations must validate before
// accepting an observation.
type Store interface {
	// StoreObservation persists a validated observation.
	StoreObservation(ctx context.Context, o Observation) error

	// Query returns observations matching the structural filter, newest first.
	Query(ctx context.Context, q Query) ([]Observation, error)

	// SemanticSearch returns the observations most similar to the text query,
	// restricted to matches at or above the certainty threshold.
	SemanticSearch(ctx context.Context, text string, limit int, certainty float32) ([]Match, error)
}

// Embedder turns text into a vector for semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
