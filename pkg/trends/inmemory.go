// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package trends

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is a simple in-process trend store. Semantic search degrades
// to token overlap scoring; production deployments use the qdrant backend.
type InMemoryStore struct {
	mu           sync.RWMutex
	observations []Observation
}

// NewInMemoryStore creates an empty in-memory trend store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// StoreObservation validates and appends an observation.
func (s *InMemoryStore) StoreObservation(_ context.Context, o Observation) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.observations = append(s.observations, o)
	s.mu.Unlock()
	return nil
}

// Query returns observations matching the filter, newest first.
func (s *InMemoryStore) Query(_ context.Context, q Query) ([]Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Observation
	for _, o := range s.observations {
		if q.Platform != "" && o.Platform != q.Platform {
			continue
		}
		if q.Topic != "" && o.TrendTopic != q.Topic {
			continue
		}
		if !q.Since.IsZero() && o.DetectedAt.Before(q.Since) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// SemanticSearch scores observations by token overlap with the query text.
func (s *InMemoryStore) SemanticSearch(_ context.Context, text string, limit int, certainty float32) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queryTokens := tokenize(text)
	var matches []Match
	for _, o := range s.observations {
		score := overlap(queryTokens, tokenize(o.TrendTopic))
		if score >= certainty {
			matches = append(matches, Match{Observation: o, Certainty: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Certainty > matches[j].Certainty })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(text)) {
		tokens[t] = true
	}
	return tokens
}

func overlap(a, b map[string]bool) float32 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for t := range a {
		if b[t] {
			common++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float32(common) / float32(smaller)
}
