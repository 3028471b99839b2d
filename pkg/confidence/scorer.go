// SPDX-License-Identifier: Apache-2.0
// Package confidence combines named sub-metric scores into the single
// bounded confidence score that drives HITL routing.
package confidence

import "math"

// Canonical sub-metric names. Skills may report additional metrics; unknown
// names fall back to the scorer's default weight.
const (
	MetricDataQuality        = "data_quality"
	MetricProcessingSuccess  = "processing_success"
	MetricOutputCompleteness = "output_completeness"
	MetricPerformance        = "performance"
)

// Weights maps sub-metric names to their relative weight. Weights need not
// sum to one; the combination normalizes over the weights actually present.
type Weights map[string]float64

// Scorer computes a weighted confidence score. The zero value is not usable;
// construct with NewScorer.
type Scorer struct {
	weights       Weights
	defaultWeight float64
}

// DefaultWeights is the canonical weighting applied when a skill does not
// declare its own: processing success dominates, performance matters least.
func DefaultWeights() Weights {
	return Weights{
		MetricDataQuality:        0.30,
		MetricProcessingSuccess:  0.35,
		MetricOutputCompleteness: 0.25,
		MetricPerformance:        0.10,
	}
}

// NewScorer creates a scorer with the given weights. Nil or empty weights
// fall back to DefaultWeights. Non-positive weights are dropped.
func NewScorer(weights Weights) *Scorer {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	cleaned := make(Weights, len(weights))
	for name, w := range weights {
		if w > 0 {
			cleaned[name] = w
		}
	}
	if len(cleaned) == 0 {
		cleaned = DefaultWeights()
	}
	return &Scorer{weights: cleaned, defaultWeight: 0.10}
}

// Score combines the sub-metrics into a single value in [0,1]. The function
// is total over any non-empty mapping: out-of-range sub-metrics are clamped
// before combination, never rejected, and unknown metric names participate
// with the default weight. An empty mapping scores zero confidence.
func (s *Scorer) Score(metrics map[string]float64) float64 {
	if len(metrics) == 0 {
		return 0
	}
	var weighted, total float64
	for name, value := range metrics {
		w, ok := s.weights[name]
		if !ok {
			w = s.defaultWeight
		}
		weighted += Clamp(value) * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return Clamp(weighted / total)
}

// Clamp bounds v into [0,1]. NaN clamps to 0 so the scorer stays total over
// every float input.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
