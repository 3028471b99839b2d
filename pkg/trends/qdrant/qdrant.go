// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package qdrant backs the trend store with a Qdrant vector database so
// observations can be recalled by semantic similarity.
package qdrant

import (
	"context"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/trends"
)

// Store is a qdrant-backed trend observation store.
type Store struct {
	points      pb.PointsClient
	collections pb.CollectionsClient
	embedder    trends.Embedder
	collection  string
}

// New connects to the qdrant instance at addr and uses embedder to vectorize
// trend topics into the named collection.
func New(addr, collection string, embedder trends.Embedder) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Store{
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		embedder:    embedder,
		collection:  collection,
	}, nil
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// StoreObservation validates, embeds and upserts one observation.
func (s *Store) StoreObservation(ctx context.Context, o trends.Observation) error {
	if err := o.Validate(); err != nil {
		return err
	}

	vector, err := s.embedder.Embed(ctx, o.TrendTopic)
	if err != nil {
		return errors.New(errors.ExternalAPIFailure, "embedding failed", err).
			WithContext("topic", o.TrendTopic)
	}

	examples := make([]*pb.Value, 0, len(o.ContentExamples))
	for _, e := range o.ContentExamples {
		examples = append(examples, &pb.Value{Kind: &pb.Value_StringValue{StringValue: e}})
	}
	payload := map[string]*pb.Value{
		"trend_topic":      {Kind: &pb.Value_StringValue{StringValue: o.TrendTopic}},
		"platform":         {Kind: &pb.Value_StringValue{StringValue: string(o.Platform)}},
		"virality_score":   {Kind: &pb.Value_DoubleValue{DoubleValue: o.ViralityScore}},
		"sentiment_score":  {Kind: &pb.Value_DoubleValue{DoubleValue: o.SentimentScore}},
		"detected_at":      {Kind: &pb.Value_IntegerValue{IntegerValue: o.DetectedAt.UnixNano()}},
		"content_examples": {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: examples}}},
	}

	_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points: []*pb.PointStruct{{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: o.ID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vector}}},
			Payload: payload,
		}},
	})
	if err != nil {
		return errors.New(errors.ExternalAPIFailure, "failed to upsert observation", err).
			WithContext("collection", s.collection)
	}
	return nil
}

// Query scrolls the collection with a structural filter.
func (s *Store) Query(ctx context.Context, q trends.Query) ([]trends.Observation, error) {
	var must []*pb.Condition
	if q.Platform != "" {
		must = append(must, keywordCondition("platform", string(q.Platform)))
	}
	if q.Topic != "" {
		must = append(must, keywordCondition("trend_topic", q.Topic))
	}
	if !q.Since.IsZero() {
		gte := float64(q.Since.UnixNano())
		must = append(must, &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{Field: &pb.FieldCondition{
				Key:   "detected_at",
				Range: &pb.Range{Gte: &gte},
			}},
		})
	}

	limit := uint32(100)
	if q.Limit > 0 {
		limit = uint32(q.Limit)
	}
	resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
		CollectionName: s.collection,
		Filter:         &pb.Filter{Must: must},
		Limit:          &limit,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, errors.New(errors.ExternalAPIFailure, "failed to query observations", err).
			WithContext("collection", s.collection)
	}

	observations := make([]trends.Observation, 0, len(resp.Result))
	for _, point := range resp.Result {
		observations = append(observations, observationFromPayload(pointID(point.Id), point.Payload))
	}
	return observations, nil
}

// SemanticSearch embeds the query text and returns matches at or above the
// certainty threshold.
func (s *Store) SemanticSearch(ctx context.Context, text string, limit int, certainty float32) ([]trends.Match, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, errors.New(errors.ExternalAPIFailure, "embedding failed", err).
			WithContext("query", text)
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		ScoreThreshold: &certainty,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, errors.New(errors.ExternalAPIFailure, "failed to search observations", err).
			WithContext("collection", s.collection)
	}

	matches := make([]trends.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, trends.Match{
			Observation: observationFromPayload(pointID(r.Id), r.Payload),
			Certainty:   r.Score,
		})
	}
	return matches, nil
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{Field: &pb.FieldCondition{
			Key:   key,
			Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
		}},
	}
}

func pointID(id *pb.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func observationFromPayload(id string, payload map[string]*pb.Value) trends.Observation {
	o := trends.Observation{ID: id}
	if v, ok := payload["trend_topic"]; ok {
		o.TrendTopic = v.GetStringValue()
	}
	if v, ok := payload["platform"]; ok {
		o.Platform = trends.Platform(v.GetStringValue())
	}
	if v, ok := payload["virality_score"]; ok {
		o.ViralityScore = v.GetDoubleValue()
	}
	if v, ok := payload["sentiment_score"]; ok {
		o.SentimentScore = v.GetDoubleValue()
	}
	if v, ok := payload["detected_at"]; ok {
		o.DetectedAt = time.Unix(0, v.GetIntegerValue()).UTC()
	}
	if v, ok := payload["content_examples"]; ok {
		for _, item := range v.GetListValue().GetValues() {
			o.ContentExamples = append(o.ContentExamples, item.GetStringValue())
		}
	}
	return o
}
