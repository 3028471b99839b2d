// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package skill

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
)

// stubSkill is a minimal conforming skill used across contract tests.
type stubSkill struct {
	Base
	id       string
	category Category
	out      *schema.Schema
}

func newStubSkill(id string, category Category) *stubSkill {
	return &stubSkill{
		Base:     NewBase(category),
		id:       id,
		category: category,
	}
}

func (s *stubSkill) Descriptor() Descriptor {
	return Descriptor{ID: s.id, Name: s.id, Category: s.category}
}

func (s *stubSkill) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("text", schema.NewString()).
		Require("text")
}

func (s *stubSkill) OutputSchema() *schema.Schema {
	if s.out != nil {
		return s.out
	}
	return schema.NewObject().
		Property("result", schema.NewString()).
		Property("confidence_score", ConfidenceScoreSchema()).
		Require("result", "confidence_score")
}

func (s *stubSkill) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := ValidateInput(s, input); err != nil {
		return nil, err
	}
	return map[string]any{
		"result":           "ok",
		"confidence_score": s.Confidence(map[string]float64{"processing_success": 1}),
	}, nil
}

func TestNewBaseIdentity(t *testing.T) {
	before := time.Now().UTC()
	b := NewBase(CategoryContentCreation)

	if b.SkillID() == "" {
		t.Fatalf("expected generated skill id")
	}
	raw := b.SkillID()[len("skill_"):]
	if _, err := uuid.Parse(raw); err != nil {
		t.Errorf("skill id should embed a uuid: %v", err)
	}
	if b.CreatedAt().Before(before.Add(-time.Second)) {
		t.Errorf("created_at should be set at instantiation")
	}

	other := NewBase(CategoryContentCreation)
	if other.SkillID() == b.SkillID() {
		t.Errorf("skill ids must be unique per instance")
	}
}

func TestBaseConfidenceBounded(t *testing.T) {
	b := NewBase(CategoryMarketIntelligence)
	got := b.Confidence(map[string]float64{
		"data_quality":        0.8,
		"processing_success":  0.9,
		"output_completeness": 0.85,
		"performance":         0.75,
	})
	if got < 0 || got > 1 {
		t.Fatalf("confidence out of bounds: %v", got)
	}
	if b.Confidence(nil) != 0 {
		t.Errorf("empty metrics should score zero")
	}
}

func TestCheckContractAccepts(t *testing.T) {
	for _, category := range Categories() {
		s := newStubSkill("skill_stub_"+string(category), category)
		if err := CheckContract(s); err != nil {
			t.Errorf("%s: expected contract to hold: %v", category, err)
		}
	}
}

func TestCheckContractRejections(t *testing.T) {
	cases := []struct {
		name string
		out  *schema.Schema
	}{
		{"missing confidence_score", schema.NewObject().Property("result", schema.NewString())},
		{"wrong type", schema.NewObject().Property("confidence_score", schema.NewString())},
		{"missing bounds", schema.NewObject().Property("confidence_score", schema.NewNumber())},
		{"wrong maximum", schema.NewObject().Property("confidence_score", schema.NewNumber().Bounds(0, 2))},
		{"wrong minimum", schema.NewObject().Property("confidence_score", schema.NewNumber().Bounds(-1, 1))},
	}
	for _, tc := range cases {
		s := newStubSkill("skill_bad", CategoryContentCreation)
		s.out = tc.out
		if err := CheckContract(s); err == nil {
			t.Errorf("%s: expected contract violation", tc.name)
		}
	}

	if err := CheckContract(nil); err == nil {
		t.Errorf("nil skill must be rejected")
	}

	bad := newStubSkill("", CategoryContentCreation)
	if err := CheckContract(bad); err == nil {
		t.Errorf("empty id must be rejected")
	}

	badCat := newStubSkill("skill_x", Category("mystery"))
	if err := CheckContract(badCat); err == nil {
		t.Errorf("unknown category must be rejected")
	}
}

func TestValidateInputTyped(t *testing.T) {
	s := newStubSkill("skill_v", CategorySocialEngagement)

	if err := ValidateInput(s, map[string]any{"text": "hello"}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	err := ValidateInput(s, map[string]any{})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !errors.IsType(err, errors.InputValidation) {
		t.Errorf("expected InputValidation, got %v", err)
	}
}

func TestExecuteValidatesBeforeWork(t *testing.T) {
	s := newStubSkill("skill_e", CategorySocialEngagement)
	_, err := s.Execute(context.Background(), map[string]any{"wrong": true})
	if !errors.IsType(err, errors.InputValidation) {
		t.Fatalf("expected InputValidation from execute, got %v", err)
	}

	out, err := s.Execute(context.Background(), map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	score, ok := out["confidence_score"].(float64)
	if !ok || score < 0 || score > 1 {
		t.Errorf("output must carry bounded confidence_score, got %v", out["confidence_score"])
	}
}
