// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package skill

import (
	"fmt"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
)

// CheckContract verifies a skill satisfies the capability contract. The
// registry runs this at registration so violations fail fast at construction
// time instead of surfacing at call time.
func CheckContract(s Skill) error {
	if s == nil {
		return fmt.Errorf("skill is nil")
	}
	desc := s.Descriptor()
	if desc.ID == "" {
		return fmt.Errorf("skill descriptor has empty id")
	}
	if !desc.Category.Valid() {
		return fmt.Errorf("skill %s: unknown category %q", desc.ID, desc.Category)
	}

	in := s.InputSchema()
	if in == nil || in.Type != schema.TypeObject {
		return fmt.Errorf("skill %s: input schema must declare an object root", desc.ID)
	}

	out := s.OutputSchema()
	if out == nil || out.Type != schema.TypeObject {
		return fmt.Errorf("skill %s: output schema must declare an object root", desc.ID)
	}
	return checkConfidenceProperty(desc.ID, out)
}

// checkConfidenceProperty enforces the cross-cutting contract: every output
// schema declares confidence_score as a number bounded to [0,1].
func checkConfidenceProperty(skillID string, out *schema.Schema) error {
	prop, ok := out.Properties["confidence_score"]
	if !ok || prop == nil {
		return fmt.Errorf("skill %s: output schema missing confidence_score", skillID)
	}
	if prop.Type != schema.TypeNumber {
		return fmt.Errorf("skill %s: confidence_score must be a number, got %q", skillID, prop.Type)
	}
	if prop.Minimum == nil || *prop.Minimum != 0 {
		return fmt.Errorf("skill %s: confidence_score minimum must be 0", skillID)
	}
	if prop.Maximum == nil || *prop.Maximum != 1 {
		return fmt.Errorf("skill %s: confidence_score maximum must be 1", skillID)
	}
	return nil
}
