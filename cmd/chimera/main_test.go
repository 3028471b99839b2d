// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseGlobalFlags(t *testing.T) {
	flags, rest, err := parseGlobalFlags([]string{"--json", "--timeout", "5s", "--config=chimera.yaml", "invoke", "skill_analyze_trends"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !flags.JSON {
		t.Errorf("expected --json")
	}
	if flags.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", flags.Timeout)
	}
	if flags.ConfigPath != "chimera.yaml" {
		t.Errorf("config = %q", flags.ConfigPath)
	}
	if len(rest) != 2 || rest[0] != "invoke" {
		t.Errorf("rest = %v", rest)
	}
}

func TestParseGlobalFlagsRejectsUnknown(t *testing.T) {
	if _, _, err := parseGlobalFlags([]string{"--verbose"}); err == nil {
		t.Fatalf("unknown flag must error")
	}
}

func TestParseGlobalFlagsBadTimeout(t *testing.T) {
	if _, _, err := parseGlobalFlags([]string{"--timeout", "soon"}); err == nil {
		t.Fatalf("bad timeout must error")
	}
}

func TestBuildRuntimeRejectsBadThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chimera.yaml")
	bad := "routing:\n  auto_approve: 0.5\n  review_recommended: 0.8\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := buildRuntime(globalFlags{ConfigPath: path})
	if err == nil {
		t.Fatalf("inverted thresholds must fail runtime construction")
	}
}

func TestBuildRuntimeRegistersLocalSkills(t *testing.T) {
	r, cleanup, err := buildRuntime(globalFlags{})
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer cleanup()

	for _, id := range []string{"skill_analyze_trends", "skill_schedule_posts"} {
		if _, ok := r.Get(id); !ok {
			t.Errorf("skill %s not registered", id)
		}
	}
}
