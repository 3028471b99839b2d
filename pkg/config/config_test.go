// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/governor"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Routing.AutoApprove != 0.90 || cfg.Routing.ReviewRecommended != 0.70 {
		t.Errorf("unexpected routing defaults: %+v", cfg.Routing)
	}

	limits := cfg.CategoryLimits()
	cc, ok := limits[skill.CategoryContentCreation]
	if !ok {
		t.Fatalf("content_creation budget missing")
	}
	if cc.MaxDuration != 45*time.Second || cc.MaxMemoryMB != 2048 || cc.MaxCost != 8.0 {
		t.Errorf("content_creation defaults wrong: %+v", cc)
	}
	se, ok := limits[skill.CategorySocialEngagement]
	if !ok || se.MaxDuration != 5*time.Second {
		t.Errorf("social_engagement defaults wrong: %+v", se)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chimera.yaml")
	data := `
log:
  level: debug
  format: json
budgets:
  market_intelligence:
    max_duration: 20s
    max_memory_mb: 1536
    max_cost: 4.5
routing:
  auto_approve: 0.95
trends:
  enabled: true
  qdrant_addr: qdrant:6334
audit:
  provider: sqlite
  path: /var/lib/chimera/audit.db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("file override not applied: %+v", cfg.Log)
	}
	mi := cfg.CategoryLimits()[skill.CategoryMarketIntelligence]
	if mi.MaxDuration != 20*time.Second || mi.MaxMemoryMB != 1536 || mi.MaxCost != 4.5 {
		t.Errorf("budget override not applied: %+v", mi)
	}
	if cfg.Routing.AutoApprove != 0.95 {
		t.Errorf("routing override not applied: %+v", cfg.Routing)
	}
	if cfg.Routing.ReviewRecommended != 0.70 {
		t.Errorf("untouched keys must keep defaults: %+v", cfg.Routing)
	}
	if !cfg.Trends.Enabled || cfg.Trends.QdrantAddr != "qdrant:6334" {
		t.Errorf("trends override not applied: %+v", cfg.Trends)
	}
	if cfg.Audit.Provider != "sqlite" {
		t.Errorf("audit override not applied: %+v", cfg.Audit)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chimera.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("CHIMERA_LOG_LEVEL", "warn")
	t.Setenv("CHIMERA_AUDIT_PROVIDER", "sqlite")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("env must win over file, got %s", cfg.Log.Level)
	}
	if cfg.Audit.Provider != "sqlite" {
		t.Errorf("env override not applied: %+v", cfg.Audit)
	}
}

func TestCategoryLimitsDropsUnknown(t *testing.T) {
	cfg := &Config{Budgets: map[string]governor.Limits{
		"content_creation": {MaxDuration: time.Second},
		"astral_projection": {MaxDuration: time.Second},
	}}
	limits := cfg.CategoryLimits()
	if len(limits) != 1 {
		t.Fatalf("unknown categories must be dropped, got %v", limits)
	}
	if _, ok := limits[skill.CategoryContentCreation]; !ok {
		t.Errorf("known category missing")
	}
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chimera.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := NewWatcher([]string{path}, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}

	reloaded := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// mtime granularity on some filesystems is one second
	time.Sleep(20 * time.Millisecond)
	future := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	_ = os.Chtimes(path, future, future)

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "error" {
			t.Errorf("reloaded config stale: %+v", cfg.Log)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("reload never fired")
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop() // repeated stop must also return
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop blocked without a running watch loop")
	}
}
