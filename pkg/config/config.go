// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the runtime configuration from YAML with environment
// overrides. Category budgets and routing thresholds are tunable without a
// rebuild; the taxonomy and routing bands themselves are not.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/governor"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/routing"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

type Config struct {
	Log       LogConfig                  `koanf:"log"`
	Budgets   map[string]governor.Limits `koanf:"budgets"`
	Routing   routing.Thresholds         `koanf:"routing"`
	Trends    TrendsConfig               `koanf:"trends"`
	Audit     AuditConfig                `koanf:"audit"`
	Telemetry TelemetryConfig            `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TrendsConfig struct {
	Enabled         bool   `koanf:"enabled"`
	QdrantAddr      string `koanf:"qdrant_addr"`
	Collection      string `koanf:"collection"`
	EmbedderBaseURL string `koanf:"embedder_base_url"`
	EmbedderModel   string `koanf:"embedder_model"`
}

type AuditConfig struct {
	Provider string `koanf:"provider"` // memory, sqlite
	Path     string `koanf:"path"`
}

type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Exporter string `koanf:"exporter"` // stdout, otlp
	Endpoint string `koanf:"endpoint"`
}

// Load reads configuration from the optional YAML file at path, then applies
// CHIMERA_-prefixed environment overrides (CHIMERA_LOG_LEVEL -> log.level).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("log.format", "text")

	for category, limits := range governor.DefaultLimits() {
		prefix := "budgets." + string(category) + "."
		k.Set(prefix+"max_duration", limits.MaxDuration.String())
		k.Set(prefix+"max_memory_mb", limits.MaxMemoryMB)
		k.Set(prefix+"max_cost", limits.MaxCost)
	}

	defaults := routing.DefaultThresholds()
	k.Set("routing.auto_approve", defaults.AutoApprove)
	k.Set("routing.review_recommended", defaults.ReviewRecommended)

	k.Set("trends.enabled", false)
	k.Set("trends.qdrant_addr", "localhost:6334")
	k.Set("trends.collection", "trend_observations")
	k.Set("trends.embedder_base_url", "http://localhost:11434")
	k.Set("trends.embedder_model", "nomic-embed-text")

	k.Set("audit.provider", "memory")
	k.Set("audit.path", "chimera_audit.db")

	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("CHIMERA_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CHIMERA_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CategoryLimits converts the budget section into governor limits, dropping
// entries that do not name a known category.
func (c *Config) CategoryLimits() map[skill.Category]governor.Limits {
	out := make(map[skill.Category]governor.Limits, len(c.Budgets))
	for name, limits := range c.Budgets {
		category := skill.Category(name)
		if !category.Valid() {
			continue
		}
		out[category] = limits
	}
	return out
}
