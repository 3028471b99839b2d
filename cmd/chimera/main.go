// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Command chimera is the operator CLI for the skill execution network. It
// wires the configured budgets, routing thresholds and audit store into a
// registry, registers the locally servable skills and exposes invocation and
// audit inspection subcommands.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/config"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/governor"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/registry"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/routing"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skills/marketintel"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skills/social"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/telemetry"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/trends"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/trends/ollama"
	trendsqdrant "github.com/Birkity/project-chimera-agentic-influencer-network/pkg/trends/qdrant"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	Timeout    time.Duration
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	switch cmd := args[0]; cmd {
	case "skills":
		runSkills(ctx, global)
	case "invoke":
		runInvoke(ctx, global, args[1:])
	case "records":
		runRecords(ctx, global, args[1:])
	case "help":
		printUsage()
	case "version":
		fmt.Printf("chimera %s\n", version)
	default:
		fatal(fmt.Errorf("unknown command %q", cmd))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := globalFlags{
		ConfigPath: os.Getenv("CHIMERA_CONFIG"),
		Timeout:    60 * time.Second,
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--timeout":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --timeout")
			}
			value, err := time.ParseDuration(args[i+1])
			if err != nil {
				return flags, nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			flags.Timeout = value
			i++
		default:
			return flags, nil, fmt.Errorf("unknown flag %q", arg)
		}
	}
	return flags, nil, nil
}

// buildRuntime assembles the registry from configuration. The returned
// cleanup flushes telemetry and closes the audit store.
func buildRuntime(global globalFlags) (*registry.Registry, func(), error) {
	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	// Thresholds come from operator config, so a bad table is an error to
	// report, not a panic.
	policy, err := routing.NewPolicy(cfg.Routing)
	if err != nil {
		return nil, nil, fmt.Errorf("routing thresholds: %w", err)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	opts := []registry.Option{
		registry.WithGovernor(governor.New(cfg.CategoryLimits())),
		registry.WithPolicy(policy),
		registry.WithLogger(logger),
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig("chimera", version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.Endpoint,
			OTLPInsecure: true,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init telemetry: %w", err)
		}
		cleanups = append(cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		})
		metrics, err := telemetry.NewInvocationMetrics()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init metrics: %w", err)
		}
		opts = append(opts, registry.WithObserver(metrics))
	}

	if cfg.Audit.Provider == "sqlite" {
		store, err := registry.OpenSQLiteStore(cfg.Audit.Path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open audit store: %w", err)
		}
		cleanups = append(cleanups, func() { _ = store.Close() })
		opts = append(opts, registry.WithStore(store))
	}

	var trendStore trends.Store = trends.NewInMemoryStore()
	if cfg.Trends.Enabled {
		embedder := ollama.NewEmbedder(cfg.Trends.EmbedderBaseURL, cfg.Trends.EmbedderModel)
		qs, err := trendsqdrant.New(cfg.Trends.QdrantAddr, cfg.Trends.Collection, embedder)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect qdrant: %w", err)
		}
		trendStore = qs
	}
	fetcher := trends.NewFetcher(trendStore, nil, trends.WithFetcherLogger(logger))

	r := registry.New(opts...)

	// Skills whose collaborators are external services (video download,
	// transcription, caption generation) are registered by the worker
	// runtime that hosts those clients, not by the CLI.
	local := []error{
		r.Register(marketintel.NewAnalyzeTrends(fetcher)),
		r.Register(social.NewSchedulePosts(nil)),
	}
	for _, err := range local {
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return r, cleanup, nil
}

func runSkills(_ context.Context, global globalFlags) {
	r, cleanup, err := buildRuntime(global)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	descriptors := r.List()
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].ID < descriptors[j].ID })

	if global.JSON {
		printJSON(descriptors)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tVERSION")
	for _, d := range descriptors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Category, d.Version)
	}
	w.Flush()
}

func runInvoke(ctx context.Context, global globalFlags, args []string) {
	fs := flag.NewFlagSet("invoke", flag.ExitOnError)
	inputArg := fs.String("input", "{}", "input JSON, or @file to read from disk")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if fs.NArg() != 1 {
		fatal(fmt.Errorf("usage: chimera invoke <skill_id> --input <json>"))
	}
	skillID := fs.Arg(0)

	raw := *inputArg
	if strings.HasPrefix(raw, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			fatal(err)
		}
		raw = string(data)
	}
	var input map[string]any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		fatal(fmt.Errorf("parse input: %w", err))
	}

	r, cleanup, err := buildRuntime(global)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	record, invokeErr := r.Invoke(ctx, skillID, input)
	printJSON(record)
	if invokeErr != nil {
		cleanup()
		os.Exit(1)
	}

	// Blocked outputs go through the operator before anything is released.
	if record.Disposition == routing.HumanApprovalRequired && !global.JSON {
		hook := routing.NewConsoleApprovalHook(routing.WithApprovalOutput(os.Stderr))
		decision := hook.Request(ctx, routing.Review{
			InvocationID: record.InvocationID,
			SkillID:      record.SkillID,
			Disposition:  record.Disposition,
			Confidence:   record.Confidence,
		})
		fmt.Fprintf(os.Stderr, "decision: approved=%v (%s)\n", decision.Approved, decision.Reason)
		if !decision.Approved {
			cleanup()
			os.Exit(1)
		}
	}
}

func runRecords(ctx context.Context, global globalFlags, args []string) {
	fs := flag.NewFlagSet("records", flag.ExitOnError)
	skillID := fs.String("skill", "", "filter by skill id")
	status := fs.String("status", "", "filter by status (completed, failed)")
	disposition := fs.String("disposition", "", "filter by routing disposition")
	limit := fs.Int("limit", 50, "maximum records to return")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}

	r, cleanup, err := buildRuntime(global)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	records, err := r.Records().List(ctx, registry.Filter{
		SkillID:     *skillID,
		Status:      registry.Status(*status),
		Disposition: routing.Disposition(*disposition),
		Limit:       *limit,
	})
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(records)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INVOCATION\tSKILL\tSTATUS\tCONFIDENCE\tDISPOSITION\tELAPSED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			rec.InvocationID, rec.SkillID, rec.Status, rec.Confidence, rec.Disposition, rec.Usage.Elapsed)
	}
	w.Flush()
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(data))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "chimera: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`chimera - skill execution network CLI

Usage:
  chimera [flags] <command> [args]

Commands:
  skills                  list registered skills
  invoke <skill_id>       invoke a skill (--input '<json>' or --input @file)
  records                 list execution records (--skill, --status, --disposition, --limit)
  version                 print version
  help                    show this help

Flags:
  --config <path>         configuration file (default $CHIMERA_CONFIG)
  --timeout <duration>    invocation timeout (default 60s)
  --json                  JSON output
`)
}
