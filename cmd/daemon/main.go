// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/imggate/internal/api"
	"github.com/ManuGH/imggate/internal/cache"
	"github.com/ManuGH/imggate/internal/config"
	"github.com/ManuGH/imggate/internal/daemon"
	"github.com/ManuGH/imggate/internal/flags"
	"github.com/ManuGH/imggate/internal/health"
	"github.com/ManuGH/imggate/internal/images"
	iglog "github.com/ManuGH/imggate/internal/log"
	"github.com/ManuGH/imggate/internal/telemetry"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "config" {
		os.Exit(runConfigCLI(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	iglog.Configure(iglog.Config{
		Level:   "info",
		Service: "imggate",
		Version: version,
	})

	logger := iglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Determine config path:
	// - Explicit via --config
	// - Otherwise auto-load ${IMGGATE_DATA}/config.yaml if it exists
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		effectiveConfigPath = resolveDefaultConfigPath()
	}

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Re-configure logger with loaded configuration
	iglog.Reconfigure(iglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})

	if explicitConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", explicitConfigPath).
			Msg("loaded configuration from file")
	} else if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file(auto)").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	// Hot reload support: watch config file and allow SIGHUP/API-triggered reload.
	holderPath := effectiveConfigPath
	if holderPath == "" {
		holderPath = filepath.Join(cfg.DataDir, "config.yaml")
	}
	snap := config.BuildSnapshot(cfg)
	cfgHolder := config.NewHolder(snap, config.NewLoader(holderPath, version), holderPath)

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", snap.ListenAddr).
		Msg("starting imggate")

	logger.Info().Msgf("→ Data dir: %s", snap.DataDir)
	logger.Info().Msgf("→ Image sources: %d allowed host(s)", len(snap.ImageDomains))
	if len(snap.ImageDomains) == 0 {
		logger.Warn().Msg("→ Allowlist is empty: every image fetch will be denied until domains are configured")
	}
	logger.Info().Msgf("→ Cache: %s (ttl: %s)", snap.CacheBackend, snap.CacheTTL)
	for _, f := range config.KnownExperimentalFlags() {
		if snap.ExperimentalEnabled(f.Name) {
			logger.Info().Msgf("→ Experimental: %s enabled", f.Name)
		}
	}

	// Image payload cache
	store, err := cache.New(snap, iglog.WithComponent("cache"))
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "cache.init_failed").
			Str("backend", snap.CacheBackend).
			Msg("failed to initialize cache")
	}

	// Tracing
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        snap.TelemetryEnabled,
		ServiceName:    "imggate",
		ServiceVersion: version,
		Environment:    config.ParseString("IMGGATE_ENV", "production"),
		ExporterType:   snap.TelemetryExporter,
		Endpoint:       snap.TelemetryEndpoint,
		SamplingRate:   snap.TelemetrySampling,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialize telemetry")
	}

	// Image proxy pipeline
	gate := flags.NewGate(cfgHolder.Get)
	fetcher := images.NewFetcher(snap)
	imageHandler := images.NewHandler(cfgHolder.Get, gate, fetcher, store)

	// Readiness checks
	hm := health.NewManager(version)
	hm.RegisterChecker(health.NewWritableDirChecker("data_dir", snap.DataDir))
	hm.RegisterChecker(health.NewCacheChecker(store))
	hm.RegisterChecker(health.NewAllowlistChecker(cfgHolder.Get))

	srv := api.NewServer(cfgHolder.Get, cfgHolder, hm, imageHandler)

	metricsAddr := ""
	if snap.MetricsEnabled {
		metricsAddr = strings.TrimSpace(snap.MetricsAddr)
		if metricsAddr == "" {
			metricsAddr = ":9090"
		}
	}

	deps := daemon.Deps{
		Logger:         logger,
		APIHandler:     srv.Router(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    metricsAddr,
	}

	mgr, err := daemon.NewManager(snap, deps)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.creation.failed").
			Msg("failed to create daemon manager")
	}

	mgr.RegisterShutdownHook("cache", func(ctx context.Context) error {
		return store.Close()
	})
	mgr.RegisterShutdownHook("telemetry", func(ctx context.Context) error {
		return tp.Shutdown(ctx)
	})
	mgr.RegisterShutdownHook("config-watcher", func(ctx context.Context) error {
		cfgHolder.Stop()
		return nil
	})

	app := daemon.NewApp(logger, mgr, cfgHolder)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}
