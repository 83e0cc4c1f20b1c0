// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"strings"

	"github.com/ManuGH/imggate/internal/log"
)

// mergeEnvConfig merges environment variables into AppConfig.
// ENV variables have the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	l.mergeEnvCore(cfg)
	l.mergeEnvExperimental(cfg)
	l.mergeEnvImages(cfg)
	l.mergeEnvServer(cfg)
	l.mergeEnvMetrics(cfg)
	l.mergeEnvCache(cfg)
	l.mergeEnvTelemetry(cfg)
}

func (l *Loader) mergeEnvCore(cfg *AppConfig) {
	cfg.DataDir = l.envString("IMGGATE_DATA", cfg.DataDir)
	cfg.LogLevel = l.envString("IMGGATE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("IMGGATE_LOG_SERVICE", cfg.LogService)
}

// mergeEnvExperimental enables flags named in IMGGATE_EXPERIMENTAL (CSV).
// ENV can only switch flags on; disabling is a file concern.
func (l *Loader) mergeEnvExperimental(cfg *AppConfig) {
	for _, name := range parseCommaSeparated(l.envString("IMGGATE_EXPERIMENTAL", ""), nil) {
		cfg.Experimental[name] = true
	}
}

func (l *Loader) mergeEnvImages(cfg *AppConfig) {
	if domains := parseCommaSeparated(l.envString("IMGGATE_IMAGE_DOMAINS", ""), nil); domains != nil {
		cfg.ImageDomains = domains
	}
	cfg.ImageFetchTimeout = l.envDuration("IMGGATE_IMAGE_FETCH_TIMEOUT", cfg.ImageFetchTimeout)
	cfg.ImageMaxBodyBytes = l.envInt64("IMGGATE_IMAGE_MAX_BODY_BYTES", cfg.ImageMaxBodyBytes)
	cfg.ImageUserAgent = l.envString("IMGGATE_IMAGE_USER_AGENT", cfg.ImageUserAgent)
	cfg.UpstreamRate = l.envFloat("IMGGATE_UPSTREAM_RATE", cfg.UpstreamRate)
	cfg.UpstreamBurst = l.envInt("IMGGATE_UPSTREAM_BURST", cfg.UpstreamBurst)
}

func (l *Loader) mergeEnvServer(cfg *AppConfig) {
	cfg.ListenAddr = l.envString("IMGGATE_LISTEN", cfg.ListenAddr)
	cfg.ReadTimeout = l.envDuration("IMGGATE_SERVER_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = l.envDuration("IMGGATE_SERVER_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = l.envDuration("IMGGATE_SERVER_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.ShutdownTimeout = l.envDuration("IMGGATE_SERVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.RateLimitEnabled = l.envBool("IMGGATE_RATE_LIMIT_ENABLED", cfg.RateLimitEnabled)
	cfg.RateLimitRPM = l.envInt("IMGGATE_RATE_LIMIT_RPM", cfg.RateLimitRPM)
}

func (l *Loader) mergeEnvMetrics(cfg *AppConfig) {
	metricsAddr := l.envString("IMGGATE_METRICS_LISTEN", "")
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
		cfg.MetricsEnabled = true
	}
	cfg.MetricsEnabled = l.envBool("IMGGATE_METRICS_ENABLED", cfg.MetricsEnabled)
}

func (l *Loader) mergeEnvCache(cfg *AppConfig) {
	cfg.CacheBackend = l.envString("IMGGATE_CACHE_BACKEND", cfg.CacheBackend)
	cfg.CachePath = l.envString("IMGGATE_CACHE_PATH", cfg.CachePath)
	cfg.CacheTTL = l.envDuration("IMGGATE_CACHE_TTL", cfg.CacheTTL)
	cfg.CacheMaxEntries = l.envInt("IMGGATE_CACHE_MAX_ENTRIES", cfg.CacheMaxEntries)
	cfg.RedisAddr = l.envString("IMGGATE_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = l.envString("IMGGATE_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = l.envInt("IMGGATE_REDIS_DB", cfg.RedisDB)
}

func (l *Loader) mergeEnvTelemetry(cfg *AppConfig) {
	cfg.TelemetryEnabled = l.envBool("IMGGATE_OTEL_ENABLED", cfg.TelemetryEnabled)
	cfg.TelemetryExporter = strings.ToLower(l.envString("IMGGATE_OTEL_EXPORTER", cfg.TelemetryExporter))
	cfg.TelemetryEndpoint = l.envString("IMGGATE_OTEL_ENDPOINT", cfg.TelemetryEndpoint)
	cfg.TelemetrySampling = l.envFloat("IMGGATE_OTEL_SAMPLING", cfg.TelemetrySampling)
}

// filterExperimental drops flags outside the known registry. The host ignores
// unrecognized flag names; they never reach the effective config.
func (l *Loader) filterExperimental(cfg *AppConfig) {
	logger := log.WithComponent("config")
	for name := range cfg.Experimental {
		if IsKnownExperimentalFlag(name) {
			continue
		}
		logger.Warn().
			Str("event", "config.experimental_unknown").
			Str("flag", name).
			Msg("ignoring unrecognized experimental flag")
		delete(cfg.Experimental, name)
	}
}
