// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

const (
	defaultDataDir         = "/tmp"
	defaultListenAddr      = ":8080"
	defaultMetricsAddr     = ":9090"
	defaultLogLevel        = "info"
	defaultLogService      = "imggate"
	defaultFetchTimeout    = 10 * time.Second
	defaultMaxBodyBytes    = int64(10 << 20) // 10 MiB
	defaultUserAgent       = "imggate/1.0"
	defaultUpstreamBurst   = 10
	defaultCacheTTL        = time.Hour
	defaultCacheMaxEntries = 1024
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 15 * time.Second
	defaultRateLimitRPM    = 600
	defaultTelemetrySample = 0.1
)

// setDefaults initialises cfg with built-in defaults (lowest precedence).
func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.DataDir = defaultDataDir
	cfg.LogLevel = defaultLogLevel
	cfg.LogService = defaultLogService

	cfg.Experimental = defaultExperimental()
	cfg.ImageDomains = nil // empty allowlist: every remote fetch is rejected

	cfg.ImageFetchTimeout = defaultFetchTimeout
	cfg.ImageMaxBodyBytes = defaultMaxBodyBytes
	cfg.ImageUserAgent = defaultUserAgent
	cfg.UpstreamRate = 0 // unlimited
	cfg.UpstreamBurst = defaultUpstreamBurst

	cfg.ListenAddr = defaultListenAddr
	cfg.ReadTimeout = defaultReadTimeout
	cfg.WriteTimeout = defaultWriteTimeout
	cfg.IdleTimeout = defaultIdleTimeout
	cfg.ShutdownTimeout = defaultShutdownTimeout

	cfg.RateLimitEnabled = true
	cfg.RateLimitRPM = defaultRateLimitRPM

	cfg.MetricsEnabled = false
	cfg.MetricsAddr = defaultMetricsAddr

	cfg.CacheBackend = CacheBackendMemory
	cfg.CacheTTL = defaultCacheTTL
	cfg.CacheMaxEntries = defaultCacheMaxEntries

	cfg.TelemetryEnabled = false
	cfg.TelemetryExporter = "grpc"
	cfg.TelemetrySampling = defaultTelemetrySample
}
