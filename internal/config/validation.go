// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"

	"github.com/ManuGH/imggate/internal/validate"
)

// Validate checks the final merged configuration for correctness.
// All errors are accumulated so operators see every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", "must be one of: debug, info, warn, error", cfg.LogLevel)
	}

	v.NotEmpty("dataDir", cfg.DataDir)
	v.NotEmpty("server.listenAddr", cfg.ListenAddr)

	validateImageDomains(v, cfg.ImageDomains)

	v.PositiveDuration("images.fetchTimeout", cfg.ImageFetchTimeout)
	v.PositiveInt64("images.maxBodyBytes", cfg.ImageMaxBodyBytes)
	v.NonNegativeFloat("images.upstreamRate", cfg.UpstreamRate)
	if cfg.UpstreamRate > 0 && cfg.UpstreamBurst <= 0 {
		v.AddError("images.upstreamBurst", "must be positive when upstreamRate is set", cfg.UpstreamBurst)
	}

	v.PositiveDuration("server.readTimeout", cfg.ReadTimeout)
	v.PositiveDuration("server.writeTimeout", cfg.WriteTimeout)
	v.PositiveDuration("server.idleTimeout", cfg.IdleTimeout)
	v.PositiveDuration("server.shutdownTimeout", cfg.ShutdownTimeout)
	if cfg.RateLimitEnabled {
		v.Positive("server.rateLimit.requestsPerMinute", cfg.RateLimitRPM)
	}

	v.OneOf("cache.backend", cfg.CacheBackend, []string{CacheBackendMemory, CacheBackendBadger, CacheBackendRedis})
	v.PositiveDuration("cache.ttl", cfg.CacheTTL)
	v.Positive("cache.maxEntries", cfg.CacheMaxEntries)
	if cfg.CacheBackend == CacheBackendRedis {
		v.NotEmpty("cache.redis.addr", cfg.RedisAddr)
	}

	if cfg.TelemetryEnabled {
		v.OneOf("telemetry.exporter", cfg.TelemetryExporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.TelemetryEndpoint)
	}
	v.RangeFloat("telemetry.samplingRate", cfg.TelemetrySampling, 0, 1)

	return v.Err()
}

// validateImageDomains checks every allowlist entry is a well formed hostname
// and that no exact duplicate appears. Order is never touched here.
func validateImageDomains(v *validate.Validator, domains []string) {
	seen := make(map[string]int, len(domains))
	for i, domain := range domains {
		field := fmt.Sprintf("images.domains[%d]", i)
		v.Hostname(field, domain)
		if first, dup := seen[domain]; dup {
			v.AddError(field, fmt.Sprintf("duplicate of images.domains[%d]", first), domain)
			continue
		}
		seen[domain] = i
	}
}
