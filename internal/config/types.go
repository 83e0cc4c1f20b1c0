// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"
)

// Cache backends supported for fetched image payloads.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
	CacheBackendRedis  = "redis"
)

// FileConfig represents the YAML configuration structure.
// Optional fields use pointers to distinguish "not set" from "explicitly zero/false".
type FileConfig struct {
	Version    string `yaml:"version,omitempty"`
	DataDir    string `yaml:"dataDir,omitempty"`
	LogLevel   string `yaml:"logLevel,omitempty"`
	LogService string `yaml:"logService,omitempty"`

	// Experimental maps flag names to their enabled state. Unknown flag
	// names are ignored by the host (dropped with a warning at load time).
	Experimental map[string]bool `yaml:"experimental,omitempty"`

	Images    ImagesConfig        `yaml:"images"`
	Server    ServerFileConfig    `yaml:"server,omitempty"`
	Metrics   MetricsConfig       `yaml:"metrics,omitempty"`
	Cache     CacheFileConfig     `yaml:"cache,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// ImagesConfig declares the remote image source allowlist and fetch tuning.
type ImagesConfig struct {
	// Domains is the ordered set of hostnames the image subsystem may fetch
	// from. Order is preserved verbatim into the effective config.
	Domains []string `yaml:"domains,omitempty"`

	FetchTimeout  string   `yaml:"fetchTimeout,omitempty"` // e.g. "10s"
	MaxBodyBytes  *int64   `yaml:"maxBodyBytes,omitempty"`
	UserAgent     string   `yaml:"userAgent,omitempty"`
	UpstreamRate  *float64 `yaml:"upstreamRate,omitempty"` // fetches/sec, 0 = unlimited
	UpstreamBurst *int     `yaml:"upstreamBurst,omitempty"`
}

// ServerFileConfig holds API server configuration.
type ServerFileConfig struct {
	ListenAddr      string          `yaml:"listenAddr,omitempty"`
	ReadTimeout     string          `yaml:"readTimeout,omitempty"`
	WriteTimeout    string          `yaml:"writeTimeout,omitempty"`
	IdleTimeout     string          `yaml:"idleTimeout,omitempty"`
	ShutdownTimeout string          `yaml:"shutdownTimeout,omitempty"`
	RateLimit       RateLimitConfig `yaml:"rateLimit,omitempty"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled           *bool `yaml:"enabled,omitempty"`
	RequestsPerMinute *int  `yaml:"requestsPerMinute,omitempty"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// CacheFileConfig holds image payload cache configuration.
type CacheFileConfig struct {
	Backend    string      `yaml:"backend,omitempty"` // memory|badger|redis
	Path       string      `yaml:"path,omitempty"`    // badger directory
	TTL        string      `yaml:"ttl,omitempty"`     // e.g. "1h"
	MaxEntries *int        `yaml:"maxEntries,omitempty"`
	Redis      RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// TelemetryFileConfig holds OpenTelemetry tracing configuration.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"` // grpc|http
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

// AppConfig holds the effective runtime configuration for the application.
type AppConfig struct {
	Version    string
	DataDir    string
	LogLevel   string
	LogService string

	// Experimental holds the enabled state of known experimental flags only;
	// unknown names from file or ENV never survive into the effective config.
	Experimental map[string]bool

	// ImageDomains is the ordered allowlist of remote image source hostnames.
	ImageDomains []string

	ImageFetchTimeout time.Duration
	ImageMaxBodyBytes int64
	ImageUserAgent    string
	UpstreamRate      float64 // upstream fetches/sec, 0 = unlimited
	UpstreamBurst     int

	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RateLimitEnabled bool
	RateLimitRPM     int

	MetricsEnabled bool
	MetricsAddr    string

	CacheBackend    string
	CachePath       string
	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	TelemetryEnabled  bool
	TelemetryExporter string
	TelemetryEndpoint string
	TelemetrySampling float64
}
