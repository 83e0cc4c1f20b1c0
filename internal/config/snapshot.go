// SPDX-License-Identifier: MIT

package config

import "time"

// Snapshot is an immutable view of the effective configuration. Callers may
// read it freely without synchronization; it is replaced, never mutated.
type Snapshot struct {
	Version    string
	DataDir    string
	LogLevel   string
	LogService string

	Experimental map[string]bool
	ImageDomains []string

	ImageFetchTimeout time.Duration
	ImageMaxBodyBytes int64
	ImageUserAgent    string
	UpstreamRate      float64
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

// BuildSnapshot deep-copies cfg into a Snapshot. Maps and slices are cloned so
// later mutation of cfg cannot leak into a published snapshot.
func BuildSnapshot(cfg AppConfig) Snapshot {
	experimental := make(map[string]bool, len(cfg.Experimental))
	for name, enabled := range cfg.Experimental {
		experimental[name] = enabled
	}

	return Snapshot{
		Version:    cfg.Version,
		DataDir:    cfg.DataDir,
		LogLevel:   cfg.LogLevel,
		LogService: cfg.LogService,

		Experimental: experimental,
		ImageDomains: append([]string(nil), cfg.ImageDomains...),

		ImageFetchTimeout: cfg.ImageFetchTimeout,
		ImageMaxBodyBytes: cfg.ImageMaxBodyBytes,
		ImageUserAgent:    cfg.ImageUserAgent,
		UpstreamRate:      cfg.UpstreamRate,
		UpstreamBurst:     cfg.UpstreamBurst,

		ListenAddr:      cfg.ListenAddr,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,

		RateLimitEnabled: cfg.RateLimitEnabled,
		RateLimitRPM:     cfg.RateLimitRPM,

		MetricsEnabled: cfg.MetricsEnabled,
		MetricsAddr:    cfg.MetricsAddr,

		CacheBackend:    cfg.CacheBackend,
		CachePath:       cfg.CachePath,
		CacheTTL:        cfg.CacheTTL,
		CacheMaxEntries: cfg.CacheMaxEntries,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		RedisDB:         cfg.RedisDB,

		TelemetryEnabled:  cfg.TelemetryEnabled,
		TelemetryExporter: cfg.TelemetryExporter,
		TelemetryEndpoint: cfg.TelemetryEndpoint,
		TelemetrySampling: cfg.TelemetrySampling,
	}
}

// ExperimentalEnabled reports whether a known experimental flag is on.
// Unknown names are always false.
func (s Snapshot) ExperimentalEnabled(name string) bool {
	return s.Experimental[name]
}

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Experimental = make(map[string]bool, len(s.Experimental))
	for name, enabled := range s.Experimental {
		out.Experimental[name] = enabled
	}
	out.ImageDomains = append([]string(nil), s.ImageDomains...)
	return out
}
