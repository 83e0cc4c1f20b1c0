// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"time"
)

// mergeFileConfig merges file values over defaults. Only fields present in the
// file override; absent fields keep their defaults.
func (l *Loader) mergeFileConfig(cfg *AppConfig, fileCfg *FileConfig) error {
	if fileCfg == nil {
		return nil
	}

	if fileCfg.DataDir != "" {
		cfg.DataDir = fileCfg.DataDir
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogService != "" {
		cfg.LogService = fileCfg.LogService
	}

	// Experimental flags: file entries override registry defaults.
	// Unknown names survive until filterExperimental so they can be logged.
	for name, enabled := range fileCfg.Experimental {
		cfg.Experimental[name] = enabled
	}

	if err := l.mergeFileImages(cfg, fileCfg.Images); err != nil {
		return err
	}
	if err := l.mergeFileServer(cfg, fileCfg.Server); err != nil {
		return err
	}
	l.mergeFileMetrics(cfg, fileCfg.Metrics)
	if err := l.mergeFileCache(cfg, fileCfg.Cache); err != nil {
		return err
	}
	l.mergeFileTelemetry(cfg, fileCfg.Telemetry)

	return nil
}

func (l *Loader) mergeFileImages(cfg *AppConfig, images ImagesConfig) error {
	if images.Domains != nil {
		// Preserve order verbatim; validation rejects duplicates later.
		cfg.ImageDomains = append([]string(nil), images.Domains...)
	}
	if images.FetchTimeout != "" {
		d, err := time.ParseDuration(images.FetchTimeout)
		if err != nil {
			return fmt.Errorf("images.fetchTimeout: %w", err)
		}
		cfg.ImageFetchTimeout = d
	}
	if images.MaxBodyBytes != nil {
		cfg.ImageMaxBodyBytes = *images.MaxBodyBytes
	}
	if images.UserAgent != "" {
		cfg.ImageUserAgent = images.UserAgent
	}
	if images.UpstreamRate != nil {
		cfg.UpstreamRate = *images.UpstreamRate
	}
	if images.UpstreamBurst != nil {
		cfg.UpstreamBurst = *images.UpstreamBurst
	}
	return nil
}

func (l *Loader) mergeFileServer(cfg *AppConfig, server ServerFileConfig) error {
	if server.ListenAddr != "" {
		cfg.ListenAddr = server.ListenAddr
	}
	for _, f := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{server.ReadTimeout, "server.readTimeout", &cfg.ReadTimeout},
		{server.WriteTimeout, "server.writeTimeout", &cfg.WriteTimeout},
		{server.IdleTimeout, "server.idleTimeout", &cfg.IdleTimeout},
		{server.ShutdownTimeout, "server.shutdownTimeout", &cfg.ShutdownTimeout},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}
	if server.RateLimit.Enabled != nil {
		cfg.RateLimitEnabled = *server.RateLimit.Enabled
	}
	if server.RateLimit.RequestsPerMinute != nil {
		cfg.RateLimitRPM = *server.RateLimit.RequestsPerMinute
	}
	return nil
}

func (l *Loader) mergeFileMetrics(cfg *AppConfig, metrics MetricsConfig) {
	if metrics.Enabled != nil {
		cfg.MetricsEnabled = *metrics.Enabled
	}
	if metrics.ListenAddr != "" {
		cfg.MetricsAddr = metrics.ListenAddr
	}
}

func (l *Loader) mergeFileCache(cfg *AppConfig, cache CacheFileConfig) error {
	if cache.Backend != "" {
		cfg.CacheBackend = cache.Backend
	}
	if cache.Path != "" {
		cfg.CachePath = cache.Path
	}
	if cache.TTL != "" {
		d, err := time.ParseDuration(cache.TTL)
		if err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if cache.MaxEntries != nil {
		cfg.CacheMaxEntries = *cache.MaxEntries
	}
	if cache.Redis.Addr != "" {
		cfg.RedisAddr = cache.Redis.Addr
	}
	if cache.Redis.Password != "" {
		cfg.RedisPassword = cache.Redis.Password
	}
	if cache.Redis.DB != 0 {
		cfg.RedisDB = cache.Redis.DB
	}
	return nil
}

func (l *Loader) mergeFileTelemetry(cfg *AppConfig, tel TelemetryFileConfig) {
	if tel.Enabled != nil {
		cfg.TelemetryEnabled = *tel.Enabled
	}
	if tel.Exporter != "" {
		cfg.TelemetryExporter = tel.Exporter
	}
	if tel.Endpoint != "" {
		cfg.TelemetryEndpoint = tel.Endpoint
	}
	if tel.SamplingRate != nil {
		cfg.TelemetrySampling = *tel.SamplingRate
	}
}
