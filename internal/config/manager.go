// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a new configuration manager.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// Save writes the configuration to disk atomically.
func (m *Manager) Save(cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	// Map AppConfig back to FileConfig for serialization.
	// Only user-configurable fields are written; version comes from the binary.
	experimental := make(map[string]bool, len(cfg.Experimental))
	for name, enabled := range cfg.Experimental {
		experimental[name] = enabled
	}

	fileCfg := FileConfig{
		Version:      cfg.Version,
		DataDir:      cfg.DataDir,
		LogLevel:     cfg.LogLevel,
		LogService:   cfg.LogService,
		Experimental: experimental,
		Images: ImagesConfig{
			Domains:       append([]string(nil), cfg.ImageDomains...),
			FetchTimeout:  cfg.ImageFetchTimeout.String(),
			MaxBodyBytes:  int64Ptr(cfg.ImageMaxBodyBytes),
			UserAgent:     cfg.ImageUserAgent,
			UpstreamRate:  floatPtr(cfg.UpstreamRate),
			UpstreamBurst: intPtr(cfg.UpstreamBurst),
		},
		Server: ServerFileConfig{
			ListenAddr:      cfg.ListenAddr,
			ReadTimeout:     cfg.ReadTimeout.String(),
			WriteTimeout:    cfg.WriteTimeout.String(),
			IdleTimeout:     cfg.IdleTimeout.String(),
			ShutdownTimeout: cfg.ShutdownTimeout.String(),
			RateLimit: RateLimitConfig{
				Enabled:           boolPtr(cfg.RateLimitEnabled),
				RequestsPerMinute: intPtr(cfg.RateLimitRPM),
			},
		},
		Metrics: MetricsConfig{
			Enabled:    boolPtr(cfg.MetricsEnabled),
			ListenAddr: cfg.MetricsAddr,
		},
		Cache: CacheFileConfig{
			Backend:    cfg.CacheBackend,
			Path:       cfg.CachePath,
			TTL:        cfg.CacheTTL.String(),
			MaxEntries: intPtr(cfg.CacheMaxEntries),
			Redis: RedisConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			},
		},
		Telemetry: TelemetryFileConfig{
			Enabled:      boolPtr(cfg.TelemetryEnabled),
			Exporter:     cfg.TelemetryExporter,
			Endpoint:     cfg.TelemetryEndpoint,
			SamplingRate: floatPtr(cfg.TelemetrySampling),
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fileCfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}

	if err := renameio.WriteFile(m.configPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Helper functions for mapping

func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }
func int64Ptr(i int64) *int64     { return &i }
func floatPtr(f float64) *float64 { return &f }
