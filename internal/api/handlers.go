// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/imggate/internal/config"
	"github.com/ManuGH/imggate/internal/log"
)

// configView is the externally visible shape of the effective configuration.
// Secrets never appear here.
type configView struct {
	Version           string          `json:"version"`
	LogLevel          string          `json:"logLevel"`
	Experimental      map[string]bool `json:"experimental"`
	ImageDomains      []string        `json:"imageDomains"`
	ImageFetchTimeout string          `json:"imageFetchTimeout"`
	ImageMaxBodyBytes int64           `json:"imageMaxBodyBytes"`
	ListenAddr        string          `json:"listenAddr"`
	RateLimitEnabled  bool            `json:"rateLimitEnabled"`
	RateLimitRPM      int             `json:"rateLimitRpm"`
	CacheBackend      string          `json:"cacheBackend"`
	CacheTTL          string          `json:"cacheTtl"`
	MetricsEnabled    bool            `json:"metricsEnabled"`
	TelemetryEnabled  bool            `json:"telemetryEnabled"`
}

func viewOf(snap config.Snapshot) configView {
	return configView{
		Version:           snap.Version,
		LogLevel:          snap.LogLevel,
		Experimental:      snap.Experimental,
		ImageDomains:      snap.ImageDomains,
		ImageFetchTimeout: snap.ImageFetchTimeout.String(),
		ImageMaxBodyBytes: snap.ImageMaxBodyBytes,
		ListenAddr:        snap.ListenAddr,
		RateLimitEnabled:  snap.RateLimitEnabled,
		RateLimitRPM:      snap.RateLimitRPM,
		CacheBackend:      snap.CacheBackend,
		CacheTTL:          snap.CacheTTL.String(),
		MetricsEnabled:    snap.MetricsEnabled,
		TelemetryEnabled:  snap.TelemetryEnabled,
	}
}

// handleConfigShow returns the sanitized effective configuration.
func (s *Server) handleConfigShow(w http.ResponseWriter, r *http.Request) {
	// Clone so the encoder never races a concurrent reload
	snap := s.snapshots().Clone()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(viewOf(snap)); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str("event", "api.config_encode_error").Msg("failed to encode config view")
	}
}

// handleConfigReload triggers a manual configuration reload.
func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	if s.holder == nil {
		http.Error(w, "config reload not available", http.StatusNotImplemented)
		return
	}

	if err := s.holder.Reload(r.Context()); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "config")
		logger.Warn().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("config reload failed")
		http.Error(w, "config reload failed", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(viewOf(s.holder.Get()))
}
