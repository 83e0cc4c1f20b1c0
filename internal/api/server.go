// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api wires the HTTP surface of the image gateway.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/imggate/internal/api/middleware"
	"github.com/ManuGH/imggate/internal/config"
	"github.com/ManuGH/imggate/internal/health"
	"github.com/ManuGH/imggate/internal/log"
)

// Server bundles the HTTP handlers of the gateway.
type Server struct {
	snapshots func() config.Snapshot
	holder    *config.Holder
	healthMgr *health.Manager
	images    http.Handler
	logger    zerolog.Logger
}

// NewServer builds the API server. The holder may be nil when hot reload is
// not wired (the reload endpoint then answers 501).
func NewServer(snapshots func() config.Snapshot, holder *config.Holder, healthMgr *health.Manager, images http.Handler) *Server {
	return &Server{
		snapshots: snapshots,
		holder:    holder,
		healthMgr: healthMgr,
		images:    images,
		logger:    log.WithComponent("api"),
	}
}

// Router builds the chi router with the canonical middleware stack.
func (s *Server) Router() *chi.Mux {
	snap := s.snapshots()

	r := chi.NewRouter()

	// Recoverer first so nothing below can take the process down
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if snap.TelemetryEnabled {
		r.Use(middleware.OTelHTTP(snap.LogService))
	}
	r.Use(middleware.AccessLog)

	r.Get("/healthz", s.healthMgr.ServeHealth)
	r.Get("/readyz", s.healthMgr.ServeReady)

	r.Group(func(r chi.Router) {
		if snap.RateLimitEnabled {
			r.Use(middleware.APIRateLimit(snap.RateLimitRPM))
		}

		r.Method(http.MethodGet, "/images", s.images)

		r.Route("/api", func(r chi.Router) {
			r.Get("/config", s.handleConfigShow)
			r.Post("/config/reload", s.handleConfigReload)
		})
	})

	return r
}
