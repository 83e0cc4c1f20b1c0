// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package images

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/imggate/internal/cache"
	"github.com/ManuGH/imggate/internal/config"
	"github.com/ManuGH/imggate/internal/flags"
	"github.com/ManuGH/imggate/internal/log"
	"github.com/ManuGH/imggate/internal/telemetry"
)

// negativeTTL bounds how long a cached upstream failure is served.
const negativeTTL = 30 * time.Second

// Handler serves GET /images?url=<remote>. The remote host must be on the
// configured allowlist; denial happens before any network I/O.
type Handler struct {
	snapshots func() config.Snapshot
	gate      *flags.Gate
	fetcher   *Fetcher
	store     cache.Cache
	logger    zerolog.Logger
}

// NewHandler builds the image proxy handler. snapshots is read per request so
// hot reloads of the allowlist apply immediately.
func NewHandler(snapshots func() config.Snapshot, gate *flags.Gate, fetcher *Fetcher, store cache.Cache) *Handler {
	return &Handler{
		snapshots: snapshots,
		gate:      gate,
		fetcher:   fetcher,
		store:     store,
		logger:    log.WithComponent("images"),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		IncRequest("error")
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Hostname() == "" {
		IncRequest("error")
		http.Error(w, "url must be absolute http(s)", http.StatusBadRequest)
		return
	}

	snap := h.snapshots()
	allowlist := NewAllowlist(snap.ImageDomains)
	if !allowlist.Allows(target.Hostname()) {
		IncRequest("denied")
		h.logger.Warn().
			Str("event", "images.host_denied").
			Str("host", target.Hostname()).
			Msg("remote host not on allowlist")
		http.Error(w, fmt.Sprintf("host %q is not allowed", target.Hostname()), http.StatusForbidden)
		return
	}

	key := cacheKey(rawURL, h.acceptHeader(r))
	if entry, ok := h.store.Get(key); ok {
		trace.SpanFromContext(r.Context()).SetAttributes(
			telemetry.FetchAttributes(target.Hostname(), entry.ContentType, "hit", len(entry.Body))...)
		h.serveEntry(w, snap, entry, "HIT")
		return
	}

	entry, err := h.fetcher.Fetch(r.Context(), rawURL, h.acceptHeader(r))
	if err != nil {
		h.handleFetchError(w, key, err)
		return
	}

	if entry.ContentType == "image/avif" && !h.gate.Enabled(flags.AVIFPassthrough) {
		IncRequest("error")
		http.Error(w, "avif delivery is not enabled", http.StatusUnsupportedMediaType)
		return
	}

	h.store.Set(key, entry, snap.CacheTTL)
	h.serveEntry(w, snap, entry, "MISS")
}

// acceptHeader decides what Accept header reaches the upstream. AVIF is only
// negotiated when the passthrough flag is on; otherwise upstreams see a
// neutral image Accept.
func (h *Handler) acceptHeader(r *http.Request) string {
	accept := r.Header.Get("Accept")
	if h.gate.Enabled(flags.AVIFPassthrough) && strings.Contains(accept, "image/avif") {
		return accept
	}
	return "image/*"
}

func (h *Handler) serveEntry(w http.ResponseWriter, snap config.Snapshot, entry cache.Entry, cacheStatus string) {
	if entry.StatusCode != http.StatusOK {
		// Negative cache entry
		IncRequest("hit")
		w.Header().Set("X-Cache", cacheStatus)
		http.Error(w, "upstream error (cached)", http.StatusBadGateway)
		return
	}

	if cacheStatus == "HIT" {
		IncRequest("hit")
	} else {
		IncRequest("miss")
	}

	cc := fmt.Sprintf("public, max-age=%d", int(snap.CacheTTL.Seconds()))
	if h.gate.Enabled(flags.StaleWhileRevalidate) {
		cc += fmt.Sprintf(", stale-while-revalidate=%d", int(snap.CacheTTL.Seconds()))
	}

	w.Header().Set("Content-Type", entry.ContentType)
	w.Header().Set("Cache-Control", cc)
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Body)
}

func (h *Handler) handleFetchError(w http.ResponseWriter, key string, err error) {
	var statusErr *UpstreamStatusError

	switch {
	case errors.Is(err, ErrRateLimited):
		IncRequest("error")
		http.Error(w, "upstream fetch rate limited", http.StatusTooManyRequests)

	case errors.Is(err, ErrNotImage):
		IncRequest("error")
		http.Error(w, "upstream did not return an image", http.StatusUnsupportedMediaType)

	case errors.Is(err, ErrTooLarge):
		IncRequest("error")
		http.Error(w, "upstream image too large", http.StatusBadGateway)

	case errors.As(err, &statusErr):
		IncRequest("error")
		if statusErr.StatusCode == http.StatusNotFound && h.gate.Enabled(flags.CacheNegativeResults) {
			h.store.Set(key, cache.Entry{StatusCode: statusErr.StatusCode, FetchedAt: time.Now()}, negativeTTL)
		}
		http.Error(w, fmt.Sprintf("upstream returned %d", statusErr.StatusCode), http.StatusBadGateway)

	default:
		IncRequest("error")
		h.logger.Error().
			Err(err).
			Str("event", "images.fetch_failed").
			Msg("upstream fetch failed")
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
	}
}

// cacheKey derives the cache key from the URL and the negotiated Accept
// header so AVIF and non-AVIF variants never collide.
func cacheKey(rawURL, accept string) string {
	return rawURL + "|" + accept
}
