// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/imggate/internal/cache"
	"github.com/ManuGH/imggate/internal/config"
	"github.com/ManuGH/imggate/internal/log"
	"github.com/ManuGH/imggate/internal/telemetry"
)

var (
	// ErrNotImage means the upstream responded with a non-image content type.
	ErrNotImage = errors.New("upstream response is not an image")
	// ErrTooLarge means the upstream body exceeded the configured size cap.
	ErrTooLarge = errors.New("upstream response exceeds size limit")
	// ErrRateLimited means the upstream limiter rejected the fetch.
	ErrRateLimited = errors.New("upstream fetch rate limited")
)

// UpstreamStatusError reports a non-200 upstream response.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Fetcher downloads images from allowed upstreams. It enforces a body size
// cap, an image content type, and an optional token bucket on outbound
// requests shared across all callers.
type Fetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	timeout      time.Duration
	maxBodyBytes int64
	userAgent    string
	logger       zerolog.Logger
}

// NewFetcher builds a fetcher from the snapshot. An UpstreamRate of 0
// disables outbound rate limiting.
func NewFetcher(snap config.Snapshot) *Fetcher {
	var limiter *rate.Limiter
	if snap.UpstreamRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(snap.UpstreamRate), snap.UpstreamBurst)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: snap.ImageFetchTimeout,
		},
		limiter:      limiter,
		timeout:      snap.ImageFetchTimeout,
		maxBodyBytes: snap.ImageMaxBodyBytes,
		userAgent:    snap.ImageUserAgent,
		logger:       log.WithComponent("images"),
	}
}

// Fetch downloads rawURL and returns the body as a cache entry.
// The caller must have authorized the host before calling.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, accept string) (cache.Entry, error) {
	ctx, span := telemetry.Tracer("imggate/images").Start(ctx, "images.fetch")
	defer span.End()

	if f.limiter != nil && !f.limiter.Allow() {
		RateLimitedTotal.Inc()
		span.SetAttributes(telemetry.ErrorAttributes(ErrRateLimited, "rate_limited")...)
		return cache.Entry{}, ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		span.SetAttributes(telemetry.ErrorAttributes(err, "bad_request")...)
		return cache.Entry{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	host := req.URL.Hostname()

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		span.SetAttributes(telemetry.ErrorAttributes(err, "network")...)
		return cache.Entry{}, fmt.Errorf("upstream fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		statusErr := &UpstreamStatusError{StatusCode: resp.StatusCode}
		span.SetAttributes(telemetry.ErrorAttributes(statusErr, "upstream_status")...)
		return cache.Entry{}, statusErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		span.SetAttributes(telemetry.ErrorAttributes(ErrNotImage, "content_type")...)
		return cache.Entry{}, ErrNotImage
	}

	// Read one byte past the cap to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		span.SetAttributes(telemetry.ErrorAttributes(err, "read_body")...)
		return cache.Entry{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		span.SetAttributes(telemetry.ErrorAttributes(ErrTooLarge, "body_too_large")...)
		return cache.Entry{}, ErrTooLarge
	}

	span.SetAttributes(telemetry.FetchAttributes(host, contentType, "miss", len(body))...)
	ObserveFetch(time.Since(start), len(body))

	f.logger.Debug().
		Str("event", "images.fetch_ok").
		Str("url", rawURL).
		Str("contentType", contentType).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("fetched upstream image")

	return cache.Entry{
		Body:        body,
		ContentType: contentType,
		StatusCode:  resp.StatusCode,
		FetchedAt:   time.Now(),
	}, nil
}
