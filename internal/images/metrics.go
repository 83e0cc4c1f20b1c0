// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package images

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks image requests by outcome.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imggate_image_requests_total",
		Help: "Total image requests by result",
	}, []string{"result"})

	// FetchDuration tracks upstream fetch latency.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imggate_fetch_duration_seconds",
		Help:    "Upstream image fetch duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// FetchBytes tracks upstream response body sizes.
	FetchBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imggate_fetch_bytes",
		Help:    "Upstream image body size in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	// RateLimitedTotal counts fetches delayed or rejected by the upstream limiter.
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imggate_upstream_ratelimited_total",
		Help: "Total upstream fetches rejected by the rate limiter",
	})
)

// IncRequest records a request outcome (hit, miss, denied, error).
func IncRequest(result string) {
	RequestsTotal.WithLabelValues(result).Inc()
}

// ObserveFetch records a completed upstream fetch.
func ObserveFetch(duration time.Duration, bytes int) {
	FetchDuration.Observe(duration.Seconds())
	FetchBytes.Observe(float64(bytes))
}
