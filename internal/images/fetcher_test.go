// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package images

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ManuGH/imggate/internal/config"
)

func testSnapshot() config.Snapshot {
	return config.Snapshot{
		ImageFetchTimeout: 5 * time.Second,
		ImageMaxBodyBytes: 1024,
		ImageUserAgent:    "imggate-test/1.0",
		CacheTTL:          time.Minute,
	}
}

func TestFetcherFetchOK(t *testing.T) {
	body := []byte("fake png")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "imggate-test/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(testSnapshot())
	entry, err := f.Fetch(context.Background(), srv.URL, "image/*")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if entry.ContentType != "image/png" {
		t.Errorf("ContentType = %q", entry.ContentType)
	}
	if string(entry.Body) != string(body) {
		t.Errorf("Body = %q", entry.Body)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", entry.StatusCode)
	}
}

func TestFetcherRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))
	defer srv.Close()

	f := NewFetcher(testSnapshot())
	if _, err := f.Fetch(context.Background(), srv.URL, ""); !errors.Is(err, ErrNotImage) {
		t.Fatalf("error = %v, want ErrNotImage", err)
	}
}

func TestFetcherRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	f := NewFetcher(testSnapshot()) // cap is 1024
	if _, err := f.Fetch(context.Background(), srv.URL, ""); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("error = %v, want ErrTooLarge", err)
	}
}

func TestFetcherReportsUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(testSnapshot())
	_, err := f.Fetch(context.Background(), srv.URL, "")

	var statusErr *UpstreamStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want UpstreamStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestFetcherRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	snap := testSnapshot()
	snap.UpstreamRate = 1
	snap.UpstreamBurst = 1

	f := NewFetcher(snap)
	if _, err := f.Fetch(context.Background(), srv.URL, ""); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	if _, err := f.Fetch(context.Background(), srv.URL, ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second Fetch() error = %v, want ErrRateLimited", err)
	}
}

func TestFetcherForwardsAccept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "image/avif,image/*" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "image/avif")
		_, _ = w.Write([]byte("avif"))
	}))
	defer srv.Close()

	f := NewFetcher(testSnapshot())
	if _, err := f.Fetch(context.Background(), srv.URL, "image/avif,image/*"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
}

func TestFetcherRecordsFetchSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("fake png"))
	}))
	defer srv.Close()

	f := NewFetcher(testSnapshot())
	if _, err := f.Fetch(context.Background(), srv.URL, ""); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "images.fetch" {
		t.Errorf("span name = %q, want images.fetch", span.Name())
	}

	attrs := make(map[string]string)
	for _, a := range span.Attributes() {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	if attrs["fetch.host"] != "127.0.0.1" {
		t.Errorf("fetch.host = %q, want 127.0.0.1", attrs["fetch.host"])
	}
	if attrs["fetch.content_type"] != "image/png" {
		t.Errorf("fetch.content_type = %q, want image/png", attrs["fetch.content_type"])
	}
	if attrs["fetch.cache"] != "miss" {
		t.Errorf("fetch.cache = %q, want miss", attrs["fetch.cache"])
	}
}

func TestFetcherContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	f := NewFetcher(testSnapshot())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fetch(ctx, srv.URL, ""); err == nil {
		t.Fatal("Fetch() should fail with canceled context")
	}
}
