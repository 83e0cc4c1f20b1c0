// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ManuGH/imggate/internal/config"
	"github.com/ManuGH/imggate/internal/health"
)

func testSnapshot() config.Snapshot {
	return config.Snapshot{
		Version:           "test",
		LogLevel:          "info",
		LogService:        "imggate",
		Experimental:      map[string]bool{},
		ImageDomains:      []string{"a.com", "b.com"},
		ImageFetchTimeout: 10 * time.Second,
		ImageMaxBodyBytes: 1 << 20,
		ListenAddr:        ":8080",
		RateLimitEnabled:  false,
		RateLimitRPM:      600,
		CacheBackend:      config.CacheBackendMemory,
		CacheTTL:          time.Hour,
		RedisPassword:     "super-secret",
	}
}

func okImages() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("image"))
	})
}

func newTestServer(snap config.Snapshot) *Server {
	return NewServer(func() config.Snapshot { return snap }, nil, health.NewManager(snap.Version), okImages())
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestServer(testSnapshot()).Router()

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestRouterImagesRoute(t *testing.T) {
	router := newTestServer(testSnapshot()).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images?url=x", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestConfigShowSanitized(t *testing.T) {
	router := newTestServer(testSnapshot()).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	if strings.Contains(body, "super-secret") {
		t.Error("config view leaked the redis password")
	}

	var view configView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if diff := cmp.Diff([]string{"a.com", "b.com"}, view.ImageDomains); diff != "" {
		t.Errorf("ImageDomains (-want +got):\n%s", diff)
	}
}

func TestConfigReloadWithoutHolder(t *testing.T) {
	router := newTestServer(testSnapshot()).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestConfigReloadWithHolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logLevel: info\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loader := config.NewLoader(path, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	holder := config.NewHolder(config.BuildSnapshot(initial), loader, path)

	srv := NewServer(holder.Get, holder, health.NewManager("test"), okImages())
	router := srv.Router()

	if err := os.WriteFile(path, []byte("logLevel: debug\n"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view configView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.LogLevel != "debug" {
		t.Errorf("LogLevel after reload = %q, want debug", view.LogLevel)
	}
}

func TestConfigReloadInvalidKeepsServing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logLevel: info\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loader := config.NewLoader(path, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	holder := config.NewHolder(config.BuildSnapshot(initial), loader, path)

	srv := NewServer(holder.Get, holder, health.NewManager("test"), okImages())
	router := srv.Router()

	if err := os.WriteFile(path, []byte("nonsense: true\n"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if holder.Get().LogLevel != "info" {
		t.Error("failed reload must keep the old snapshot")
	}
}

func TestRateLimitEnforced(t *testing.T) {
	snap := testSnapshot()
	snap.RateLimitEnabled = true
	snap.RateLimitRPM = 2

	router := newTestServer(snap).Router()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/images?url=x", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first requests = %v, want 200s", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", codes[2])
	}
}

func TestRateLimitSkipsHealth(t *testing.T) {
	snap := testSnapshot()
	snap.RateLimitEnabled = true
	snap.RateLimitRPM = 1

	router := newTestServer(snap).Router()

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("health request %d = %d, want 200 (never rate limited)", i, rec.Code)
		}
	}
}

func TestRecovererCatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	srv := NewServer(func() config.Snapshot { return testSnapshot() }, nil, health.NewManager("test"), panicking)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images?url=x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
