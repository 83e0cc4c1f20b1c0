// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/ManuGH/imggate/internal/log"
)

func TestHolderGetReturnsInitial(t *testing.T) {
	cfg := validConfig()
	cfg.ImageDomains = []string{"a.com"}
	holder := NewHolder(BuildSnapshot(cfg), NewLoader("", "test"), "")

	got := holder.Get()
	if len(got.ImageDomains) != 1 || got.ImageDomains[0] != "a.com" {
		t.Errorf("Get() domains = %v, want [a.com]", got.ImageDomains)
	}
}

func TestHolderReloadSwapsSnapshot(t *testing.T) {
	path := writeConfigFile(t, `
images:
  domains:
    - first.example.com
`)

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	holder := NewHolder(BuildSnapshot(initial), loader, path)

	if err := os.WriteFile(path, []byte(`
images:
  domains:
    - second.example.com
`), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	got := holder.Get()
	if len(got.ImageDomains) != 1 || got.ImageDomains[0] != "second.example.com" {
		t.Errorf("domains after reload = %v, want [second.example.com]", got.ImageDomains)
	}
}

func TestHolderReloadKeepsOldOnFailure(t *testing.T) {
	path := writeConfigFile(t, `
images:
  domains:
    - good.example.com
`)

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	holder := NewHolder(BuildSnapshot(initial), loader, path)

	if err := os.WriteFile(path, []byte(`
images:
  domains:
    - "not a host!"
`), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	if err := holder.Reload(context.Background()); err == nil {
		t.Fatal("Reload() should fail on invalid config")
	}

	got := holder.Get()
	if len(got.ImageDomains) != 1 || got.ImageDomains[0] != "good.example.com" {
		t.Errorf("domains after failed reload = %v, want old config kept", got.ImageDomains)
	}
}

func TestHolderReloadAppliesLogLevel(t *testing.T) {
	log.Configure(log.Config{Level: "info"})
	defer log.Reconfigure(log.Config{Level: "info"})

	path := writeConfigFile(t, `
logLevel: info
`)

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	holder := NewHolder(BuildSnapshot(initial), loader, path)

	if err := os.WriteFile(path, []byte("logLevel: debug\n"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("global log level after reload = %s, want debug", got)
	}
}

func TestHolderReloadWithoutConfigFile(t *testing.T) {
	t.Setenv("IMGGATE_IMAGE_DOMAINS", "env.example.com")

	// Path points at a file that does not exist (ENV-only deployment).
	path := filepath.Join(t.TempDir(), "config.yaml")
	holder := NewHolder(BuildSnapshot(validConfig()), NewLoader(path, "test"), path)

	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() with missing file should fall back to ENV, got %v", err)
	}

	got := holder.Get()
	if len(got.ImageDomains) != 1 || got.ImageDomains[0] != "env.example.com" {
		t.Errorf("domains after ENV-only reload = %v, want [env.example.com]", got.ImageDomains)
	}
}

func TestHolderNotifiesListeners(t *testing.T) {
	path := writeConfigFile(t, `
logLevel: info
`)

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	holder := NewHolder(BuildSnapshot(initial), loader, path)

	ch := make(chan Snapshot, 1)
	holder.RegisterListener(ch)

	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	select {
	case snap := <-ch:
		if snap.LogLevel != "info" {
			t.Errorf("notified LogLevel = %q, want %q", snap.LogLevel, "info")
		}
	case <-time.After(time.Second):
		t.Fatal("listener was not notified")
	}
}

func TestHolderWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logLevel: info\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	holder := NewHolder(BuildSnapshot(initial), loader, path)

	ctx, cancel := context.WithCancel(context.Background())
	if err := holder.StartWatcher(ctx); err != nil {
		t.Fatalf("StartWatcher() error = %v", err)
	}
	defer func() {
		cancel()
		// Give the watch loop time to observe cancellation
		time.Sleep(50 * time.Millisecond)
	}()

	ch := make(chan Snapshot, 1)
	holder.RegisterListener(ch)

	if err := os.WriteFile(path, []byte("logLevel: debug\n"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case snap := <-ch:
		if snap.LogLevel != "debug" {
			t.Errorf("reloaded LogLevel = %q, want %q", snap.LogLevel, "debug")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not trigger reload")
	}
}

func TestHolderWatcherDisabledWithoutPath(t *testing.T) {
	holder := NewHolder(BuildSnapshot(validConfig()), NewLoader("", "test"), "")
	if err := holder.StartWatcher(context.Background()); err != nil {
		t.Fatalf("StartWatcher() with empty path should be a no-op, got %v", err)
	}
}
