// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManagerSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := validConfig()
	cfg.ImageDomains = []string{"a.com", "b.com"}
	cfg.Experimental["cacheNegativeResults"] = true
	cfg.LogLevel = "debug"

	mgr := NewManager(path)
	if err := mgr.Save(&cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loader := NewLoader(path, cfg.Version)
	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() after Save() error = %v", err)
	}

	if diff := cmp.Diff(cfg.ImageDomains, loaded.ImageDomains); diff != "" {
		t.Errorf("domains changed across save/load (-saved +loaded):\n%s", diff)
	}
	if !loaded.Experimental["cacheNegativeResults"] {
		t.Error("experimental flag lost across save/load")
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", loaded.LogLevel, "debug")
	}
}

func TestManagerSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "config.yaml")

	cfg := validConfig()
	mgr := NewManager(path)
	if err := mgr.Save(&cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loader := NewLoader(path, "test")
	if _, err := loader.Load(); err != nil {
		t.Fatalf("Load() of saved config error = %v", err)
	}
}
