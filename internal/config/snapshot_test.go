// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildSnapshotDeepCopies(t *testing.T) {
	cfg := validConfig()
	cfg.ImageDomains = []string{"a.com", "b.com"}
	cfg.Experimental["staleWhileRevalidate"] = true

	snap := BuildSnapshot(cfg)

	// Mutating the source must not leak into the snapshot
	cfg.ImageDomains[0] = "mutated.com"
	cfg.Experimental["staleWhileRevalidate"] = false

	if snap.ImageDomains[0] != "a.com" {
		t.Errorf("snapshot domain = %q, want %q", snap.ImageDomains[0], "a.com")
	}
	if !snap.ExperimentalEnabled("staleWhileRevalidate") {
		t.Error("snapshot flag should stay enabled")
	}
}

func TestSnapshotExperimentalUnknownFalse(t *testing.T) {
	snap := BuildSnapshot(validConfig())
	if snap.ExperimentalEnabled("neverHeardOfIt") {
		t.Error("unknown flag must read as false")
	}
}

func TestSnapshotClone(t *testing.T) {
	cfg := validConfig()
	cfg.ImageDomains = []string{"a.com", "b.com"}
	snap := BuildSnapshot(cfg)

	clone := snap.Clone()
	if diff := cmp.Diff(snap, clone); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	clone.ImageDomains[0] = "mutated.com"
	clone.Experimental["avifPassthrough"] = true

	if snap.ImageDomains[0] != "a.com" {
		t.Error("clone mutation leaked into original domains")
	}
	if snap.ExperimentalEnabled("avifPassthrough") {
		t.Error("clone mutation leaked into original flags")
	}
}
