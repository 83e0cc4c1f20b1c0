// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package images

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAllowlistAllows(t *testing.T) {
	a := NewAllowlist([]string{"images.unsplash.com", "CDN.Example.org"})

	tests := []struct {
		host string
		want bool
	}{
		{"images.unsplash.com", true},
		{"IMAGES.UNSPLASH.COM", true},
		{"cdn.example.org", true},
		{"evil.com", false},
		{"sub.images.unsplash.com", false},
		{"unsplash.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := a.Allows(tt.host); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestAllowlistHostsOrdered(t *testing.T) {
	hosts := []string{"z.com", "a.com", "m.com"}
	a := NewAllowlist(hosts)

	if diff := cmp.Diff(hosts, a.Hosts()); diff != "" {
		t.Errorf("Hosts() reordered entries (-want +got):\n%s", diff)
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}
}

func TestAllowlistCopiesInput(t *testing.T) {
	hosts := []string{"a.com"}
	a := NewAllowlist(hosts)

	hosts[0] = "mutated.com"
	if !a.Allows("a.com") {
		t.Error("caller mutation leaked into allowlist")
	}

	got := a.Hosts()
	got[0] = "mutated.com"
	if a.Hosts()[0] != "a.com" {
		t.Error("Hosts() returned internal slice")
	}
}

func TestAllowlistEmpty(t *testing.T) {
	a := NewAllowlist(nil)
	if a.Allows("anything.com") {
		t.Error("empty allowlist must deny everything")
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
}
