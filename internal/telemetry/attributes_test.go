// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"errors"
	"testing"
)

func TestFetchAttributesOmitsEmptyValues(t *testing.T) {
	attrs := FetchAttributes("cdn.example.org", "", "", 512)

	keys := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		keys[string(a.Key)] = true
	}
	if !keys[FetchHostKey] || !keys[FetchBytesKey] {
		t.Fatalf("missing host/bytes attributes: %v", attrs)
	}
	if keys[FetchContentTypeKey] || keys[FetchCacheKey] {
		t.Errorf("empty values must be omitted: %v", attrs)
	}
}

func TestFetchAttributesFull(t *testing.T) {
	attrs := FetchAttributes("cdn.example.org", "image/png", "hit", 2048)
	if len(attrs) != 4 {
		t.Fatalf("got %d attributes, want 4: %v", len(attrs), attrs)
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("boom"), "network")

	got := make(map[string]string, len(attrs))
	for _, a := range attrs {
		got[string(a.Key)] = a.Value.Emit()
	}
	if got[ErrorKey] != "true" {
		t.Errorf("%s = %q, want true", ErrorKey, got[ErrorKey])
	}
	if got[ErrorTypeKey] != "network" {
		t.Errorf("%s = %q, want network", ErrorTypeKey, got[ErrorTypeKey])
	}
}
