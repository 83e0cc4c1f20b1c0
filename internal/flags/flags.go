// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package flags gates optional behavior behind named experimental switches.
package flags

import "github.com/ManuGH/imggate/internal/config"

// Flag names understood by the gate. The config registry is the source of
// truth; these constants exist so call sites cannot typo a name.
const (
	StaleWhileRevalidate = "staleWhileRevalidate"
	CacheNegativeResults = "cacheNegativeResults"
	AVIFPassthrough      = "avifPassthrough"
)

// Gate answers whether an experimental behavior is active for a request.
// It reads the current snapshot on every call so hot reloads take effect
// without restarting in-flight components.
type Gate struct {
	source func() config.Snapshot
}

// NewGate builds a gate reading snapshots from source.
func NewGate(source func() config.Snapshot) *Gate {
	return &Gate{source: source}
}

// Enabled reports whether the named flag is on. Unknown names are false.
func (g *Gate) Enabled(name string) bool {
	return g.source().ExperimentalEnabled(name)
}
