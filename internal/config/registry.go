// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "sort"

// ExperimentalFlag describes one recognized experimental toggle.
type ExperimentalFlag struct {
	Name        string
	Description string
	Default     bool
}

// experimentalRegistry is the fixed set of recognized experimental flags.
// Flag names outside this set are ignored by the host: the loader drops them
// from the effective config with a warning.
var experimentalRegistry = map[string]ExperimentalFlag{
	"staleWhileRevalidate": {
		Name:        "staleWhileRevalidate",
		Description: "serve expired cache entries while refreshing them in the background",
		Default:     false,
	},
	"cacheNegativeResults": {
		Name:        "cacheNegativeResults",
		Description: "cache upstream 404 responses briefly to shield flaky origins",
		Default:     false,
	},
	"avifPassthrough": {
		Name:        "avifPassthrough",
		Description: "pass AVIF payloads through without content-type fallback",
		Default:     false,
	},
}

// KnownExperimentalFlags returns the recognized flag set, sorted by name.
func KnownExperimentalFlags() []ExperimentalFlag {
	out := make([]ExperimentalFlag, 0, len(experimentalRegistry))
	for _, f := range experimentalRegistry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsKnownExperimentalFlag reports whether name is a recognized flag.
func IsKnownExperimentalFlag(name string) bool {
	_, ok := experimentalRegistry[name]
	return ok
}

// defaultExperimental returns the registry defaults as an effective flag map.
func defaultExperimental() map[string]bool {
	out := make(map[string]bool, len(experimentalRegistry))
	for name, f := range experimentalRegistry {
		out[name] = f.Default
	}
	return out
}
