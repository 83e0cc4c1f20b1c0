// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads, validates and exposes the imggate configuration.
// Precedence is ENV > file > defaults; the effective configuration is
// immutable after Load and handed to components as a Snapshot.
package config
