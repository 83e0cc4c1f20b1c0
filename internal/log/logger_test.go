// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithComponentUsableBeforeConfigure(t *testing.T) {
	l := WithComponent("test")
	l.Debug().Msg("component logger works")
}

func TestReconfigureAppliesLoadedLevel(t *testing.T) {
	Configure(Config{Level: "info", Service: "imggate"})
	defer Reconfigure(Config{Level: "info"})

	Reconfigure(Config{Level: "debug", Service: "imggate"})
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Fatalf("global level = %s, want debug", got)
	}

	Reconfigure(Config{Level: "warn"})
	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Fatalf("global level = %s, want warn", got)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Fatalf("expected request id req-123, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestWithComponentFromContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-456")
	l := WithComponentFromContext(ctx, "images")
	l.Debug().Msg("must not panic")
}
