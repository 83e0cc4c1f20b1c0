// SPDX-License-Identifier: MIT

package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/ManuGH/imggate/internal/config"
)

func TestNewSelectsMemory(t *testing.T) {
	c, err := New(config.Snapshot{CacheBackend: config.CacheBackendMemory, CacheMaxEntries: 10}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*memoryCache); !ok {
		t.Errorf("backend type = %T, want *memoryCache", c)
	}
}

func TestNewSelectsBadger(t *testing.T) {
	c, err := New(config.Snapshot{
		CacheBackend: config.CacheBackendBadger,
		CachePath:    t.TempDir(),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*BadgerCache); !ok {
		t.Errorf("backend type = %T, want *BadgerCache", c)
	}
}

func TestNewSelectsRedis(t *testing.T) {
	srv := miniredis.RunT(t)

	c, err := New(config.Snapshot{
		CacheBackend: config.CacheBackendRedis,
		RedisAddr:    srv.Addr(),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*RedisCache); !ok {
		t.Errorf("backend type = %T, want *RedisCache", c)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	if _, err := New(config.Snapshot{CacheBackend: "tape"}, zerolog.Nop()); err == nil {
		t.Fatal("New() should reject unknown backend")
	}
}
