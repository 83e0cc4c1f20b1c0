// SPDX-License-Identifier: MIT

package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(0, 0)
	defer c.Close()

	e := Entry{Body: []byte("png bytes"), ContentType: "image/png", StatusCode: 200}
	c.Set("k1", e, time.Minute)

	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.ContentType != "image/png" || string(got.Body) != "png bytes" {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(0, 0)
	defer c.Close()

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(0, 0)
	defer c.Close()

	c.Set("k1", Entry{Body: []byte("x")}, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k1"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryCacheCapacityEviction(t *testing.T) {
	c := NewMemoryCache(2, 0)
	defer c.Close()

	c.Set("a", Entry{}, time.Minute)
	c.Set("b", Entry{}, time.Hour)
	c.Set("c", Entry{}, time.Hour)

	stats := c.Stats()
	if stats.CurrentSize != 2 {
		t.Errorf("CurrentSize = %d, want 2", stats.CurrentSize)
	}
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	// "a" expires soonest and should be the victim
	if _, ok := c.Get("a"); ok {
		t.Error("entry closest to expiry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("entry b should survive")
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemoryCache(0, 0)
	defer c.Close()

	c.Set("k1", Entry{}, time.Minute)
	c.Delete("k1")
	if _, ok := c.Get("k1"); ok {
		t.Fatal("deleted entry still present")
	}

	c.Set("k2", Entry{}, time.Minute)
	c.Clear()
	if c.Stats().CurrentSize != 0 {
		t.Fatal("Clear() left entries behind")
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(0, 0)
	defer c.Close()

	c.Set("k1", Entry{}, time.Minute)
	c.Get("k1")
	c.Get("nope")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMemoryCacheJanitor(t *testing.T) {
	c := NewMemoryCache(0, 20*time.Millisecond)
	defer c.Close()

	c.Set("k1", Entry{}, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	if size := c.Stats().CurrentSize; size != 0 {
		t.Errorf("janitor left %d entries", size)
	}
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	c.Set("k1", Entry{Body: []byte("x")}, time.Minute)
	if _, ok := c.Get("k1"); ok {
		t.Fatal("noop cache should never hit")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func BenchmarkMemoryCacheGet(b *testing.B) {
	c := NewMemoryCache(0, 0)
	defer c.Close()

	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("key-%d", i), Entry{Body: make([]byte, 1024)}, time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("key-%d", i%100))
	}
}
