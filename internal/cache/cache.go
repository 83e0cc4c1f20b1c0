// SPDX-License-Identifier: MIT

// Package cache stores fetched image bodies with TTL support.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached upstream response body.
type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"contentType"`
	StatusCode  int       `json:"statusCode"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Cache provides thread-safe caching with expiration support.
type Cache interface {
	// Get retrieves an entry from the cache. Returns false if not found or expired.
	Get(key string) (Entry, bool)
	// Set stores an entry in the cache with the specified TTL.
	Set(key string, e Entry, ttl time.Duration)
	// Delete removes an entry from the cache.
	Delete(key string)
	// Clear removes all entries from the cache.
	Clear()
	// Stats returns cache statistics.
	Stats() Stats
	// Close releases backend resources.
	Close() error
}

// Stats holds cache performance metrics.
type Stats struct {
	Hits        int64 // Number of successful Get operations
	Misses      int64 // Number of failed Get operations (not found or expired)
	Sets        int64 // Number of Set operations
	Evictions   int64 // Number of entries removed by cleanup or capacity pressure
	CurrentSize int   // Current number of cached entries
}

// record wraps an entry with its expiration time.
type record struct {
	entry      Entry
	expiration time.Time
}

func (r *record) isExpired() bool {
	return time.Now().After(r.expiration)
}

// memoryCache is an in-memory implementation of Cache with a capacity bound.
type memoryCache struct {
	mu         sync.RWMutex
	records    map[string]*record
	maxEntries int
	stats      Stats
	janitor    *janitor
}

// NewMemoryCache creates a new in-memory cache with automatic cleanup.
// maxEntries bounds the number of live entries (0 means unbounded); the
// cleanupInterval determines how often expired entries are removed.
func NewMemoryCache(maxEntries int, cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		records:    make(map[string]*record),
		maxEntries: maxEntries,
	}

	if cleanupInterval > 0 {
		c.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
		}
		go c.janitor.run(c)
	}

	return c
}

// Get retrieves an entry from the cache.
func (c *memoryCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, found := c.records[key]
	if !found || r.isExpired() {
		c.stats.Misses++
		return Entry{}, false
	}

	c.stats.Hits++
	return r.entry, true
}

// Set stores an entry in the cache. When at capacity, the record closest to
// expiry is evicted first.
func (c *memoryCache) Set(key string, e Entry, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[key]; !exists && c.maxEntries > 0 && len(c.records) >= c.maxEntries {
		c.evictSoonestLocked()
	}

	c.records[key] = &record{
		entry:      e,
		expiration: time.Now().Add(ttl),
	}
	c.stats.Sets++
}

// evictSoonestLocked removes the record with the earliest expiration.
// Caller must hold the write lock.
func (c *memoryCache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for key, r := range c.records {
		if victim == "" || r.expiration.Before(soonest) {
			victim = key
			soonest = r.expiration
		}
	}
	if victim != "" {
		delete(c.records, victim)
		c.stats.Evictions++
	}
}

// Delete removes an entry from the cache.
func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, key)
}

// Clear removes all entries from the cache.
func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]*record)
}

// Stats returns cache statistics.
func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.CurrentSize = len(c.records)
	return stats
}

// deleteExpired removes all expired records from the cache.
// Returns the number of records deleted.
func (c *memoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, r := range c.records {
		if r.isExpired() {
			delete(c.records, key)
			count++
		}
	}

	c.stats.Evictions += int64(count)
	return count
}

// Close stops the background cleanup goroutine.
func (c *memoryCache) Close() error {
	if c.janitor != nil {
		c.janitor.stop <- struct{}{}
	}
	return nil
}

// janitor performs periodic cleanup of expired records.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
}

func (j *janitor) run(c *memoryCache) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

// noOpCache is a cache that does nothing (useful for disabling caching).
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache anything.
func NewNoOpCache() Cache {
	return &noOpCache{}
}

func (c *noOpCache) Get(key string) (Entry, bool)               { return Entry{}, false }
func (c *noOpCache) Set(key string, e Entry, ttl time.Duration) {}
func (c *noOpCache) Delete(key string)                          {}
func (c *noOpCache) Clear()                                     {}
func (c *noOpCache) Stats() Stats                               { return Stats{} }
func (c *noOpCache) Close() error                               { return nil }
