// SPDX-License-Identifier: MIT

package cache

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/imggate/internal/config"
)

// janitorInterval controls how often the memory backend sweeps expired entries.
const janitorInterval = time.Minute

// New builds the cache backend selected by the snapshot.
func New(snap config.Snapshot, logger zerolog.Logger) (Cache, error) {
	switch snap.CacheBackend {
	case config.CacheBackendMemory:
		return NewMemoryCache(snap.CacheMaxEntries, janitorInterval), nil

	case config.CacheBackendBadger:
		path := snap.CachePath
		if path == "" {
			path = filepath.Join(snap.DataDir, "cache")
		}
		return NewBadgerCache(path, logger)

	case config.CacheBackendRedis:
		return NewRedisCache(RedisConfig{
			Addr:     snap.RedisAddr,
			Password: snap.RedisPassword,
			DB:       snap.RedisDB,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown cache backend %q", snap.CacheBackend)
	}
}
