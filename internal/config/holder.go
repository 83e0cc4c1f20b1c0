// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/imggate/internal/log"
)

// Holder holds the active configuration snapshot with atomic reloading.
// It provides thread-safe access and supports hot reloading from file
// changes or a manual trigger via API.
type Holder struct {
	mu         sync.RWMutex
	current    Snapshot
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger

	// Reload notifications
	reloadMu        sync.RWMutex
	reloadListeners []chan<- Snapshot
}

// NewHolder creates a new configuration holder with an initial snapshot.
func NewHolder(initial Snapshot, loader *Loader, configPath string) *Holder {
	return &Holder{
		current:         initial,
		loader:          loader,
		configPath:      configPath,
		logger:          log.WithComponent("config"),
		reloadListeners: make([]chan<- Snapshot, 0),
	}
}

// Get returns the current snapshot (thread-safe read).
func (h *Holder) Get() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from file and environment.
// If loading or validation fails, the old snapshot is kept and an error is
// returned, so a broken edit never replaces a working configuration.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	// ENV-only deployments have no config file; reload from environment and
	// defaults instead of failing on the missing path.
	loader := h.loader
	if h.configPath != "" {
		if _, statErr := os.Stat(h.configPath); errors.Is(statErr, fs.ErrNotExist) {
			h.logger.Debug().
				Str("event", "config.reload_env_only").
				Str("path", h.configPath).
				Msg("config file not found, reloading from environment and defaults")
			loader = NewLoader("", h.loader.version)
		}
	}

	// Load runs the full pipeline including validation.
	newCfg, err := loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	newSnap := BuildSnapshot(newCfg)

	// Atomically swap the snapshot
	h.mu.Lock()
	oldSnap := h.current
	h.current = newSnap
	h.mu.Unlock()

	// Apply the reloaded log settings so logLevel edits take effect
	log.Reconfigure(log.Config{
		Level:   newSnap.LogLevel,
		Service: newSnap.LogService,
		Version: newSnap.Version,
	})

	h.notifyListeners(newSnap)
	h.logChanges(oldSnap, newSnap)

	h.logger.Info().
		Str("event", "config.reload_success").
		Msg("configuration reloaded successfully")

	return nil
}

// StartWatcher starts watching the config file for changes.
// If configPath is empty, this is a no-op (config comes from ENV only).
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	h.watcher = watcher

	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close() // Ignore close error in error path
		return fmt.Errorf("watch config file: %w", err)
	}

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)

	return nil
}

// watchLoop is the main file watcher loop.
func (h *Holder) watchLoop(ctx context.Context) {
	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			if h.watcher != nil {
				_ = h.watcher.Close() // Ignore close error in error path
			}
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Watch for Write and Create events (covers vim, nano, echo)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				h.logger.Debug().
					Str("event", "config.file_changed").
					Str("op", event.Op.String()).
					Msg("config file changed")

				// Debounce: reset timer on each event
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().
							Err(err).
							Str("event", "config.auto_reload_failed").
							Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher (if running).
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close() // Ignore close error in error path
	}
}

// RegisterListener registers a channel to receive reload notifications.
// The channel receives the new snapshot whenever a reload succeeds.
// The caller is responsible for closing the channel.
func (h *Holder) RegisterListener(ch chan<- Snapshot) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new snapshot to all registered listeners (non-blocking).
func (h *Holder) notifyListeners(newSnap Snapshot) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newSnap:
		default:
			// Skip if channel is full (non-blocking send)
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// logChanges logs the differences between old and new snapshots.
func (h *Holder) logChanges(old, newSnap Snapshot) {
	if old.LogLevel != newSnap.LogLevel {
		h.logger.Info().
			Str("old", old.LogLevel).
			Str("new", newSnap.LogLevel).
			Msg("config changed: LogLevel")
	}
	if !equalStrings(old.ImageDomains, newSnap.ImageDomains) {
		h.logger.Info().
			Strs("old", old.ImageDomains).
			Strs("new", newSnap.ImageDomains).
			Msg("config changed: ImageDomains")
	}
	for _, f := range KnownExperimentalFlags() {
		if old.Experimental[f.Name] != newSnap.Experimental[f.Name] {
			h.logger.Info().
				Bool("old", old.Experimental[f.Name]).
				Bool("new", newSnap.Experimental[f.Name]).
				Str("flag", f.Name).
				Msg("config changed: Experimental")
		}
	}
	if old.CacheBackend != newSnap.CacheBackend {
		h.logger.Info().
			Str("old", old.CacheBackend).
			Str("new", newSnap.CacheBackend).
			Msg("config changed: CacheBackend")
	}
	if old.RateLimitRPM != newSnap.RateLimitRPM {
		h.logger.Info().
			Int("old", old.RateLimitRPM).
			Int("new", newSnap.RateLimitRPM).
			Msg("config changed: RateLimitRPM")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
