package catalog

import (
	"context"
	"sync"
	"time"
)

// Loader fetches the current metadata snapshot from the catalog service.
// internal/catalogstore provides the concrete HTTP+Redis implementation;
// spec.md §1 treats the loader as an external collaborator, not core.
type Loader interface {
	Load(ctx context.Context) (*MetadataAppsConfig, error)
}

// Cache holds the last-known-good metadata snapshot in memory, refreshed by
// a background daemon, so request handling never blocks on the catalog
// service (original_source's CachedMetadataAppRepository).
type Cache struct {
	mu       sync.RWMutex
	snapshot *MetadataAppsConfig
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the last-loaded snapshot, or nil if none has loaded yet.
func (c *Cache) Get() *MetadataAppsConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

func (c *Cache) set(cfg *MetadataAppsConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = cfg
}

// App looks up one app's config in the current snapshot.
func (c *Cache) App(appID string) (AppConfig, bool) {
	snap := c.Get()
	if snap == nil {
		return AppConfig{}, false
	}
	app, ok := snap.AppIDConfigs[appID]
	return app, ok
}

// Refresh performs one load and swaps it in on success; a failed load keeps
// serving the previous snapshot.
func (c *Cache) Refresh(ctx context.Context, loader Loader) error {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	c.set(cfg)
	return nil
}

// StartDaemon runs Refresh once synchronously, then every interval in the
// background until ctx is cancelled (original_source's 30-second reload
// daemon). Load errors, the first one included, are passed to onError (if
// set) and never returned — the cache keeps serving its last snapshot, and
// StartDaemon always returns nil.
func (c *Cache) StartDaemon(ctx context.Context, loader Loader, interval time.Duration, onError func(error)) error {
	if err := c.Refresh(ctx, loader); err != nil {
		if onError != nil {
			onError(err)
		}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx, loader); err != nil && onError != nil {
					onError(err)
				}
			}
		}
	}()
	return nil
}
