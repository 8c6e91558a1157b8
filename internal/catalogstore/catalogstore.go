// Package catalogstore is the concrete implementation of catalog.Loader:
// a plain HTTP GET against the metadata service, optionally backed by a
// Redis mirror of the last-known-good snapshot so a brief metadata service
// outage doesn't blank the in-process cache (original_source's
// MetadataAppRepository / CachedMetadataAppRepository).
package catalogstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"neobase-ai/internal/catalog"
)

const redisSnapshotKey = "query_engine:catalog_snapshot"

// HTTPLoader fetches the metadata document from
// http://{host}:{port}/api/v1/apps-detailed. net/http + encoding/json is
// deliberately stdlib-only: a single GET-and-decode has nothing for a
// client library to add over the standard client.
type HTTPLoader struct {
	client *http.Client
	url    string
}

func NewHTTPLoader(host, port string) *HTTPLoader {
	return &HTTPLoader{
		client: &http.Client{Timeout: 15 * time.Second},
		url:    fmt.Sprintf("http://%s:%s/api/v1/apps-detailed", host, port),
	}
}

func (l *HTTPLoader) Load(ctx context.Context) (*catalog.MetadataAppsConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalogstore: metadata service returned %s", resp.Status)
	}

	var cfg catalog.MetadataAppsConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RedisMirroredLoader wraps a primary Loader (usually HTTPLoader): on
// success it persists the snapshot to Redis and returns it; on failure it
// falls back to the last snapshot Redis has, so a transient metadata
// service outage doesn't blank the cache. It never caches query results —
// only the catalog document spec.md's non-goal excludes result caching,
// not catalog caching.
type RedisMirroredLoader struct {
	primary catalog.Loader
	redis   *redis.Client
	ttl     time.Duration
}

func NewRedisMirroredLoader(primary catalog.Loader, client *redis.Client) *RedisMirroredLoader {
	return &RedisMirroredLoader{primary: primary, redis: client, ttl: 10 * time.Minute}
}

func (l *RedisMirroredLoader) Load(ctx context.Context) (*catalog.MetadataAppsConfig, error) {
	cfg, err := l.primary.Load(ctx)
	if err == nil {
		if encoded, marshalErr := json.Marshal(cfg); marshalErr == nil {
			_ = l.redis.Set(ctx, redisSnapshotKey, encoded, l.ttl).Err()
		}
		return cfg, nil
	}

	cached, redisErr := l.redis.Get(ctx, redisSnapshotKey).Bytes()
	if redisErr != nil {
		return nil, err
	}
	var fallback catalog.MetadataAppsConfig
	if jsonErr := json.Unmarshal(cached, &fallback); jsonErr != nil {
		return nil, err
	}
	return &fallback, nil
}
