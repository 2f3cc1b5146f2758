// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// artifact.go provides a Valkey-backed cache of rendered PDFs (L2). Keys
// are content hashes of the assembled markup, so an entry can never be
// stale; the TTL only bounds memory.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// artifactKeyPrefix is the Valkey key prefix for cached artifacts.
	artifactKeyPrefix = "artifact:"

	// DefaultArtifactTTL is how long a rendered PDF stays cached.
	DefaultArtifactTTL = time.Hour

	// maxArtifactBytes skips caching unusually large PDFs.
	maxArtifactBytes = 8 << 20
)

// ArtifactCache manages PDF caching in Valkey. Errors are logged and
// reported as misses.
type ArtifactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArtifactCache creates an artifact cache backed by the given Valkey client.
func NewArtifactCache(client *redis.Client, ttl time.Duration) *ArtifactCache {
	if ttl <= 0 {
		ttl = DefaultArtifactTTL
	}
	return &ArtifactCache{client: client, ttl: ttl}
}

// Get retrieves a cached PDF. ok is false on miss or error.
func (ac *ArtifactCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := ac.client.Get(ctx, artifactKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("artifact cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("artifact cache hit", "key", key)
	return val, true
}

// Set stores a PDF with the configured TTL.
func (ac *ArtifactCache) Set(ctx context.Context, key string, pdf []byte) {
	if len(pdf) > maxArtifactBytes {
		slog.Debug("artifact too large to cache", "key", key, "bytes", len(pdf))
		return
	}
	if err := ac.client.Set(ctx, artifactKeyPrefix+key, pdf, ac.ttl).Err(); err != nil {
		slog.Warn("artifact cache set error", "key", key, "error", err)
	}
}

// Purge removes every cached artifact by scanning for the prefix.
func (ac *ArtifactCache) Purge(ctx context.Context) (int, error) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := ac.client.Scan(ctx, cursor, artifactKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := ac.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("artifact cache cleared", "deleted", deleted)
	}
	return deleted, nil
}
