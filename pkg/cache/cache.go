// Package cache stores rendered chart images keyed by the content that
// produced them.
//
// Rendering the same chart model to the same format always yields the same
// bytes, so the renderer keys artifacts by a hash of the serialized model.
// A [FileCache] serves the CLI and single-process servers, a [RedisCache]
// lets several servers share results, and [NullCache] disables caching.
//
// # Keys
//
// Keys are built by a [Keyer]. [ScopedKeyer] prefixes every key, which the
// renderer uses to separate artifacts produced by different builds.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// nullCache never stores anything. It backs --no-cache and a disabled
// cache section in the config.
type nullCache struct{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error { return nil }
func (nullCache) Close() error { return nil }
