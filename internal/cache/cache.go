// Package cache implements a small key-value contract that lets the
// election store be backed by either an in-process LRU or an external
// memcache instance without any other package knowing the difference.
package cache

import "context"

// Cache is get/set/drop plus their batched siblings. Implementations
// decide serialization, TTLs, and eviction.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Drop(ctx context.Context, key string) error

	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)
	SetMulti(ctx context.Context, values map[string][]byte, ttlSeconds int) error
	DropMulti(ctx context.Context, keys []string) error

	// Keys returns every key currently stored under this cache's namespace.
	// Used by the overview aggregator's Bootstrap to enumerate the raw
	// election store at startup; not part of the external cache contract proper, but
	// every implementation here can answer it cheaply.
	Keys(ctx context.Context) ([]string, error)
}
