package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcache is the external-memcache implementation of Cache, selected when
// MEMCACHE_HOST is set. Memcache has no native key enumeration, so Memcache
// keeps a small local index of the keys it has set to answer Keys() for
// the aggregator's startup bootstrap; the index is an implementation detail of
// this package, not part of the cache contract.
type Memcache struct {
	client *memcache.Client
	prefix string

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemcache dials addr (host:port) and namespaces every key with prefix.
func NewMemcache(addr, prefix string) *Memcache {
	return &Memcache{
		client: memcache.New(addr),
		prefix: prefix,
		keys:   make(map[string]struct{}),
	}
}

func (m *Memcache) key(k string) string { return m.prefix + k }

func (m *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := m.client.Get(m.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (m *Memcache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	err := m.client.Set(&memcache.Item{Key: m.key(key), Value: value, Expiration: int32(ttlSeconds)})
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.keys[key] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *Memcache) Drop(_ context.Context, key string) error {
	err := m.client.Delete(m.key(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	m.mu.Lock()
	delete(m.keys, key)
	m.mu.Unlock()
	return nil
}

func (m *Memcache) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	prefixed := make([]string, len(keys))
	lookup := make(map[string]string, len(keys))
	for i, k := range keys {
		prefixed[i] = m.key(k)
		lookup[m.key(k)] = k
	}
	items, err := m.client.GetMulti(prefixed)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(items))
	for pk, item := range items {
		out[lookup[pk]] = item.Value
	}
	return out, nil
}

func (m *Memcache) SetMulti(ctx context.Context, values map[string][]byte, ttlSeconds int) error {
	for k, v := range values {
		if err := m.Set(ctx, k, v, ttlSeconds); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memcache) DropMulti(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := m.Drop(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memcache) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.keys))
	for k := range m.keys {
		out = append(out, k)
	}
	return out, nil
}
