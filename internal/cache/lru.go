package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is the in-process implementation of Cache, used when no
// MEMCACHE_HOST is configured. It is a thin, mutex-free wrapper around
// hashicorp/golang-lru since the library already synchronizes internally...
// except golang-lru/v2's Cache is not safe for the Keys()+Get() pattern
// under concurrent Add, so a mutex guards the whole namespace here.
type LRU struct {
	mu sync.RWMutex
	c  *lru.Cache[string, []byte]
}

// NewLRU builds an in-process cache capped at size entries.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRU{c: c}, nil
}

func (l *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.c.Get(key)
	return v, ok, nil
}

func (l *LRU) Set(_ context.Context, key string, value []byte, _ int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Add(key, value)
	return nil
}

func (l *LRU) Drop(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Remove(key)
	return nil
}

func (l *LRU) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := l.c.Get(k); ok {
			out[k] = v
		}
	}
	return out, nil
}

func (l *LRU) SetMulti(_ context.Context, values map[string][]byte, _ int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range values {
		l.c.Add(k, v)
	}
	return nil
}

func (l *LRU) DropMulti(_ context.Context, keys []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.c.Remove(k)
	}
	return nil
}

func (l *LRU) Keys(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Keys(), nil
}
