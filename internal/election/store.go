package election

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nanovote/votewatch/internal/cache"
)

// KeyPrefix namespaces every election-store key.
const KeyPrefix = "el_"

// Store is the full election store, written by the merger and merged
// into each tick by the aggregator, backed by the cache contract.
type Store struct {
	c cache.Cache
}

// NewStore wraps a cache implementation as the election store.
func NewStore(c cache.Cache) *Store {
	return &Store{c: c}
}

func (s *Store) Get(ctx context.Context, hash string) (*Record, bool, error) {
	raw, ok, err := s.c.Get(ctx, KeyPrefix+hash)
	if err != nil || !ok {
		return nil, ok, err
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false, fmt.Errorf("election: decode %s: %w", hash, err)
	}
	return &r, true, nil
}

func (s *Store) GetMulti(ctx context.Context, hashes []string) (map[string]*Record, error) {
	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = KeyPrefix + h
	}
	raws, err := s.c.GetMulti(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Record, len(raws))
	for k, raw := range raws {
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("election: decode %s: %w", k, err)
		}
		out[k[len(KeyPrefix):]] = &r
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, r *Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, KeyPrefix+r.Hash, raw, 0)
}

// MergeDelta merges every delta record into the stored record for its hash
// and writes the merged records back in one batch. It returns the merged
// records, keyed by hash, for the caller to transform into overview
// entries without a second round-trip through the cache.
func (s *Store) MergeDelta(ctx context.Context, delta map[string]*Record) (map[string]*Record, error) {
	if len(delta) == 0 {
		return nil, nil
	}
	hashes := make([]string, 0, len(delta))
	for h := range delta {
		hashes = append(hashes, h)
	}
	existing, err := s.GetMulti(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("election: fetch existing: %w", err)
	}

	merged := make(map[string]*Record, len(delta))
	toWrite := make(map[string][]byte, len(delta))
	for h, d := range delta {
		m := Merge(existing[h], d)
		merged[h] = m
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("election: encode %s: %w", h, err)
		}
		toWrite[KeyPrefix+h] = raw
	}
	if err := s.c.SetMulti(ctx, toWrite, 0); err != nil {
		return nil, fmt.Errorf("election: write merged: %w", err)
	}
	return merged, nil
}

// Evict drops the given hashes from the store: elections no longer
// present in either capped overview group are dropped.
func (s *Store) Evict(ctx context.Context, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = KeyPrefix + h
	}
	return s.c.DropMulti(ctx, keys)
}

// Keys enumerates every hash currently retained in the store.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	raw, err := s.c.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		if len(k) > len(KeyPrefix) && k[:len(KeyPrefix)] == KeyPrefix {
			out = append(out, k[len(KeyPrefix):])
		}
	}
	return out, nil
}
