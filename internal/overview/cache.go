package overview

import (
	"context"
	"encoding/json"

	"github.com/nanovote/votewatch/internal/cache"
)

// KeyPrefix namespaces every overview-cache key, disjoint from the
// election store's el_ namespace so the two can carry independent TTLs
// and eviction policies.
const KeyPrefix = "ov_"

// overviewTTLSeconds bounds how long a published entry or key list survives
// in the overview cache absent a fresher tick.
const overviewTTLSeconds = 300

// confirmedKeysKey and unconfirmedKeysKey hold the full ordered hash lists
// for the two ranked groups, refreshed every tick.
const (
	confirmedKeysKey   = "confirmed_keys"
	unconfirmedKeysKey = "unconfirmed_keys"
)

// persist writes the entries touched this tick into the overview cache,
// keyed by hash, plus the full ordered key lists for both groups. touched
// restricts the per-entry writes to hashes actually merged this tick;
// untouched survivors of a prior tick are already cached.
func persist(ctx context.Context, c cache.Cache, ov Overview, touched map[string]bool) error {
	if c == nil {
		return nil
	}

	confirmedWrites := make(map[string][]byte)
	for _, e := range ov.Confirmed {
		if touched[e.Hash] {
			raw, err := json.Marshal(e)
			if err != nil {
				return err
			}
			confirmedWrites[KeyPrefix+e.Hash] = raw
		}
	}
	unconfirmedWrites := make(map[string][]byte)
	for _, e := range ov.Unconfirmed {
		if touched[e.Hash] {
			raw, err := json.Marshal(e)
			if err != nil {
				return err
			}
			unconfirmedWrites[KeyPrefix+e.Hash] = raw
		}
	}
	if len(confirmedWrites) > 0 {
		if err := c.SetMulti(ctx, confirmedWrites, overviewTTLSeconds); err != nil {
			return err
		}
	}
	if len(unconfirmedWrites) > 0 {
		if err := c.SetMulti(ctx, unconfirmedWrites, overviewTTLSeconds); err != nil {
			return err
		}
	}

	confirmedKeys, err := json.Marshal(hashesOf(ov.Confirmed))
	if err != nil {
		return err
	}
	unconfirmedKeys, err := json.Marshal(hashesOf(ov.Unconfirmed))
	if err != nil {
		return err
	}
	if err := c.Set(ctx, KeyPrefix+confirmedKeysKey, confirmedKeys, overviewTTLSeconds); err != nil {
		return err
	}
	return c.Set(ctx, KeyPrefix+unconfirmedKeysKey, unconfirmedKeys, overviewTTLSeconds)
}

func hashesOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Hash
	}
	return out
}
