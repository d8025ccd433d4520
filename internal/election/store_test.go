package election

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanovote/votewatch/internal/cache"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	c, err := cache.NewLRU(64)
	require.NoError(t, err)
	return NewStore(c)
}

func TestStoreMergeDeltaWritesAndReturnsMergedRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	delta := map[string]*Record{
		"hash1": NewRecord("hash1", 100),
	}
	delta["hash1"].ApplyStarted(100)

	merged, err := s.MergeDelta(ctx, delta)
	require.NoError(t, err)
	assert.True(t, merged["hash1"].IsActive)

	got, ok, err := s.Get(ctx, "hash1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.IsActive)
	assert.Equal(t, int64(100), got.FirstSeen)
}

func TestStoreMergeDeltaMergesAgainstExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := map[string]*Record{"hash1": NewRecord("hash1", 100)}
	first["hash1"].ApplyVote(Vote{Kind: Normal, Time: 100, Account: "acct1"})
	_, err := s.MergeDelta(ctx, first)
	require.NoError(t, err)

	second := map[string]*Record{"hash1": NewRecord("hash1", 110)}
	second["hash1"].ApplyVote(Vote{Kind: Normal, Time: 110, Account: "acct2"})
	merged, err := s.MergeDelta(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, 2, merged["hash1"].NormalCount)
}

func TestStoreEvictRemovesFromKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	delta := map[string]*Record{"hash1": NewRecord("hash1", 100)}
	_, err := s.MergeDelta(ctx, delta)
	require.NoError(t, err)

	require.NoError(t, s.Evict(ctx, []string{"hash1"}))

	_, ok, err := s.Get(ctx, "hash1")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, "hash1")
}

func TestStoreKeysStripsPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	delta := map[string]*Record{
		"hash1": NewRecord("hash1", 100),
		"hash2": NewRecord("hash2", 100),
	}
	_, err := s.MergeDelta(ctx, delta)
	require.NoError(t, err)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hash1", "hash2"}, keys)
}

func TestStoreMergeDeltaEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	merged, err := s.MergeDelta(ctx, map[string]*Record{})
	require.NoError(t, err)
	assert.Nil(t, merged)
}
