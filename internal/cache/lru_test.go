package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(4)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key1", []byte("value1"), 0))

	v, ok, err := c.Get(ctx, "key1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value1"), v)

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLRUDrop(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(4)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key1", []byte("value1"), 0))
	require.NoError(t, c.Drop(ctx, "key1"))

	_, ok, err := c.Get(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLRUGetMultiSetMulti(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(4)
	require.NoError(t, err)

	err = c.SetMulti(ctx, map[string][]byte{
		"key1": []byte("value1"),
		"key2": []byte("value2"),
	}, 0)
	require.NoError(t, err)

	got, err := c.GetMulti(ctx, []string{"key1", "key2", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []byte("value1"), got["key1"])
}

func TestLRUDropMulti(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(4)
	require.NoError(t, err)

	require.NoError(t, c.SetMulti(ctx, map[string][]byte{"key1": []byte("v1"), "key2": []byte("v2")}, 0))
	require.NoError(t, c.DropMulti(ctx, []string{"key1", "key2"}))

	got, err := c.GetMulti(ctx, []string{"key1", "key2"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLRUKeysAndEviction(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key1", []byte("v1"), 0))
	require.NoError(t, c.Set(ctx, "key2", []byte("v2"), 0))
	require.NoError(t, c.Set(ctx, "key3", []byte("v3"), 0))

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	// Capacity is 2: adding a third entry evicts the least recently used one.
	assert.Len(t, keys, 2)
}
