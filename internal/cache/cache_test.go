package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientGetSet(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestMemoryClientExpiry(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientDeleteByPrefix(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "query:a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "query:b", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "stats", []byte("3"), time.Minute))

	require.NoError(t, c.DeleteByPrefix(ctx, "query:"))

	_, err := c.Get(ctx, "query:a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "stats")
	assert.NoError(t, err)
}

func TestMemoryClientEviction(t *testing.T) {
	c := NewMemoryClient(2)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 2*time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 3*time.Minute))

	// The entry closest to expiry goes first.
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestQueryCacheKey(t *testing.T) {
	a := QueryCacheKey("¿Cómo saco una licencia?")
	b := QueryCacheKey("  ¿cómo saco una licencia?  ")
	assert.Equal(t, a, b)

	c := QueryCacheKey("¿Dónde pago mis arbitrios?")
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "query:")
}
