package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Close float64 `json:"close"`
	Date  string  `json:"date"`
}

func TestMemoryCache_RoundTripsStructs(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := []point{{Close: 101.5, Date: "2024-01-02"}, {Close: 102, Date: "2024-01-03"}}
	require.NoError(t, mc.Set(ctx, "aapl", in, time.Minute))

	var out []point
	require.NoError(t, mc.Get(ctx, "aapl", &out))
	assert.Equal(t, in, out)

	// Stored values are snapshots.
	in[0].Close = 0
	require.NoError(t, mc.Get(ctx, "aapl", &out))
	assert.Equal(t, 101.5, out[0].Close)
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	tick := func() { now = now.Add(time.Second) }

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	tick()
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	tick()
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	tick()
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
	require.NoError(t, mc.Get(ctx, "c", &v))
	assert.Equal(t, 3, v)
}

func TestMemoryCache_TryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "warm", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mc.TryLock(ctx, "warm", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mc.Unlock(ctx, "warm"))
	ok, err = mc.TryLock(ctx, "warm", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	mc := NewMemoryCache()
	assert.NoError(t, mc.Close())
	assert.NoError(t, mc.Close())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "history:aapl:1y:1d", Key("history", " AAPL ", "1y", "1d"))
}
