package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(maxKeys int) (*memoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := newMemoryCache(&Config{MaxKeys: maxKeys}, zap.NewNop(), clock.now)
	return c, clock
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	c, clock := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clock.t = clock.t.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio(), 0.0001)
}

func TestMemoryCache_Delete(t *testing.T) {
	c, _ := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, c.Delete(ctx, "a", "missing"))

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Deletes)
}

func TestMemoryCache_EvictsLeastRecentlyRead(t *testing.T) {
	c, clock := newTestCache(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old", []byte("1"), time.Hour))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, c.Set(ctx, "new", []byte("2"), time.Hour))
	clock.t = clock.t.Add(time.Second)
	_, _ = c.Get(ctx, "old")
	clock.t = clock.t.Add(time.Second)

	require.NoError(t, c.Set(ctx, "third", []byte("3"), time.Hour))

	_, ok := c.Get(ctx, "new")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "old")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "third")
	assert.True(t, ok)
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	c, _ := newTestCache(10)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'z'

	got, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestNewCache_Providers(t *testing.T) {
	c, err := NewCache(&Config{Provider: "memory"}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = NewCache(&Config{Provider: "memcached"}, nil)
	assert.Error(t, err)

	_, err = NewCache(&Config{Provider: "redis"}, nil)
	assert.Error(t, err)
}

func TestRemember(t *testing.T) {
	c, _ := newTestCache(10)
	ctx := context.Background()
	calls := 0

	compute := func() ([]string, error) {
		calls++
		return []string{"Acme", "Globex"}, nil
	}

	first, err := Remember(ctx, c, zap.NewNop(), "companies", time.Minute, compute)
	require.NoError(t, err)
	second, err := Remember(ctx, c, zap.NewNop(), "companies", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRemember_ErrorIsNotCached(t *testing.T) {
	c, _ := newTestCache(10)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := Remember(ctx, c, zap.NewNop(), "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
