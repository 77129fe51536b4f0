package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpckit/pkg/cache"
)

func TestLRU_Eviction(t *testing.T) {
	var evicted []string
	c := cache.New(2, cache.WithEvictCallback(func(k string, _ int) { evicted = append(evicted, k) }))

	c.Put("a", 1)
	c.Put("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok)

	c.Put("a", 10)
	v, _ := c.Get("a")
	assert.Equal(t, 10, v)

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))

	c.Clear()
	assert.Zero(t, c.Len())
	assert.ElementsMatch(t, []string{"b", "a", "c"}, evicted)
}

func TestLRU_TTL(t *testing.T) {
	now := time.Unix(0, 0)
	c := cache.New(4,
		cache.WithTTL[string, string](time.Minute),
		cache.WithClock[string, string](func() time.Time { return now }),
	)

	c.Put("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { cache.New[string, int](0) })
}
