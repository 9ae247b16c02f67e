package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qfactor/factor/types"
)

func factor(raw string) *types.ParsedFactor {
	pf := types.NewParsedFactor(raw)
	pf.Conditions = append(pf.Conditions, types.NewCondition())
	return pf
}

func TestKeyNormalizes(t *testing.T) {
	assert.Equal(t, Key("LeBron  James scores", ""), Key("lebron james scores ", ""))
	assert.Equal(t, Key("Mbappé scores", ""), Key("mbappe scores", ""))
	assert.NotEqual(t, Key("Chiefs win", ""), Key("Chiefs win", "NFL"))
	assert.Equal(t, "nfl|chiefs win", Key("Chiefs win", " NFL"))
}

func TestGetReturnsClone(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Add("k", factor("x"))
	got, ok := c.Get("k")
	require.True(t, ok)
	got.Conditions[0].Value = 99

	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Zero(t, again.Conditions[0].Value, "mutating a returned factor must not touch the cache")
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Add("a", factor("a"))
	c.Add("b", factor("b"))
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Add("c", factor("c"))

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"), "b was least recently used")
	assert.True(t, c.Contains("c"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestStatsCountHitsAndMisses(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)

	_, ok := c.Get("missing")
	assert.False(t, ok)
	c.Add("k", factor("k"))
	c.Get("k")
	c.Get("k")

	s := c.Stats()
	assert.Equal(t, DefaultCapacity, s.Capacity)
	assert.Equal(t, uint64(2), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.InDelta(t, 2.0/3.0, s.HitRate(), 1e-9)
	assert.Zero(t, Stats{}.HitRate())

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestAddIgnoresNil(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	c.Add("k", nil)
	assert.Zero(t, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c, err := New(16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i+j)%32)
				c.Add(key, factor(key))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
