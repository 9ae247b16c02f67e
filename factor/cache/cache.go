// Package cache memoizes parse results keyed by normalized input text.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/internal/util"
)

// DefaultCapacity is used when the configured capacity is not positive
const DefaultCapacity = 1000

// Stats is a point-in-time view of cache activity
type Stats struct {
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// HitRate returns hits / (hits + misses), 0 when nothing was looked up
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a fixed-capacity LRU of parsed factors. It stores and returns
// clones so callers never share a cached value. Safe for concurrent use.
type Cache struct {
	lru      *lru.Cache
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most capacity entries
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{capacity: capacity}
	l, err := lru.NewWithEvict(capacity, func(_, _ interface{}) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create cache of size %d", capacity)
	}
	c.lru = l
	return c, nil
}

// Key builds the cache key for text under an optional league hint
func Key(text, league string) string {
	key := util.Normalize(text)
	if league = util.Normalize(league); league != "" {
		key = league + "|" + key
	}
	return key
}

// Get returns a copy of the cached factor and marks it most recently used
func (c *Cache) Get(key string) (*types.ParsedFactor, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.(*types.ParsedFactor).Clone(), true
}

// Add stores a copy of pf, evicting the least recently used entry when full
func (c *Cache) Add(key string, pf *types.ParsedFactor) {
	if pf == nil {
		return
	}
	c.lru.Add(key, pf.Clone())
}

// Contains reports presence without touching recency or counters
func (c *Cache) Contains(key string) bool {
	return c.lru.Contains(key)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry. Counters are kept.
func (c *Cache) Purge() {
	c.lru.Purge()
}

func (c *Cache) Stats() Stats {
	return Stats{
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
