package configuration

import lru "github.com/hashicorp/golang-lru/v2"

// SecondLevelCache is the hook named in the Non-goals section: a
// cross-session cache exists as an interface the registry can bind a
// namespace to, but the eviction *policy* beyond LRU is external to the
// core.
type SecondLevelCache interface {
	Get(key any) (any, bool)
	Put(key, value any)
	Flush()
}

// lruSecondLevelCache is the one concrete policy SPEC_FULL wires up.
type lruSecondLevelCache struct {
	cache *lru.Cache[any, any]
}

// NewLRUSecondLevelCache builds a SecondLevelCache backed by an LRU of the
// given size; a size <= 0 falls back to 1024 entries. Returns nil only if
// the LRU cannot be built.
func NewLRUSecondLevelCache(size int) SecondLevelCache {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[any, any](size)
	if err != nil {
		return nil
	}
	return &lruSecondLevelCache{cache: c}
}

func (c *lruSecondLevelCache) Get(key any) (any, bool) { return c.cache.Get(key) }
func (c *lruSecondLevelCache) Put(key, value any)      { c.cache.Add(key, value) }
func (c *lruSecondLevelCache) Flush()                  { c.cache.Purge() }
