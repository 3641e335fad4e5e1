package executor

import (
	"sync"

	"github.com/mitchellh/hashstructure"
)

// cacheKeyInput is hashed to produce the first-level cache key of §4.6:
// "hash(fullStatementId ⊕ sql ⊕ extracted parameter values)", stable
// under equal inputs and distinguishing on any differing value.
type cacheKeyInput struct {
	StatementID string
	SQL         string
	Parameters  map[string]any
}

func cacheKey(statementID, sql string, parameters map[string]any) (uint64, error) {
	return hashstructure.Hash(cacheKeyInput{StatementID: statementID, SQL: sql, Parameters: parameters}, nil)
}

// firstLevelCache is the session-private, lock-protected query cache
// every executor strategy consults on `query` and clears on `update`,
// `commit`, and `rollback` (§4.6, §5: "requires no locking" externally,
// but the cache itself still needs one since a session may be driven
// from more than one in-flight call within the same goroutine chain of
// custody across retries).
type firstLevelCache struct {
	mu      sync.Mutex
	entries map[uint64]any
}

func newFirstLevelCache() *firstLevelCache {
	return &firstLevelCache{entries: map[uint64]any{}}
}

func (c *firstLevelCache) get(key uint64) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *firstLevelCache) put(key uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *firstLevelCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[uint64]any{}
}
