package guard

import (
	"sync"

	"github.com/roach88/hotpath/internal/kernel"
)

// CacheKey identifies one cached evaluation.
//
// ContextKey is caller-supplied and MUST capture every context field the
// guard reads. The cache has no way to derive it: two contexts that differ
// only in a field the guard ignores may share a key, two contexts that
// differ in a field the guard reads must not. GuardID identifies the guard
// value; callers typically register guards once and reuse the id.
type CacheKey struct {
	ContextKey string
	GuardID    uint64
}

// CachedEvaluator amortizes repeated evaluation of identical guards across
// nearly-identical contexts in tight loops.
//
// Capacity is bounded: entries are evicted in insertion order (fixed-size
// ring), which is cheap and predictable for the tight-loop access pattern
// the cache exists for. Staleness is entirely the caller's problem - change
// the ContextKey when the context changes.
//
// Thread-safety: all methods are safe for concurrent use.
type CachedEvaluator struct {
	mu       sync.Mutex
	capacity int
	entries  map[CacheKey]bool
	ring     []CacheKey // insertion order, for eviction
	next     int        // next ring slot to overwrite

	hits   uint64
	misses uint64
}

// DefaultCacheCapacity bounds the evaluator cache when the caller does not
// choose one.
const DefaultCacheCapacity = 256

// NewCachedEvaluator creates a cache holding at most capacity entries.
// A capacity below 1 falls back to DefaultCacheCapacity.
func NewCachedEvaluator(capacity int) *CachedEvaluator {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &CachedEvaluator{
		capacity: capacity,
		entries:  make(map[CacheKey]bool, capacity),
		ring:     make([]CacheKey, capacity),
	}
}

// Lookup returns the cached result for key.
// The second return reports whether the key was present.
func (c *CachedEvaluator) Lookup(key CacheKey) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return result, ok
}

// Store records an evaluation result, evicting the oldest entry when full.
func (c *CachedEvaluator) Store(key CacheKey, result bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = result
		return
	}

	if len(c.entries) >= c.capacity {
		evict := c.ring[c.next]
		delete(c.entries, evict)
	}
	c.ring[c.next] = key
	c.next = (c.next + 1) % c.capacity
	c.entries[key] = result
}

// Evaluate returns the cached result for key, evaluating g against ctx and
// caching on a miss. The guard is NOT evaluated on a hit, so the cached
// boolean stands in for the guard until the caller changes the key.
func (c *CachedEvaluator) Evaluate(key CacheKey, g Guard, ctx *kernel.ExecutionContext) bool {
	if result, ok := c.Lookup(key); ok {
		return result
	}
	result := Evaluate(g, ctx)
	c.Store(key, result)
	return result
}

// Stats returns cumulative hit and miss counts, for diagnostics.
func (c *CachedEvaluator) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *CachedEvaluator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
