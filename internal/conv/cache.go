package conv

import (
	"sync"
	"sync/atomic"

	"convres/internal/diag"
	"convres/internal/types"
)

type cacheKey struct {
	src       types.TypeID
	dst       types.TypeID
	mode      Mode
	remaining int
	constant  Constant
}

func newCacheKey(src, dst types.TypeID, ctx Context) cacheKey {
	return cacheKey{
		src:       src,
		dst:       dst,
		mode:      ctx.Mode,
		remaining: ctx.Budget.Remaining(),
		constant:  ctx.Constant,
	}
}

type cacheEntry struct {
	conv  Conversion
	diags []diag.Diagnostic
}

func (e cacheEntry) bag() *diag.Bag {
	b := diag.NewBag(max(len(e.diags), diag.DefaultMax))
	for _, d := range e.diags {
		b.Add(d)
	}
	return b
}

// Cache memoises root classification results. Lookups never block
// writers; a miss computed by two goroutines at once is stored once and
// both callers observe the stored entry.
type Cache struct {
	entries sync.Map
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) load(k cacheKey) (cacheEntry, bool) {
	v, ok := c.entries.Load(k)
	if !ok {
		c.misses.Add(1)
		return cacheEntry{}, false
	}
	c.hits.Add(1)
	return v.(cacheEntry), true
}

func (c *Cache) store(k cacheKey, e cacheEntry) cacheEntry {
	v, _ := c.entries.LoadOrStore(k, e)
	return v.(cacheEntry)
}

// Stats reports hit and miss counters and the number of stored entries.
func (c *Cache) Stats() CacheStats {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}
}

// Reset drops every entry and counter.
func (c *Cache) Reset() {
	c.entries.Clear()
	c.hits.Store(0)
	c.misses.Store(0)
}
