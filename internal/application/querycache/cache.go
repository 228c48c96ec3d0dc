// Package querycache caches read results under hierarchical keys such as
// "memberPayments/42". Invalidating "memberPayments" drops every key below it.
package querycache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a cached result stays fresh.
const DefaultTTL = 30 * time.Second

// DefaultSize bounds the number of cached results.
const DefaultSize = 1024

// Lookup outcomes reported to the Observer.
const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupShared = "shared"
)

// Observer is told the outcome of every lookup.
type Observer interface {
	CacheLookup(result string)
}

// Cache is safe for concurrent use.
// INVARIANT: a load that started before an Invalidate never stores its result
type Cache struct {
	entries    *expirable.LRU[string, any]
	group      singleflight.Group
	generation atomic.Uint64
	observer   Observer

	// mu makes a load's generation check and store atomic with respect to
	// Invalidate and Purge.
	mu sync.Mutex
}

// New creates a cache. ttl <= 0 means DefaultTTL. observer may be nil.
func New(ttl time.Duration, observer Observer) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries:  expirable.NewLRU[string, any](DefaultSize, nil, ttl),
		observer: observer,
	}
}

// Key joins a hierarchical key.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// Get returns the cached value for key or loads it. Concurrent loads of the
// same key within one generation share a single call to load.
// PRE: key is non-empty
// POST: errors are returned and never cached
func Get[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.entries.Get(key); ok {
		if typed, ok := v.(T); ok {
			c.observe(LookupHit)
			return typed, nil
		}
	}

	gen := c.generation.Load()
	v, err, shared := c.group.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(gen, key, value)
		return value, nil
	})
	if shared {
		c.observe(LookupShared)
	} else {
		c.observe(LookupMiss)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// store adds value unless an invalidation happened since gen was read.
func (c *Cache) store(gen uint64, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation.Load() == gen {
		c.entries.Add(key, value)
	}
}

// Invalidate drops every key equal to or below one of prefixes and stops
// in-flight loads from storing their results.
func (c *Cache) Invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation.Add(1)
	for _, key := range c.entries.Keys() {
		for _, p := range prefixes {
			if key == p || strings.HasPrefix(key, p+"/") {
				c.entries.Remove(key)
				break
			}
		}
	}
}

// Purge drops everything.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation.Add(1)
	c.entries.Purge()
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) observe(result string) {
	if c.observer != nil {
		c.observer.CacheLookup(result)
	}
}
