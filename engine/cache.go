/*
cache.go - Opt-in report cache keyed by scope and snapshot version

PURPOSE:
  Month buckets are ephemeral and recomputed per request by default. For
  hot dashboards the service can be given a cache; entries are keyed
  "scope:version" where version is the snapshot counter, so any mutation
  of assignment data under a scope changes the key and stale entries age
  out via LRU/TTL eviction. No explicit invalidation fan-out is needed:
  the key changes exactly when the underlying data could have changed.
*/
package engine

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// ReportCache is an LRU cache with TTL and size-based eviction.
type ReportCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheEntry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// NewReportCache creates a cache holding at most maxSize entries, each
// valid for ttl.
func NewReportCache[T any](maxSize int, ttl time.Duration) *ReportCache[T] {
	return &ReportCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// CacheKey builds the "scope:version" key for a cached report.
func CacheKey(scope string, version uint64) string {
	return fmt.Sprintf("%s:%d", scope, version)
}

func (c *ReportCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[T])
	if time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return entry.data, true
}

func (c *ReportCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry[T]{key: key, data: data, expiresAt: time.Now().Add(c.ttl)}

	if elem, ok := c.items[key]; ok {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(entry)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *ReportCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *ReportCache[T]) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry[T])
	delete(c.items, entry.key)
	c.lru.Remove(elem)
}
