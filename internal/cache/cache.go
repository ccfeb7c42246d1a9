// Package cache is a small generic LRU whose entries are invalidated when the
// metadata of the file they were derived from changes.
package cache

import (
	"sort"
	"sync"
	"time"
)

// Entry holds cached data with the source file metadata it was built from.
type Entry[T any] struct {
	Data    T
	ModTime time.Time
	Size    int64
	access  uint64
}

// Cache is a thread-safe LRU keyed by string.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]Entry[T]
	maxSize int
	tick    uint64
	hits    uint64
	misses  uint64
}

// New creates a cache holding at most maxSize entries.
func New[T any](maxSize int) *Cache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache[T]{
		entries: make(map[string]Entry[T]),
		maxSize: maxSize,
	}
}

// Get returns the cached data if the source metadata still matches.
func (c *Cache[T]) Get(key string, size int64, modTime time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.Size != size || !entry.ModTime.Equal(modTime) {
		c.misses++
		var zero T
		return zero, false
	}
	c.tick++
	entry.access = c.tick
	c.entries[key] = entry
	c.hits++
	return entry.Data, true
}

// Set stores data with its source metadata, evicting the least recently
// used entries when over capacity.
func (c *Cache[T]) Set(key string, data T, size int64, modTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = Entry[T]{Data: data, ModTime: modTime, Size: size, access: c.tick}
	c.evictOldestLocked()
}

// Purge empties the cache.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// HitRatio returns hits / lookups, or 0 before the first lookup.
func (c *Cache[T]) HitRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// evictOldestLocked must be called with mu held.
func (c *Cache[T]) evictOldestLocked() {
	excess := len(c.entries) - c.maxSize
	if excess <= 0 {
		return
	}

	type keyAccess struct {
		key    string
		access uint64
	}
	order := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		order = append(order, keyAccess{key, entry.access})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].access < order[j].access })

	for i := range excess {
		delete(c.entries, order[i].key)
	}
}
