// LRU is adapted from the teacher's internal/semantic/lru_cache.go: a
// container/list-backed, mutex-protected cache, generalized here from
// caching normalized queries to caching path→FileEntry lookups (spec
// §4 C6 "path→entry LRU").
package cache

import (
	"container/list"
	"sync"

	"github.com/filesieve/filesieve/internal/model"
)

// EntryLRU is a thread-safe least-recently-used cache of FileEntry
// values keyed by path.
type EntryLRU struct {
	maxSize int
	mu      sync.RWMutex
	items   map[string]*list.Element
	order   *list.List
}

type lruEntry struct {
	key   string
	value model.FileEntry
}

// NewEntryLRU creates a cache holding at most maxSize entries (spec §6
// cache_size, default 1000).
func NewEntryLRU(maxSize int) *EntryLRU {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &EntryLRU{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves an entry and marks it most-recently-used.
func (c *EntryLRU) Get(path string) (model.FileEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[path]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*lruEntry).value, true
	}
	return model.FileEntry{}, false
}

// Set inserts or updates an entry, evicting the least-recently-used
// entry if the cache is over capacity.
func (c *EntryLRU) Set(path string, value model.FileEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[path]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*lruEntry).value = value
		return
	}

	elem := c.order.PushFront(&lruEntry{key: path, value: value})
	c.items[path] = elem

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
}

// Invalidate removes an entry, e.g. after a delete/rename.
func (c *EntryLRU) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[path]; ok {
		c.order.Remove(elem)
		delete(c.items, path)
	}
}

// Clear empties the cache.
func (c *EntryLRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order = list.New()
}

// Size returns the current entry count.
func (c *EntryLRU) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}
