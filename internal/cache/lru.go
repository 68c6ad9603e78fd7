// Package cache provides a generic thread-safe LRU cache with count and size
// limits.
package cache

import (
	"sync"
	"sync/atomic"
)

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
	prev  *entry[K, V]
	next  *entry[K, V]
}

// LRU is a thread-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[K, V]
	head    *entry[K, V] // Most recently used.
	tail    *entry[K, V] // Least recently used.

	maxEntries int
	maxSize    int64
	curSize    int64
	sizeFunc   func(V) int64

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithMaxEntries bounds the number of entries.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.maxEntries = n
	}
}

// WithMaxSize bounds the total size of the values, as measured by sizeFunc.
func WithMaxSize[K comparable, V any](maxSize int64, sizeFunc func(V) int64) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.maxSize = maxSize
		c.sizeFunc = sizeFunc
	}
}

// New creates an LRU. Without limits it grows without bound.
func New[K comparable, V any](opts ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{entries: make(map[K]*entry[K, V])}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.moveToFront(ent)

	return ent.value, true
}

// Put inserts or replaces the value for key, evicting the least recently used
// entries until the limits hold. A value larger than the size limit is not
// stored.
func (c *LRU[K, V]) Put(key K, value V) {
	size := int64(1)
	if c.sizeFunc != nil {
		size = c.sizeFunc(value)
	}

	if c.maxSize > 0 && size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.curSize += size - ent.size
		ent.value = value
		ent.size = size
		c.moveToFront(ent)
		c.evict(0, false)

		return
	}

	c.evict(size, true)

	ent := &entry[K, V]{key: key, value: value, size: size}
	c.entries[key] = ent
	c.curSize += size
	c.addToFront(ent)
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if ok {
		c.drop(ent)
	}

	return ok
}

// Clear removes every entry. Statistics are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.head = nil
	c.tail = nil
	c.curSize = 0
}

// evict drops entries from the tail until an entry of size incoming fits.
// added reports whether the incoming entry is a new key.
func (c *LRU[K, V]) evict(incoming int64, added bool) {
	for c.tail != nil && c.over(incoming, added) {
		c.drop(c.tail)
		c.evictions.Add(1)
	}
}

func (c *LRU[K, V]) over(incoming int64, added bool) bool {
	extra := 0
	if added {
		extra = 1
	}

	if c.maxEntries > 0 && len(c.entries)+extra > c.maxEntries {
		return true
	}

	return c.maxSize > 0 && c.curSize+incoming > c.maxSize
}

func (c *LRU[K, V]) drop(ent *entry[K, V]) {
	c.unlink(ent)
	delete(c.entries, ent.key)
	c.curSize -= ent.size
}

func (c *LRU[K, V]) moveToFront(ent *entry[K, V]) {
	if ent == c.head {
		return
	}

	c.unlink(ent)
	c.addToFront(ent)
}

func (c *LRU[K, V]) addToFront(ent *entry[K, V]) {
	ent.prev = nil
	ent.next = c.head

	if c.head != nil {
		c.head.prev = ent
	}

	c.head = ent

	if c.tail == nil {
		c.tail = ent
	}
}

func (c *LRU[K, V]) unlink(ent *entry[K, V]) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.head = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.tail = ent.prev
	}

	ent.prev = nil
	ent.next = nil
}
