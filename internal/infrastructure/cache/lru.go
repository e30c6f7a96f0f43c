package cache

import (
	"container/list"
	"sync"

	"github.com/originlens/backend/internal/domain"
)

// DefaultMaxEntries bounds the cache when no explicit size is configured.
const DefaultMaxEntries = 1000

// entry is a single fingerprint -> attributes pair in the recency list.
type entry struct {
	key   string
	attrs *domain.Attributes
}

// LRU is a thread-safe, bounded least-recently-used result cache. Entries
// have no TTL: a hit promotes the entry to most-recently-used, and inserting
// beyond the bound evicts the least-recently-used entry synchronously on the
// inserting call.
type LRU struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front = most recently used
	items      map[string]*list.Element
}

// NewLRU creates a bounded LRU cache. maxEntries <= 0 falls back to
// DefaultMaxEntries.
func NewLRU(maxEntries int) *LRU {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &LRU{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get retrieves the attribute set stored under key and promotes the entry.
// The returned value is a copy; callers cannot mutate cached state.
func (c *LRU) Get(key string) (*domain.Attributes, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).attrs.Clone(), true
}

// Add stores a copy of attrs under key, overwriting any existing entry.
// Concurrent writers for the same key overwrite each other; the last write
// wins, which is harmless since entries are idempotent detection results.
func (c *LRU) Add(key string, attrs *domain.Attributes) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).attrs = attrs.Clone()
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, attrs: attrs.Clone()})

	if c.order.Len() > c.maxEntries {
		c.evictOldest()
	}
}

// evictOldest removes the least-recently-used entry. Caller holds the lock.
func (c *LRU) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*entry).key)
}

// Len returns the current number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries and returns how many were removed.
func (c *LRU) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.order.Len()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	return removed
}
