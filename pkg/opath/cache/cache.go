// Package cache provides the Opath path cache: a lazily populated mapping
// from a Node's identity to its canonical Opath string, used by the diff
// engine's full-diff expansion (repeatedly asking "what is this node's
// path") so the same path is not recomputed on every lookup.
//
// Two implementations are provided: an unbounded map and a bounded LRU.
// Keys are *tree.Node pointers, which are directly comparable and usable as
// map keys.
package cache

import (
	"sync"

	"github.com/kodegenix/kgtree/pkg/tree"
)

// PathFunc computes the canonical Opath string for a node. Callers supply
// it; the diff engine passes a function that returns tree.Node.Path.
type PathFunc func(n *tree.Node) string

// Cache is the contract both implementations satisfy: lazily compute and
// memoize a node's canonical path string.
type Cache interface {
	// Get returns the cached path for n, computing and storing it via fn on
	// a miss.
	Get(n *tree.Node, fn PathFunc) string
	// Contains reports whether n's path has already been computed.
	Contains(n *tree.Node) bool
	// Len returns the number of cached entries.
	Len() int
}

// Map is an unbounded path cache backed by a plain map.
type Map struct {
	mu      sync.Mutex
	entries map[*tree.Node]string
}

// NewMap creates an empty unbounded cache.
func NewMap() *Map { return &Map{entries: make(map[*tree.Node]string)} }

// NewMapWithCapacity creates an empty unbounded cache pre-sized for an
// expected number of entries.
func NewMapWithCapacity(capacity int) *Map {
	return &Map{entries: make(map[*tree.Node]string, capacity)}
}

func (c *Map) Get(n *tree.Node, fn PathFunc) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.entries[n]; ok {
		return p
	}

	p := fn(n)
	c.entries[n] = p

	return p
}

func (c *Map) Contains(n *tree.Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[n]

	return ok
}

func (c *Map) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// lruEntry is a doubly-linked list node for LRU recency tracking.
type lruEntry struct {
	key  *tree.Node
	path string
	prev *lruEntry
	next *lruEntry
}

// LRU is a bounded path cache with a fixed maximum entry count, evicting
// the least recently used entry when full.
type LRU struct {
	mu       sync.Mutex
	entries  map[*tree.Node]*lruEntry
	head     *lruEntry // most recently used
	tail     *lruEntry // least recently used
	capacity int
}

// DefaultCapacity mirrors a conservative default for a single evaluation
// pass over a moderately sized document tree.
const DefaultCapacity = 4096

// NewLRU creates a bounded cache holding at most capacity entries. A
// non-positive capacity falls back to DefaultCapacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &LRU{entries: make(map[*tree.Node]*lruEntry, capacity), capacity: capacity}
}

func (c *LRU) Get(n *tree.Node, fn PathFunc) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[n]; ok {
		c.moveToFront(e)

		return e.path
	}

	p := fn(n)
	e := &lruEntry{key: n, path: p}
	c.entries[n] = e
	c.addToFront(e)

	if len(c.entries) > c.capacity {
		c.evictTail()
	}

	return p
}

func (c *LRU) Contains(n *tree.Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[n]

	return ok
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *LRU) addToFront(e *lruEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}

	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LRU) moveToFront(e *lruEntry) {
	if c.head == e {
		return
	}

	if e.prev != nil {
		e.prev.next = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	}

	if c.tail == e {
		c.tail = e.prev
	}

	c.addToFront(e)
}

func (c *LRU) evictTail() {
	t := c.tail
	if t == nil {
		return
	}

	if t.prev != nil {
		t.prev.next = nil
	} else {
		c.head = nil
	}

	c.tail = t.prev
	delete(c.entries, t.key)
}
