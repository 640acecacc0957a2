package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory is a bounded in-process Cache with TTL and LRU eviction. It backs
// deployments without Redis and the test suites.
type Memory struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
}

type memoryEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

// NewMemory creates a bounded in-memory cache holding at most maxEntries
// values.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Memory{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get retrieves a value, treating expired entries as absent.
func (c *Memory) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", ErrMiss
	}
	entry := elem.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.removeLocked(elem)
		return "", ErrMiss
	}
	c.order.MoveToFront(elem)
	return entry.value, nil
}

// Set stores a value, evicting the least recently used entry when full.
// A zero ttl means no expiry.
func (c *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return nil
	}

	for len(c.entries) >= c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}

	elem := c.order.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	c.entries[key] = elem
	return nil
}

// Delete removes a key.
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
	return nil
}

// Clear removes every entry.
func (c *Memory) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Len returns the number of live entries.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Memory) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
