package syncer

import (
	"sync"
)

// cacheEntry holds the content of a source file, or the error reading it.
type cacheEntry struct {
	data []byte
	err  error
}

// Cache is a thread-safe in-memory store of source file contents keyed by
// path. Sources are read once per run so every destination receives the same
// snapshot.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached content for path and true if present. A cached read
// error is returned as err.
func (c *Cache) Get(path string) (data []byte, ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok {
		return nil, false, nil
	}
	if entry.err != nil {
		return nil, true, entry.err
	}

	// Return a copy to prevent mutation of cached data.
	return clone(entry.data), true, nil
}

// Set stores content for path. The data is copied.
func (c *Cache) Set(path string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = cacheEntry{data: clone(data)}
}

// SetErr records that reading path failed.
func (c *Cache) SetErr(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = cacheEntry{err: err}
}
