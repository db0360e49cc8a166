package config

import (
	"sync"
	"time"
)

// Cache namespaces.
const (
	NamespaceConfig       = "config"
	NamespaceClusterNames = "cluster_names"
	NamespaceClusterAddrs = "cluster_addresses"
)

type cacheEntry struct {
	value   any
	expires time.Time // zero means no expiry
}

// Cache is a namespaced in-memory TTL cache guarded by a single mutex. One
// Cache is created per process and handed to the components that need it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]map[string]cacheEntry
	now     func() time.Time
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the live value stored under ns/key. Expired entries are
// removed on access.
func (c *Cache) Get(ns, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.entries[ns]
	if !ok {
		return nil, false
	}
	e, ok := bucket[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(bucket, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under ns/key. A ttl of zero never expires.
func (c *Cache) Set(ns, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.entries[ns]
	if !ok {
		bucket = make(map[string]cacheEntry)
		c.entries[ns] = bucket
	}
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	bucket[key] = e
}

// Clear drops one namespace, or every namespace when ns is empty.
func (c *Cache) Clear(ns string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ns == "" {
		c.entries = make(map[string]map[string]cacheEntry)
		return
	}
	delete(c.entries, ns)
}

// GetOrSet returns the cached value or computes, stores and returns it.
// Errors from compute are not cached.
func (c *Cache) GetOrSet(ns, key string, ttl time.Duration, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(ns, key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(ns, key, v, ttl)
	return v, nil
}
