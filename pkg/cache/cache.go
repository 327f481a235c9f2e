// Package cache provides a bounded, TTL-keyed cache for resource
// payloads to reduce repeated calls to the upstream tile and geocoding
// services.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultSize is the default maximum number of cached payloads.
	DefaultSize = 256

	// DefaultTTL is the default lifetime of a cached payload.
	DefaultTTL = 15 * time.Minute
)

// ResourceCache is a thread-safe cache mapping resource keys to raw
// payload bytes. Entries expire after the configured TTL and the least
// recently used entry is evicted once the size bound is reached.
type ResourceCache struct {
	lru *expirable.LRU[string, []byte]
}

// New creates a cache holding at most size entries, each for at most ttl.
// Non-positive arguments fall back to the defaults.
func New(size int, ttl time.Duration) *ResourceCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResourceCache{
		lru: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Get returns the payload for key if present and not expired.
func (c *ResourceCache) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set stores the payload under key with the cache TTL.
func (c *ResourceCache) Set(key string, payload []byte) {
	c.lru.Add(key, payload)
}

// Len returns the number of live entries.
func (c *ResourceCache) Len() int {
	return c.lru.Len()
}
