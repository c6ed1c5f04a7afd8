// Package memory provides an in-process perceptual hash cache.
package memory

import (
	"context"
	"sync"

	"github.com/benedoc-inc/pdfdiff/core/compare"
)

// Ensure HashCache implements the interface.
var _ compare.HashCache = (*HashCache)(nil)

// HashCache keeps perceptual hashes in a map for the lifetime of the process
type HashCache struct {
	mu     sync.RWMutex
	hashes map[string]uint64
}

// NewHashCache creates an empty cache
func NewHashCache() *HashCache {
	return &HashCache{
		hashes: make(map[string]uint64),
	}
}

// Get returns the hash stored for key
func (c *HashCache) Get(_ context.Context, key string) (uint64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hashes[key]
	return h, ok, nil
}

// Put stores the hash for key, replacing any previous value
func (c *HashCache) Put(_ context.Context, key string, hash uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[key] = hash
	return nil
}

// Len returns the number of cached hashes
func (c *HashCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hashes)
}
