package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LRUCache is a size-bounded byte cache backed by ristretto. Ristretto
// evicts by cost, which we set to the entry's byte length.
type LRUCache struct {
	cache      *ristretto.Cache
	defaultTTL time.Duration
}

type cacheItem struct {
	data      []byte
	expiresAt time.Time
}

// NewLRU creates a cache bounded to maxSizeMB megabytes with the given
// default TTL.
func NewLRU(maxSizeMB int64, defaultTTL time.Duration) (*LRUCache, error) {
	cfg := &ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     maxSizeMB * 1024 * 1024,
		BufferItems: 64,
	}
	c, err := ristretto.NewCache(cfg)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: c, defaultTTL: defaultTTL}, nil
}

// Get retrieves a value by key, honoring expiry.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	item, ok := val.(*cacheItem)
	if !ok {
		c.cache.Del(key)
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		c.cache.Del(key)
		return nil, false
	}
	return item.data, true
}

// Set stores a value. Ristretto's Set is asynchronous; a just-written
// entry may miss on an immediate Get, which is fine for a response
// cache.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	item := &cacheItem{data: value, expiresAt: time.Now().Add(ttl)}
	c.cache.Set(key, item, int64(len(value)))
}

// Delete removes a value from the cache.
func (c *LRUCache) Delete(key string) { c.cache.Del(key) }

// Clear removes all values from the cache.
func (c *LRUCache) Clear() { c.cache.Clear() }
