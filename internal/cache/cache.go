package cache

import "time"

// Cache is a byte cache with per-entry TTL, used to reuse encoded
// snapshot responses between polling renderers.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true when
	// found and not expired.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given TTL. A TTL of 0 means the
	// cache's default.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all values from the cache.
	Clear()
}
