// Package cache provides a generic, thread-safe LRU cache whose entries
// may expire after a TTL.
//
//	c := cache.New[string, any](256, cache.WithTTL[string, any](time.Minute))
//	c.Put("orders:List:42", result)
//	v, ok := c.Get("orders:List:42")
//
// When the cache is full the least recently used entry is evicted.
// Expired entries are dropped lazily on access.
package cache
