package rpc

import (
	"reflect"
	"sync"

	"github.com/dmitrymomot/rpckit/handler"
)

type cacheKey struct {
	instance any
	ref      *handler.Ref
	module   string
}

// cacheable reports whether instance can be part of a map key.
func cacheable(instance any) bool {
	return instance == nil || reflect.ValueOf(instance).Comparable()
}

// ContextCache memoizes built callables by owning instance, handler and
// module.
type ContextCache struct {
	mu      sync.Mutex
	entries map[cacheKey]Callable
}

func NewContextCache() *ContextCache {
	return &ContextCache{entries: make(map[cacheKey]Callable)}
}

// GetOrBuild returns the callable stored for (instance, ref, module),
// building and storing it on first use. build runs at most once per key.
// Instances that are not comparable (structs holding slices or maps by
// value) have no identity, so their pipelines are built on every call and
// never stored.
func (c *ContextCache) GetOrBuild(instance any, ref *handler.Ref, module string, build func() Callable) Callable {
	if !cacheable(instance) {
		return build()
	}
	key := cacheKey{instance: instance, ref: ref, module: module}

	c.mu.Lock()
	defer c.mu.Unlock()
	if fn, ok := c.entries[key]; ok {
		return fn
	}
	fn := build()
	c.entries[key] = fn
	return fn
}

func (c *ContextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every built callable. Callables already handed out keep
// working with the metadata they were built with.
func (c *ContextCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
