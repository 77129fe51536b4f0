package container

import (
	"reflect"
	"sync"
)

// Resolver looks up instances registered for a module. The pipeline only
// consumes this interface; any DI container can implement it.
type Resolver interface {
	Resolve(module string, token any) (any, bool)
}

// Constructor is a metadata entry that builds its instance on demand with
// dependencies taken from the resolver of the owning module.
type Constructor interface {
	Construct(r Resolver, module string) (any, error)
}

// Registry is a minimal module-scoped Resolver. Module providers shadow
// global providers registered under the same token.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]map[any]any
	global  map[any]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		modules: make(map[string]map[any]any),
		global:  make(map[any]any),
	}
}

// Provide registers instance under token for module.
// Tokens must be comparable (strings, reflect.Type, pointer keys).
func (r *Registry) Provide(module string, token, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[module]
	if !ok {
		m = make(map[any]any)
		r.modules[module] = m
	}
	m[token] = instance
}

// ProvideGlobal registers instance under token for every module.
func (r *Registry) ProvideGlobal(token, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global[token] = instance
}

// Resolve implements Resolver.
func (r *Registry) Resolve(module string, token any) (any, bool) {
	if token == nil || !reflect.TypeOf(token).Comparable() {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.modules[module]; ok {
		if v, ok := m[token]; ok {
			return v, true
		}
	}
	v, ok := r.global[token]
	return v, ok
}

// Get resolves token and asserts the result to T.
func Get[T any](r Resolver, module string, token any) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	v, ok := r.Resolve(module, token)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// TokenOf returns a type token for T, usable as a registry key.
func TokenOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
