package interceptors

import (
	"log/slog"
	"sync"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/handler"
	"github.com/dmitrymomot/rpckit/internal/metadata"
)

// ContextCreator resolves the ordered interceptor list of a handler.
type ContextCreator struct {
	container container.Resolver
	log       *slog.Logger

	mu     sync.RWMutex
	global []any
}

type Option func(*ContextCreator)

func WithGlobalInterceptors(interceptors ...any) Option {
	return func(c *ContextCreator) {
		c.global = append(c.global, interceptors...)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *ContextCreator) {
		if log != nil {
			c.log = log
		}
	}
}

func NewContextCreator(r container.Resolver, opts ...Option) *ContextCreator {
	c := &ContextCreator{container: r, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ContextCreator) UseGlobalInterceptors(interceptors ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global = append(c.global, interceptors...)
}

// Create resolves global, class and method interceptors, in that order.
func (c *ContextCreator) Create(instance any, ref *handler.Ref, module string) []Interceptor {
	c.mu.RLock()
	global := append([]any(nil), c.global...)
	c.mu.RUnlock()

	entries := metadata.Concat(
		global,
		handler.ClassMetadata(instance, handler.ClassInterceptors.ClassInterceptors),
		ref.Interceptors(),
	)
	return metadata.Resolve[Interceptor](c.container, module, entries, c.log)
}
