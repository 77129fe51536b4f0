package exceptions

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/handler"
	"github.com/dmitrymomot/rpckit/internal/metadata"
)

// ContextCreator builds per-handler exception handlers.
type ContextCreator struct {
	container container.Resolver
	log       *slog.Logger

	mu     sync.RWMutex
	global []any
}

type Option func(*ContextCreator)

func WithGlobalFilters(filters ...any) Option {
	return func(c *ContextCreator) {
		c.global = append(c.global, filters...)
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

func (c *ContextCreator) UseGlobalFilters(filters ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global = append(c.global, filters...)
}

// Create builds the exception handler of ref. The most specific filters
// come first: method, then class, then global. Within a level the last
// declared filter is consulted first.
func (c *ContextCreator) Create(instance any, ref *handler.Ref, module string) *Handler {
	c.mu.RLock()
	global := append([]any(nil), c.global...)
	c.mu.RUnlock()

	class := slices.Clone(handler.ClassMetadata(instance, handler.ClassFilters.ClassFilters))
	method := ref.Filters()
	slices.Reverse(global)
	slices.Reverse(class)
	slices.Reverse(method)

	entries := metadata.Concat(method, class, global)
	return NewHandler(c.log, metadata.Resolve[Filter](c.container, module, entries, c.log)...)
}
