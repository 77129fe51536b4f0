package pipes

import (
	"log/slog"
	"sync"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/handler"
	"github.com/dmitrymomot/rpckit/internal/metadata"
)

// ContextCreator resolves the ordered pipe list of a handler.
type ContextCreator struct {
	container container.Resolver
	log       *slog.Logger

	mu     sync.RWMutex
	global []any
}

// Option configures a ContextCreator.
type Option func(*ContextCreator)

// WithGlobalPipes registers pipes applied to every handler.
func WithGlobalPipes(pipes ...any) Option {
	return func(c *ContextCreator) {
		c.global = append(c.global, pipes...)
	}
}

// WithLogger sets the logger used to report unresolvable entries.
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

// UseGlobalPipes appends global pipes for handlers built afterwards.
func (c *ContextCreator) UseGlobalPipes(pipes ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global = append(c.global, pipes...)
}

// Create resolves global, class and method pipes of ref, in that order.
func (c *ContextCreator) Create(instance any, ref *handler.Ref, module string) []Pipe {
	c.mu.RLock()
	global := append([]any(nil), c.global...)
	c.mu.RUnlock()

	entries := metadata.Concat(
		global,
		handler.ClassMetadata(instance, handler.ClassPipes.ClassPipes),
		ref.Pipes(),
	)
	return metadata.Resolve[Pipe](c.container, module, entries, c.log)
}

// CreateParam is Create followed by the pipes bound to argument index.
func (c *ContextCreator) CreateParam(instance any, ref *handler.Ref, module string, index int) []Pipe {
	pipes := c.Create(instance, ref, module)
	return append(pipes, metadata.Resolve[Pipe](c.container, module, ref.ParamPipes(index), c.log)...)
}
