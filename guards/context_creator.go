package guards

import (
	"log/slog"
	"sync"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/handler"
	"github.com/dmitrymomot/rpckit/internal/metadata"
)

// ContextCreator resolves the ordered guard list of a handler:
// global guards, then class-level guards, then method-level guards.
type ContextCreator struct {
	container container.Resolver
	log       *slog.Logger

	failClosed bool

	mu     sync.RWMutex
	global []any
}

// Option configures a ContextCreator.
type Option func(*ContextCreator)

// WithGlobalGuards registers guards applied to every handler.
func WithGlobalGuards(guards ...any) Option {
	return func(c *ContextCreator) {
		c.global = append(c.global, guards...)
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

// WithFailClosed replaces guard entries that cannot be resolved with a
// guard that denies every call. Without it such entries are dropped.
func WithFailClosed() Option {
	return func(c *ContextCreator) {
		c.failClosed = true
	}
}

// NewContextCreator creates a guard context creator. r may be nil when
// every metadata entry is a ready instance.
func NewContextCreator(r container.Resolver, opts ...Option) *ContextCreator {
	c := &ContextCreator{container: r, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseGlobalGuards appends global guards. Handlers built earlier keep the
// guard list they were built with.
func (c *ContextCreator) UseGlobalGuards(guards ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global = append(c.global, guards...)
}

// Create resolves the guards of ref owned by instance in module.
//
// Entries that cannot be resolved (unregistered tokens, failing
// constructors, values that are not a Guard) are logged and dropped, so a
// mistyped token does not block the call. Use WithFailClosed to deny
// such calls instead.
func (c *ContextCreator) Create(instance any, ref *handler.Ref, module string) []Guard {
	c.mu.RLock()
	global := append([]any(nil), c.global...)
	c.mu.RUnlock()

	entries := metadata.Concat(
		global,
		handler.ClassMetadata(instance, handler.ClassGuards.ClassGuards),
		ref.Guards(),
	)
	if !c.failClosed {
		return metadata.Resolve[Guard](c.container, module, entries, c.log)
	}
	return metadata.ResolveOr(c.container, module, entries, c.log, func(any, error) Guard {
		return Deny
	})
}
