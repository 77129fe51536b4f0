package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/exceptions"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/guards"
	"github.com/dmitrymomot/rpckit/handler"
	"github.com/dmitrymomot/rpckit/interceptors"
	"github.com/dmitrymomot/rpckit/pipes"
	"github.com/dmitrymomot/rpckit/pkg/logger"
)

// Callable is a built handler pipeline.
type Callable func(ctx context.Context, data any) (any, error)

// ContextCreator assembles handler pipelines.
type ContextCreator struct {
	proxy                *Proxy
	exceptionsCreator    *exceptions.ContextCreator
	pipesCreator         *pipes.ContextCreator
	pipesConsumer        *pipes.Consumer
	guardsCreator        *guards.ContextCreator
	guardsConsumer       *guards.Consumer
	interceptorsCreator  *interceptors.ContextCreator
	interceptorsConsumer *interceptors.Consumer

	cache      *ContextCache
	log        *slog.Logger
	failClosed bool

	globalGuards       []any
	globalPipes        []any
	globalInterceptors []any
	globalFilters      []any
}

// Option configures a ContextCreator.
type Option func(*ContextCreator)

// WithLogger sets the logger shared by every stage.
func WithLogger(log *slog.Logger) Option {
	return func(c *ContextCreator) {
		if log != nil {
			c.log = log
		}
	}
}

func WithGlobalGuards(guards ...any) Option {
	return func(c *ContextCreator) { c.globalGuards = append(c.globalGuards, guards...) }
}

func WithGlobalPipes(pipes ...any) Option {
	return func(c *ContextCreator) { c.globalPipes = append(c.globalPipes, pipes...) }
}

func WithGlobalInterceptors(interceptors ...any) Option {
	return func(c *ContextCreator) { c.globalInterceptors = append(c.globalInterceptors, interceptors...) }
}

func WithGlobalFilters(filters ...any) Option {
	return func(c *ContextCreator) { c.globalFilters = append(c.globalFilters, filters...) }
}

// WithFailClosedGuards denies calls whose guard entries cannot be
// resolved instead of dropping those entries.
func WithFailClosedGuards() Option {
	return func(c *ContextCreator) { c.failClosed = true }
}

// WithCache shares a ContextCache between creators.
func WithCache(cache *ContextCache) Option {
	return func(c *ContextCreator) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// NewContextCreator wires the stage creators and consumers around r.
// r may be nil when all metadata entries are ready instances.
func NewContextCreator(r container.Resolver, opts ...Option) *ContextCreator {
	c := &ContextCreator{
		proxy: NewProxy(),
		cache: NewContextCache(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	guardOpts := []guards.Option{guards.WithLogger(c.log), guards.WithGlobalGuards(c.globalGuards...)}
	if c.failClosed {
		guardOpts = append(guardOpts, guards.WithFailClosed())
	}
	c.guardsCreator = guards.NewContextCreator(r, guardOpts...)
	c.guardsConsumer = guards.NewConsumer()
	c.pipesCreator = pipes.NewContextCreator(r, pipes.WithLogger(c.log), pipes.WithGlobalPipes(c.globalPipes...))
	c.pipesConsumer = pipes.NewConsumer()
	c.interceptorsCreator = interceptors.NewContextCreator(r,
		interceptors.WithLogger(c.log),
		interceptors.WithGlobalInterceptors(c.globalInterceptors...),
	)
	c.interceptorsConsumer = interceptors.NewConsumer()
	c.exceptionsCreator = exceptions.NewContextCreator(r,
		exceptions.WithLogger(c.log),
		exceptions.WithGlobalFilters(c.globalFilters...),
	)
	return c
}

// Cache returns the cache holding built callables.
func (c *ContextCreator) Cache() *ContextCache {
	return c.cache
}

// Create returns the pipeline of ref owned by instance in module, building
// it on first use. instance defaults to ref.Instance() when nil. Each
// distinct instance gets its own pipeline since class metadata is read
// from it.
func (c *ContextCreator) Create(instance any, ref *handler.Ref, module string) Callable {
	if instance == nil {
		instance = ref.Instance()
	}
	return c.cache.GetOrBuild(instance, ref, module, func() Callable {
		return c.build(instance, ref, module)
	})
}

func (c *ContextCreator) build(instance any, ref *handler.Ref, module string) Callable {
	exceptionHandler := c.exceptionsCreator.Create(instance, ref, module)
	guardList := c.guardsCreator.Create(instance, ref, module)
	pipeList := c.pipesCreator.CreateParam(instance, ref, module, 0)
	interceptorList := c.interceptorsCreator.Create(instance, ref, module)

	canActivate := c.CreateGuardsFn(guardList, instance, ref)
	meta := pipes.ArgumentMetadata{Type: pipes.ParamPayload, Metatype: DataMetatype(ref)}
	fn := ref.Func()

	c.log.Debug("handler pipeline built",
		logger.Component("rpc"),
		logger.Module(module),
		logger.Handler(ref.FullName()),
		slog.Int("guards", len(guardList)),
		slog.Int("pipes", len(pipeList)),
		slog.Int("interceptors", len(interceptorList)),
	)

	target := func(ctx execctx.Context, data any) (any, error) {
		if canActivate != nil {
			if err := canActivate(ctx); err != nil {
				return nil, err
			}
		}
		value, err := c.applyPipes(data, meta, pipeList)
		if err != nil {
			return nil, err
		}
		return c.interceptorsConsumer.Intercept(interceptorList, ctx, func() (any, error) {
			return invoke(ctx, fn, value)
		})
	}
	proxied := c.proxy.Create(target, exceptionHandler)

	return func(ctx context.Context, data any) (any, error) {
		return proxied(execctx.New(ctx, ref, module, data), data)
	}
}

// CreateGuardsFn returns the guard check of a pipeline, or nil when
// there are no guards. The check fails with a forbidden error on denial.
func (c *ContextCreator) CreateGuardsFn(guardList []guards.Guard, instance any, ref *handler.Ref) func(ctx execctx.Context) error {
	if len(guardList) == 0 {
		return nil
	}
	return func(ctx execctx.Context) error {
		ok, err := c.guardsConsumer.TryActivate(guardList, ctx)
		if err != nil {
			return err
		}
		if !ok {
			return core.Forbidden("")
		}
		return nil
	}
}

// applyPipes runs pipes over the payload. Pipe errors and panics are
// both reported as validation failures.
func (c *ContextCreator) applyPipes(data any, meta pipes.ArgumentMetadata, pipeList []pipes.Pipe) (value any, err error) {
	if len(pipeList) == 0 {
		return data, nil
	}
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, core.ValidationFailed(fmt.Sprint(r), panicError(r))
		}
	}()
	value, err = c.pipesConsumer.ApplyPipes(data, meta, pipeList)
	if err != nil {
		if core.KindOf(err) == core.KindValidationFailed {
			return nil, err
		}
		return nil, core.ValidationFailed(err.Error(), err)
	}
	return value, nil
}

// invoke calls the handler with the transformed payload. Errors and
// panics become handler errors unless the handler returned a *core.Error.
func invoke(ctx execctx.Context, fn handler.Func, value any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, core.Handler(panicError(r))
		}
	}()
	res, err = fn(ctx, value)
	if err != nil {
		if _, ok := core.As(err); ok {
			return nil, err
		}
		return nil, core.Handler(err)
	}
	return res, nil
}

// ReflectCallbackParamTypes returns the declared parameter types of ref.
func ReflectCallbackParamTypes(ref *handler.Ref) []reflect.Type {
	return ref.ParamTypes()
}

// DataMetatype returns the payload type of ref, or nil when none was
// declared.
func DataMetatype(ref *handler.Ref) reflect.Type {
	types := ReflectCallbackParamTypes(ref)
	if len(types) == 0 {
		return nil
	}
	return types[0]
}
