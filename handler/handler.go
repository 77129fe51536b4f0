package handler

import (
	"context"
	"fmt"
	"reflect"
	"slices"
)

// Func is the target invoked at the end of a pipeline. ctx is the
// per-call execution context; args are the (already transformed) call
// arguments, the first one being the inbound payload.
type Func func(ctx context.Context, args ...any) (any, error)

// Ref identifies a callable unit: the owning instance, its function, the
// declared parameter types and the method-level pipeline metadata.
// A Ref is immutable once built and safe for concurrent use.
type Ref struct {
	instance     any
	name         string
	fn           Func
	paramTypes   []reflect.Type
	guards       []any
	pipes        []any
	paramPipes   map[int][]any
	interceptors []any
	filters      []any
}

func (r *Ref) Instance() any { return r.instance }
func (r *Ref) Name() string  { return r.name }
func (r *Ref) Func() Func    { return r.fn }

// FullName returns "<InstanceType>.<name>" for logs.
func (r *Ref) FullName() string {
	if r.instance == nil {
		return r.name
	}
	t := reflect.TypeOf(r.instance)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return fmt.Sprintf("%s.%s", t.Name(), r.name)
}

// ParamTypes returns the declared parameter types. Nil entries mean the
// type of that parameter is unknown.
func (r *Ref) ParamTypes() []reflect.Type { return slices.Clone(r.paramTypes) }

// Guards returns method-level guard metadata.
func (r *Ref) Guards() []any { return slices.Clone(r.guards) }

// Pipes returns method-level pipe metadata.
func (r *Ref) Pipes() []any { return slices.Clone(r.pipes) }

// ParamPipes returns pipe metadata bound to the parameter at index.
func (r *Ref) ParamPipes(index int) []any { return slices.Clone(r.paramPipes[index]) }

// Interceptors returns method-level interceptor metadata.
func (r *Ref) Interceptors() []any { return slices.Clone(r.interceptors) }

// Filters returns method-level exception filter metadata.
func (r *Ref) Filters() []any { return slices.Clone(r.filters) }

// Builder assembles a Ref. Metadata entries are guard/pipe/interceptor/
// filter instances, constructors, or container tokens.
type Builder struct {
	ref Ref
}

// New starts building a Ref for fn owned by instance.
//
//	ref := handler.New(svc, "Sum", svc.Sum).
//		Params(handler.TypeOf[[]int]()).
//		UseGuards(authGuard).
//		UsePipes(pipes.Validation()).
//		Build()
func New(instance any, name string, fn Func) *Builder {
	return &Builder{ref: Ref{instance: instance, name: name, fn: fn}}
}

// Typed builds a Ref for a function taking a single typed payload.
// The payload type is recorded as the first parameter type.
func Typed[T any](instance any, name string, fn func(ctx context.Context, data T) (any, error)) *Builder {
	return New(instance, name, func(ctx context.Context, args ...any) (any, error) {
		var data T
		if len(args) > 0 && args[0] != nil {
			v, ok := args[0].(T)
			if !ok {
				return nil, fmt.Errorf("%w: expected %s, got %T", ErrArgumentType, TypeOf[T](), args[0])
			}
			data = v
		}
		return fn(ctx, data)
	}).Params(TypeOf[T]())
}

// Params records the declared parameter types.
func (b *Builder) Params(types ...reflect.Type) *Builder {
	b.ref.paramTypes = append(b.ref.paramTypes, types...)
	return b
}

func (b *Builder) UseGuards(guards ...any) *Builder {
	b.ref.guards = appendNonNil(b.ref.guards, guards)
	return b
}

func (b *Builder) UsePipes(pipes ...any) *Builder {
	b.ref.pipes = appendNonNil(b.ref.pipes, pipes)
	return b
}

// UseParamPipes binds pipes to a single parameter.
func (b *Builder) UseParamPipes(index int, pipes ...any) *Builder {
	if b.ref.paramPipes == nil {
		b.ref.paramPipes = make(map[int][]any)
	}
	b.ref.paramPipes[index] = appendNonNil(b.ref.paramPipes[index], pipes)
	return b
}

func (b *Builder) UseInterceptors(interceptors ...any) *Builder {
	b.ref.interceptors = appendNonNil(b.ref.interceptors, interceptors)
	return b
}

func (b *Builder) UseFilters(filters ...any) *Builder {
	b.ref.filters = appendNonNil(b.ref.filters, filters)
	return b
}

// Build returns the immutable Ref. It panics if no function was given,
// since that is an assembly error.
func (b *Builder) Build() *Ref {
	if b.ref.fn == nil {
		panic("handler: nil handler func for " + b.ref.name)
	}
	ref := b.ref
	ref.paramTypes = slices.Clone(b.ref.paramTypes)
	ref.guards = slices.Clone(b.ref.guards)
	ref.pipes = slices.Clone(b.ref.pipes)
	ref.interceptors = slices.Clone(b.ref.interceptors)
	ref.filters = slices.Clone(b.ref.filters)
	if b.ref.paramPipes != nil {
		ref.paramPipes = make(map[int][]any, len(b.ref.paramPipes))
		for i, p := range b.ref.paramPipes {
			ref.paramPipes[i] = slices.Clone(p)
		}
	}
	return &ref
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func appendNonNil(dst, src []any) []any {
	for _, v := range src {
		if v != nil {
			dst = append(dst, v)
		}
	}
	return dst
}
