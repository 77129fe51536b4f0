package interceptors

import (
	"sync"

	"github.com/dmitrymomot/rpckit/execctx"
)

// Next runs the remainder of the chain.
type Next func() (any, error)

// Interceptor wraps a call.
type Interceptor interface {
	Intercept(ctx execctx.Context, next Next) (any, error)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(ctx execctx.Context, next Next) (any, error)

func (f InterceptorFunc) Intercept(ctx execctx.Context, next Next) (any, error) {
	return f(ctx, next)
}

// Once guards next so it runs at most once. Later calls return the first
// result, or panic again with the first call's panic value.
func Once(next Next) Next {
	var (
		once      sync.Once
		result    any
		err       error
		recovered any
	)
	return func() (any, error) {
		once.Do(func() {
			defer func() { recovered = recover() }()
			result, err = next()
		})
		if recovered != nil {
			panic(recovered)
		}
		return result, err
	}
}
