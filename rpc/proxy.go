package rpc

import (
	"fmt"

	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/exceptions"
	"github.com/dmitrymomot/rpckit/execctx"
)

// Target is a pipeline stage operating on an execution context.
type Target func(ctx execctx.Context, data any) (any, error)

// Proxy funnels every failure of a Target into one error channel.
type Proxy struct{}

func NewProxy() *Proxy {
	return &Proxy{}
}

// Create wraps target so that returned errors and panics both go through h.
// The wrapped target never panics.
func (p *Proxy) Create(target Target, h *exceptions.Handler) Target {
	return func(ctx execctx.Context, data any) (res any, err error) {
		defer func() {
			if r := recover(); r != nil {
				res, err = nil, h.Handle(core.Internal(panicError(r)), ctx)
			}
		}()
		res, err = target(ctx, data)
		if err != nil {
			return nil, h.Handle(err, ctx)
		}
		return res, nil
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
