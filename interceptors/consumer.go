package interceptors

import (
	"github.com/dmitrymomot/rpckit/execctx"
)

// Consumer chains interceptors around a call.
type Consumer struct{}

func NewConsumer() *Consumer {
	return &Consumer{}
}

// Intercept runs call wrapped by interceptors. interceptors[0] is the
// outermost layer. Without interceptors call runs directly.
func (c *Consumer) Intercept(interceptors []Interceptor, ctx execctx.Context, call Next) (any, error) {
	if len(interceptors) == 0 {
		return call()
	}
	var handle func(i int) (any, error)
	handle = func(i int) (any, error) {
		if i >= len(interceptors) {
			return call()
		}
		return interceptors[i].Intercept(ctx, Once(func() (any, error) {
			return handle(i + 1)
		}))
	}
	return handle(0)
}
