package guards

import (
	"github.com/dmitrymomot/rpckit/execctx"
)

// Guard authorizes or denies a call before any transformation happens.
// Returning false denies the call; returning an error aborts it with
// that error.
type Guard interface {
	CanActivate(ctx execctx.Context) (bool, error)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(ctx execctx.Context) (bool, error)

func (f GuardFunc) CanActivate(ctx execctx.Context) (bool, error) {
	return f(ctx)
}

// AsyncFunc reports its decision on a channel, typically from another
// goroutine. A channel closed without a value denies the call.
type AsyncFunc func(ctx execctx.Context) <-chan bool

// Async adapts an AsyncFunc to Guard. It blocks until the decision
// arrives or ctx is done, in which case ctx.Err() is returned.
func Async(fn AsyncFunc) Guard {
	return GuardFunc(func(ctx execctx.Context) (bool, error) {
		select {
		case ok := <-fn(ctx):
			return ok, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	})
}

// Allow is a guard that always activates.
var Allow Guard = GuardFunc(func(execctx.Context) (bool, error) { return true, nil })

// Deny is a guard that never activates.
var Deny Guard = GuardFunc(func(execctx.Context) (bool, error) { return false, nil })
