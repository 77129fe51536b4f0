package guards

import (
	"github.com/dmitrymomot/rpckit/execctx"
)

// Consumer evaluates resolved guards.
type Consumer struct{}

func NewConsumer() *Consumer {
	return &Consumer{}
}

// TryActivate evaluates guards in order. An empty list activates. The
// first guard returning false or an error stops evaluation; later guards
// are never invoked.
func (c *Consumer) TryActivate(guards []Guard, ctx execctx.Context) (bool, error) {
	for _, g := range guards {
		ok, err := g.CanActivate(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
