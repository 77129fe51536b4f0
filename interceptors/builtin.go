package interceptors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/pkg/cache"
	"github.com/dmitrymomot/rpckit/pkg/logger"
)

// Logging records the outcome and duration of every call.
func Logging(log *slog.Logger) Interceptor {
	if log == nil {
		log = slog.Default()
	}
	return InterceptorFunc(func(ctx execctx.Context, next Next) (any, error) {
		start := time.Now()
		res, err := next()

		attrs := []slog.Attr{
			logger.Component("interceptor"),
			logger.Module(ctx.Module()),
			logger.Duration(time.Since(start)),
		}
		if ref := ctx.Handler(); ref != nil {
			attrs = append(attrs, logger.Handler(ref.FullName()))
		}
		if err != nil {
			attrs = append(attrs, logger.Error(err), logger.Kind(string(core.KindOf(err))))
			log.LogAttrs(ctx, slog.LevelWarn, "call failed", attrs...)
			return res, err
		}
		log.LogAttrs(ctx, slog.LevelInfo, "call completed", attrs...)
		return res, nil
	})
}

// Timeout fails calls that do not complete within d with a timeout error.
// The wrapped call keeps running in the background until it returns;
// handlers should watch the execution context to stop early. A panic in
// the wrapped call is returned as an internal error.
func Timeout(d time.Duration) Interceptor {
	return InterceptorFunc(func(ctx execctx.Context, next Next) (any, error) {
		type result struct {
			v   any
			err error
		}
		done := make(chan result, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- result{nil, core.Internal(panicError(r))}
				}
			}()
			v, err := next()
			done <- result{v, err}
		}()

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case r := <-done:
			return r.v, r.err
		case <-timer.C:
			return nil, core.ErrTimeout.WithMessage(fmt.Sprintf("Call timed out after %s", d))
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, core.ErrTimeout.WithCause(ctx.Err())
			}
			return nil, ctx.Err()
		}
	})
}

// Map transforms successful results.
func Map(fn func(ctx execctx.Context, result any) (any, error)) Interceptor {
	return InterceptorFunc(func(ctx execctx.Context, next Next) (any, error) {
		res, err := next()
		if err != nil {
			return nil, err
		}
		return fn(ctx, res)
	})
}

// Cache serves repeated calls with the same key from c. Errors are not
// cached. An empty key bypasses the cache.
func Cache(c *cache.LRU[string, any], key func(ctx execctx.Context) string) Interceptor {
	return InterceptorFunc(func(ctx execctx.Context, next Next) (any, error) {
		k := key(ctx)
		if k == "" {
			return next()
		}
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		res, err := next()
		if err == nil {
			c.Put(k, res)
		}
		return res, err
	})
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
