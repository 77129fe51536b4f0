// Package metadata resolves guard, pipe, interceptor and filter metadata
// entries into concrete instances. All four context creators share it so
// resolution precedence is identical across them.
package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/pkg/logger"
)

// Resolve turns entries into instances of T, preserving order.
// An entry is used as-is when it implements T, built when it is a
// container.Constructor, and looked up in r otherwise. Entries that
// cannot be turned into a T are dropped and logged.
func Resolve[T any](r container.Resolver, module string, entries []any, log *slog.Logger) []T {
	return ResolveOr[T](r, module, entries, log, nil)
}

// ResolveOr works like Resolve, but an entry that cannot be resolved is
// replaced by fallback(entry, err) instead of being dropped. A nil
// fallback drops the entry.
func ResolveOr[T any](r container.Resolver, module string, entries []any, log *slog.Logger, fallback func(entry any, err error) T) []T {
	if len(entries) == 0 {
		return nil
	}
	out := make([]T, 0, len(entries))
	for _, entry := range entries {
		v, err := resolveOne[T](r, module, entry)
		if err != nil {
			if log != nil {
				log.LogAttrs(context.Background(), slog.LevelWarn, "metadata entry skipped",
					logger.Component("metadata"),
					logger.Module(module),
					slog.String("entry", fmt.Sprintf("%T", entry)),
					logger.Error(err),
				)
			}
			if fallback != nil {
				out = append(out, fallback(entry, err))
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

// Concat joins metadata groups in precedence order.
func Concat(groups ...[]any) []any {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]any, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func resolveOne[T any](r container.Resolver, module string, entry any) (T, error) {
	var zero T
	if entry == nil {
		return zero, ErrNilEntry
	}
	if v, ok := entry.(T); ok {
		return v, nil
	}
	if c, ok := entry.(container.Constructor); ok {
		built, err := c.Construct(r, module)
		if err != nil {
			return zero, err
		}
		if v, ok := built.(T); ok {
			return v, nil
		}
		return zero, fmt.Errorf("%w: constructor built %T", ErrWrongType, built)
	}
	if r == nil {
		return zero, ErrUnresolved
	}
	resolved, ok := r.Resolve(module, entry)
	if !ok {
		return zero, ErrUnresolved
	}
	if v, ok := resolved.(T); ok {
		return v, nil
	}
	return zero, fmt.Errorf("%w: resolved %T", ErrWrongType, resolved)
}
