package exceptions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/pkg/logger"
)

// Handler is the per-handler exception handler. It is immutable once
// built and safe for concurrent use.
type Handler struct {
	filters []Filter
	log     *slog.Logger
}

// NewHandler creates a handler consulting filters in order.
func NewHandler(log *slog.Logger, filters ...Filter) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{filters: filters, log: log}
}

// Handle routes err through the first matching filter and then through
// base normalization. A nil err returns nil.
func (h *Handler) Handle(err error, ctx execctx.Context) error {
	if err == nil {
		return nil
	}

	out := err
	for _, f := range h.filters {
		if matches(f, err) {
			out = f.Catch(err, ctx)
			break
		}
	}
	if out == nil {
		return nil
	}

	out = Normalize(out)
	h.report(out, ctx)
	return out
}

// Normalize passes errors carrying a *core.Error through and wraps any
// other error as an internal error.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := core.As(err); ok {
		return err
	}
	return core.Internal(err)
}

func (h *Handler) report(err error, ctx execctx.Context) {
	status := core.StatusCode(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		logger.Component("exceptions"),
		logger.Kind(string(core.KindOf(err))),
		slog.Int("status", status),
		logger.Error(err),
	}
	if ctx == nil {
		h.log.LogAttrs(context.Background(), level, "call failed", attrs...)
		return
	}
	attrs = append(attrs, logger.Module(ctx.Module()))
	if ref := ctx.Handler(); ref != nil {
		attrs = append(attrs, logger.Handler(ref.FullName()))
	}
	h.log.LogAttrs(ctx, level, "call failed", attrs...)
}
