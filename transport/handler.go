package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/pkg/logger"
	"github.com/dmitrymomot/rpckit/rpc"
)

type options struct {
	decoder Decoder
	status  int
	log     *slog.Logger
}

// Option configures a handler.
type Option func(*options)

// WithDecoder sets how the payload is read. Defaults to JSONBody.
func WithDecoder(d Decoder) Option {
	return func(o *options) {
		if d != nil {
			o.decoder = d
		}
	}
}

// WithStatus sets the status of successful responses. Defaults to 200.
func WithStatus(status int) Option {
	return func(o *options) {
		if status > 0 {
			o.status = status
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Handler serves call over HTTP.
func Handler(call rpc.Callable, opts ...Option) http.Handler {
	o := options{decoder: JSONBody, status: http.StatusOK, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := o.decoder(r)
		if err != nil {
			writeError(r.Context(), w, o.log, err)
			return
		}

		ctx := execctx.WithHTTP(r.Context(), w, r)
		ctx = execctx.WithMetadata(ctx, metadata(r))

		res, err := call(ctx, data)
		if err != nil {
			writeError(r.Context(), w, o.log, err)
			return
		}
		if err := core.WriteJSON(w, o.status, core.JSONResult(res)); err != nil {
			o.log.LogAttrs(r.Context(), slog.LevelWarn, "response write failed",
				logger.Component("transport"), logger.Error(err))
		}
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, log *slog.Logger, err error) {
	status, body := core.JSONError(err)
	if werr := core.WriteJSON(w, status, body); werr != nil {
		log.LogAttrs(ctx, slog.LevelWarn, "response write failed",
			logger.Component("transport"), logger.Error(werr))
	}
}

func metadata(r *http.Request) map[string]string {
	md := map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if id := RequestIDFromContext(r.Context()); id != "" {
		md["request_id"] = id
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			md["pattern"] = pattern
		}
	}
	return md
}

// Get mounts call for GET pattern on r. Query and URL parameters are the
// payload unless a decoder option says otherwise.
func Get(r chi.Router, pattern string, call rpc.Callable, opts ...Option) {
	r.Method(http.MethodGet, pattern, Handler(call, append([]Option{WithDecoder(Params)}, opts...)...))
}

func Post(r chi.Router, pattern string, call rpc.Callable, opts ...Option) {
	r.Method(http.MethodPost, pattern, Handler(call, opts...))
}

func Put(r chi.Router, pattern string, call rpc.Callable, opts ...Option) {
	r.Method(http.MethodPut, pattern, Handler(call, opts...))
}

func Patch(r chi.Router, pattern string, call rpc.Callable, opts ...Option) {
	r.Method(http.MethodPatch, pattern, Handler(call, opts...))
}

func Delete(r chi.Router, pattern string, call rpc.Callable, opts ...Option) {
	r.Method(http.MethodDelete, pattern, Handler(call, append([]Option{WithDecoder(Params)}, opts...)...))
}
