package execctx

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rpckit/handler"
)

// Type identifies the transport a call arrived on.
type Type string

const (
	TypeRPC  Type = "rpc"
	TypeHTTP Type = "http"
)

// Context is the per-call view handed to guards, interceptors, filters
// and the handler. It embeds the caller's context.Context, so deadlines
// and cancellation flow through unchanged.
type Context interface {
	context.Context
	// ID is a unique identifier of this call.
	ID() string
	Type() Type
	// Class is the instance owning the handler.
	Class() any
	Handler() *handler.Ref
	Module() string
	// Args are the call arguments as received, before any pipe ran.
	Args() []any
	SwitchToHTTP() HTTPHost
	SwitchToRPC() RPCHost
}

// HTTPHost gives access to the HTTP transport objects of a call.
// Request and ResponseWriter return nil for non-HTTP calls.
type HTTPHost interface {
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// SetRequest replaces the request seen by later stages. It is the
	// one sanctioned way for a stage to attach data to the transport.
	SetRequest(r *http.Request)
}

// RPCHost gives access to the RPC payload and transport metadata.
type RPCHost interface {
	Data() any
	Metadata() map[string]string
}

type selfKey struct{}
type callIDKey struct{}
type httpKey struct{}
type metadataKey struct{}

type httpTransport struct {
	mu sync.RWMutex
	w  http.ResponseWriter
	r  *http.Request
}

// WithHTTP marks ctx as carrying an HTTP request/response pair. Contexts
// created from it report TypeHTTP.
func WithHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, httpKey{}, &httpTransport{w: w, r: r})
}

// WithMetadata attaches RPC transport metadata (headers, pattern, ...).
func WithMetadata(ctx context.Context, md map[string]string) context.Context {
	return context.WithValue(ctx, metadataKey{}, md)
}

// New creates the execution context for one call.
func New(parent context.Context, ref *handler.Ref, module string, args ...any) Context {
	if parent == nil {
		parent = context.Background()
	}
	c := &callContext{
		id:     uuid.NewString(),
		ref:    ref,
		module: module,
		args:   args,
	}
	if t, ok := parent.Value(httpKey{}).(*httpTransport); ok {
		c.http = t
	}
	c.Context = parent
	return c
}

// FromContext returns the execution context stored in ctx, if any.
// Handlers receive the execution context as their context.Context and
// can use this to reach the transport hosts.
func FromContext(ctx context.Context) (Context, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(selfKey{}).(Context)
	return c, ok
}

// CallID returns the call identifier stored in ctx, or "".
func CallID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// LoggerExtractor adds call_id to log records emitted with a call context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := CallID(ctx); id != "" {
			return slog.String("call_id", id), true
		}
		return slog.Attr{}, false
	}
}

type callContext struct {
	context.Context
	id     string
	ref    *handler.Ref
	module string
	args   []any
	http   *httpTransport
}

func (c *callContext) Value(key any) any {
	switch key.(type) {
	case selfKey:
		return c
	case callIDKey:
		return c.id
	}
	return c.Context.Value(key)
}

func (c *callContext) ID() string { return c.id }

func (c *callContext) Type() Type {
	if c.http != nil {
		return TypeHTTP
	}
	return TypeRPC
}

func (c *callContext) Class() any {
	if c.ref == nil {
		return nil
	}
	return c.ref.Instance()
}

func (c *callContext) Handler() *handler.Ref { return c.ref }
func (c *callContext) Module() string        { return c.module }

func (c *callContext) Args() []any {
	out := make([]any, len(c.args))
	copy(out, c.args)
	return out
}

func (c *callContext) SwitchToHTTP() HTTPHost {
	if c.http == nil {
		return &httpTransport{}
	}
	return c.http
}

func (c *callContext) SwitchToRPC() RPCHost { return rpcHost{c: c} }

func (t *httpTransport) Request() *http.Request {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.r
}

func (t *httpTransport) ResponseWriter() http.ResponseWriter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.w
}

func (t *httpTransport) SetRequest(r *http.Request) {
	if r == nil {
		return
	}
	t.mu.Lock()
	t.r = r
	t.mu.Unlock()
}

type rpcHost struct{ c *callContext }

func (h rpcHost) Data() any {
	if len(h.c.args) == 0 {
		return nil
	}
	return h.c.args[0]
}

func (h rpcHost) Metadata() map[string]string {
	md, _ := h.c.Context.Value(metadataKey{}).(map[string]string)
	return md
}
