// Package execctx provides the per-call execution context.
//
// A Context is created fresh for every inbound call. It embeds the
// caller's context.Context, carries a UUID call identifier, the handler
// Ref and module name, and exposes transport accessors:
// SwitchToHTTP for calls that arrived over HTTP (see WithHTTP) and
// SwitchToRPC for the payload and transport metadata.
//
// Stages treat the context as read-only. The exception is
// HTTPHost.SetRequest, which lets a stage such as the upload interceptor
// attach parsed data to the request for everything that runs after it.
package execctx
