// Package rpc builds the per-handler call pipeline.
//
// ContextCreator.Create resolves a handler's guards, pipes, interceptors
// and exception filters once and returns a Callable. Every call then runs
//
//	guards -> pipes -> interceptors -> handler
//
// and any failure, including panics, is routed through the handler's
// exception handler so callers get a single normalized error.
//
//	creator := rpc.NewContextCreator(registry, rpc.WithLogger(log))
//	call := creator.Create(svc, ref, "orders")
//	res, err := call(ctx, payload)
//
// Built callables are cached per handler and module in a ContextCache owned
// by the creator.
package rpc
