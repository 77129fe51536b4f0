// Package rpckit builds per-handler request pipelines for Go services.
//
// Every registered handler gets a pipeline of guards, pipes and
// interceptors that is assembled once per (handler, module) pair and
// cached. Errors raised at any stage are routed through an exception
// handler built from the handler's filters.
//
// The module is split into small packages:
//
//   - core: the normalized *core.Error with its Kind and HTTP-like status
//   - handler: immutable handler references with attached metadata
//   - container: the resolver contract and a minimal registry
//   - execctx: the per-call execution context and transport hosts
//   - guards: authorization checks (scopes, roles, throttling)
//   - pipes: argument transformation and validation
//   - interceptors: around-advice for the handler call
//   - exceptions: exception filters and error normalization
//   - rpc: the orchestrator that builds cached callables
//   - upload: multipart upload interceptors and storage engines
//   - transport: chi adapter turning callables into HTTP handlers
//
// # Usage
//
// Describe a handler and its metadata:
//
//	ref := handler.Typed(svc, "Create", svc.Create).
//		UseGuards(guards.RequireScopes("orders.write")).
//		UsePipes(pipes.DecodeJSON(), pipes.Validation()).
//		UseInterceptors(interceptors.Logging(log)).
//		Build()
//
// Build the callable and mount it:
//
//	creator := rpc.NewContextCreator(container.New(), rpc.WithLogger(log))
//	r := chi.NewRouter()
//	r.Use(transport.RequestID)
//	transport.Post(r, "/orders", creator.Create(svc, ref, "orders"))
//
// Calls flow through guards, then pipes, then interceptors and finally the
// handler. A denied guard yields a forbidden error, a failing pipe a
// validation error, and anything the handler returns that is not already a
// *core.Error is reported as a handler error.
package rpckit
