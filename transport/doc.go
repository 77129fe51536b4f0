// Package transport exposes built pipelines over HTTP with chi.
//
//	r := chi.NewRouter()
//	r.Use(transport.RequestID)
//	transport.Post(r, "/orders", creator.Create(svc, createRef, "orders"))
//	transport.Get(r, "/orders/{id}", creator.Create(svc, getRef, "orders"),
//		transport.WithDecoder(transport.Params))
//
// Each request becomes one pipeline call whose execution context carries
// the request and response writer, so guards and interceptors can switch
// to HTTP. Results are written in the JSON envelope of core.JSONResponse;
// failures are written with the status code of their *core.Error.
package transport
