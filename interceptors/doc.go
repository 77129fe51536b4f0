// Package interceptors wraps handler invocation with before/after logic.
//
// An interceptor receives the execution context and a Next function that
// runs the rest of the chain. The first interceptor in the list is the
// outermost one. Next runs the wrapped call at most once; calling it again
// returns the first result.
package interceptors
