// Package pipes transforms and validates call arguments before they reach
// a handler.
//
// A pipe receives the current value together with ArgumentMetadata that
// describes where the value came from and what type the handler expects.
// Pipes run left to right; the output of one is the input of the next.
//
//	ref := handler.Typed(svc, "Create", svc.Create).
//		UsePipes(pipes.DecodeJSON(), pipes.Validation()).
//		Build()
//
// Pipes are resolved in the order global, class, method and finally
// parameter-level (see ContextCreator.CreateParam).
package pipes
