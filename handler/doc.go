// Package handler describes the target of a pipeline.
//
// A Ref bundles the owning instance, the handler function, its declared
// parameter types and the method-level guards, pipes, interceptors and
// exception filters. Parameter types are supplied explicitly when the
// handler is registered, either with Builder.Params or by using Typed,
// which records the payload type from its type parameter:
//
//	type Users struct{}
//
//	func (Users) ClassGuards() []any { return []any{authGuard} }
//
//	ref := handler.Typed(users, "Create", func(ctx context.Context, req CreateUser) (any, error) {
//		return users.create(ctx, req)
//	}).UsePipes(pipes.Validation()).Build()
//
// Class-level metadata is declared by implementing ClassGuards,
// ClassPipes, ClassInterceptors or ClassFilters on the instance.
package handler
