// Package container defines the narrow lookup contract the pipeline uses
// to turn metadata tokens into guard, pipe, interceptor and filter
// instances, plus Registry, a small module-scoped implementation.
//
// The pipeline never builds a dependency graph itself. Entries attached to
// a handler are either ready instances, Constructors that pull their
// dependencies from the Resolver, or tokens looked up with Resolve.
//
//	reg := container.New()
//	reg.Provide("orders", container.TokenOf[*AuthGuard](), &AuthGuard{})
//	reg.ProvideGlobal(upload.ModuleOptions, upload.Options{Dest: "/tmp"})
package container
