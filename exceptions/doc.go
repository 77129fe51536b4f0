// Package exceptions routes pipeline errors through exception filters.
//
// Each handler gets a Handler built from its filters: method-level filters
// are consulted first, then class-level, then global. The first filter
// whose kinds match the error handles it. Errors no filter claims go
// through base normalization: a *core.Error passes unchanged, anything
// else becomes an internal error carrying the original as cause.
package exceptions
