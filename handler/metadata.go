package handler

// Class-level metadata is declared by the owning instance. It applies to
// every handler of that instance and is resolved before method-level
// metadata.

type ClassGuards interface {
	ClassGuards() []any
}

type ClassPipes interface {
	ClassPipes() []any
}

type ClassInterceptors interface {
	ClassInterceptors() []any
}

type ClassFilters interface {
	ClassFilters() []any
}

// ClassMetadata returns the class-level entries of instance for the given
// metadata kind, or nil when the instance declares none.
func ClassMetadata[T any](instance any, get func(T) []any) []any {
	if v, ok := instance.(T); ok {
		return get(v)
	}
	return nil
}
