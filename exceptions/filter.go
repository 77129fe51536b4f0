package exceptions

import (
	"slices"

	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/execctx"
)

// Filter turns an error into the error returned to the caller.
// Returning nil swallows the error.
type Filter interface {
	Catch(err error, ctx execctx.Context) error
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(err error, ctx execctx.Context) error

func (f FilterFunc) Catch(err error, ctx execctx.Context) error {
	return f(err, ctx)
}

// Matcher is implemented by filters that handle only some errors.
// Filters without it handle every error.
type Matcher interface {
	Matches(err error) bool
}

type kindFilter struct {
	Filter
	kinds []core.Kind
}

func (f kindFilter) Matches(err error) bool {
	return slices.Contains(f.kinds, core.KindOf(err))
}

// For restricts filter to errors of the given kinds. Without kinds the
// filter is returned unchanged.
func For(filter Filter, kinds ...core.Kind) Filter {
	if len(kinds) == 0 {
		return filter
	}
	return kindFilter{Filter: filter, kinds: kinds}
}

func matches(f Filter, err error) bool {
	m, ok := f.(Matcher)
	return !ok || m.Matches(err)
}
