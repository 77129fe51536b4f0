package guards

import (
	"context"
	"strings"

	"github.com/dmitrymomot/rpckit/execctx"
)

const (
	scopeWildcard  = "*"
	scopeDelimiter = "."
)

type scopesCtxKey struct{}

// WithScopes stores granted scopes in ctx for ScopesFromContext.
func WithScopes(ctx context.Context, scopes ...string) context.Context {
	return context.WithValue(ctx, scopesCtxKey{}, scopes)
}

// ScopesFromContext returns scopes stored with WithScopes.
func ScopesFromContext(ctx context.Context) []string {
	s, _ := ctx.Value(scopesCtxKey{}).([]string)
	return s
}

// ScopeMatches reports whether scope is granted by pattern.
//   - "read" matches "read"
//   - "*" matches anything
//   - "admin.*" matches "admin.users" and "admin.users.read"
func ScopeMatches(scope, pattern string) bool {
	if scope == pattern || pattern == scopeWildcard {
		return true
	}
	if strings.HasSuffix(pattern, scopeWildcard) {
		prefix := strings.TrimSuffix(strings.TrimSuffix(pattern, scopeWildcard), scopeDelimiter)
		return strings.HasPrefix(scope, prefix+scopeDelimiter)
	}
	return false
}

// HasScope reports whether any of granted matches scope.
func HasScope(granted []string, scope string) bool {
	for _, g := range granted {
		if ScopeMatches(scope, g) {
			return true
		}
	}
	return false
}

// RequireScopes denies calls whose granted scopes (read from the call
// context with ScopesFromContext) do not cover every required scope.
func RequireScopes(required ...string) Guard {
	return GuardFunc(func(ctx execctx.Context) (bool, error) {
		granted := ScopesFromContext(ctx)
		for _, r := range required {
			if !HasScope(granted, r) {
				return false, nil
			}
		}
		return true, nil
	})
}

// RequireAnyScope denies calls that hold none of the given scopes.
func RequireAnyScope(scopes ...string) Guard {
	return GuardFunc(func(ctx execctx.Context) (bool, error) {
		if len(scopes) == 0 {
			return true, nil
		}
		granted := ScopesFromContext(ctx)
		for _, s := range scopes {
			if HasScope(granted, s) {
				return true, nil
			}
		}
		return false, nil
	})
}
