package guards

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrymomot/rpckit/execctx"
)

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

// Role is a set of permissions that may inherit other roles' permissions.
// Permissions support the same wildcards as scopes ("orders.*").
type Role struct {
	Permissions []string
	Inherits    []string
}

type roleCtxKey struct{}

// WithRole stores the caller's role in ctx.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleCtxKey{}, role)
}

// RoleFromContext returns the role stored with WithRole.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleCtxKey{}).(string)
	return role, ok && role != ""
}

// Roles holds every role's effective permissions, computed once.
// It is immutable and safe for concurrent use.
type Roles struct {
	permissions map[string][]string
}

// NewRoles flattens role inheritance. It fails on unknown parents,
// cycles, or chains deeper than MaxInheritanceDepth.
func NewRoles(roles map[string]Role) (*Roles, error) {
	r := &Roles{permissions: make(map[string][]string, len(roles))}
	for name := range roles {
		perms, err := collectPermissions(name, roles, nil)
		if err != nil {
			return nil, err
		}
		slices.Sort(perms)
		r.permissions[name] = slices.Compact(perms)
	}
	return r, nil
}

// Can reports whether role holds permission directly or by inheritance.
func (r *Roles) Can(role, permission string) bool {
	perms, ok := r.permissions[role]
	if !ok {
		return false
	}
	return HasScope(perms, permission)
}

// RequirePermissions denies calls whose role (see WithRole) lacks any of
// the given permissions. Unknown roles and calls without a role are denied.
func (r *Roles) RequirePermissions(permissions ...string) Guard {
	return GuardFunc(func(ctx execctx.Context) (bool, error) {
		role, ok := RoleFromContext(ctx)
		if !ok {
			return false, nil
		}
		if _, known := r.permissions[role]; !known {
			return false, nil
		}
		for _, p := range permissions {
			if !r.Can(role, p) {
				return false, nil
			}
		}
		return true, nil
	})
}

// RequireRole denies calls whose role is not one of roles.
func RequireRole(roles ...string) Guard {
	return GuardFunc(func(ctx execctx.Context) (bool, error) {
		role, ok := RoleFromContext(ctx)
		return ok && slices.Contains(roles, role), nil
	})
}

func collectPermissions(name string, roles map[string]Role, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		return nil, fmt.Errorf("%w: %v -> %s", ErrCircularInheritance, path, name)
	}
	if len(path) >= MaxInheritanceDepth {
		return nil, fmt.Errorf("%w: role %q", ErrInheritanceTooDeep, name)
	}
	role, ok := roles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	path = append(path, name)
	perms := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		inherited, err := collectPermissions(parent, roles, path)
		if err != nil {
			return nil, err
		}
		perms = append(perms, inherited...)
	}
	return perms, nil
}
