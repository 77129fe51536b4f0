package guards_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/guards"
	"github.com/dmitrymomot/rpckit/handler"
	"github.com/dmitrymomot/rpckit/pkg/logger"
)

type countingGuard struct {
	result bool
	calls  int
}

func (g *countingGuard) CanActivate(execctx.Context) (bool, error) {
	g.calls++
	return g.result, nil
}

type controller struct {
	guards []any
}

func (c *controller) ClassGuards() []any { return c.guards }

func newCtx(t *testing.T, ref *handler.Ref) execctx.Context {
	t.Helper()
	if ref == nil {
		ref = handler.New(nil, "test", func(context.Context, ...any) (any, error) { return nil, nil }).Build()
	}
	return execctx.New(context.Background(), ref, "test", "payload")
}

func TestConsumer_TryActivate(t *testing.T) {
	consumer := guards.NewConsumer()

	t.Run("no guards allows", func(t *testing.T) {
		ok, err := consumer.TryActivate(nil, newCtx(t, nil))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("all true allows", func(t *testing.T) {
		a, b := &countingGuard{result: true}, &countingGuard{result: true}
		ok, err := consumer.TryActivate([]guards.Guard{a, b}, newCtx(t, nil))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, a.calls)
		assert.Equal(t, 1, b.calls)
	})

	t.Run("stops at first false", func(t *testing.T) {
		a, b, c := &countingGuard{result: true}, &countingGuard{result: false}, &countingGuard{result: true}
		ok, err := consumer.TryActivate([]guards.Guard{a, b, c}, newCtx(t, nil))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, b.calls)
		assert.Zero(t, c.calls)
	})

	t.Run("error stops evaluation", func(t *testing.T) {
		boom := errors.New("boom")
		after := &countingGuard{result: true}
		failing := guards.GuardFunc(func(execctx.Context) (bool, error) { return false, boom })
		ok, err := consumer.TryActivate([]guards.Guard{failing, after}, newCtx(t, nil))
		assert.ErrorIs(t, err, boom)
		assert.False(t, ok)
		assert.Zero(t, after.calls)
	})
}

func TestAsync(t *testing.T) {
	consumer := guards.NewConsumer()

	t.Run("resolves later", func(t *testing.T) {
		g := guards.Async(func(execctx.Context) <-chan bool {
			ch := make(chan bool, 1)
			go func() {
				time.Sleep(5 * time.Millisecond)
				ch <- true
			}()
			return ch
		})
		ok, err := consumer.TryActivate([]guards.Guard{g}, newCtx(t, nil))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("closed channel denies", func(t *testing.T) {
		g := guards.Async(func(execctx.Context) <-chan bool {
			ch := make(chan bool)
			close(ch)
			return ch
		})
		ok, err := g.CanActivate(newCtx(t, nil))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("cancelled context", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		cancel()
		ctx := execctx.New(parent, nil, "test")
		g := guards.Async(func(execctx.Context) <-chan bool { return make(chan bool) })
		ok, err := g.CanActivate(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)
	})
}

func TestContextCreator_Create(t *testing.T) {
	global := &countingGuard{result: true}
	class := &countingGuard{result: true}
	method := &countingGuard{result: true}
	fromContainer := &countingGuard{result: true}

	reg := container.New()
	reg.Provide("orders", "auth", fromContainer)

	creator := guards.NewContextCreator(reg,
		guards.WithGlobalGuards(global),
		guards.WithLogger(logger.Nop()),
	)

	instance := &controller{guards: []any{class}}
	ref := handler.New(instance, "Create", func(context.Context, ...any) (any, error) { return nil, nil }).
		UseGuards(method, "auth", "unknown").
		Build()

	got := creator.Create(instance, ref, "orders")
	require.Len(t, got, 4)
	assert.Same(t, global, got[0])
	assert.Same(t, class, got[1])
	assert.Same(t, method, got[2])
	assert.Same(t, fromContainer, got[3])

	t.Run("token not visible in another module", func(t *testing.T) {
		assert.Len(t, creator.Create(instance, ref, "billing"), 3)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, got, creator.Create(instance, ref, "orders"))
	})

	t.Run("global guards added later", func(t *testing.T) {
		c := guards.NewContextCreator(nil)
		c.UseGlobalGuards(guards.Allow)
		plain := handler.New(nil, "x", func(context.Context, ...any) (any, error) { return nil, nil }).Build()
		assert.Len(t, c.Create(nil, plain, "m"), 1)
	})

	t.Run("fail closed replaces unresolved entries", func(t *testing.T) {
		c := guards.NewContextCreator(nil, guards.WithFailClosed(), guards.WithLogger(logger.Nop()))
		typo := handler.New(nil, "x", func(context.Context, ...any) (any, error) { return nil, nil }).
			UseGuards(guards.Allow, "authh").
			Build()

		list := c.Create(nil, typo, "m")
		require.Len(t, list, 2)
		ok, err := guards.NewConsumer().TryActivate(list, execctx.New(context.Background(), typo, "m"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestScopes(t *testing.T) {
	assert.True(t, guards.ScopeMatches("read", "read"))
	assert.True(t, guards.ScopeMatches("anything", "*"))
	assert.True(t, guards.ScopeMatches("admin.users", "admin.*"))
	assert.False(t, guards.ScopeMatches("administrator", "admin.*"))
	assert.False(t, guards.ScopeMatches("write", "read"))

	parent := guards.WithScopes(context.Background(), "orders.*", "profile.read")
	ctx := execctx.New(parent, nil, "m")

	ok, err := guards.RequireScopes("orders.create", "profile.read").CanActivate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guards.RequireScopes("billing.read").CanActivate(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = guards.RequireAnyScope("billing.read", "profile.read").CanActivate(ctx)
	assert.True(t, ok)
	ok, _ = guards.RequireAnyScope("billing.read").CanActivate(ctx)
	assert.False(t, ok)
}

func TestRoles(t *testing.T) {
	roles, err := guards.NewRoles(map[string]guards.Role{
		"viewer": {Permissions: []string{"orders.read"}},
		"editor": {Permissions: []string{"orders.write"}, Inherits: []string{"viewer"}},
		"admin":  {Permissions: []string{"*"}},
	})
	require.NoError(t, err)

	assert.True(t, roles.Can("editor", "orders.read"))
	assert.True(t, roles.Can("editor", "orders.write"))
	assert.False(t, roles.Can("viewer", "orders.write"))
	assert.True(t, roles.Can("admin", "anything"))
	assert.False(t, roles.Can("ghost", "orders.read"))

	guard := roles.RequirePermissions("orders.write")
	check := func(role string) bool {
		parent := context.Background()
		if role != "" {
			parent = guards.WithRole(parent, role)
		}
		ok, err := guard.CanActivate(execctx.New(parent, nil, "m"))
		require.NoError(t, err)
		return ok
	}
	assert.True(t, check("editor"))
	assert.False(t, check("viewer"))
	assert.False(t, check("ghost"))
	assert.False(t, check(""))

	ok, _ := guards.RequireRole("admin").CanActivate(execctx.New(guards.WithRole(context.Background(), "admin"), nil, "m"))
	assert.True(t, ok)

	t.Run("invalid hierarchies", func(t *testing.T) {
		_, err := guards.NewRoles(map[string]guards.Role{
			"a": {Inherits: []string{"b"}},
			"b": {Inherits: []string{"a"}},
		})
		assert.ErrorIs(t, err, guards.ErrCircularInheritance)

		_, err = guards.NewRoles(map[string]guards.Role{"a": {Inherits: []string{"missing"}}})
		assert.ErrorIs(t, err, guards.ErrUnknownRole)
	})
}
