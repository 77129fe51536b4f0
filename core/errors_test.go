package core_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpckit/core"
)

func TestError(t *testing.T) {
	t.Run("message takes precedence", func(t *testing.T) {
		err := core.Forbidden("no access")
		assert.Equal(t, "no access", err.Error())
		assert.Equal(t, http.StatusForbidden, err.Code)
	})

	t.Run("default forbidden message", func(t *testing.T) {
		assert.Equal(t, "Forbidden resource", core.Forbidden("").Error())
	})

	t.Run("falls back to cause then key", func(t *testing.T) {
		cause := errors.New("boom")
		assert.Equal(t, "boom", core.Handler(cause).Error())
		assert.Equal(t, "internal_server_error", core.ErrInternal.Error())
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := core.Handler(cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("sentinels do not mutate", func(t *testing.T) {
		_ = core.Forbidden("custom")
		assert.Empty(t, core.ErrForbidden.Message)
	})
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", core.ValidationFailed("name is required", nil))

	assert.ErrorIs(t, err, core.ErrValidationFailed)
	assert.NotErrorIs(t, err, core.ErrForbidden)

	tooLarge := core.Upload(http.StatusRequestEntityTooLarge, "payload_too_large", "File too large", nil)
	assert.ErrorIs(t, tooLarge, core.ErrPayloadTooLarge)
	assert.NotErrorIs(t, core.ErrUpload, core.ErrPayloadTooLarge)
	assert.ErrorIs(t, tooLarge, &core.Error{Kind: core.KindUpload})
}

func TestKindOfAndStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   core.Kind
		status int
	}{
		{"forbidden", core.Forbidden(""), core.KindForbidden, http.StatusForbidden},
		{"validation", core.ValidationFailed("bad", nil), core.KindValidationFailed, http.StatusBadRequest},
		{"handler", core.Handler(errors.New("x")), core.KindHandler, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", core.ErrTooManyRequests), core.KindTooManyRequests, http.StatusTooManyRequests},
		{"plain", errors.New("plain"), "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, core.KindOf(tt.err))
			assert.Equal(t, tt.status, core.StatusCode(tt.err))
		})
	}
}

func TestAs(t *testing.T) {
	e, ok := core.As(fmt.Errorf("x: %w", core.ErrTimeout))
	require.True(t, ok)
	assert.Equal(t, core.KindTimeout, e.Kind)

	_, ok = core.As(errors.New("nope"))
	assert.False(t, ok)
}
