package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/guards"
	"github.com/dmitrymomot/rpckit/handler"
	"github.com/dmitrymomot/rpckit/pipes"
	"github.com/dmitrymomot/rpckit/pkg/logger"
	"github.com/dmitrymomot/rpckit/rpc"
	"github.com/dmitrymomot/rpckit/transport"
	"github.com/dmitrymomot/rpckit/upload"
)

type createOrder struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

func (c createOrder) Validate() error {
	return pipes.Apply(
		pipes.RequiredString("sku", c.SKU),
		pipes.MinNum("qty", c.Qty, 1),
	)
}

type orders struct{}

func (orders) Create(_ context.Context, in createOrder) (any, error) {
	return map[string]any{"sku": in.SKU, "qty": in.Qty}, nil
}

func (orders) Get(ctx context.Context, args ...any) (any, error) {
	ectx, _ := execctx.FromContext(ctx)
	return map[string]any{
		"params":  args[0],
		"pattern": ectx.SwitchToRPC().Metadata()["pattern"],
		"type":    string(ectx.Type()),
	}, nil
}

func (orders) Attach(ctx context.Context, _ ...any) (any, error) {
	ectx, _ := execctx.FromContext(ctx)
	f, ok := upload.FileFromRequest(ectx.SwitchToHTTP().Request(), "receipt")
	if !ok {
		return nil, errors.New("receipt missing")
	}
	return map[string]any{"name": f.OriginalName, "size": f.Size}, nil
}

type envelope struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	Error  *struct {
		Kind    string `json:"kind"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := orders{}
	creator := rpc.NewContextCreator(container.New(), rpc.WithLogger(logger.Nop()))

	createRef := handler.Typed(svc, "Create", svc.Create).
		UsePipes(pipes.DecodeJSON(), pipes.Validation()).
		Build()
	getRef := handler.New(svc, "Get", svc.Get).Build()
	adminRef := handler.New(svc, "Get", svc.Get).UseGuards(guards.RequireScopes("orders.admin")).Build()
	attachRef := handler.New(svc, "Attach", svc.Attach).
		UseInterceptors(upload.FileInterceptor("receipt", &upload.Options{Limits: &upload.Limits{FileSize: 16}})).
		Build()

	r := chi.NewRouter()
	r.Use(transport.RequestID)
	transport.Post(r, "/orders", creator.Create(svc, createRef, "orders"), transport.WithStatus(http.StatusCreated))
	transport.Get(r, "/orders/{id}", creator.Create(svc, getRef, "orders"))
	transport.Delete(r, "/orders/{id}", creator.Create(svc, adminRef, "orders"))
	transport.Post(r, "/orders/{id}/receipt", creator.Create(svc, attachRef, "orders"),
		transport.WithDecoder(transport.NoPayload))
	return r
}

func TestPost_JSON(t *testing.T) {
	r := newRouter(t)

	t.Run("created", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"sku":"A-1","qty":2}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(transport.RequestIDHeader))
		env := decode(t, rec)
		assert.Equal(t, "ok", env.Status)
		assert.Equal(t, map[string]any{"sku": "A-1", "qty": float64(2)}, env.Data)
	})

	t.Run("validation failed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"sku":"","qty":0}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "validation_failed", env.Error.Kind)
		assert.Contains(t, env.Error.Message, "sku: field is required")
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGet_Params(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders/42?expand=items", nil)
	req.Header.Set(transport.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(transport.RequestIDHeader))
	env := decode(t, rec)
	assert.Equal(t, map[string]any{"id": "42", "expand": "items"}, env.Data["params"])
	assert.Equal(t, "/orders/{id}", env.Data["pattern"])
	assert.Equal(t, "http", env.Data["type"])
}

func TestDelete_Forbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/orders/42", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "forbidden", env.Error.Kind)
	assert.Equal(t, "Forbidden resource", env.Error.Message)
}

func multipartBody(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	w, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestPost_Upload(t *testing.T) {
	r := newRouter(t)

	t.Run("stored", func(t *testing.T) {
		body, ct := multipartBody(t, "receipt", "r.pdf", "%PDF-1.7")
		req := httptest.NewRequest(http.MethodPost, "/orders/42/receipt", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		env := decode(t, rec)
		assert.Equal(t, "r.pdf", env.Data["name"])
		assert.Equal(t, float64(8), env.Data["size"])
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartBody(t, "receipt", "r.pdf", strings.Repeat("x", 64))
		req := httptest.NewRequest(http.MethodPost, "/orders/42/receipt", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "upload_error", env.Error.Kind)
		assert.Equal(t, "File too large", env.Error.Message)
	})

	t.Run("unexpected field", func(t *testing.T) {
		body, ct := multipartBody(t, "photo", "p.png", "png")
		req := httptest.NewRequest(http.MethodPost, "/orders/42/receipt", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unexpected field", decode(t, rec).Error.Message)
	})
}

func TestJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	v, err := transport.JSONBody(req)
	require.NoError(t, err)
	assert.Nil(t, v)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1]`))
	v, err = transport.JSONBody(req)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`[1]`), v)
}

func TestURLParam(t *testing.T) {
	r := chi.NewRouter()
	var got any
	r.Get("/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		got, _ = transport.URLParam("id")(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))
	assert.Equal(t, "7", got)
}
