package upload_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/upload"
)

type part struct {
	field    string
	filename string
	content  string
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, p.content))
			continue
		}
		w, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func httpCtx(r *http.Request) execctx.Context {
	parent := execctx.WithHTTP(context.Background(), httptest.NewRecorder(), r)
	return execctx.New(parent, nil, "media")
}

func build(t *testing.T, b *upload.Binder, reg container.Resolver) *upload.Interceptor {
	t.Helper()
	v, err := b.Construct(reg, "media")
	require.NoError(t, err)
	i, ok := v.(*upload.Interceptor)
	require.True(t, ok)
	return i
}

func TestMerge(t *testing.T) {
	merged := upload.Merge(
		upload.Options{Dest: "/tmp"},
		&upload.Options{Limits: &upload.Limits{FileSize: 1024}},
	)
	assert.Equal(t, "/tmp", merged.Dest)
	require.NotNil(t, merged.Limits)
	assert.Equal(t, int64(1024), merged.Limits.FileSize)

	t.Run("limits replaced as a whole", func(t *testing.T) {
		merged := upload.Merge(
			upload.Options{Limits: &upload.Limits{Files: 2, FileSize: 10}},
			&upload.Options{Limits: &upload.Limits{FileSize: 99}},
		)
		assert.Equal(t, upload.Limits{FileSize: 99}, *merged.Limits)
	})

	t.Run("nil local keeps base", func(t *testing.T) {
		base := upload.Options{Dest: "/a"}
		assert.Equal(t, "/a", upload.Merge(base, nil).Dest)
	})
}

func TestBinder_Construct(t *testing.T) {
	dir := t.TempDir()
	reg := container.New()
	reg.Provide("media", upload.ModuleOptions, upload.Options{Dest: dir})

	b := upload.FileFieldsInterceptor(
		[]upload.Field{{Name: "avatar", MaxCount: 1}},
		&upload.Options{Limits: &upload.Limits{FileSize: 1024}},
	)
	i := build(t, b, reg)
	assert.Equal(t, dir, i.Options().Dest)
	assert.Equal(t, int64(1024), i.Options().Limits.FileSize)

	t.Run("without module options", func(t *testing.T) {
		i := build(t, b, nil)
		assert.Empty(t, i.Options().Dest)
	})

	t.Run("pointer options", func(t *testing.T) {
		reg := container.New()
		reg.ProvideGlobal(upload.ModuleOptions, &upload.Options{Dest: dir})
		assert.Equal(t, dir, build(t, b, reg).Options().Dest)
	})

	t.Run("wrong type", func(t *testing.T) {
		reg := container.New()
		reg.ProvideGlobal(upload.ModuleOptions, "nope")
		_, err := b.Construct(reg, "media")
		assert.ErrorIs(t, err, upload.ErrInvalidConfig)
	})
}

func TestFileFieldsInterceptor_DuplicateField(t *testing.T) {
	assert.PanicsWithError(t, `duplicate upload field: "avatar"`, func() {
		upload.FileFieldsInterceptor([]upload.Field{{Name: "avatar"}, {Name: "avatar"}}, nil)
	})
}

func TestIntercept_AttachesFiles(t *testing.T) {
	i := build(t, upload.FileFieldsInterceptor([]upload.Field{
		{Name: "avatar", MaxCount: 1},
		{Name: "docs", MaxCount: 2},
	}, nil), nil)

	r := multipartRequest(t,
		part{field: "name", content: "Ann"},
		part{field: "avatar", filename: "me.png", content: "PNG"},
		part{field: "docs", filename: "a.txt", content: "A"},
		part{field: "docs", filename: "b.txt", content: "B"},
	)
	ctx := httpCtx(r)

	res, err := i.Intercept(ctx, func() (any, error) {
		req := ctx.SwitchToHTTP().Request()
		avatar, ok := upload.FileFromRequest(req, "avatar")
		require.True(t, ok)
		assert.Equal(t, "me.png", avatar.OriginalName)
		assert.Equal(t, []byte("PNG"), avatar.Buffer)
		assert.Equal(t, int64(3), avatar.Size)
		assert.Len(t, upload.FilesFromRequest(req, "docs"), 2)
		assert.Equal(t, []string{"Ann"}, req.MultipartForm.Value["name"])
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", res)
}

func TestIntercept_Errors(t *testing.T) {
	tests := []struct {
		name   string
		binder *upload.Binder
		parts  []part
		status int
		code   upload.ErrorCode
	}{
		{
			name:   "unexpected field",
			binder: upload.FileInterceptor("avatar", nil),
			parts:  []part{{field: "other", filename: "x.bin", content: "x"}},
			status: http.StatusBadRequest,
			code:   upload.CodeUnexpectedFile,
		},
		{
			name:   "too many files for field",
			binder: upload.FileInterceptor("avatar", nil),
			parts: []part{
				{field: "avatar", filename: "1.png", content: "1"},
				{field: "avatar", filename: "2.png", content: "2"},
			},
			status: http.StatusBadRequest,
			code:   upload.CodeUnexpectedFile,
		},
		{
			name:   "file too large",
			binder: upload.FileInterceptor("avatar", &upload.Options{Limits: &upload.Limits{FileSize: 4}}),
			parts:  []part{{field: "avatar", filename: "big.png", content: "0123456789"}},
			status: http.StatusRequestEntityTooLarge,
			code:   upload.CodeFileSize,
		},
		{
			name:   "too many text fields",
			binder: upload.AnyFilesInterceptor(&upload.Options{Limits: &upload.Limits{Fields: 1}}),
			parts:  []part{{field: "a", content: "1"}, {field: "b", content: "2"}},
			status: http.StatusBadRequest,
			code:   upload.CodeFieldCount,
		},
		{
			name:   "field value too long",
			binder: upload.NoFilesInterceptor(&upload.Options{Limits: &upload.Limits{FieldSize: 2}}),
			parts:  []part{{field: "a", content: "long"}},
			status: http.StatusBadRequest,
			code:   upload.CodeFieldValue,
		},
		{
			name:   "no files allowed",
			binder: upload.NoFilesInterceptor(nil),
			parts:  []part{{field: "a", filename: "a.txt", content: "1"}},
			status: http.StatusBadRequest,
			code:   upload.CodeUnexpectedFile,
		},
		{
			name:   "file count",
			binder: upload.AnyFilesInterceptor(&upload.Options{Limits: &upload.Limits{Files: 1}}),
			parts: []part{
				{field: "a", filename: "a.txt", content: "1"},
				{field: "b", filename: "b.txt", content: "2"},
			},
			status: http.StatusBadRequest,
			code:   upload.CodeFileCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := build(t, tt.binder, nil)
			called := false
			_, err := i.Intercept(httpCtx(multipartRequest(t, tt.parts...)), func() (any, error) {
				called = true
				return nil, nil
			})
			require.Error(t, err)
			assert.False(t, called)
			assert.Equal(t, core.KindUpload, core.KindOf(err))
			assert.Equal(t, tt.status, core.StatusCode(err))

			var ue *upload.Error
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.code, ue.Code)
		})
	}
}

func TestIntercept_NotHTTP(t *testing.T) {
	i := build(t, upload.AnyFilesInterceptor(nil), nil)
	_, err := i.Intercept(execctx.New(context.Background(), nil, "media"), func() (any, error) {
		t.Fatal("next must not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, upload.ErrNoHTTPRequest)
	assert.Equal(t, core.KindUpload, core.KindOf(err))
}

func TestIntercept_NotMultipart(t *testing.T) {
	i := build(t, upload.AnyFilesInterceptor(nil), nil)
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"a":1}`))
	r.Header.Set("Content-Type", "application/json")
	ctx := httpCtx(r)

	_, err := i.Intercept(ctx, func() (any, error) {
		form, ok := upload.FormFromRequest(ctx.SwitchToHTTP().Request())
		require.True(t, ok)
		assert.Empty(t, form.Files)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestIntercept_FileFilter(t *testing.T) {
	onlyPNG := func(_ context.Context, f *upload.File) (bool, error) {
		return filepath.Ext(f.OriginalName) == ".png", nil
	}
	i := build(t, upload.AnyFilesInterceptor(&upload.Options{FileFilter: onlyPNG}), nil)

	r := multipartRequest(t,
		part{field: "f", filename: "a.png", content: "1"},
		part{field: "f", filename: "b.exe", content: "2"},
	)
	ctx := httpCtx(r)
	_, err := i.Intercept(ctx, func() (any, error) {
		files := upload.FilesFromRequest(ctx.SwitchToHTTP().Request(), "f")
		require.Len(t, files, 1)
		assert.Equal(t, "a.png", files[0].OriginalName)
		return nil, nil
	})
	require.NoError(t, err)

	t.Run("filter error aborts", func(t *testing.T) {
		boom := errors.New("scanner offline")
		i := build(t, upload.AnyFilesInterceptor(&upload.Options{
			FileFilter: func(context.Context, *upload.File) (bool, error) { return false, boom },
		}), nil)
		_, err := i.Intercept(httpCtx(multipartRequest(t, part{field: "f", filename: "a.png", content: "1"})),
			func() (any, error) { return nil, nil })
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, core.KindOf(err))
	})
}

func TestIntercept_DiskCleanupOnFailure(t *testing.T) {
	dir := t.TempDir()
	i := build(t, upload.FileFieldsInterceptor([]upload.Field{{Name: "a", MaxCount: 1}}, &upload.Options{Dest: dir}), nil)

	r := multipartRequest(t,
		part{field: "a", filename: "a.txt", content: "kept until failure"},
		part{field: "b", filename: "b.txt", content: "unexpected"},
	)
	_, err := i.Intercept(httpCtx(r), func() (any, error) { return nil, nil })
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransformError(t *testing.T) {
	t.Run("unknown errors unchanged", func(t *testing.T) {
		plain := errors.New("disk full")
		assert.Same(t, plain, upload.TransformError(plain))
		assert.NoError(t, upload.TransformError(nil))
	})

	t.Run("core errors unchanged", func(t *testing.T) {
		assert.Same(t, core.ErrForbidden, upload.TransformError(core.ErrForbidden))
	})

	t.Run("unknown code unchanged", func(t *testing.T) {
		err := &upload.Error{Code: "SOMETHING_ELSE"}
		assert.Same(t, err, upload.TransformError(err))
	})

	t.Run("file size", func(t *testing.T) {
		src := &upload.Error{Code: upload.CodeFileSize, Field: "avatar"}
		err := upload.TransformError(src)
		assert.ErrorIs(t, err, core.ErrPayloadTooLarge)
		assert.Equal(t, "File too large", err.Error())
		assert.ErrorIs(t, err, src)
	})
}
