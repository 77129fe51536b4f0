package upload

import (
	"context"
	"net/http"
)

type formCtxKey struct{}

func withForm(ctx context.Context, form *Form) context.Context {
	return context.WithValue(ctx, formCtxKey{}, form)
}

// FormFromRequest returns the form attached by an upload interceptor.
func FormFromRequest(r *http.Request) (*Form, bool) {
	if r == nil {
		return nil, false
	}
	form, ok := r.Context().Value(formCtxKey{}).(*Form)
	return form, ok
}

// FilesFromRequest returns the files uploaded in field.
func FilesFromRequest(r *http.Request, field string) []*File {
	form, ok := FormFromRequest(r)
	if !ok {
		return nil
	}
	return form.Files[field]
}

// FileFromRequest returns the first file uploaded in field.
func FileFromRequest(r *http.Request, field string) (*File, bool) {
	files := FilesFromRequest(r, field)
	if len(files) == 0 {
		return nil, false
	}
	return files[0], true
}
