package upload

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrymomot/rpckit/container"
	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/interceptors"
)

// Binder is an upload interceptor waiting for its module configuration.
// Pass it to handler.Builder.UseInterceptors; the pipeline builder
// constructs it once per module.
type Binder struct {
	mode   acceptMode
	fields []Field
	local  *Options
}

var _ container.Constructor = (*Binder)(nil)

// FileFieldsInterceptor accepts files for the given fields only, at most
// MaxCount per field. It panics when a field name repeats, which is a
// registration mistake.
func FileFieldsInterceptor(fields []Field, local *Options) *Binder {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Errorf("%w: %q", ErrDuplicateField, f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return &Binder{mode: acceptFields, fields: append([]Field(nil), fields...), local: cloneOptions(local)}
}

// FileInterceptor accepts a single file in field name.
func FileInterceptor(name string, local *Options) *Binder {
	return FileFieldsInterceptor([]Field{{Name: name, MaxCount: 1}}, local)
}

// FilesInterceptor accepts up to maxCount files in field name.
func FilesInterceptor(name string, maxCount int, local *Options) *Binder {
	return FileFieldsInterceptor([]Field{{Name: name, MaxCount: maxCount}}, local)
}

// AnyFilesInterceptor accepts files in any field.
func AnyFilesInterceptor(local *Options) *Binder {
	return &Binder{mode: acceptAny, local: cloneOptions(local)}
}

// NoFilesInterceptor accepts text fields only; any file is unexpected.
func NoFilesInterceptor(local *Options) *Binder {
	return &Binder{mode: acceptNone, local: cloneOptions(local)}
}

// Construct resolves the module options registered under ModuleOptions,
// merges the local options over them and returns the *Interceptor.
// Missing module options count as empty.
func (b *Binder) Construct(r container.Resolver, module string) (any, error) {
	var base Options
	if r != nil {
		if v, ok := r.Resolve(module, ModuleOptions); ok {
			switch o := v.(type) {
			case Options:
				base = o
			case *Options:
				if o != nil {
					base = *o
				}
			default:
				return nil, fmt.Errorf("%w: module options have type %T", ErrInvalidConfig, v)
			}
		}
	}
	return b.Build(base)
}

// Build creates the interceptor for the given module options.
func (b *Binder) Build(base Options) (*Interceptor, error) {
	opts := Merge(base, b.local)
	parser, err := newParser(b.mode, b.fields, opts)
	if err != nil {
		return nil, err
	}
	return &Interceptor{options: opts, parser: parser}, nil
}

// Interceptor parses uploads before calling the rest of the chain.
type Interceptor struct {
	options Options
	parser  Parser
}

var _ interceptors.Interceptor = (*Interceptor)(nil)

// Options returns the merged configuration.
func (i *Interceptor) Options() Options {
	return i.options
}

// Intercept parses the call's HTTP request and replaces it with a copy
// carrying the parsed form. On failure next is never called.
func (i *Interceptor) Intercept(ctx execctx.Context, next interceptors.Next) (any, error) {
	host := ctx.SwitchToHTTP()
	req := host.Request()
	if req == nil {
		return nil, core.ErrUpload.WithMessage("Multipart request expected").WithCause(ErrNoHTTPRequest)
	}

	form, err := i.parser.Parse(ctx, req)
	if err != nil {
		return nil, TransformError(err)
	}

	host.SetRequest(attach(req, form))
	return next()
}

func attach(r *http.Request, form *Form) *http.Request {
	r2 := r.WithContext(withForm(r.Context(), form))
	r2.MultipartForm = &multipart.Form{Value: form.Values}
	return r2
}

func cloneOptions(o *Options) *Options {
	if o == nil {
		return nil
	}
	cp := *o
	if o.Limits != nil {
		l := *o.Limits
		cp.Limits = &l
	}
	return &cp
}
