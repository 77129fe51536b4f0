package upload

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

// Form is the parsed content of a multipart request.
type Form struct {
	Values map[string][]string
	Files  map[string][]*File
}

func newForm() *Form {
	return &Form{Values: map[string][]string{}, Files: map[string][]*File{}}
}

// All returns every stored file in upload order per field.
func (f *Form) All() []*File {
	var out []*File
	for _, files := range f.Files {
		out = append(out, files...)
	}
	return out
}

// Parser reads a multipart request.
type Parser interface {
	Parse(ctx context.Context, r *http.Request) (*Form, error)
}

type acceptMode int

const (
	acceptFields acceptMode = iota
	acceptAny
	acceptNone
)

// multipartParser streams parts with mime/multipart, enforcing limits as it
// reads. Files already stored are removed when parsing fails.
type multipartParser struct {
	mode    acceptMode
	fields  map[string]int
	storage Storage
	filter  FileFilter
	limits  Limits
	// preservePath keeps the client-sent path of file names.
	preservePath bool
}

func newParser(mode acceptMode, fields []Field, opts Options) (*multipartParser, error) {
	storage, err := opts.storage()
	if err != nil {
		return nil, err
	}
	p := &multipartParser{
		mode:         mode,
		fields:       make(map[string]int, len(fields)),
		storage:      storage,
		filter:       opts.FileFilter,
		limits:       opts.limits(),
		preservePath: opts.PreservePath,
	}
	for _, f := range fields {
		p.fields[f.Name] = f.MaxCount
	}
	return p, nil
}

// Parse returns an empty form for requests that are not multipart.
func (p *multipartParser) Parse(ctx context.Context, r *http.Request) (*Form, error) {
	form := newForm()
	if !isMultipart(r) {
		return form, nil
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	if err := p.read(ctx, mr, form); err != nil {
		p.cleanup(ctx, form)
		return nil, err
	}
	return form, nil
}

func (p *multipartParser) read(ctx context.Context, mr *multipart.Reader, form *Form) error {
	var parts, values, files int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		parts++
		if p.limits.Parts > 0 && parts > p.limits.Parts {
			part.Close()
			return newError(CodePartCount, "")
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			return newError(CodeMissingField, "")
		}
		if len(name) > p.limits.fieldNameSize() {
			part.Close()
			return newError(CodeFieldKey, "")
		}

		if part.FileName() == "" {
			values++
			if p.limits.Fields > 0 && values > p.limits.Fields {
				part.Close()
				return newError(CodeFieldCount, "")
			}
			err = p.readValue(part, name, form)
		} else {
			files++
			if p.limits.Files > 0 && files > p.limits.Files {
				part.Close()
				return newError(CodeFileCount, "")
			}
			err = p.readFile(ctx, part, name, form)
		}
		part.Close()
		if err != nil {
			return err
		}
	}
}

func (p *multipartParser) readValue(part *multipart.Part, name string, form *Form) error {
	limit := p.limits.fieldSize()
	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > limit {
		return newError(CodeFieldValue, name)
	}
	form.Values[name] = append(form.Values[name], string(data))
	return nil
}

func (p *multipartParser) readFile(ctx context.Context, part *multipart.Part, name string, form *Form) error {
	if !p.accepts(name, len(form.Files[name])) {
		return newError(CodeUnexpectedFile, name)
	}

	f := &File{
		FieldName:    name,
		OriginalName: p.originalName(part),
		MIMEType:     part.Header.Get("Content-Type"),
	}
	if p.filter != nil {
		ok, err := p.filter(ctx, f)
		if err != nil {
			return err
		}
		if !ok {
			_, err = io.Copy(io.Discard, part)
			return err
		}
	}

	var r io.Reader = part
	if p.limits.FileSize > 0 {
		r = &sizeLimitReader{r: part, remaining: p.limits.FileSize, field: name}
	}
	if err := p.storage.Save(ctx, f, r); err != nil {
		return err
	}
	form.Files[name] = append(form.Files[name], f)
	return nil
}

func (p *multipartParser) accepts(name string, stored int) bool {
	switch p.mode {
	case acceptAny:
		return true
	case acceptNone:
		return false
	}
	maxCount, ok := p.fields[name]
	if !ok {
		return false
	}
	return maxCount <= 0 || stored < maxCount
}

func (p *multipartParser) originalName(part *multipart.Part) string {
	if !p.preservePath {
		return part.FileName()
	}
	// FileName strips directories; the raw header keeps them.
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil || params["filename"] == "" {
		return part.FileName()
	}
	return params["filename"]
}

func (p *multipartParser) cleanup(ctx context.Context, form *Form) {
	ctx = context.WithoutCancel(ctx)
	for _, f := range form.All() {
		_ = p.storage.Remove(ctx, f)
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// sizeLimitReader fails with LIMIT_FILE_SIZE once more than remaining
// bytes are read.
type sizeLimitReader struct {
	r         io.Reader
	remaining int64
	field     string
}

func (l *sizeLimitReader) Read(b []byte) (int, error) {
	if l.remaining < 0 {
		return 0, newError(CodeFileSize, l.field)
	}
	if int64(len(b)) > l.remaining+1 {
		b = b[:l.remaining+1]
	}
	n, err := l.r.Read(b)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return 0, newError(CodeFileSize, l.field)
	}
	return n, err
}
