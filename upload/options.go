package upload

import (
	"context"
)

// Field declares an accepted file field. MaxCount <= 0 allows any number
// of files for the field.
type Field struct {
	Name     string `yaml:"name"`
	MaxCount int    `yaml:"maxCount"`
}

// Limits bounds what a single request may contain. A zero value means the
// parser default: 100 bytes for field names, 1 MiB for field values and
// no limit for everything else.
type Limits struct {
	FieldNameSize int   `yaml:"fieldNameSize"`
	FieldSize     int64 `yaml:"fieldSize"`
	Fields        int   `yaml:"fields"`
	FileSize      int64 `yaml:"fileSize"`
	Files         int   `yaml:"files"`
	Parts         int   `yaml:"parts"`
}

const (
	defaultFieldNameSize = 100
	defaultFieldSize     = 1 << 20
)

func (l Limits) fieldNameSize() int {
	if l.FieldNameSize > 0 {
		return l.FieldNameSize
	}
	return defaultFieldNameSize
}

func (l Limits) fieldSize() int64 {
	if l.FieldSize > 0 {
		return l.FieldSize
	}
	return defaultFieldSize
}

// FileFilter decides whether a file is stored. Rejected files are skipped;
// an error aborts the upload.
type FileFilter func(ctx context.Context, f *File) (bool, error)

// Options configure parsing. Dest selects disk storage when Storage is
// not set; with neither, files are kept in memory.
type Options struct {
	Dest         string     `yaml:"dest"`
	Storage      Storage    `yaml:"-"`
	FileFilter   FileFilter `yaml:"-"`
	Limits       *Limits    `yaml:"limits"`
	PreservePath bool       `yaml:"preservePath"`
}

type moduleOptionsToken struct{}

// ModuleOptions is the container token for module-wide Options.
// Register either an Options or a *Options value under it.
var ModuleOptions any = moduleOptionsToken{}

// Merge overlays local on base one top-level key at a time: every key set
// in local wins, Limits included, which replaces base's limits as a whole.
func Merge(base Options, local *Options) Options {
	out := base
	if out.Limits != nil {
		l := *out.Limits
		out.Limits = &l
	}
	if local == nil {
		return out
	}
	if local.Dest != "" {
		out.Dest = local.Dest
	}
	if local.Storage != nil {
		out.Storage = local.Storage
	}
	if local.FileFilter != nil {
		out.FileFilter = local.FileFilter
	}
	if local.Limits != nil {
		l := *local.Limits
		out.Limits = &l
	}
	if local.PreservePath {
		out.PreservePath = true
	}
	return out
}

func (o Options) limits() Limits {
	if o.Limits == nil {
		return Limits{}
	}
	return *o.Limits
}

// storage returns the engine files are stored with.
func (o Options) storage() (Storage, error) {
	if o.Storage != nil {
		return o.Storage, nil
	}
	if o.Dest != "" {
		return NewDiskStorage(o.Dest)
	}
	return NewMemoryStorage(), nil
}
