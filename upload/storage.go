package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File is an uploaded file. Which location fields are set depends on the
// storage engine: Buffer for memory, Destination/Filename/Path for disk,
// Key/Location for S3.
type File struct {
	FieldName    string
	OriginalName string
	MIMEType     string
	Size         int64

	Buffer []byte

	Destination string
	Filename    string
	Path        string

	Key      string
	Location string
}

// Storage persists file content streamed by the parser.
type Storage interface {
	// Save consumes r and records where the content went in f.
	Save(ctx context.Context, f *File, r io.Reader) error
	// Remove deletes a file saved earlier. Used to clean up after a failed
	// upload.
	Remove(ctx context.Context, f *File) error
}

// MemoryStorage keeps file content in File.Buffer.
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (MemoryStorage) Save(_ context.Context, f *File, r io.Reader) error {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(r)
	if err != nil {
		return err
	}
	f.Buffer = buf.Bytes()
	f.Size = n
	return nil
}

func (MemoryStorage) Remove(_ context.Context, f *File) error {
	f.Buffer = nil
	return nil
}

// FilenameFunc names a stored file. It must return a name without
// directory components.
type FilenameFunc func(f *File) string

// RandomFilename returns 32 random hex characters, without extension.
func RandomFilename(*File) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// DiskStorage writes files into a directory. All paths are confined to it.
type DiskStorage struct {
	dir      string
	filename FilenameFunc
}

// DiskOption configures a DiskStorage.
type DiskOption func(*DiskStorage)

// WithFilename overrides the naming of stored files.
func WithFilename(fn FilenameFunc) DiskOption {
	return func(s *DiskStorage) {
		if fn != nil {
			s.filename = fn
		}
	}
}

// NewDiskStorage resolves dir to an absolute path and creates it.
func NewDiskStorage(dir string, opts ...DiskOption) (*DiskStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty destination", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s := &DiskStorage{dir: abs, filename: RandomFilename}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *DiskStorage) Save(ctx context.Context, f *File, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := sanitizeFilename(s.filename(f))
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSave, err)
	}
	n, copyErr := io.Copy(dst, r)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return copyErr
		}
		return fmt.Errorf("%w: %v", ErrFailedToSave, closeErr)
	}

	f.Destination = s.dir
	f.Filename = name
	f.Path = path
	f.Size = n
	return nil
}

func (s *DiskStorage) Remove(_ context.Context, f *File) error {
	if f.Path == "" {
		return nil
	}
	path, err := s.resolve(filepath.Base(f.Path))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrFailedToRemove, err)
	}
	return nil
}

func (s *DiskStorage) resolve(name string) (string, error) {
	path := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}
	return path, nil
}

// sanitizeFilename strips directory components and NUL bytes.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\x00", "")
	if name == "." || name == ".." || name == "" || name == "/" {
		return "unnamed"
	}
	return name
}
