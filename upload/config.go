package upload

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/rpckit/pkg/config"
)

// Storage engine names accepted by Config.Storage.
const (
	StorageMemory = "memory"
	StorageDisk   = "disk"
	StorageS3     = "s3"
)

// Config is the environment or file form of module-wide Options.
//
//	UPLOAD_STORAGE=disk
//	UPLOAD_DEST=/var/lib/app/uploads
//	UPLOAD_MAX_FILE_SIZE=5242880
type Config struct {
	Storage      string   `env:"UPLOAD_STORAGE" envDefault:"memory" yaml:"storage"`
	Dest         string   `env:"UPLOAD_DEST" yaml:"dest"`
	MaxFileSize  int64    `env:"UPLOAD_MAX_FILE_SIZE" yaml:"maxFileSize"`
	MaxFiles     int      `env:"UPLOAD_MAX_FILES" yaml:"maxFiles"`
	MaxFields    int      `env:"UPLOAD_MAX_FIELDS" yaml:"maxFields"`
	MaxFieldSize int64    `env:"UPLOAD_MAX_FIELD_SIZE" yaml:"maxFieldSize"`
	MaxParts     int      `env:"UPLOAD_MAX_PARTS" yaml:"maxParts"`
	PreservePath bool     `env:"UPLOAD_PRESERVE_PATH" yaml:"preservePath"`
	S3           S3Config `envPrefix:"UPLOAD_S3_" yaml:"s3"`
}

// LoadConfig reads UPLOAD_* variables (and .env) into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a Config from a YAML file.
func LoadConfigFile(path string) (Config, error) {
	cfg := Config{Storage: StorageMemory}
	if err := config.LoadYAML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options builds module Options, creating the configured storage engine.
// opts are passed to NewS3Storage.
func (c Config) Options(ctx context.Context, opts ...S3Option) (Options, error) {
	o := Options{PreservePath: c.PreservePath}

	if c.MaxFileSize > 0 || c.MaxFiles > 0 || c.MaxFields > 0 || c.MaxFieldSize > 0 || c.MaxParts > 0 {
		o.Limits = &Limits{
			FileSize:  c.MaxFileSize,
			Files:     c.MaxFiles,
			Fields:    c.MaxFields,
			FieldSize: c.MaxFieldSize,
			Parts:     c.MaxParts,
		}
	}

	switch c.Storage {
	case "", StorageMemory:
		o.Storage = NewMemoryStorage()
	case StorageDisk:
		disk, err := NewDiskStorage(c.Dest)
		if err != nil {
			return Options{}, err
		}
		o.Dest = c.Dest
		o.Storage = disk
	case StorageS3:
		s3, err := NewS3Storage(ctx, c.S3, opts...)
		if err != nil {
			return Options{}, err
		}
		o.Storage = s3
	default:
		return Options{}, fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
	}
	return o, nil
}
