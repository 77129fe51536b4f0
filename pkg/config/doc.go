// Package config loads typed configuration for rpckit components.
//
// Environment-based configuration wraps github.com/joho/godotenv and
// github.com/caarlos0/env/v11: Load parses `env` struct tags once per
// type and caches the result. File-based configuration (for example
// module-wide upload options) is decoded with gopkg.in/yaml.v3 via LoadYAML.
//
//	var cfg upload.Config
//	config.MustLoad(&cfg)
//	opts := cfg.Options()
//
// Errors wrap the package sentinels (ErrParsingConfig, ErrNilPointer,
// ErrReadingFile, ErrParsingYAML) and can be matched with errors.Is.
// ResetCache and ForceReload exist for tests that change the environment.
package config
