// Package config loads the sixcc configuration file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Command line flags are merged on top.
type Config struct {
	IncludeDirs     []string          `yaml:"include_dirs"`
	Defines         map[string]string `yaml:"defines"`
	Undefines       []string          `yaml:"undefines"`
	LogLevel        string            `yaml:"log_level"`
	LogFormat       string            `yaml:"log_format"`
	MaxIncludeDepth int               `yaml:"max_include_depth"`
	HeaderCacheSize int               `yaml:"header_cache_size"`
}

const (
	DefaultMaxIncludeDepth = 200
	DefaultHeaderCacheSize = 64
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Defines:         map[string]string{},
		LogLevel:        "warn",
		LogFormat:       "text",
		MaxIncludeDepth: DefaultMaxIncludeDepth,
		HeaderCacheSize: DefaultHeaderCacheSize,
	}
}

// Load reads and validates a YAML configuration file. Unknown fields are
// rejected. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data, path)
}

// Parse decodes YAML configuration data; name is used in error messages.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "parse config %s", name)
	}
	if cfg.Defines == nil {
		cfg.Defines = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", name)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.MaxIncludeDepth <= 0 {
		return fmt.Errorf("max_include_depth must be positive, got %d", c.MaxIncludeDepth)
	}
	if c.HeaderCacheSize <= 0 {
		return fmt.Errorf("header_cache_size must be positive, got %d", c.HeaderCacheSize)
	}
	for name := range c.Defines {
		if !isIdentifier(name) {
			return fmt.Errorf("defines: %q is not a valid macro name", name)
		}
	}
	for _, name := range c.Undefines {
		if !isIdentifier(name) {
			return fmt.Errorf("undefines: %q is not a valid macro name", name)
		}
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
