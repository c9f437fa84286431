// Package config loads brepmesh settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/brepio"
	"gopkg.in/yaml.v3"
)

// Environment variables applied on top of the file.
const (
	EnvKernel     = "BREPMESH_KERNEL"
	EnvDeflection = "BREPMESH_DEFLECTION"
	EnvLogLevel   = "BREPMESH_LOG_LEVEL"
)

// Config is the brepmesh configuration.
type Config struct {
	// Kernel is the registered kernel name.
	Kernel string `yaml:"kernel"`
	// Deflection is the meshing tolerance, normalized by the library.
	// The angular tolerance is fixed at brepio.AngularDeflection.
	Deflection float64 `yaml:"deflection"`
	StructOnly bool    `yaml:"struct_only"`
	// BatchSize is the number of triangles serialized per batch.
	BatchSize int `yaml:"batch_size"`
	// Jobs bounds concurrent scene interrogations; 0 means one per CPU.
	Jobs int `yaml:"jobs"`

	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// OutputConfig configures written artifacts.
type OutputConfig struct {
	Indent bool `yaml:"indent"`
	// VertexBuffer also writes a packed GPU vertex buffer per scene.
	VertexBuffer bool `yaml:"vertex_buffer"`
	// Dir receives one document per scene; empty writes to stdout.
	Dir string `yaml:"dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Kernel:     "reference",
		Deflection: brepio.DefaultDeflection,
		BatchSize:  brepio.DefaultBatchSize,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file over the defaults. A missing
// file yields the defaults; unknown keys are errors. Environment overrides
// are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvKernel); v != "" {
		c.Kernel = v
	}
	if v := os.Getenv(EnvDeflection); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDeflection, err)
		}
		c.Deflection = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks settings that have no sensible fallback. Deflection is
// not checked: out-of-range values are normalized at interrogation time.
func (c *Config) Validate() error {
	if c.Kernel == "" {
		return errors.New("kernel must be set")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return c.Log.checkFormat()
}

func (l LogConfig) checkFormat() error {
	switch l.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
}

// SessionOptions returns the library options selected by c.
func (c *Config) SessionOptions(logger *slog.Logger) []brepio.Option {
	return []brepio.Option{
		brepio.WithLogger(logger),
		brepio.WithBatchSize(c.BatchSize),
	}
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// Handler builds the slog handler writing to w. It accepts the same
// formats as Validate.
func (l LogConfig) Handler(w io.Writer) (slog.Handler, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	if err := l.checkFormat(); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}
