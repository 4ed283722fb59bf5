package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/cograph/pkg/cograph/internalerr"
)

// Defaults
const (
	DefaultWindowWidth = 3
	MinWindowWidth     = 2
)

// Config is the YAML-backed build configuration.
//
// Example:
//
//	window_width: 3
//	normalize: true
//	workers: 4
//	vocab:
//	  no_below: 2
//	store:
//	  path: graphs.db
//	log:
//	  level: info
type Config struct {
	WindowWidth int   `yaml:"window_width"`
	Normalize   *bool `yaml:"normalize"`
	Workers     int   `yaml:"workers"`

	Vocab struct {
		NoBelow int `yaml:"no_below"`
	} `yaml:"vocab"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	normalize := true
	cfg := &Config{
		WindowWidth: DefaultWindowWidth,
		Normalize:   &normalize,
		Workers:     1,
	}
	cfg.Log.Level = "info"
	return cfg
}

// Load reads a YAML config file. Fields missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Normalize == nil {
		normalize := true
		cfg.Normalize = &normalize
	}
	return cfg, nil
}

// ShouldNormalize reports whether edges get association strengths.
func (c *Config) ShouldNormalize() bool {
	return c.Normalize == nil || *c.Normalize
}

// SetNormalize overrides the normalize flag.
func (c *Config) SetNormalize(v bool) {
	c.Normalize = &v
}

// Validate checks the configuration before any processing starts.
func (c *Config) Validate() error {
	if c.WindowWidth < MinWindowWidth {
		return fmt.Errorf("%w: window_width must be >= %d, got %d", internalerr.ErrInvalidConfig, MinWindowWidth, c.WindowWidth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", internalerr.ErrInvalidConfig, c.Workers)
	}
	if c.Vocab.NoBelow < 0 {
		return fmt.Errorf("%w: vocab.no_below must be >= 0, got %d", internalerr.ErrInvalidConfig, c.Vocab.NoBelow)
	}
	return nil
}
