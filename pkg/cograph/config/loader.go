package config

import (
	"fmt"

	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	ConfigPath string
	VocabPath  string
	// Override, if set, adjusts the loaded config (command-line flags)
	// before it is validated.
	Override func(*Config) error
}

// Components holds all loaded configuration components
type Components struct {
	Config *Config
	// Vocabulary is nil when no vocabulary file was given; callers then build
	// one from the corpus.
	Vocabulary *vocab.Vocabulary
}

// Load reads all configuration files and returns validated components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.ConfigPath != "" {
		cfg, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		comp.Config = cfg
	} else {
		comp.Config = Default()
	}

	if l.Override != nil {
		if err := l.Override(comp.Config); err != nil {
			return nil, err
		}
	}
	if err := comp.Config.Validate(); err != nil {
		return nil, err
	}

	if l.VocabPath != "" {
		v, err := vocab.LoadYAML(l.VocabPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		comp.Vocabulary = v
	}

	return comp, nil
}
