// Package config loads project settings from inkir.yaml, .env and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/selector"
)

// FileName is the default project config file.
const FileName = "inkir.yaml"

// Environment overrides.
const (
	EnvSelectorHash = "INKIR_SELECTOR_HASH"
	EnvStore        = "INKIR_STORE"
	EnvWorkers      = "INKIR_WORKERS"
)

// Frontends.
const (
	FrontendAuto = "auto"
	FrontendRust = "rust"
	FrontendCUE  = "cue"
)

// Config is the project configuration.
type Config struct {
	// Sources are files or directories holding contract declarations.
	Sources []string `yaml:"sources"`
	// Frontend selects the declaration reader: auto, rust or cue.
	Frontend       string            `yaml:"frontend"`
	SelectorHash   string            `yaml:"selector_hash"`
	MaxEventTopics int               `yaml:"max_event_topics"`
	Workers        int               `yaml:"workers"`
	TypeAliases    map[string]string `yaml:"type_aliases"`
	// Store is the metadata archive path. Empty disables archiving.
	Store    string `yaml:"store"`
	Manifest string `yaml:"manifest"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Sources:        []string{"."},
		Frontend:       FrontendAuto,
		SelectorHash:   string(selector.Blake2b256),
		MaxEventTopics: compiler.DefaultMaxEventTopics,
	}
}

// Load reads .env (if present), then the YAML file at path, then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvSelectorHash)); v != "" {
		c.SelectorHash = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStore)); v != "" {
		c.Store = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Frontend {
	case FrontendAuto, FrontendRust, FrontendCUE:
	default:
		return fmt.Errorf("frontend must be auto, rust or cue, got %q", c.Frontend)
	}
	if _, err := selector.ParseHash(c.SelectorHash); err != nil {
		return err
	}
	if c.MaxEventTopics < 0 {
		return fmt.Errorf("max_event_topics must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// CompilerOptions derives IR builder options.
func (c *Config) CompilerOptions() compiler.Options {
	hash, err := selector.ParseHash(c.SelectorHash)
	if err != nil {
		hash = selector.Blake2b256
	}
	return compiler.Options{Hash: hash, MaxEventTopics: c.MaxEventTopics, Workers: c.Workers}
}

// MetadataOptions derives metadata builder options.
func (c *Config) MetadataOptions() metadata.Options {
	return metadata.Options{Aliases: c.TypeAliases}
}
