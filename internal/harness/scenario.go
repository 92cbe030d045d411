package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/config"
	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/selector"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Sources lists declaration files or directories.
	// Paths are relative to the scenario file location.
	Sources []string `yaml:"sources"`

	// Frontend is auto, rust or cue. Empty means auto.
	Frontend string `yaml:"frontend,omitempty"`

	// Options override the default build options.
	Options *Options `yaml:"options,omitempty"`

	// Expect is the required build outcome.
	Expect Expect `yaml:"expect"`

	// Assertions validate the metadata of a successful build.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Golden compares the metadata against testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`
}

// Options are the build options a scenario may set.
type Options struct {
	SelectorHash   string            `yaml:"selector_hash,omitempty"`
	MaxEventTopics int               `yaml:"max_event_topics,omitempty"`
	TypeAliases    map[string]string `yaml:"type_aliases,omitempty"`
}

// Expect is the required outcome of a build.
type Expect struct {
	// Status is "ok" or "error".
	Status string `yaml:"status"`

	// Kind is the expected error taxonomy entry, e.g. SelectorCollision,
	// or ParseError for frontend failures.
	Kind string `yaml:"kind,omitempty"`

	// Failure and Reason narrow a per-item error.
	Failure string `yaml:"failure,omitempty"`
	Reason  string `yaml:"reason,omitempty"`

	// Contains is a substring of the error message.
	Contains string `yaml:"contains,omitempty"`
}

// Expected statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Assertion validates the metadata of a successful build.
type Assertion struct {
	// Type specifies the assertion type:
	// - "selector": item has selector
	// - "count": number of entries in a section
	// - "flag": a boolean property of an item
	// - "topics": indexed field count of an event
	// - "type": the registry holds a type
	Type string `yaml:"type"`

	// Item is a constructor, message or event label.
	Item string `yaml:"item,omitempty"`

	// Selector is the expected selector, e.g. "0xcafebabe" (selector).
	Selector string `yaml:"selector,omitempty"`

	// Of names the section to count: constructors, messages, events,
	// types or tests (count).
	Of string `yaml:"of,omitempty"`

	// Count is the expected number (count, topics).
	Count int `yaml:"count,omitempty"`

	// Flag is payable, mutates or anonymous (flag).
	Flag string `yaml:"flag,omitempty"`

	// Want is the expected flag value (flag). Defaults to true.
	Want *bool `yaml:"want,omitempty"`

	// Path is a primitive name or type path such as "u128" or
	// "Option" (type).
	Path string `yaml:"path,omitempty"`
}

// Assertion type constants.
const (
	AssertSelector = "selector"
	AssertCount    = "count"
	AssertFlag     = "flag"
	AssertTopics   = "topics"
	AssertType     = "type"
)

// Countable sections.
const (
	SectionConstructors = "constructors"
	SectionMessages     = "messages"
	SectionEvents       = "events"
	SectionTypes        = "types"
	SectionTests        = "tests"
)

// Flags.
const (
	FlagPayable   = "payable"
	FlagMutates   = "mutates"
	FlagAnonymous = "anonymous"
)

// LoadScenario reads and parses a scenario YAML file. Source paths are
// resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve source paths BEFORE validation
	base := filepath.Dir(path)
	for i, src := range scenario.Sources {
		if !filepath.IsAbs(src) {
			scenario.Sources[i] = filepath.Join(base, src)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir in lexical order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// CompilerOptions returns the IR builder options for s.
func (s *Scenario) CompilerOptions() compiler.Options {
	opts := compiler.DefaultOptions()
	if s.Options == nil {
		return opts
	}
	if h, err := selector.ParseHash(s.Options.SelectorHash); err == nil {
		opts.Hash = h
	}
	if s.Options.MaxEventTopics > 0 {
		opts.MaxEventTopics = s.Options.MaxEventTopics
	}
	return opts
}

// MetadataOptions returns the metadata builder options for s.
func (s *Scenario) MetadataOptions() metadata.Options {
	if s.Options == nil {
		return metadata.Options{}
	}
	return metadata.Options{Aliases: s.Options.TypeAliases}
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Sources) == 0 {
		return fmt.Errorf("sources list is required and must be non-empty")
	}

	for _, src := range s.Sources {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			return fmt.Errorf("source not found: %s", src)
		}
	}

	switch s.Frontend {
	case "", config.FrontendAuto, config.FrontendRust, config.FrontendCUE:
	default:
		return fmt.Errorf("unknown frontend %q", s.Frontend)
	}

	if s.Options != nil {
		if _, err := selector.ParseHash(s.Options.SelectorHash); err != nil {
			return fmt.Errorf("options: %w", err)
		}
		if s.Options.MaxEventTopics < 0 {
			return fmt.Errorf("options: max_event_topics must be non-negative")
		}
	}

	switch s.Expect.Status {
	case StatusOK:
		if s.Expect.Kind != "" || s.Expect.Failure != "" || s.Expect.Reason != "" || s.Expect.Contains != "" {
			return fmt.Errorf("expect: error fields require status error")
		}
	case StatusError:
		if s.Expect.Kind == "" {
			return fmt.Errorf("expect: kind is required for status error")
		}
		if len(s.Assertions) > 0 {
			return fmt.Errorf("assertions require status ok")
		}
		if s.Golden {
			return fmt.Errorf("golden requires status ok")
		}
	case "":
		return fmt.Errorf("expect: status is required")
	default:
		return fmt.Errorf("expect: unknown status %q", s.Expect.Status)
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSelector:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for selector", index)
		}
		if _, err := selector.Parse(a.Selector); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertCount:
		switch a.Of {
		case SectionConstructors, SectionMessages, SectionEvents, SectionTypes, SectionTests:
		default:
			return fmt.Errorf("assertions[%d]: unknown section %q for count", index, a.Of)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFlag:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for flag", index)
		}
		switch a.Flag {
		case FlagPayable, FlagMutates, FlagAnonymous:
		default:
			return fmt.Errorf("assertions[%d]: unknown flag %q", index, a.Flag)
		}
	case AssertTopics:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for topics", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertType:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for type", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
