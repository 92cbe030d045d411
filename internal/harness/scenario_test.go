package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/selector"
)

// writeScenario writes content next to a one-file CUE source and returns
// the scenario path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.cue"), []byte("contract: {}\n"), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
sources:
  - c.cue
options:
  selector_hash: keccak256
  max_event_topics: 2
  type_aliases: {Balance: u64}
expect:
  status: ok
assertions:
  - type: count
    of: messages
    count: 1
golden: true
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "c.cue")}, scenario.Sources)
	assert.True(t, scenario.Golden)
	require.Len(t, scenario.Assertions, 1)

	opts := scenario.CompilerOptions()
	assert.Equal(t, selector.Keccak256, opts.Hash)
	assert.Equal(t, 2, opts.MaxEventTopics)
	assert.Equal(t, map[string]string{"Balance": "u64"}, scenario.MetadataOptions().Aliases)
}

func TestScenarioDefaultOptions(t *testing.T) {
	s := &Scenario{}
	assert.Equal(t, compiler.DefaultOptions(), s.CompilerOptions())
	assert.Nil(t, s.MetadataOptions().Aliases)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Unknown key"
sources: [c.cue]
expect: {status: ok}
assertion: []
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing name", `
description: d
sources: [c.cue]
expect: {status: ok}`, "name is required"},
		{"missing description", `
name: n
sources: [c.cue]
expect: {status: ok}`, "description is required"},
		{"no sources", `
name: n
description: d
expect: {status: ok}`, "sources list is required"},
		{"missing source", `
name: n
description: d
sources: [gone.cue]
expect: {status: ok}`, "source not found"},
		{"bad frontend", `
name: n
description: d
sources: [c.cue]
frontend: solidity
expect: {status: ok}`, "unknown frontend"},
		{"bad hash", `
name: n
description: d
sources: [c.cue]
options: {selector_hash: md5}
expect: {status: ok}`, "unknown selector hash"},
		{"missing status", `
name: n
description: d
sources: [c.cue]`, "status is required"},
		{"unknown status", `
name: n
description: d
sources: [c.cue]
expect: {status: maybe}`, "unknown status"},
		{"error without kind", `
name: n
description: d
sources: [c.cue]
expect: {status: error}`, "kind is required"},
		{"error fields on ok", `
name: n
description: d
sources: [c.cue]
expect: {status: ok, kind: SelectorCollision}`, "require status error"},
		{"assertions on error", `
name: n
description: d
sources: [c.cue]
expect: {status: error, kind: ParseError}
assertions:
  - {type: count, of: messages, count: 1}`, "assertions require status ok"},
		{"golden on error", `
name: n
description: d
sources: [c.cue]
expect: {status: error, kind: ParseError}
golden: true`, "golden requires status ok"},
		{"unknown assertion", `
name: n
description: d
sources: [c.cue]
expect: {status: ok}
assertions:
  - {type: trace_contains}`, "unknown assertion type"},
		{"selector without item", `
name: n
description: d
sources: [c.cue]
expect: {status: ok}
assertions:
  - {type: selector, selector: "0x01"}`, "item is required"},
		{"bad selector", `
name: n
description: d
sources: [c.cue]
expect: {status: ok}
assertions:
  - {type: selector, item: get, selector: "0xZZ"}`, "invalid selector"},
		{"unknown section", `
name: n
description: d
sources: [c.cue]
expect: {status: ok}
assertions:
  - {type: count, of: traits, count: 1}`, "unknown section"},
		{"unknown flag", `
name: n
description: d
sources: [c.cue]
expect: {status: ok}
assertions:
  - {type: flag, item: get, flag: pure}`, "unknown flag"},
		{"type without path", `
name: n
description: d
sources: [c.cue]
expect: {status: ok}
assertions:
  - {type: type}`, "path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"bigevent", "broken", "clash", "counter", "flipper", "flipper_keccak", "nostorage", "topics"}, names)
}

func TestLoadScenarios_MissingDir(t *testing.T) {
	_, err := LoadScenarios(filepath.Join("testdata", "missing"))
	assert.Error(t, err)
}
