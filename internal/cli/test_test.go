package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")
	harnessGolden    = filepath.Join("..", "harness", "testdata", "golden")
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	requireExitCode(t, err, ExitCommandError)
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandAllPass(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}),
		harnessScenarios, "--golden-dir", harnessGolden)
	require.NoError(t, err)

	assert.Contains(t, out, "\u2713 counter")
	assert.Contains(t, out, "\u2713 clash")
	assert.Contains(t, out, "Test Summary: 8 passed, 0 failed, 8 total")
	assert.Contains(t, out, "\u2713 All scenarios passed")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}),
		harnessScenarios, "--golden-dir", harnessGolden, "--filter", "flipper*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	assert.Equal(t, "flipper", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "flipper_keccak", resp.Data.Scenarios[1].Name)
}

func TestTestCommandMissingGolden(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}),
		harnessScenarios, "--golden-dir", t.TempDir(), "--filter", "counter")
	requireExitCode(t, err, ExitFailure)
	assert.Contains(t, out, "\u2717 counter")
	assert.Contains(t, out, "golden file missing")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	goldenDir := filepath.Join(t.TempDir(), "golden")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}),
		harnessScenarios, "--golden-dir", goldenDir, "--filter", "counter", "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "\u2713 counter (golden updated)")

	written, err := os.ReadFile(filepath.Join(goldenDir, "counter.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(harnessGolden, "counter.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	// The regenerated file now passes.
	_, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}),
		harnessScenarios, "--golden-dir", goldenDir, "--filter", "counter")
	require.NoError(t, err)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	goldenDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "counter.golden"), []byte(`{"stale":true}`), 0o644))

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}),
		harnessScenarios, "--golden-dir", goldenDir, "--filter", "counter")
	requireExitCode(t, err, ExitFailure)
	assert.Contains(t, out, "Golden file mismatch")
}

func TestTestCommandFailingScenario(t *testing.T) {
	counter, err := filepath.Abs(contractDir("counter"))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(`
name: wrong
description: "Counter has two messages, not three"
sources: [`+counter+`]
expect: {status: ok}
assertions:
  - {type: count, of: messages, count: 3}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invalid.yaml"), []byte("name: invalid\n"), 0o644))

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	requireExitCode(t, err, ExitFailure)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 2)

	// Walk order is lexical: invalid.yaml, then wrong.yaml.
	assert.Equal(t, "invalid.yaml", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
	assert.Equal(t, "wrong", resp.Data.Scenarios[1].Name)
	assert.Contains(t, resp.Data.Scenarios[1].Errors[0], "2 messages")
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles(harnessScenarios, "")
	require.NoError(t, err)
	assert.Len(t, files, 8)

	files, err = findScenarioFiles(harnessScenarios, "c*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(harnessScenarios, "[")
	assert.Error(t, err)
}
