package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/ir"
)

func TestCompileCounter(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		contractDir("counter"), "--config", noConfig(t))
	require.NoError(t, err)

	assert.Contains(t, out, "\u2713 Compiled contract counter: 1 constructor(s), 2 message(s), 0 event(s)")
	assert.Contains(t, out, "Storage: Counter (1 field(s))")
	assert.Contains(t, out, "0x071d2a14 new")
	assert.Contains(t, out, "0x1e930209 get")
	assert.Contains(t, out, "0xcbf8f235 inc")
	assert.Contains(t, out, "Contract hash: ")
}

func TestCompileRustJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
		contractDir("flipper"), "--config", noConfig(t))
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data.Contract)
	assert.Equal(t, "flipper", resp.Data.Contract.Name)
	assert.Len(t, resp.Data.Contract.Constructors, 2)
	assert.Len(t, resp.Data.Contract.Messages, 2)
	assert.Len(t, resp.Data.ContractHash, 64)
	assert.Equal(t, ir.IRVersion, resp.Data.IRVersion)
}

func TestCompileKeccakFlag(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		contractDir("flipper"), "--config", noConfig(t), "--hash", "keccak256")
	require.NoError(t, err)
	assert.Contains(t, out, "0xcde4efa9 flip")
	assert.Contains(t, out, "0x6d4ce63c get")
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "counter.ir.json")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		contractDir("counter"), "--config", noConfig(t), "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote IR to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.NotNil(t, result.Contract)
	assert.Equal(t, "counter", result.Contract.Name)
	assert.NotEmpty(t, result.SourceHash)
}

func TestCompileHashIsStable(t *testing.T) {
	run := func() CompilationResult {
		out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
			contractDir("counter"), "--config", noConfig(t))
		require.NoError(t, err)
		var resp struct {
			Data CompilationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return resp.Data
	}
	assert.Equal(t, run().ContractHash, run().ContractHash)
}

func TestCompileSelectorCollision(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		contractDir("clash"), "--config", noConfig(t))
	requireExitCode(t, err, ExitCommandError)

	assert.Contains(t, out, "\u2717 Build failed")
	assert.Contains(t, out, "E220")
	assert.Contains(t, out, "0x12345678")
}

func TestCompileNoStorageJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
		contractDir("nostorage"), "--config", noConfig(t))
	requireExitCode(t, err, ExitCommandError)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E210", resp.Error.Code)
}

func TestCompileParseError(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		contractDir("broken"), "--config", noConfig(t))
	requireExitCode(t, err, ExitCommandError)
	assert.Contains(t, out, "Error [E004]")
}

func TestCompileMissingPath(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		"/nonexistent/contract", "--config", noConfig(t))
	requireExitCode(t, err, ExitCommandError)
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "source not found")
}

func TestCompileEmptyDir(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		t.TempDir(), "--config", noConfig(t))
	requireExitCode(t, err, ExitCommandError)
	assert.Contains(t, out, "Error [E002]")
}

func TestCompileBadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "inkir.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("selector_hash: md5\n"), 0o644))

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		contractDir("counter"), "--config", cfg)
	requireExitCode(t, err, ExitCommandError)
	assert.Contains(t, out, "Error [E003]")
}

func TestCompileSourcesFromConfig(t *testing.T) {
	abs, err := filepath.Abs(contractDir("counter"))
	require.NoError(t, err)
	cfg := filepath.Join(t.TempDir(), "inkir.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("sources: ["+abs+"]\n"), 0o644))

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled contract counter")
}
