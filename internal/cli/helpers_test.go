package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// contractDir returns a contract fixture shared with the harness tests.
func contractDir(name string) string {
	return filepath.Join("..", "harness", "testdata", "contracts", name)
}

// execute runs cmd with args and returns stdout and the command error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// noConfig points a build command at a config file that does not exist,
// so tests never pick up an inkir.yaml from the working directory.
func noConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "inkir.yaml")
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, GetExitCode(err), "error: %v", err)
}
