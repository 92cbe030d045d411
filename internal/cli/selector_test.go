package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no params", []string{"flip"}, "0x0c970199  flip()"},
		{"one param", []string{"new", "bool"}, "0xef7d05e7  new(bool)"},
		{"keccak", []string{"new", "bool", "--hash", "keccak256"}, "0x58b3d79c  new(bool)"},
		{"keccak get", []string{"get", "--hash", "keccak256"}, "0x6d4ce63c  get()"},
		{"extension", []string{"2", "--extension", "1101"}, "0x044d0002"},
		{"extension hex function", []string{"0x10", "--extension", "1"}, "0x00010010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewSelectorCommand(&RootOptions{Format: "text"}), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestSelectorNamespace(t *testing.T) {
	out, err := execute(t, NewSelectorCommand(&RootOptions{Format: "text"}), "flip", "--namespace", "Flip")
	require.NoError(t, err)
	assert.Contains(t, out, "Flip::flip()")
}

func TestSelectorJSON(t *testing.T) {
	out, err := execute(t, NewSelectorCommand(&RootOptions{Format: "json"}), "inc")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   SelectorResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "inc()", resp.Data.Signature)
	assert.Equal(t, "blake2b", resp.Data.Hash)
	assert.Equal(t, "0xcbf8f235", resp.Data.Selector.Hex())
	assert.Equal(t, uint32(0xcbf8f235), resp.Data.Value)
}

func TestSelectorErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad hash", []string{"flip", "--hash", "md5"}, "unknown selector hash"},
		{"extension too large", []string{"1", "--extension", "70000"}, "does not fit in 16 bits"},
		{"function id not a number", []string{"x", "--extension", "1"}, "must be a 16-bit integer"},
		{"extension with params", []string{"1", "2", "--extension", "1"}, "exactly one function id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewSelectorCommand(&RootOptions{Format: "text"}), tt.args...)
			requireExitCode(t, err, ExitCommandError)
			assert.Contains(t, out, tt.want)
		})
	}
}
