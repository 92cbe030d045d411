package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/config"
)

var (
	rustDir = filepath.Join("..", "rustfront", "testdata", "flipper")
	cueDir  = filepath.Join("..", "cuefront", "testdata", "token")
)

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{rustDir, config.FrontendRust},
		{filepath.Join(rustDir, "lib.rs"), config.FrontendRust},
		{cueDir, config.FrontendCUE},
		{filepath.Join(cueDir, "token.cue"), config.FrontendCUE},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Detect(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectEmptyDir(t *testing.T) {
	_, err := Detect(t.TempDir())
	assert.True(t, errors.Is(err, ErrNoSources))
}

func TestDetectUnknownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := Detect(path)
	assert.ErrorContains(t, err, "unrecognised source file")
}

func TestLoadRust(t *testing.T) {
	set, err := Load(context.Background(), []string{rustDir}, config.FrontendAuto)
	require.NoError(t, err)
	assert.Equal(t, config.FrontendRust, set.Frontend)
	assert.Equal(t, []string{filepath.Join(rustDir, "lib.rs")}, set.Paths)
	require.Len(t, set.Files, 1)
	assert.Len(t, set.Hash, 64)

	c, err := compiler.Build(set.Files, compiler.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "flipper", c.Name)
}

func TestLoadRustDeduplicatesPaths(t *testing.T) {
	file := filepath.Join(rustDir, "lib.rs")
	set, err := Load(context.Background(), []string{rustDir, file}, config.FrontendRust)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, set.Paths)
}

func TestLoadCUE(t *testing.T) {
	set, err := Load(context.Background(), []string{cueDir}, "")
	require.NoError(t, err)
	assert.Equal(t, config.FrontendCUE, set.Frontend)
	assert.Equal(t, []string{
		filepath.Join(cueDir, "ext.cue"),
		filepath.Join(cueDir, "token.cue"),
	}, set.Paths)
	require.Len(t, set.Files, 1)

	c, err := compiler.Build(set.Files, compiler.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "token", c.Name)
}

func TestLoadHashIsStable(t *testing.T) {
	a, err := Load(context.Background(), []string{rustDir}, config.FrontendAuto)
	require.NoError(t, err)
	b, err := Load(context.Background(), []string{rustDir}, config.FrontendRust)
	require.NoError(t, err)
	assert.Equal(t, a.Hash, b.Hash)

	c, err := Load(context.Background(), []string{cueDir}, config.FrontendAuto)
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash, c.Hash)
}

func TestLoadMixedFrontends(t *testing.T) {
	_, err := Load(context.Background(), []string{rustDir, cueDir}, config.FrontendAuto)
	assert.ErrorContains(t, err, "mixed frontends")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), nil, config.FrontendAuto)
	assert.True(t, errors.Is(err, ErrNoSources))

	_, err = Load(context.Background(), []string{"missing"}, config.FrontendAuto)
	assert.Error(t, err)

	_, err = Load(context.Background(), []string{t.TempDir()}, config.FrontendRust)
	assert.True(t, errors.Is(err, ErrNoSources))

	_, err = Load(context.Background(), []string{rustDir}, "solidity")
	assert.ErrorContains(t, err, "unknown frontend")
}
