package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/syntax"
	"github.com/roach88/inkir/internal/testutil"
)

// createTestStore opens a fresh store with sequential build ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("b")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDocument builds the metadata document of a one-message
// contract. The message name varies the spec.
func createTestDocument(t *testing.T, contract, message, version string) (*metadata.Document, string) {
	t.Helper()
	files := []*syntax.File{{Path: "lib.rs", Items: []syntax.Item{
		testutil.Contract(contract,
			testutil.Storage("State", testutil.Field("value", "bool", "")),
			testutil.Impl("State", "", "",
				testutil.Fn("new() -> Self", "constructor"),
				testutil.Fn(message+"(&self) -> bool", "message"),
			),
		),
	}}}
	c, err := compiler.Build(files, compiler.DefaultOptions())
	require.NoError(t, err)
	spec, err := metadata.Build(c, metadata.Options{})
	require.NoError(t, err)

	doc := metadata.NewDocument(spec, metadata.ContractInfo{Name: contract, Version: version}, ir.SourceHash([]byte(contract+message)))
	return doc, ir.MustContractHash(c)
}
