package metadata

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/ir"
)

var testSourceHash = strings.Repeat("0f", 32)

func bankDocument(t *testing.T) *Document {
	t.Helper()
	spec, err := Build(bankContract(t), Options{})
	require.NoError(t, err)
	return NewDocument(spec, ContractInfo{
		Name:    "bank",
		Version: "0.1.0",
		Authors: []string{"Jane Doe <jane@example.com>"},
	}, testSourceHash)
}

func TestDocumentGolden(t *testing.T) {
	data, err := bankDocument(t).Marshal()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "bank", data)
}

func TestDocumentMarshalIsByteIdentical(t *testing.T) {
	a, err := bankDocument(t).Marshal()
	require.NoError(t, err)
	b, err := bankDocument(t).Marshal()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDocumentHash(t *testing.T) {
	doc := bankDocument(t)

	h, err := doc.Hash()
	require.NoError(t, err)
	assert.Equal(t, "4cf51c53d84165ab58bf08779cadb3061ca178cd632f9752b8e609209341729c", h)

	want, err := ir.MetadataHash(doc.Spec)
	require.NoError(t, err)
	assert.Equal(t, want, h)

	doc.Contract.Version = "0.2.0"
	doc.Source.Hash = "other"
	again, err := doc.Hash()
	require.NoError(t, err)
	assert.Equal(t, h, again, "only the spec is hashed")
}

func TestDocumentWithoutSpec(t *testing.T) {
	doc := NewDocument(nil, ContractInfo{Name: "empty"}, "")
	_, err := doc.Marshal()
	assert.Error(t, err)
	_, err = doc.Hash()
	assert.Error(t, err)
}

func TestNewDocumentVersions(t *testing.T) {
	doc := bankDocument(t)
	assert.Equal(t, ir.MetadataVersion, doc.Version)
	assert.Equal(t, ir.IRVersion, doc.Source.IRVersion)
	assert.Equal(t, "inkir "+ir.CompilerVersion, doc.Source.Compiler)
}
