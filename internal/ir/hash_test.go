package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/selector"
)

func TestContractHashDeterminism(t *testing.T) {
	h1, err := ContractHash(sampleContract())
	require.NoError(t, err)
	h2, err := ContractHash(sampleContract())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "hex-encoded sha256")
}

func TestContractHashChangesWithSelector(t *testing.T) {
	a := sampleContract()
	b := sampleContract()
	b.Messages[0].Selector = selector.FromUint32(1)

	assert.NotEqual(t, MustContractHash(a), MustContractHash(b))
}

func TestContractHashIgnoresPositions(t *testing.T) {
	a := sampleContract()
	b := sampleContract()
	b.Storage.Pos.Line = 99

	assert.Equal(t, MustContractHash(a), MustContractHash(b))
}

func TestDomainSeparationPreventsCrossTypeCollision(t *testing.T) {
	c := sampleContract()
	contractHash, err := ContractHash(c)
	require.NoError(t, err)
	metadataHash, err := MetadataHash(c)
	require.NoError(t, err)

	assert.NotEqual(t, contractHash, metadataHash)
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	data := []byte("payload")
	h := sha256.Sum256(append([]byte("dom\x00"), data...))
	assert.Equal(t, hex.EncodeToString(h[:]), hashWithDomain("dom", data))

	// "ab"+"c" must not collide with "a"+"bc"
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestSourceHashIsLengthPrefixed(t *testing.T) {
	assert.Equal(t, SourceHash([]byte("a"), []byte("b")), SourceHash([]byte("a"), []byte("b")))
	assert.NotEqual(t, SourceHash([]byte("ab"), []byte("")), SourceHash([]byte("a"), []byte("b")))
	assert.NotEqual(t, SourceHash([]byte("a"), []byte("b")), SourceHash([]byte("b"), []byte("a")))
}

func TestMetadataHashErrorHandling(t *testing.T) {
	_, err := MetadataHash(map[string]any{"f": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MetadataHash")
}

func TestMustContractHash(t *testing.T) {
	assert.NotPanics(t, func() { MustContractHash(sampleContract()) })
}

func TestDomainConstants(t *testing.T) {
	assert.Equal(t, "inkir/contract/v1", DomainContract)
	assert.Equal(t, "inkir/metadata/v1", DomainMetadata)
	assert.Equal(t, "inkir/source/v1", DomainSource)
}
