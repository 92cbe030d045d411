package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
	"github.com/roach88/inkir/internal/testutil"
)

func randExtension() *syntax.Trait {
	return testutil.Trait("FetchRandom", "chain_extension, extension = 7",
		testutil.Other("type", "ErrorCode"),
		testutil.Sig("fetch_random(subject: [u8; 32]) -> [u8; 32]", "function = 1"),
		testutil.Sig("fetch_raw(subject: [u8; 32]) -> Vec<u8>", "function = 2, handle_status = false"),
		testutil.Sig("legacy()", "extension = 0x0003"),
	)
}

func TestConvertChainExtension(t *testing.T) {
	ext, err := ConvertChainExtension(randExtension())
	require.NoError(t, err)
	assert.Equal(t, "FetchRandom", ext.Name)
	assert.Equal(t, uint16(7), ext.ID)
	require.Len(t, ext.Functions, 3)

	fetch := ext.Functions[0]
	assert.Equal(t, uint16(1), fetch.ID)
	assert.True(t, fetch.HandleStatus)
	assert.Equal(t, selector.FromUint32(0x00070001), fetch.Selector)
	assert.Equal(t, "[u8;32]", fetch.Return.Canonical())

	assert.False(t, ext.Functions[1].HandleStatus)
	assert.Equal(t, uint16(3), ext.Functions[2].ID)
	assert.Nil(t, ext.Functions[2].Return)
}

func TestConvertChainExtensionRequiresID(t *testing.T) {
	_, err := ConvertChainExtension(testutil.Trait("Ext", "chain_extension", testutil.Sig("f()", "function = 9")))
	ce := requireCompileError(t, err)
	assert.Equal(t, AnnotationError, ce.Kind)
	assert.Equal(t, InvalidChainExtension, ce.Failure)
	assert.Contains(t, ce.Message, "missing extension id")

	ext, err := ConvertChainExtension(testutil.Trait("Ext", "chain_extension, extension = 0", testutil.Sig("f()", "function = 9")))
	require.NoError(t, err, "an explicit zero is allowed")
	assert.Equal(t, uint16(0), ext.ID)
	assert.Equal(t, selector.FromUint32(9), ext.Functions[0].Selector)
}

func TestConvertChainExtensionDuplicateID(t *testing.T) {
	raw := testutil.Trait("Ext", "chain_extension, extension = 1",
		testutil.Sig("a()", "function = 1"),
		testutil.Sig("b()", "function = 1"),
	)
	_, err := ConvertChainExtension(raw)
	ce := requireCompileError(t, err)
	assert.Equal(t, InvariantViolation, ce.Kind)
	assert.Equal(t, DuplicateFunctionID, ce.Reason)
	assert.Contains(t, ce.Message, "b")
	assert.Contains(t, ce.Message, "a")
}

func TestConvertChainExtensionErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  *syntax.Trait
		kind Kind
	}{
		{"missing function id", testutil.Trait("Ext", "chain_extension, extension = 1", testutil.Sig("a()", "")), AnnotationError},
		{"both id keys", testutil.Trait("Ext", "chain_extension, extension = 1", testutil.Sig("a()", "function = 1, extension = 1")), AnnotationError},
		{"id out of range", testutil.Trait("Ext", "chain_extension, extension = 1", testutil.Sig("a()", "function = 70000")), AnnotationError},
		{"receiver", testutil.Trait("Ext", "chain_extension, extension = 1", testutil.Sig("a(&self)", "function = 1")), SyntaxShapeError},
		{"body", testutil.Trait("Ext", "chain_extension, extension = 1", testutil.Fn("a()", "function = 1")), SyntaxShapeError},
		{"other assoc type", testutil.Trait("Ext", "chain_extension, extension = 1", testutil.Other("type", "Output")), SyntaxShapeError},
		{"const", testutil.Trait("Ext", "chain_extension, extension = 1", testutil.Other("const", "ID")), SyntaxShapeError},
		{"bad extension id", testutil.Trait("Ext", "chain_extension, extension = x"), AnnotationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertChainExtension(tt.ext)
			ce := requireCompileError(t, err)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, InvalidChainExtension, ce.Failure)
			assert.Equal(t, ErrInvalidChainExtension, ce.Code())
		})
	}
}
