package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/syntax"
	"github.com/roach88/inkir/internal/testutil"
)

func TestConvertStorage(t *testing.T) {
	raw := testutil.Storage("Erc20",
		testutil.Field("total_supply", "Balance", ""),
		testutil.Field("balances", "ink::storage::Mapping<AccountId, Balance>", ""),
		testutil.Field("owner", "Option<AccountId>", ""),
	)
	raw.Docs = []string{"Token state."}

	s, err := ConvertStorage(raw)
	require.NoError(t, err)
	assert.Equal(t, "Erc20", s.Name)
	require.Len(t, s.Fields, 3)
	assert.Equal(t, "ink::storage::Mapping<AccountId, Balance>", s.Fields[1].Display)
	assert.Equal(t, "Mapping<AccountId,Balance>", s.Fields[1].Type.Canonical())
	assert.Equal(t, []string{"Token state."}, s.Docs)
}

func TestConvertStorageErrors(t *testing.T) {
	tuple := testutil.Storage("Tuple", syntax.Field{Type: testutil.Type("u8")})
	tuple.Tuple = true
	generic := testutil.Storage("Generic", testutil.Field("v", "T", ""))
	generic.Generics = []string{"T"}

	tests := []struct {
		name string
		raw  *syntax.Struct
		kind Kind
	}{
		{"missing marker", testutil.Struct("Plain", "", testutil.Field("v", "u8", "")), AnnotationError},
		{"extra key", testutil.Struct("S", "storage, payable", testutil.Field("v", "u8", "")), AnnotationError},
		{"unit", testutil.Storage("Unit"), SyntaxShapeError},
		{"tuple", tuple, SyntaxShapeError},
		{"generic", generic, SyntaxShapeError},
		{"field annotation", testutil.Storage("S", testutil.Field("v", "u8", "topic")), AnnotationError},
		{"reference field", testutil.Storage("S", testutil.Field("v", "&u8", "")), SyntaxShapeError},
		{"unsized field", testutil.Storage("S", testutil.Field("v", "[u8]", "")), SyntaxShapeError},
		{"trait object field", testutil.Storage("S", testutil.Field("v", "Box<dyn Fn()>", "")), SyntaxShapeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertStorage(tt.raw)
			ce := requireCompileError(t, err)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, InvalidStorage, ce.Failure)
			assert.Equal(t, ErrInvalidStorage, ce.Code())
		})
	}
}

func TestConvertEvent(t *testing.T) {
	raw := testutil.Event("Transfer",
		testutil.Field("from", "Option<AccountId>", "topic"),
		testutil.Field("to", "Option<AccountId>", "topic"),
		testutil.Field("value", "Balance", ""),
	)
	ev, err := ConvertEvent(raw, DefaultMaxEventTopics)
	require.NoError(t, err)
	assert.Equal(t, "Transfer", ev.Name)
	assert.Equal(t, 2, ev.Topics())
	assert.False(t, ev.Fields[2].Indexed)
	assert.False(t, ev.Anonymous)
}

func TestConvertEventAnonymous(t *testing.T) {
	ev, err := ConvertEvent(testutil.Struct("Ping", "event, anonymous"), DefaultMaxEventTopics)
	require.NoError(t, err)
	assert.True(t, ev.Anonymous)
	assert.Empty(t, ev.Fields)
}

func TestConvertEventTopicLimit(t *testing.T) {
	fields := make([]syntax.Field, 0, 5)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		fields = append(fields, testutil.Field(name, "u8", "topic"))
	}
	raw := testutil.Event("Noisy", fields...)

	_, err := ConvertEvent(raw, DefaultMaxEventTopics)
	ce := requireCompileError(t, err)
	assert.Equal(t, InvariantViolation, ce.Kind)
	assert.Equal(t, TooManyTopics, ce.Reason)
	assert.Contains(t, ce.Message, "5 indexed fields, limit is 4")

	_, err = ConvertEvent(raw, 5)
	assert.NoError(t, err, "the limit is configurable")
}

func TestConvertEventErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  *syntax.Struct
		kind Kind
	}{
		{"missing marker", testutil.Struct("E", "", testutil.Field("v", "u8", "")), AnnotationError},
		{"unknown field key", testutil.Event("E", testutil.Field("v", "u8", "indexed")), AnnotationError},
		{"bad field type", testutil.Event("E", testutil.Field("v", "impl Copy", "")), SyntaxShapeError},
		{"bare Self", testutil.Event("E", testutil.Field("v", "Self", "")), SyntaxShapeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertEvent(tt.raw, DefaultMaxEventTopics)
			ce := requireCompileError(t, err)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, InvalidEvent, ce.Failure)
		})
	}
}

func TestConvertTest(t *testing.T) {
	tt, err := ConvertTest(testutil.Fn("e2e_works()", "e2e_test"))
	require.NoError(t, err)
	assert.True(t, tt.E2E)

	_, err = ConvertTest(testutil.Fn("bad(&self)", "test"))
	ce := requireCompileError(t, err)
	assert.Equal(t, InvalidTest, ce.Failure)

	_, err = ConvertTest(testutil.Fn("bad(x: u8)", "test"))
	ce = requireCompileError(t, err)
	assert.Equal(t, InvalidTest, ce.Failure)
	assert.Contains(t, ce.Message, "no parameters")
}

func TestConvertTypeDef(t *testing.T) {
	td, err := ConvertTypeDef(testutil.Struct("Point", "", testutil.Field("x", "i32", ""), testutil.Field("y", "i32", "")))
	require.NoError(t, err)
	assert.False(t, td.Enum)
	assert.Len(t, td.Fields, 2)

	td, err = ConvertTypeDef(testutil.Enum("Error", "", "NotOwner", "Insufficient(Balance, Balance)"))
	require.NoError(t, err)
	assert.True(t, td.Enum)
	require.Len(t, td.Variants, 2)
	assert.Empty(t, td.Variants[0].Fields)
	assert.Len(t, td.Variants[1].Fields, 2)

	_, err = ConvertTypeDef(testutil.Fn("f()", ""))
	requireCompileError(t, err)

	_, err = ConvertTypeDef(testutil.Struct("Bad", "", testutil.Field("r", "&str", "")))
	ce := requireCompileError(t, err)
	assert.Equal(t, InvalidItem, ce.Failure)
}

func TestDescOfNil(t *testing.T) {
	_, e := descOf(nil, InvalidStorage, "S", syntax.Pos{})
	require.NotNil(t, e)
	assert.Equal(t, "missing type", e.Message)

	d, e := descOf(testutil.Type("u8"), InvalidStorage, "S", syntax.Pos{})
	require.Nil(t, e)
	assert.Equal(t, ir.KindPath, d.Kind)
}
