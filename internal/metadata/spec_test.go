package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/typereg"
)

func TestConstructorSpecBuilder(t *testing.T) {
	arg := ParamSpec{Label: "initial", Type: TypeSpec{Type: 0, DisplayName: []string{"Balance"}}}
	b := NewConstructorSpec().
		Label("new").
		Selector(selector.FromUint32(0x9bae9d5e)).
		Payable(true).
		Args(arg).
		Docs("Creates the contract.")

	spec, err := b.Done()
	require.NoError(t, err)
	assert.Equal(t, "new", spec.Label)
	assert.True(t, spec.Payable)
	assert.Equal(t, []ParamSpec{arg}, spec.Args)
	assert.Equal(t, []string{"Creates the contract."}, spec.Docs)

	// Later builder changes do not reach a finished spec.
	b.Args(arg).Docs("more")
	assert.Len(t, spec.Args, 1)
	assert.Len(t, spec.Docs, 1)
}

func TestBuildersRequireFields(t *testing.T) {
	tests := []struct {
		name  string
		done  func() error
		field string
	}{
		{"constructor label", func() error {
			_, err := NewConstructorSpec().Selector(selector.FromUint32(1)).Done()
			return err
		}, "label"},
		{"constructor selector", func() error {
			_, err := NewConstructorSpec().Label("new").Done()
			return err
		}, "selector"},
		{"message label", func() error {
			_, err := NewMessageSpec().Selector(selector.FromUint32(1)).Done()
			return err
		}, "label"},
		{"message selector", func() error {
			_, err := NewMessageSpec().Label("get").Mutates(true).Done()
			return err
		}, "selector"},
		{"event label", func() error {
			_, err := NewEventSpec().Anonymous(true).Done()
			return err
		}, "label"},
		{"contract storage", func() error {
			_, err := NewContractSpec().Done()
			return err
		}, "storage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.done()
			var ise *IncompleteSpecError
			require.True(t, errors.As(err, &ise))
			assert.Equal(t, tt.field, ise.Field)
		})
	}
}

func TestZeroSelectorIsValid(t *testing.T) {
	spec, err := NewMessageSpec().Label("zero").Selector(selector.Selector{}).Done()
	require.NoError(t, err)
	assert.Equal(t, "0x00000000", spec.Selector.Hex())
}

func TestMessageSpecBuilderReturns(t *testing.T) {
	spec, err := NewMessageSpec().
		Label("get").
		Selector(selector.FromUint32(2)).
		Returns(TypeSpec{Type: 3, DisplayName: []string{"u8"}}).
		Done()
	require.NoError(t, err)
	require.NotNil(t, spec.ReturnType)
	assert.Equal(t, typereg.ID(3), spec.ReturnType.Type)
	assert.Equal(t, []ParamSpec{}, spec.Args)

	unit, err := NewMessageSpec().Label("flip").Selector(selector.FromUint32(3)).Done()
	require.NoError(t, err)
	assert.Nil(t, unit.ReturnType)
}

func TestEventSpecBuilder(t *testing.T) {
	spec, err := NewEventSpec().
		Label("Transfer").
		Args(
			EventParamSpec{Label: "from", Indexed: true},
			EventParamSpec{Label: "value"},
		).
		Done()
	require.NoError(t, err)
	require.Len(t, spec.Args, 2)
	assert.True(t, spec.Args[0].Indexed)
	assert.Equal(t, []string{}, spec.Args[1].Docs)
}

func TestContractSpecBuilder(t *testing.T) {
	ctor, err := NewConstructorSpec().Label("new").Selector(selector.FromUint32(1)).Done()
	require.NoError(t, err)

	spec, err := NewContractSpec().
		Constructors(ctor).
		Storage(StorageLayout{Name: "S"}).
		Done()
	require.NoError(t, err)
	assert.Len(t, spec.Constructors, 1)
	assert.Equal(t, []MessageSpec{}, spec.Messages)
	assert.Equal(t, []StorageField{}, spec.Storage.Fields)
	assert.Equal(t, []typereg.Entry{}, spec.Types)
}

func TestIncompleteSpecErrorFormat(t *testing.T) {
	assert.Equal(t, "message: missing label", (&IncompleteSpecError{Spec: "message", Field: "label"}).Error())
	assert.Equal(t, "message get: missing selector",
		(&IncompleteSpecError{Spec: "message", Label: "get", Field: "selector"}).Error())
}
