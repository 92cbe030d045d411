package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
)

func validContract() *ir.Contract {
	return &ir.Contract{
		Name: "flipper",
		Storage: ir.Storage{
			Name:   "Flipper",
			Fields: []ir.Field{{Name: "value", Type: ir.PathDesc("bool"), Display: "bool"}},
		},
		Constructors: []ir.Constructor{{Name: "new", Selector: selector.FromUint32(1)}},
		Messages:     []ir.Message{{Name: "get", Selector: selector.FromUint32(2)}},
		Events: []ir.Event{{
			Name:   "Flipped",
			Fields: []ir.EventField{{Field: ir.Field{Name: "value", Type: ir.PathDesc("bool")}, Indexed: true}},
		}},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidContract(t *testing.T) {
	assert.Empty(t, Validate(validContract()))
}

func TestValidateNothingCallable(t *testing.T) {
	c := validContract()
	c.Constructors = nil
	c.Messages = nil

	errs := Validate(c)
	assert.Equal(t, []string{ErrNoConstructors, ErrNoMessages}, codes(errs))
}

func TestValidateDuplicateNames(t *testing.T) {
	c := validContract()
	c.Constructors = append(c.Constructors, ir.Constructor{Name: "new", Pos: syntax.Pos{Line: 12}})
	c.Messages = append(c.Messages, ir.Message{Name: "get"})
	c.Events = append(c.Events, ir.Event{Name: "Flipped"})

	errs := Validate(c)
	require.Len(t, errs, 3)
	for _, e := range errs {
		assert.Equal(t, ErrDuplicateName, e.Code)
	}
	assert.Equal(t, "constructors[1].name", errs[0].Field)
	assert.Equal(t, 12, errs[0].Line)
	assert.Equal(t, "messages[1].name", errs[1].Field)
	assert.Equal(t, "events[1].name", errs[2].Field)
}

func TestValidateTraitMessagesAreScoped(t *testing.T) {
	c := validContract()
	c.Messages = append(c.Messages,
		ir.Message{Name: "get", Trait: "Getter"},
		ir.Message{Name: "get", Trait: "Other"},
	)
	assert.Empty(t, Validate(c))

	c.Messages = append(c.Messages, ir.Message{Name: "get", Trait: "Getter"})
	errs := Validate(c)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "Getter::get")
}

func TestValidateFields(t *testing.T) {
	c := validContract()
	c.Storage.Fields = append(c.Storage.Fields,
		ir.Field{Name: "value", Type: ir.PathDesc("u8")},
		ir.Field{Name: "9lives", Type: ir.PathDesc("u8")},
	)

	errs := Validate(c)
	assert.Equal(t, []string{ErrDuplicateField, ErrInvalidName}, codes(errs))
	assert.Equal(t, "storage.fields[1]", errs[0].Field)
	assert.Equal(t, "storage.fields[2]", errs[1].Field)
}

func TestValidateEventFields(t *testing.T) {
	c := validContract()
	c.Events[0].Fields = append(c.Events[0].Fields, ir.EventField{Field: ir.Field{Name: "value"}})

	errs := Validate(c)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateField, errs[0].Code)
	assert.Equal(t, "events[0].fields[1]", errs[0].Field)
}

func TestValidateTypes(t *testing.T) {
	c := validContract()
	c.Types = []ir.TypeDef{
		{Name: "Error", Enum: true, Variants: []ir.VariantDef{{Name: "A"}, {Name: "A"}}},
		{Name: "Error"},
	}

	errs := Validate(c)
	assert.Equal(t, []string{ErrDuplicateVariant, ErrDuplicateType}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "messages[0].name", Message: "bad", Code: ErrInvalidName}
	assert.Equal(t, "[E103] messages[0].name: bad", e.Error())

	e.Line = 7
	assert.Equal(t, "[E103] line 7: messages[0].name: bad", e.Error())
}
