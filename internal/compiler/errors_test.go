package compiler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
)

func TestCompileErrorFormat(t *testing.T) {
	e := invariantError(InvalidModule, NoStorage, "flipper", syntax.Pos{File: "lib.rs", Line: 3, Column: 1}, "no storage")
	assert.Equal(t, "lib.rs:3:1: [E210] InvalidModule(NoStorage): flipper: no storage", e.Error())

	e = shapeError(InvalidEvent, "", syntax.Pos{}, "bad")
	assert.Equal(t, "[E203] InvalidEvent: bad", e.Error())
}

func TestCompileErrorCodes(t *testing.T) {
	for failure, code := range failureCodes {
		e := &CompileError{Failure: failure}
		assert.Equal(t, code, e.Code(), failure)
	}
	assert.Equal(t, ErrUnknown, (&CompileError{Failure: "Other"}).Code())
}

func TestDiagnosticsCollect(t *testing.T) {
	var d Diagnostics
	d.collect(nil)
	assert.Nil(t, d.err())

	d.collect(shapeError(InvalidItem, "a", syntax.Pos{}, "one"))
	d.collect(Diagnostics{
		shapeError(InvalidItem, "b", syntax.Pos{}, "two"),
		shapeError(InvalidItem, "c", syntax.Pos{}, "three"),
	})
	d.collect(fmt.Errorf("plain"))

	require.Len(t, d, 4)
	assert.Equal(t, "c", d[2].Item)
	assert.Equal(t, "plain", d[3].Message)

	err := d.err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 errors:")

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "a", ce.Item, "errors.As finds the first error")
}

func TestDiagnosticsSingleError(t *testing.T) {
	d := Diagnostics{shapeError(InvalidItem, "x", syntax.Pos{}, "only")}
	assert.Equal(t, d[0].Error(), d.Error())
}

func TestCollisionErrorFormat(t *testing.T) {
	e := &CollisionError{
		Selector: selector.FromUint32(0xdeadbeef),
		First:    Member{Kind: "constructor", Name: "new", Pos: syntax.Pos{File: "lib.rs", Line: 4, Column: 5}},
		Second:   Member{Kind: "message", Name: "get"},
	}
	assert.Equal(t, "[E220] SelectorCollision 0xdeadbeef: constructor new (lib.rs:4:5) and message get", e.Error())
}
