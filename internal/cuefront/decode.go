// Package cuefront reads contract declarations written as CUE data.
//
// The layout mirrors the Rust item structure:
//
//	contract: flipper: {
//		storage: {name: "Flipper", fields: {value: "bool"}}
//		events: Flipped: fields: new_value: {type: "bool", topic: true}
//		constructors: new: params: {init_value: "bool"}
//		messages: {
//			flip: mutates: true
//			get: returns:  "bool"
//		}
//	}
//	trait: Erc20: {namespace: "erc20", messages: {...}}
//	extension: Rand: {id: 7, functions: fetch: {id: 1, ...}}
//
// Declarations are converted to syntax items carrying the equivalent ink!
// attributes, so the compiler applies the same rules to both frontends.
package cuefront

import (
	"errors"
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/inkir/internal/syntax"
)

// Error is a declaration error with its CUE position.
type Error struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, path string) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Path: path, Message: err.Error()}
	}
	first := errs[0]
	e := &Error{Path: path, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}

// Decode converts a CUE value holding contract, trait and extension
// declarations. file names the result; item positions come from CUE.
// Every malformed declaration is reported.
func Decode(v cue.Value, file string) (*syntax.File, error) {
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err, file)
	}
	d := &decoder{}
	d.known(v, "", "contract", "trait", "extension")

	out := &syntax.File{Path: file}
	d.each(v, "trait", func(name string, tv cue.Value) {
		out.Items = append(out.Items, d.trait(name, tv))
	})
	d.each(v, "extension", func(name string, ev cue.Value) {
		out.Items = append(out.Items, d.extension(name, ev))
	})
	d.each(v, "contract", func(name string, cv cue.Value) {
		out.Items = append(out.Items, d.contract(name, cv))
	})

	if len(d.errs) > 0 {
		return nil, errors.Join(d.errs...)
	}
	return out, nil
}

type decoder struct {
	errs []error
}

func (d *decoder) fail(v cue.Value, format string, args ...any) {
	d.errs = append(d.errs, &Error{Path: v.Path().String(), Message: fmt.Sprintf(format, args...), Pos: v.Pos()})
}

// known reports fields of v outside the allowed set. where is appended to
// each message to name the enclosing declaration.
func (d *decoder) known(v cue.Value, where string, allowed ...string) {
	if v.IncompleteKind() != cue.StructKind {
		return
	}
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	iter, err := v.Fields()
	if err != nil {
		d.errs = append(d.errs, formatCUEError(err, v.Path().String()))
		return
	}
	for iter.Next() {
		if !set[iter.Label()] {
			d.fail(iter.Value(), "unknown field %q%s", iter.Label(), where)
		}
	}
}

// each calls fn for every field of the struct at label, in declaration order.
func (d *decoder) each(v cue.Value, label string, fn func(name string, v cue.Value)) {
	sv := v.LookupPath(cue.MakePath(cue.Str(label)))
	if !sv.Exists() {
		return
	}
	if sv.IncompleteKind() != cue.StructKind {
		d.fail(sv, "must be a struct")
		return
	}
	iter, err := sv.Fields()
	if err != nil {
		d.errs = append(d.errs, formatCUEError(err, sv.Path().String()))
		return
	}
	for iter.Next() {
		fn(iter.Label(), iter.Value())
	}
}

func lookup(v cue.Value, label string) (cue.Value, bool) {
	f := v.LookupPath(cue.MakePath(cue.Str(label)))
	return f, f.Exists()
}

func (d *decoder) str(v cue.Value, label string) string {
	f, ok := lookup(v, label)
	if !ok {
		return ""
	}
	s, err := f.String()
	if err != nil {
		d.errs = append(d.errs, formatCUEError(err, f.Path().String()))
	}
	return s
}

func (d *decoder) flag(v cue.Value, label string) bool {
	f, ok := lookup(v, label)
	if !ok {
		return false
	}
	b, err := f.Bool()
	if err != nil {
		d.errs = append(d.errs, formatCUEError(err, f.Path().String()))
	}
	return b
}

func (d *decoder) docs(v cue.Value) []string {
	f, ok := lookup(v, "docs")
	if !ok {
		return nil
	}
	if f.Kind() == cue.StringKind {
		s, _ := f.String()
		return []string{s}
	}
	var out []string
	if err := f.Decode(&out); err != nil {
		d.errs = append(d.errs, formatCUEError(err, f.Path().String()))
	}
	return out
}

// number renders an integer or string attribute value as written, e.g. a
// selector given as 0xCAFEBABE, "0xCAFEBABE" or 1234.
func (d *decoder) number(f cue.Value) string {
	switch f.Kind() {
	case cue.IntKind:
		n, err := f.Int64()
		if err != nil {
			d.errs = append(d.errs, formatCUEError(err, f.Path().String()))
		}
		return strconv.FormatInt(n, 10)
	case cue.StringKind:
		s, _ := f.String()
		return s
	default:
		d.fail(f, "must be an integer or string")
		return ""
	}
}

func (d *decoder) typ(v cue.Value) *syntax.Type {
	s, err := v.String()
	if err != nil {
		d.errs = append(d.errs, formatCUEError(err, v.Path().String()))
		return nil
	}
	t, err := syntax.ParseType(s)
	if err != nil {
		d.fail(v, "%v", err)
		return nil
	}
	t.Pos = pos(v.Pos())
	return t
}

func pos(p token.Pos) syntax.Pos {
	if !p.IsValid() {
		return syntax.Pos{}
	}
	return syntax.Pos{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

func attr(v cue.Value, key string) syntax.Attr {
	return syntax.Attr{Key: key, Pos: pos(v.Pos())}
}

func valueAttr(v cue.Value, key, value string) syntax.Attr {
	return syntax.Attr{Key: key, Value: value, HasValue: true, Pos: pos(v.Pos())}
}
