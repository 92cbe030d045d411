// Package testutil holds builders and fakes shared by package tests.
package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/inkir/internal/syntax"
)

// Attrs parses an ink! argument list such as "message, payable".
// Empty text yields nil. Panics on malformed input.
func Attrs(text string) syntax.Attrs {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	attrs, err := syntax.ParseArgs(text, syntax.Pos{})
	if err != nil {
		panic(err)
	}
	return attrs
}

// Type parses a type expression. Panics on malformed input.
func Type(text string) *syntax.Type {
	return syntax.MustParseType(text)
}

// Fn builds a function with a body from a signature such as
//
//	new(initial: Balance) -> Self
//	transfer(&mut self, to: AccountId, value: Balance) -> bool
//
// attrs is an ink! argument list.
func Fn(sig, attrs string) *syntax.Fn {
	fn := parseSig(sig)
	fn.Attrs = Attrs(attrs)
	fn.HasBody = true
	return fn
}

// Sig is like Fn but builds a bodiless signature, as found in traits.
func Sig(sig, attrs string) *syntax.Fn {
	fn := Fn(sig, attrs)
	fn.HasBody = false
	return fn
}

func parseSig(sig string) *syntax.Fn {
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		panic(fmt.Sprintf("testutil: signature %q has no parameter list", sig))
	}
	closeAt := matchParen(sig, open)
	fn := &syntax.Fn{Name: strings.TrimSpace(sig[:open])}

	for i, part := range splitParams(sig[open+1 : closeAt]) {
		if i == 0 && strings.HasSuffix(part, "self") {
			fn.Receiver = syntax.ParseReceiver(part)
			continue
		}
		name, typ, ok := strings.Cut(part, ":")
		if !ok {
			panic(fmt.Sprintf("testutil: parameter %q has no type", part))
		}
		fn.Params = append(fn.Params, syntax.Param{Name: strings.TrimSpace(name), Type: Type(typ)})
	}

	if rest := strings.TrimSpace(sig[closeAt+1:]); rest != "" {
		ret, ok := strings.CutPrefix(rest, "->")
		if !ok {
			panic(fmt.Sprintf("testutil: unexpected %q after parameters", rest))
		}
		fn.Result = Type(ret)
	}
	return fn
}

func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	panic(fmt.Sprintf("testutil: unbalanced parentheses in %q", s))
}

func splitParams(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])

	parts := out[:0]
	for _, p := range out {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Field builds a named field with optional ink! arguments, e.g.
// Field("from", "Option<AccountId>", "topic").
func Field(name, typ, attrs string) syntax.Field {
	return syntax.Field{Name: name, Type: Type(typ), Attrs: Attrs(attrs)}
}

// Struct builds a struct with named fields.
func Struct(name, attrs string, fields ...syntax.Field) *syntax.Struct {
	return &syntax.Struct{Name: name, Attrs: Attrs(attrs), Fields: fields, Unit: len(fields) == 0}
}

// Storage builds a #[ink(storage)] struct.
func Storage(name string, fields ...syntax.Field) *syntax.Struct {
	return Struct(name, "storage", fields...)
}

// Event builds a #[ink(event)] struct.
func Event(name string, fields ...syntax.Field) *syntax.Struct {
	return Struct(name, "event", fields...)
}

// Enum builds an enum. Each variant is a name optionally followed by
// positional field types: "Some(u32)" or "None".
func Enum(name, attrs string, variants ...string) *syntax.Enum {
	e := &syntax.Enum{Name: name, Attrs: Attrs(attrs)}
	for _, v := range variants {
		variant := syntax.Variant{Name: v}
		if open := strings.IndexByte(v, '('); open >= 0 {
			variant.Name = v[:open]
			variant.Tuple = true
			for _, t := range splitParams(v[open+1 : matchParen(v, open)]) {
				variant.Fields = append(variant.Fields, syntax.Field{Type: Type(t)})
			}
		}
		e.Variants = append(e.Variants, variant)
	}
	return e
}

// Impl builds an impl block. trait is empty for inherent impls.
func Impl(self, trait, attrs string, items ...syntax.Item) *syntax.Impl {
	impl := &syntax.Impl{SelfType: Type(self), Attrs: Attrs(attrs), Items: items}
	if trait != "" {
		impl.Trait = Type(trait)
	}
	return impl
}

// Trait builds a trait declaration.
func Trait(name, attrs string, items ...syntax.Item) *syntax.Trait {
	return &syntax.Trait{Name: name, Attrs: Attrs(attrs), Items: items}
}

// Mod builds an inline module.
func Mod(name, attrs string, items ...syntax.Item) *syntax.Mod {
	return &syntax.Mod{Name: name, Attrs: Attrs(attrs), Items: items, Inline: true}
}

// Contract builds an inline #[ink::contract] module.
func Contract(name string, items ...syntax.Item) *syntax.Mod {
	return Mod(name, "contract", items...)
}

// Other builds an unmodelled declaration such as a use or const.
func Other(kind, name string) *syntax.Other {
	return &syntax.Other{Kind: kind, Name: name}
}

// At returns the position of column 1 on line of file.
func At(file string, line int) syntax.Pos {
	return syntax.Pos{File: file, Line: line, Column: 1}
}
