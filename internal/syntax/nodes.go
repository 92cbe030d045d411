package syntax

import (
	"fmt"
	"strings"
)

// Pos is a source position. Line and Column are 1-based; the zero Pos is unknown.
type Pos struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// IsValid reports whether the position carries line information.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		if p.File != "" {
			return p.File
		}
		return "-"
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// File is one parsed source file.
type File struct {
	Path  string
	Items []Item
}

// Item is a declaration. The set of implementations is closed:
// *Mod, *Struct, *Enum, *Impl, *Trait, *Fn and *Other. Consumers switch
// over the concrete types; there is no other extension point.
type Item interface {
	Position() Pos
	Attributes() Attrs
	isItem()
}

// Mod is a module declaration. Inline is false for `mod foo;`.
type Mod struct {
	Name   string
	Attrs  Attrs
	Docs   []string
	Items  []Item
	Inline bool
	Pos    Pos
}

// Struct is a struct declaration.
type Struct struct {
	Name     string
	Attrs    Attrs
	Docs     []string
	Generics []string
	Fields   []Field
	Tuple    bool // positional fields: struct S(u32);
	Unit     bool // struct S;
	Pos      Pos
}

// Field is a struct or enum-variant field. Name is empty for positional fields.
type Field struct {
	Name  string
	Type  *Type
	Attrs Attrs
	Docs  []string
	Pos   Pos
}

// Enum is an enum declaration.
type Enum struct {
	Name     string
	Attrs    Attrs
	Docs     []string
	Generics []string
	Variants []Variant
	Pos      Pos
}

// Variant is one enum variant.
type Variant struct {
	Name   string
	Fields []Field
	Tuple  bool
	Pos    Pos
}

// Impl is an impl block. Trait is nil for inherent impls.
// Items holds *Fn members and *Other for associated consts, types and macros.
type Impl struct {
	SelfType *Type
	Trait    *Type
	Attrs    Attrs
	Docs     []string
	Generics []string
	Items    []Item
	Pos      Pos
}

// Trait is a trait declaration. Items holds *Fn members (with or without a
// default body) and *Other for associated types and consts.
type Trait struct {
	Name        string
	Attrs       Attrs
	Docs        []string
	Generics    []string
	Supertraits []string
	Items       []Item
	Pos         Pos
}

// Fn is a function or method declaration.
type Fn struct {
	Name      string
	Attrs     Attrs
	Docs      []string
	Generics  []string
	Modifiers []string // async, const, unsafe, extern
	Receiver  Receiver
	Params    []Param
	Result    *Type // nil when the function returns ()
	HasBody   bool
	Pos       Pos
}

// Param is a typed, non-receiver parameter.
type Param struct {
	Name string
	Type *Type
	Pos  Pos
}

// Other is any declaration the IR builder does not model structurally:
// use declarations, consts, type aliases, macro invocations and so on.
type Other struct {
	Kind  string
	Name  string
	Attrs Attrs
	Pos   Pos
}

func (m *Mod) Position() Pos    { return m.Pos }
func (s *Struct) Position() Pos { return s.Pos }
func (e *Enum) Position() Pos   { return e.Pos }
func (i *Impl) Position() Pos   { return i.Pos }
func (t *Trait) Position() Pos  { return t.Pos }
func (f *Fn) Position() Pos     { return f.Pos }
func (o *Other) Position() Pos  { return o.Pos }

func (m *Mod) Attributes() Attrs    { return m.Attrs }
func (s *Struct) Attributes() Attrs { return s.Attrs }
func (e *Enum) Attributes() Attrs   { return e.Attrs }
func (i *Impl) Attributes() Attrs   { return i.Attrs }
func (t *Trait) Attributes() Attrs  { return t.Attrs }
func (f *Fn) Attributes() Attrs     { return f.Attrs }
func (o *Other) Attributes() Attrs  { return o.Attrs }

func (*Mod) isItem()    {}
func (*Struct) isItem() {}
func (*Enum) isItem()   {}
func (*Impl) isItem()   {}
func (*Trait) isItem()  {}
func (*Fn) isItem()     {}
func (*Other) isItem()  {}

// Receiver classifies the receiver of a method.
type Receiver int

const (
	NoReceiver     Receiver = iota // associated function
	ValueReceiver                  // self, mut self
	RefReceiver                    // &self
	RefMutReceiver                 // &mut self
	OtherReceiver                  // self: Box<Self> and other typed receivers
)

func (r Receiver) String() string {
	switch r {
	case NoReceiver:
		return "none"
	case ValueReceiver:
		return "self"
	case RefReceiver:
		return "&self"
	case RefMutReceiver:
		return "&mut self"
	default:
		return "other"
	}
}

// ParseReceiver classifies receiver text as written in a parameter list.
// Lifetimes are ignored: `&'a mut self` is RefMutReceiver. Empty text is
// NoReceiver.
func ParseReceiver(text string) Receiver {
	fields := strings.Fields(strings.ReplaceAll(text, "&", "& "))
	if len(fields) == 0 {
		return NoReceiver
	}
	ref, mut := false, false
	for i, f := range fields {
		switch {
		case f == "&":
			ref = true
		case strings.HasPrefix(f, "'"):
			// lifetime
		case f == "mut":
			mut = true
		case f == "self" && i == len(fields)-1:
			switch {
			case ref && mut:
				return RefMutReceiver
			case ref:
				return RefReceiver
			default:
				return ValueReceiver
			}
		default:
			return OtherReceiver
		}
	}
	return OtherReceiver
}
