// Package typereg deduplicates structural type descriptions into stable
// integer IDs for metadata serialization.
//
// A Resolver reduces an ir.TypeDesc to its structural shape: aliases are
// expanded, builtin containers map to sequence/variant/tuple shapes and
// user-defined structs and enums become composites and variants. The
// Registry interns shapes by structural key, so differently written types
// with the same shape (`Balance` and `u128`) share one ID.
//
// IDs are assigned in first-seen order, outer type before its components.
package typereg

import (
	"fmt"
	"strings"

	"github.com/roach88/inkir/internal/ir"
)

// ID is a type registry identifier. IDs start at 0.
type ID uint32

// Kind is the structural class of a registry entry.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindComposite Kind = "composite"
	KindVariant   Kind = "variant"
	KindSequence  Kind = "sequence"
	KindArray     Kind = "array"
	KindTuple     Kind = "tuple"
)

// Def is the structural description of a registered type. Component types
// are referenced by ID.
type Def struct {
	Kind      Kind         `json:"kind"`
	Primitive string       `json:"primitive,omitempty"`
	Path      []string     `json:"path,omitempty"`
	Params    []ID         `json:"params,omitempty"`
	Fields    []FieldDef   `json:"fields,omitempty"`
	Variants  []VariantDef `json:"variants,omitempty"`
	Type      *ID          `json:"type,omitempty"`
	Len       uint64       `json:"len,omitempty"`
	Elems     []ID         `json:"elems,omitempty"`
}

// FieldDef is a composite or variant field. Name is empty for positional
// fields.
type FieldDef struct {
	Name     string `json:"name,omitempty"`
	Type     ID     `json:"type"`
	TypeName string `json:"type_name,omitempty"`
}

// VariantDef is one enum variant.
type VariantDef struct {
	Name   string     `json:"name"`
	Index  int        `json:"index"`
	Fields []FieldDef `json:"fields,omitempty"`
}

// Entry is one registry row.
type Entry struct {
	ID   ID  `json:"id"`
	Type Def `json:"type"`
}

// UnsupportedTypeError reports a type that cannot be reduced to a
// structural description.
type UnsupportedTypeError struct {
	Type   string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %s: %s", e.Type, e.Reason)
}

// Registry interns structural shapes. It is not safe for concurrent use;
// the metadata builder owns one per build.
type Registry struct {
	resolver *Resolver
	entries  []Entry
	index    map[string]ID
}

// NewRegistry creates an empty registry that reduces types with r.
// A nil resolver uses DefaultResolver().
func NewRegistry(r *Resolver) *Registry {
	if r == nil {
		r = DefaultResolver()
	}
	return &Registry{resolver: r, index: make(map[string]ID)}
}

// Register resolves desc and returns its ID, adding entries for the type
// and any component types not yet seen.
func (reg *Registry) Register(desc ir.TypeDesc) (ID, error) {
	s, err := reg.resolver.resolve(desc)
	if err != nil {
		return 0, err
	}
	return reg.intern(s), nil
}

// Lookup returns the ID of an already registered type.
func (reg *Registry) Lookup(desc ir.TypeDesc) (ID, bool) {
	s, err := reg.resolver.resolve(desc)
	if err != nil {
		return 0, false
	}
	id, ok := reg.index[s.key()]
	return id, ok
}

// Len returns the number of entries.
func (reg *Registry) Len() int {
	return len(reg.entries)
}

// Entries returns a copy of the registry in ID order.
func (reg *Registry) Entries() []Entry {
	out := make([]Entry, len(reg.entries))
	copy(out, reg.entries)
	return out
}

// Def returns the definition for id.
func (reg *Registry) Def(id ID) (Def, bool) {
	if int(id) >= len(reg.entries) {
		return Def{}, false
	}
	return reg.entries[id].Type, true
}

func (reg *Registry) intern(s *shape) ID {
	k := s.key()
	if id, ok := reg.index[k]; ok {
		return id
	}
	id := ID(len(reg.entries))
	reg.index[k] = id
	// Reserve the slot so the outer type precedes its components.
	reg.entries = append(reg.entries, Entry{ID: id})

	def := Def{Kind: s.kind, Primitive: s.prim, Path: s.path, Len: s.length}
	for _, p := range s.params {
		def.Params = append(def.Params, reg.intern(p))
	}
	for _, f := range s.fields {
		def.Fields = append(def.Fields, reg.field(f))
	}
	for i, v := range s.variants {
		vd := VariantDef{Name: v.name, Index: i}
		for _, f := range v.fields {
			vd.Fields = append(vd.Fields, reg.field(f))
		}
		def.Variants = append(def.Variants, vd)
	}
	if s.elem != nil {
		elem := reg.intern(s.elem)
		def.Type = &elem
	}
	for _, e := range s.elems {
		def.Elems = append(def.Elems, reg.intern(e))
	}
	reg.entries[id].Type = def
	return id
}

func (reg *Registry) field(f shapeField) FieldDef {
	return FieldDef{Name: f.name, Type: reg.intern(f.typ), TypeName: f.typeName}
}

// shape is a resolved structural type without IDs.
type shape struct {
	kind     Kind
	prim     string
	path     []string
	params   []*shape
	fields   []shapeField
	variants []shapeVariant
	elem     *shape
	length   uint64
	elems    []*shape

	k string
}

type shapeField struct {
	name     string
	typeName string
	typ      *shape
}

type shapeVariant struct {
	name   string
	fields []shapeField
}

// key renders the structural identity of the shape. Display names are not
// part of it.
func (s *shape) key() string {
	if s.k == "" {
		var b strings.Builder
		s.writeKey(&b)
		s.k = b.String()
	}
	return s.k
}

func (s *shape) writeKey(b *strings.Builder) {
	b.WriteString(string(s.kind))
	b.WriteByte('(')
	switch s.kind {
	case KindPrimitive:
		b.WriteString(s.prim)
	case KindComposite, KindVariant:
		b.WriteString(strings.Join(s.path, "::"))
		b.WriteByte('<')
		for i, p := range s.params {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(p.key())
		}
		b.WriteByte('>')
		writeFieldKeys(b, s.fields)
		for _, v := range s.variants {
			b.WriteString("|" + v.name)
			writeFieldKeys(b, v.fields)
		}
	case KindSequence:
		b.WriteString(s.elem.key())
	case KindArray:
		fmt.Fprintf(b, "%s;%d", s.elem.key(), s.length)
	case KindTuple:
		for i, e := range s.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(e.key())
		}
	}
	b.WriteByte(')')
}

func writeFieldKeys(b *strings.Builder, fields []shapeField) {
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.name + ":" + f.typ.key())
	}
	b.WriteByte('}')
}
