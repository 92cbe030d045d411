package ir

import (
	"strconv"
	"strings"

	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
)

// TypeKind is the shape of a type descriptor.
type TypeKind string

const (
	KindPath  TypeKind = "path"
	KindTuple TypeKind = "tuple"
	KindArray TypeKind = "array"
	KindSlice TypeKind = "slice"
)

// TypeDesc is a structural type descriptor. References, trait objects and
// other shapes without a storage encoding never reach the IR.
type TypeDesc struct {
	Kind TypeKind   `json:"kind"`
	Path []string   `json:"path,omitempty"`
	Args []TypeDesc `json:"args,omitempty"`
	Len  uint64     `json:"len,omitempty"`
}

// PathDesc builds a path descriptor, e.g. PathDesc("Vec", PathDesc("u8")).
func PathDesc(name string, args ...TypeDesc) TypeDesc {
	return TypeDesc{Kind: KindPath, Path: strings.Split(name, "::"), Args: args}
}

// Name returns the last path segment, or "" for non-path descriptors.
func (t TypeDesc) Name() string {
	if t.Kind != KindPath || len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

// String renders the full path form, e.g. `ink::primitives::AccountId`.
func (t TypeDesc) String() string {
	var b strings.Builder
	t.write(&b, true)
	return b.String()
}

// Canonical renders the compact form used in selector signatures: last
// path segments only, no whitespace, e.g. `Mapping<AccountId,u128>`.
func (t TypeDesc) Canonical() string {
	var b strings.Builder
	t.write(&b, false)
	return b.String()
}

func (t TypeDesc) write(b *strings.Builder, full bool) {
	sep := ","
	if full {
		sep = ", "
	}
	list := func(args []TypeDesc) {
		for i, a := range args {
			if i > 0 {
				b.WriteString(sep)
			}
			a.write(b, full)
		}
	}
	switch t.Kind {
	case KindTuple:
		b.WriteByte('(')
		list(t.Args)
		if len(t.Args) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case KindArray:
		b.WriteByte('[')
		t.Args[0].write(b, full)
		b.WriteString(";")
		if full {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(t.Len, 10))
		b.WriteByte(']')
	case KindSlice:
		b.WriteByte('[')
		t.Args[0].write(b, full)
		b.WriteByte(']')
	default:
		if full {
			b.WriteString(strings.Join(t.Path, "::"))
		} else {
			b.WriteString(t.Name())
		}
		if len(t.Args) > 0 {
			b.WriteByte('<')
			list(t.Args)
			b.WriteByte('>')
		}
	}
}

// Param is a named, typed parameter.
type Param struct {
	Name string   `json:"name"`
	Type TypeDesc `json:"type"`
	// Display is the type as written in source.
	Display string `json:"display,omitempty"`
}

// ParamTypes returns the canonical form of each parameter type in order.
func ParamTypes(params []Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Type.Canonical()
	}
	return out
}

// TraitID identifies an ink! trait definition by name. Trait names are
// unique across the sources of one contract.
type TraitID string

// Item is a converted top-level or module-level declaration. The set is
// closed: *ItemMod, *ItemImpl, *Storage, *Event, *InkTrait,
// *ChainExtension, *Test, *TypeDef and *OtherItem.
type Item interface {
	Position() syntax.Pos
	isItem()
}

// ItemMod is a converted module. Contract is set for the #[ink::contract]
// module; other modules only carry tests, trait definitions, chain
// extensions, plain types and nested modules. Items keeps declaration order.
type ItemMod struct {
	Name     string     `json:"name"`
	Contract bool       `json:"contract"`
	Items    []Item     `json:"-"`
	Docs     []string   `json:"docs,omitempty"`
	Pos      syntax.Pos `json:"-"`
}

// Storage returns the module's storage declarations.
func (m *ItemMod) Storage() []*Storage { return itemsOf[*Storage](m.Items) }

// Events returns the module's event declarations in order.
func (m *ItemMod) Events() []*Event { return itemsOf[*Event](m.Items) }

// Impls returns the module's impl blocks in order.
func (m *ItemMod) Impls() []*ItemImpl { return itemsOf[*ItemImpl](m.Items) }

// Types returns the module's plain type definitions in order.
func (m *ItemMod) Types() []*TypeDef { return itemsOf[*TypeDef](m.Items) }

// Tests returns the module's test functions in order.
func (m *ItemMod) Tests() []*Test { return itemsOf[*Test](m.Items) }

// Modules returns the module's nested modules in order.
func (m *ItemMod) Modules() []*ItemMod { return itemsOf[*ItemMod](m.Items) }

func itemsOf[T Item](items []Item) []T {
	var out []T
	for _, it := range items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Storage is the contract's persistent state declaration.
type Storage struct {
	Name   string     `json:"name"`
	Fields []Field    `json:"fields"`
	Docs   []string   `json:"docs,omitempty"`
	Pos    syntax.Pos `json:"-"`
}

// Field is a struct, storage or event field. Name is empty for positional
// fields of plain types.
type Field struct {
	Name string   `json:"name"`
	Type TypeDesc `json:"type"`
	// Display is the type as written in source.
	Display string     `json:"display"`
	Docs    []string   `json:"docs,omitempty"`
	Pos     syntax.Pos `json:"-"`
}

// Event is an emittable event.
type Event struct {
	Name      string       `json:"name"`
	Fields    []EventField `json:"fields"`
	Anonymous bool         `json:"anonymous,omitempty"`
	Docs      []string     `json:"docs,omitempty"`
	Pos       syntax.Pos   `json:"-"`
}

// EventField is an event field; Indexed fields are topics.
type EventField struct {
	Field
	Indexed bool `json:"indexed"`
}

// Topics returns the number of indexed fields.
func (e *Event) Topics() int {
	n := 0
	for _, f := range e.Fields {
		if f.Indexed {
			n++
		}
	}
	return n
}

// ItemImpl is an impl block on the storage type. Trait is empty for
// inherent impls.
type ItemImpl struct {
	SelfType  string     `json:"self_type"`
	Trait     TraitID    `json:"trait,omitempty"`
	Namespace string     `json:"namespace,omitempty"`
	Items     []ImplItem `json:"-"`
	Pos       syntax.Pos `json:"-"`
}

// Constructors returns the block's constructors in order.
func (i *ItemImpl) Constructors() []*Constructor { return implItemsOf[*Constructor](i.Items) }

// Messages returns the block's messages in order.
func (i *ItemImpl) Messages() []*Message { return implItemsOf[*Message](i.Items) }

func implItemsOf[T ImplItem](items []ImplItem) []T {
	var out []T
	for _, it := range items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// ImplItem is a converted impl-block member. The set is closed:
// *Constructor, *Message and *Helper.
type ImplItem interface {
	ItemName() string
	isImplItem()
}

// Constructor instantiates the contract.
type Constructor struct {
	Name     string            `json:"name"`
	Params   []Param           `json:"params"`
	Payable  bool              `json:"payable"`
	Selector selector.Selector `json:"selector"`
	// Explicit is true when Selector came from an annotation.
	Explicit bool       `json:"explicit_selector,omitempty"`
	Docs     []string   `json:"docs,omitempty"`
	Pos      syntax.Pos `json:"-"`
}

// Message is a callable contract method.
type Message struct {
	Name     string            `json:"name"`
	Params   []Param           `json:"params"`
	Return   *TypeDesc         `json:"return,omitempty"`
	Mutates  bool              `json:"mutates"`
	Payable  bool              `json:"payable"`
	Selector selector.Selector `json:"selector"`
	Explicit bool              `json:"explicit_selector,omitempty"`
	// ReturnDisplay is the return type as written in source.
	ReturnDisplay string `json:"return_display,omitempty"`
	// Trait is the implemented ink! trait, empty for inherent messages.
	Trait TraitID    `json:"trait,omitempty"`
	Docs  []string   `json:"docs,omitempty"`
	Pos   syntax.Pos `json:"-"`
}

// Helper is a non-dispatchable impl member.
type Helper struct {
	Name string     `json:"name"`
	Test bool       `json:"test,omitempty"`
	Pos  syntax.Pos `json:"-"`
}

func (c *Constructor) ItemName() string { return c.Name }
func (m *Message) ItemName() string     { return m.Name }
func (h *Helper) ItemName() string      { return h.Name }

func (*Constructor) isImplItem() {}
func (*Message) isImplItem()     {}
func (*Helper) isImplItem()      {}

// InkTrait is an ink! trait definition.
type InkTrait struct {
	ID        TraitID       `json:"id"`
	Name      string        `json:"name"`
	Namespace string        `json:"namespace,omitempty"`
	Members   []TraitMember `json:"members"`
	Docs      []string      `json:"docs,omitempty"`
	Pos       syntax.Pos    `json:"-"`
}

// Member returns the member with the given name.
func (t *InkTrait) Member(name string) (*TraitMember, bool) {
	for i := range t.Members {
		if t.Members[i].Name == name {
			return &t.Members[i], true
		}
	}
	return nil, false
}

// TraitMember is one message declared by an ink! trait.
type TraitMember struct {
	Name     string             `json:"name"`
	Params   []Param            `json:"params"`
	Return   *TypeDesc          `json:"return,omitempty"`
	Mutates  bool               `json:"mutates"`
	Payable  bool               `json:"payable"`
	Selector *selector.Selector `json:"selector,omitempty"`
	Pos      syntax.Pos         `json:"-"`
}

// ChainExtension is a chain extension interface.
type ChainExtension struct {
	Name      string              `json:"name"`
	ID        uint16              `json:"id"`
	Functions []ExtensionFunction `json:"functions"`
	Docs      []string            `json:"docs,omitempty"`
	Pos       syntax.Pos          `json:"-"`
}

// ExtensionFunction is one chain extension function.
type ExtensionFunction struct {
	Name         string            `json:"name"`
	ID           uint16            `json:"id"`
	Params       []Param           `json:"params"`
	Return       *TypeDesc         `json:"return,omitempty"`
	HandleStatus bool              `json:"handle_status"`
	Selector     selector.Selector `json:"selector"`
	Pos          syntax.Pos        `json:"-"`
}

// Test is a test function found in the contract sources.
type Test struct {
	Name   string     `json:"name"`
	Module string     `json:"module,omitempty"`
	E2E    bool       `json:"e2e,omitempty"`
	Pos    syntax.Pos `json:"-"`
}

// TypeDef is a plain struct or enum used by contract signatures.
type TypeDef struct {
	Name     string       `json:"name"`
	Fields   []Field      `json:"fields,omitempty"`
	Variants []VariantDef `json:"variants,omitempty"`
	Enum     bool         `json:"enum,omitempty"`
	Docs     []string     `json:"docs,omitempty"`
	Pos      syntax.Pos   `json:"-"`
}

// VariantDef is one enum variant. Positional fields have empty names.
type VariantDef struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields,omitempty"`
}

// OtherItem is a declaration the IR does not model.
type OtherItem struct {
	Kind string     `json:"kind"`
	Name string     `json:"name,omitempty"`
	Pos  syntax.Pos `json:"-"`
}

func (m *ItemMod) Position() syntax.Pos        { return m.Pos }
func (i *ItemImpl) Position() syntax.Pos       { return i.Pos }
func (s *Storage) Position() syntax.Pos        { return s.Pos }
func (e *Event) Position() syntax.Pos          { return e.Pos }
func (t *InkTrait) Position() syntax.Pos       { return t.Pos }
func (c *ChainExtension) Position() syntax.Pos { return c.Pos }
func (t *Test) Position() syntax.Pos           { return t.Pos }
func (t *TypeDef) Position() syntax.Pos        { return t.Pos }
func (o *OtherItem) Position() syntax.Pos      { return o.Pos }

func (*ItemMod) isItem()        {}
func (*ItemImpl) isItem()       {}
func (*Storage) isItem()        {}
func (*Event) isItem()          {}
func (*InkTrait) isItem()       {}
func (*ChainExtension) isItem() {}
func (*Test) isItem()           {}
func (*TypeDef) isItem()        {}
func (*OtherItem) isItem()      {}

// Contract is the assembled, validated contract. It is immutable once
// returned by the compiler.
type Contract struct {
	Name         string           `json:"name"`
	Storage      Storage          `json:"storage"`
	Constructors []Constructor    `json:"constructors"`
	Messages     []Message        `json:"messages"`
	Events       []Event          `json:"events"`
	Extensions   []ChainExtension `json:"chain_extensions,omitempty"`
	Traits       []InkTrait       `json:"traits,omitempty"`
	Types        []TypeDef        `json:"types,omitempty"`
	Tests        []Test           `json:"tests,omitempty"`
}

// Trait looks up an ink! trait by ID.
func (c *Contract) Trait(id TraitID) (*InkTrait, bool) {
	for i := range c.Traits {
		if c.Traits[i].ID == id {
			return &c.Traits[i], true
		}
	}
	return nil, false
}

// TypeDef looks up a plain type definition by name.
func (c *Contract) TypeDef(name string) (*TypeDef, bool) {
	for i := range c.Types {
		if c.Types[i].Name == name {
			return &c.Types[i], true
		}
	}
	return nil, false
}

// Message looks up a message by name.
func (c *Contract) Message(name string) (*Message, bool) {
	for i := range c.Messages {
		if c.Messages[i].Name == name {
			return &c.Messages[i], true
		}
	}
	return nil, false
}

// Constructor looks up a constructor by name.
func (c *Contract) Constructor(name string) (*Constructor, bool) {
	for i := range c.Constructors {
		if c.Constructors[i].Name == name {
			return &c.Constructors[i], true
		}
	}
	return nil, false
}
