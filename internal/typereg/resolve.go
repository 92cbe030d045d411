package typereg

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/inkir/internal/ir"
)

// DefaultAliases are the environment type aliases of the default contract
// environment.
func DefaultAliases() map[string]string {
	return map[string]string{
		"Balance":     "u128",
		"Timestamp":   "u64",
		"BlockNumber": "u32",
	}
}

var primitives = map[string]string{
	"bool": "bool", "char": "char", "str": "str", "String": "str",
	"u8": "u8", "u16": "u16", "u32": "u32", "u64": "u64", "u128": "u128",
	"i8": "i8", "i16": "i16", "i32": "i32", "i64": "i64", "i128": "i128",
}

// Resolver reduces type descriptors to structural shapes. Names resolve
// against, in order: user-defined types, aliases, builtins.
type Resolver struct {
	aliases map[string]ir.TypeDesc
	types   map[string]ir.TypeDef
}

// NewResolver builds a resolver from alias text (name -> type expression)
// and the contract's plain type definitions.
func NewResolver(aliases map[string]string, types []ir.TypeDef) (*Resolver, error) {
	r := &Resolver{
		aliases: make(map[string]ir.TypeDesc, len(aliases)),
		types:   make(map[string]ir.TypeDef, len(types)),
	}
	// Sorted so the first bad alias reported is stable.
	for _, name := range slices.Sorted(maps.Keys(aliases)) {
		desc, err := ir.ParseTypeDesc(aliases[name])
		if err != nil {
			return nil, fmt.Errorf("type alias %s: %w", name, err)
		}
		r.aliases[name] = desc
	}
	for _, td := range types {
		r.types[td.Name] = td
	}
	return r, nil
}

// DefaultResolver resolves builtins and DefaultAliases only.
func DefaultResolver() *Resolver {
	r, err := NewResolver(DefaultAliases(), nil)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Resolver) resolve(desc ir.TypeDesc) (*shape, error) {
	return r.resolveIn(desc, nil)
}

// resolveIn tracks the names currently being expanded to reject recursion.
func (r *Resolver) resolveIn(desc ir.TypeDesc, stack []string) (*shape, error) {
	switch desc.Kind {
	case ir.KindTuple:
		s := &shape{kind: KindTuple}
		for _, a := range desc.Args {
			e, err := r.resolveIn(a, stack)
			if err != nil {
				return nil, err
			}
			s.elems = append(s.elems, e)
		}
		return s, nil
	case ir.KindArray, ir.KindSlice:
		if len(desc.Args) != 1 {
			return nil, unsupported(desc, "malformed element type")
		}
		elem, err := r.resolveIn(desc.Args[0], stack)
		if err != nil {
			return nil, err
		}
		if desc.Kind == ir.KindSlice {
			return &shape{kind: KindSequence, elem: elem}, nil
		}
		return &shape{kind: KindArray, elem: elem, length: desc.Len}, nil
	case ir.KindPath:
		return r.resolvePath(desc, stack)
	default:
		return nil, unsupported(desc, fmt.Sprintf("unknown descriptor kind %q", desc.Kind))
	}
}

func (r *Resolver) resolvePath(desc ir.TypeDesc, stack []string) (*shape, error) {
	name := desc.Name()
	if name == "" {
		return nil, unsupported(desc, "empty path")
	}
	if slices.Contains(stack, name) {
		return nil, unsupported(desc, fmt.Sprintf("recursive type (%s -> %s)", strings.Join(stack, " -> "), name))
	}

	if td, ok := r.types[name]; ok {
		if len(desc.Args) > 0 {
			return nil, unsupported(desc, "generic user-defined types are not supported")
		}
		return r.resolveUser(td, append(stack, name))
	}

	if alias, ok := r.aliases[name]; ok {
		if len(desc.Args) > 0 {
			return nil, unsupported(desc, "type alias takes no arguments")
		}
		return r.resolveIn(alias, append(stack, name))
	}

	return r.resolveBuiltin(desc, name, stack)
}

func (r *Resolver) resolveBuiltin(desc ir.TypeDesc, name string, stack []string) (*shape, error) {
	args := make([]*shape, len(desc.Args))
	for i, a := range desc.Args {
		s, err := r.resolveIn(a, stack)
		if err != nil {
			return nil, err
		}
		args[i] = s
	}
	arity := func(n int) error {
		if len(args) != n {
			return unsupported(desc, fmt.Sprintf("%s takes %d type argument(s), got %d", name, n, len(args)))
		}
		return nil
	}

	if prim, ok := primitives[name]; ok {
		if err := arity(0); err != nil {
			return nil, err
		}
		return &shape{kind: KindPrimitive, prim: prim}, nil
	}

	switch name {
	case "Vec", "VecDeque", "BTreeSet":
		if err := arity(1); err != nil {
			return nil, err
		}
		return &shape{kind: KindSequence, elem: args[0]}, nil
	case "BTreeMap":
		if err := arity(2); err != nil {
			return nil, err
		}
		return &shape{kind: KindSequence, elem: &shape{kind: KindTuple, elems: args}}, nil
	case "Box":
		if err := arity(1); err != nil {
			return nil, err
		}
		return args[0], nil
	case "Option":
		if err := arity(1); err != nil {
			return nil, err
		}
		return &shape{
			kind:   KindVariant,
			path:   []string{"Option"},
			params: args,
			variants: []shapeVariant{
				{name: "None"},
				{name: "Some", fields: []shapeField{{typ: args[0], typeName: desc.Args[0].String()}}},
			},
		}, nil
	case "Result":
		if err := arity(2); err != nil {
			return nil, err
		}
		return &shape{
			kind:   KindVariant,
			path:   []string{"Result"},
			params: args,
			variants: []shapeVariant{
				{name: "Ok", fields: []shapeField{{typ: args[0], typeName: desc.Args[0].String()}}},
				{name: "Err", fields: []shapeField{{typ: args[1], typeName: desc.Args[1].String()}}},
			},
		}, nil
	case "Mapping":
		// The optional third argument is the storage key type.
		if len(args) < 2 || len(args) > 3 {
			return nil, unsupported(desc, fmt.Sprintf("Mapping takes 2 or 3 type arguments, got %d", len(args)))
		}
		return &shape{kind: KindComposite, path: []string{"ink", "storage", "Mapping"}, params: args[:2]}, nil
	case "Lazy", "StorageVec":
		if len(args) < 1 || len(args) > 2 {
			return nil, unsupported(desc, fmt.Sprintf("%s takes 1 or 2 type arguments, got %d", name, len(args)))
		}
		return &shape{kind: KindComposite, path: []string{"ink", "storage", name}, params: args[:1]}, nil
	case "AccountId", "Hash":
		if err := arity(0); err != nil {
			return nil, err
		}
		bytes32 := &shape{kind: KindArray, elem: &shape{kind: KindPrimitive, prim: "u8"}, length: 32}
		return &shape{
			kind:   KindComposite,
			path:   []string{"ink", "primitives", name},
			fields: []shapeField{{typ: bytes32, typeName: "[u8; 32]"}},
		}, nil
	}
	return nil, unsupported(desc, "unknown type")
}

func (r *Resolver) resolveUser(td ir.TypeDef, stack []string) (*shape, error) {
	fields := func(fs []ir.Field) ([]shapeField, error) {
		out := make([]shapeField, 0, len(fs))
		for _, f := range fs {
			s, err := r.resolveIn(f.Type, stack)
			if err != nil {
				return nil, err
			}
			out = append(out, shapeField{name: f.Name, typ: s, typeName: f.Display})
		}
		return out, nil
	}

	if !td.Enum {
		fs, err := fields(td.Fields)
		if err != nil {
			return nil, err
		}
		return &shape{kind: KindComposite, path: []string{td.Name}, fields: fs}, nil
	}

	s := &shape{kind: KindVariant, path: []string{td.Name}}
	for _, v := range td.Variants {
		fs, err := fields(v.Fields)
		if err != nil {
			return nil, err
		}
		s.variants = append(s.variants, shapeVariant{name: v.Name, fields: fs})
	}
	return s, nil
}

func unsupported(desc ir.TypeDesc, reason string) error {
	return &UnsupportedTypeError{Type: desc.String(), Reason: reason}
}
