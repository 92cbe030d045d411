package compiler

import (
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/syntax"
)

// ConvertStorage converts a struct carrying the storage marker.
func ConvertStorage(raw *syntax.Struct) (*ir.Storage, error) {
	if !raw.Attrs.Has("storage") {
		return nil, annotationError(InvalidStorage, raw.Name, raw.Pos, "missing #[ink(storage)] annotation")
	}
	if e := checkAttrs(raw.Attrs, storageKeys, InvalidStorage, raw.Name); e != nil {
		return nil, e
	}
	if raw.Tuple || raw.Unit {
		return nil, shapeError(InvalidStorage, raw.Name, raw.Pos, "storage must be a struct with named fields")
	}
	if len(raw.Generics) > 0 {
		return nil, shapeError(InvalidStorage, raw.Name, raw.Pos, "storage must not be generic")
	}

	s := &ir.Storage{Name: raw.Name, Docs: raw.Docs, Pos: raw.Pos}
	for _, f := range raw.Fields {
		if len(f.Attrs) > 0 {
			return nil, annotationError(InvalidStorage, raw.Name, f.Attrs[0].Pos, "storage field %s: unexpected ink! annotation %q", f.Name, f.Attrs[0].Key)
		}
		field, e := convertField(f, InvalidStorage, raw.Name)
		if e != nil {
			return nil, e
		}
		if field.Type.Kind == ir.KindSlice {
			return nil, shapeError(InvalidStorage, raw.Name, f.Pos, "storage field %s: unsized type %s has no persistent layout", f.Name, f.Type)
		}
		s.Fields = append(s.Fields, field)
	}
	return s, nil
}

// convertField reduces a field type to a descriptor.
func convertField(f syntax.Field, failure Failure, item string) (ir.Field, *CompileError) {
	desc, e := descOf(f.Type, failure, item, f.Pos)
	if e != nil {
		return ir.Field{}, e
	}
	return ir.Field{Name: f.Name, Type: desc, Display: f.Type.String(), Docs: f.Docs, Pos: f.Pos}, nil
}

func descOf(t *syntax.Type, failure Failure, item string, pos syntax.Pos) (ir.TypeDesc, *CompileError) {
	if t == nil {
		return ir.TypeDesc{}, shapeError(failure, item, pos, "missing type")
	}
	desc, err := ir.DescFromSyntax(t)
	if err != nil {
		return ir.TypeDesc{}, shapeError(failure, item, pos, "%v", err)
	}
	return desc, nil
}

func convertParams(params []syntax.Param, failure Failure, item string) ([]ir.Param, *CompileError) {
	out := make([]ir.Param, 0, len(params))
	for _, p := range params {
		desc, e := descOf(p.Type, failure, item, p.Pos)
		if e != nil {
			e.Message = "parameter " + p.Name + ": " + e.Message
			return nil, e
		}
		out = append(out, ir.Param{Name: p.Name, Type: desc, Display: p.Type.String()})
	}
	return out, nil
}

// ConvertTypeDef converts a plain, unannotated struct or enum that contract
// signatures may reference. Generic declarations are not modelled and come
// back as nil.
func ConvertTypeDef(raw syntax.Item) (*ir.TypeDef, error) {
	switch it := raw.(type) {
	case *syntax.Struct:
		if len(it.Generics) > 0 {
			return nil, nil
		}
		td := &ir.TypeDef{Name: it.Name, Docs: it.Docs, Pos: it.Pos}
		for _, f := range it.Fields {
			field, e := convertField(f, InvalidItem, it.Name)
			if e != nil {
				return nil, e
			}
			td.Fields = append(td.Fields, field)
		}
		return td, nil
	case *syntax.Enum:
		if len(it.Generics) > 0 {
			return nil, nil
		}
		td := &ir.TypeDef{Name: it.Name, Enum: true, Docs: it.Docs, Pos: it.Pos}
		for _, v := range it.Variants {
			vd := ir.VariantDef{Name: v.Name}
			for _, f := range v.Fields {
				field, e := convertField(f, InvalidItem, it.Name+"::"+v.Name)
				if e != nil {
					return nil, e
				}
				vd.Fields = append(vd.Fields, field)
			}
			td.Variants = append(td.Variants, vd)
		}
		return td, nil
	default:
		return nil, shapeError(InvalidItem, "", raw.Position(), "expected a struct or enum")
	}
}
