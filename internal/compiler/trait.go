package compiler

import (
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/syntax"
)

// convertTraitItem dispatches a trait declaration on its role marker.
func convertTraitItem(raw *syntax.Trait) (ir.Item, error) {
	def, ext := raw.Attrs.Has("trait_definition"), raw.Attrs.Has("chain_extension")
	switch {
	case def && ext:
		e := annotationError(InvalidItem, raw.Name, raw.Pos, "a trait is either a trait definition or a chain extension")
		e.Reason = ConflictingAnnotation
		return nil, e
	case def:
		t, err := ConvertTrait(raw)
		if err != nil {
			return nil, err
		}
		return t, nil
	case ext:
		c, err := ConvertChainExtension(raw)
		if err != nil {
			return nil, err
		}
		return c, nil
	case hasInkAttrs(raw):
		return nil, annotationError(InvalidItem, raw.Name, raw.Pos,
			"ink! annotations on a trait require #[ink::trait_definition] or #[ink::chain_extension]")
	}
	return &ir.OtherItem{Kind: "trait", Name: raw.Name, Pos: raw.Pos}, nil
}

// ConvertTrait converts a trait definition. Every member must be a
// message signature without a default body; the trait must not be generic
// and must declare at least one message.
func ConvertTrait(raw *syntax.Trait) (*ir.InkTrait, error) {
	if !raw.Attrs.Has("trait_definition") {
		return nil, annotationError(InvalidTraitDef, raw.Name, raw.Pos, "missing #[ink::trait_definition] annotation")
	}
	if e := checkAttrs(raw.Attrs, traitKeys, InvalidTraitDef, raw.Name); e != nil {
		return nil, e
	}
	if len(raw.Generics) > 0 {
		return nil, shapeError(InvalidTraitDef, raw.Name, raw.Pos, "trait definition must not be generic")
	}
	if len(raw.Supertraits) > 0 {
		return nil, shapeError(InvalidTraitDef, raw.Name, raw.Pos, "trait definition must not have supertraits, found %s", raw.Supertraits[0])
	}
	namespace, e := stringAttr(raw.Attrs, "namespace", InvalidTraitDef, raw.Name)
	if e != nil {
		return nil, e
	}

	tr := &ir.InkTrait{ID: ir.TraitID(raw.Name), Name: raw.Name, Namespace: namespace, Docs: raw.Docs, Pos: raw.Pos}
	var diags Diagnostics
	seen := make(map[string]bool)
	for _, member := range raw.Items {
		fn, ok := member.(*syntax.Fn)
		if !ok {
			diags.collect(shapeError(InvalidTraitDef, raw.Name, member.Position(), "only message signatures are allowed in a trait definition"))
			continue
		}
		m, e := convertTraitMember(raw.Name, fn)
		if e != nil {
			diags.collect(e)
			continue
		}
		if seen[m.Name] {
			diags.collect(shapeError(InvalidTraitDef, raw.Name, fn.Pos, "duplicate message %s", m.Name))
			continue
		}
		seen[m.Name] = true
		tr.Members = append(tr.Members, m)
	}
	if err := diags.err(); err != nil {
		return nil, err
	}
	if len(tr.Members) == 0 {
		return nil, shapeError(InvalidTraitDef, raw.Name, raw.Pos, "trait definition must declare at least one message")
	}
	return tr, nil
}

func convertTraitMember(trait string, fn *syntax.Fn) (ir.TraitMember, *CompileError) {
	item := trait + "::" + fn.Name
	if !fn.Attrs.Has("message") {
		return ir.TraitMember{}, annotationError(InvalidTraitDef, item, fn.Pos, "trait members must be annotated #[ink(message)]")
	}
	if e := checkAttrs(fn.Attrs, traitMsgKeys, InvalidTraitDef, item); e != nil {
		return ir.TraitMember{}, e
	}
	if fn.HasBody {
		return ir.TraitMember{}, shapeError(InvalidTraitDef, item, fn.Pos, "default implementations are not allowed")
	}
	switch fn.Receiver {
	case syntax.RefReceiver, syntax.RefMutReceiver:
	default:
		return ir.TraitMember{}, shapeError(InvalidTraitDef, item, fn.Pos, "receiver must be &self or &mut self, found %q", fn.Receiver)
	}
	if e := checkSignatureShape(fn, InvalidTraitDef); e != nil {
		e.Item = item
		return ir.TraitMember{}, e
	}
	params, e := convertParams(fn.Params, InvalidTraitDef, item)
	if e != nil {
		return ir.TraitMember{}, e
	}
	ret, e := returnDesc(fn, InvalidTraitDef)
	if e != nil {
		e.Item = item
		return ir.TraitMember{}, e
	}
	payable, e := flagAttr(fn.Attrs, "payable", InvalidTraitDef, item)
	if e != nil {
		return ir.TraitMember{}, e
	}
	sel, e := selectorAttr(fn.Attrs, InvalidTraitDef, item)
	if e != nil {
		return ir.TraitMember{}, e
	}
	return ir.TraitMember{
		Name:     fn.Name,
		Params:   params,
		Return:   ret,
		Mutates:  fn.Receiver == syntax.RefMutReceiver,
		Payable:  payable,
		Selector: sel,
		Pos:      fn.Pos,
	}, nil
}
