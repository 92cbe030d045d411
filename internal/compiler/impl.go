package compiler

import (
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/syntax"
)

// ConvertImpl converts an impl block inside the contract module.
//
// Blocks on the storage type become *ir.ItemImpl: inherent blocks always,
// trait blocks when they carry ink! annotations (a plain `impl Default for
// Storage` is left alone). Blocks on any other type come back as
// *ir.OtherItem unless they carry ink! annotations, which is an error.
func ConvertImpl(raw *syntax.Impl, storage string) (ir.Item, error) {
	name := implName(raw)
	onStorage := isStorageType(raw.SelfType, storage)
	marked := hasInkAttrs(raw)

	if !onStorage {
		if marked {
			return nil, shapeError(InvalidImpl, name, raw.Pos,
				"ink! impl block must target the storage type %s, found %s", storage, raw.SelfType)
		}
		return &ir.OtherItem{Kind: "impl", Name: name, Pos: raw.Pos}, nil
	}
	if raw.Trait != nil && !marked {
		return &ir.OtherItem{Kind: "impl", Name: name, Pos: raw.Pos}, nil
	}

	if e := checkAttrs(raw.Attrs, implKeys, InvalidImpl, name); e != nil {
		return nil, e
	}
	if len(raw.Generics) > 0 {
		return nil, shapeError(InvalidImpl, name, raw.Pos, "ink! impl blocks must not be generic")
	}
	namespace, e := stringAttr(raw.Attrs, "namespace", InvalidImpl, name)
	if e != nil {
		return nil, e
	}

	impl := &ir.ItemImpl{SelfType: storage, Namespace: namespace, Pos: raw.Pos}
	if raw.Trait != nil {
		if raw.Trait.Kind != syntax.PathType || len(raw.Trait.Args) > 0 {
			return nil, shapeError(InvalidImpl, name, raw.Pos, "trait %s must be a plain path", raw.Trait)
		}
		if namespace != "" {
			a, _ := raw.Attrs.Get("namespace")
			return nil, annotationError(InvalidImpl, name, a.Pos, "namespace is taken from the trait definition and is not allowed on trait impls")
		}
		impl.Trait = ir.TraitID(raw.Trait.Name())
	}

	var diags Diagnostics
	for _, member := range raw.Items {
		fn, ok := member.(*syntax.Fn)
		if !ok {
			if len(member.Attributes()) > 0 {
				diags.collect(shapeError(InvalidImpl, name, member.Position(), "ink! annotations are only allowed on functions"))
			}
			continue
		}
		item, err := ConvertImplItem(fn, storage)
		if err != nil {
			diags.collect(err)
			continue
		}
		if impl.Trait != "" {
			if e := checkTraitImplItem(item, fn, name); e != nil {
				diags.collect(e)
				continue
			}
		}
		impl.Items = append(impl.Items, item)
	}
	if err := diags.err(); err != nil {
		return nil, err
	}
	return impl, nil
}

// checkTraitImplItem enforces the per-member rules of trait impls; signature
// conformance is checked at assembly, where the trait definition is known.
func checkTraitImplItem(item ir.ImplItem, fn *syntax.Fn, implName string) *CompileError {
	switch it := item.(type) {
	case *ir.Constructor:
		return shapeError(InvalidImpl, implName, fn.Pos, "constructor %s is not allowed in a trait impl", it.Name)
	case *ir.Message:
		if it.Explicit {
			a, _ := fn.Attrs.Get("selector")
			return annotationError(InvalidImpl, implName, a.Pos, "message %s: selectors of trait messages come from the trait definition", it.Name)
		}
	}
	return nil
}

// ConvertImplItem classifies one impl member. An explicit constructor,
// message, helper or test annotation decides; otherwise the receiver does:
//
//	self + returns Self  -> Constructor
//	&self                -> Message (mutating=false)
//	&mut self            -> Message (mutating=true)
//
// Anything else is AmbiguousImplItem.
func ConvertImplItem(fn *syntax.Fn, storage string) (ir.ImplItem, error) {
	ctor, msg := fn.Attrs.Has("constructor"), fn.Attrs.Has("message")
	helper, test := fn.Attrs.Has("helper"), isTest(fn.Attrs)

	roles := 0
	for _, r := range []bool{ctor, msg, helper, test} {
		if r {
			roles++
		}
	}
	if roles > 1 {
		e := annotationError(AmbiguousImplItem, fn.Name, fn.Pos, "conflicting annotations: a member is exactly one of constructor, message, helper or test")
		e.Reason = ConflictingAnnotation
		return nil, e
	}

	switch {
	case ctor:
		return constructorItem(fn, storage)
	case msg:
		return messageItem(fn)
	case helper:
		if e := checkAttrs(fn.Attrs, helperKeys, AmbiguousImplItem, fn.Name); e != nil {
			return nil, e
		}
		return &ir.Helper{Name: fn.Name, Pos: fn.Pos}, nil
	case test:
		t, err := ConvertTest(fn)
		if err != nil {
			return nil, err
		}
		return &ir.Helper{Name: t.Name, Test: true, Pos: t.Pos}, nil
	}

	switch fn.Receiver {
	case syntax.RefReceiver, syntax.RefMutReceiver:
		return messageItem(fn)
	case syntax.ValueReceiver:
		if isStorageType(fn.Result, storage) {
			return constructorItem(fn, storage)
		}
	}
	return nil, invariantError(AmbiguousImplItem, "", fn.Name, fn.Pos,
		"cannot classify member with receiver %q returning %s; annotate it with #[ink(constructor)], #[ink(message)] or #[ink(helper)]",
		fn.Receiver, resultString(fn.Result))
}

func constructorItem(fn *syntax.Fn, storage string) (ir.ImplItem, error) {
	c, err := ConvertConstructor(fn, storage)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func messageItem(fn *syntax.Fn) (ir.ImplItem, error) {
	m, err := ConvertMessage(fn)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ConvertConstructor converts a constructor. The receiver must be owned
// (or absent) and the return type must be the contract's own type.
func ConvertConstructor(fn *syntax.Fn, storage string) (*ir.Constructor, error) {
	if e := checkAttrs(fn.Attrs, constructorKeys, InvalidConstructor, fn.Name); e != nil {
		return nil, e
	}
	switch fn.Receiver {
	case syntax.NoReceiver, syntax.ValueReceiver:
	default:
		return nil, invariantError(InvalidConstructor, "", fn.Name, fn.Pos,
			"constructor receiver must be owned, found %q", fn.Receiver)
	}
	if !isStorageType(fn.Result, storage) {
		return nil, invariantError(InvalidConstructor, "", fn.Name, fn.Pos,
			"constructor must return Self or %s, found %s", storage, resultString(fn.Result))
	}
	if e := checkSignatureShape(fn, InvalidConstructor); e != nil {
		return nil, e
	}
	params, e := convertParams(fn.Params, InvalidConstructor, fn.Name)
	if e != nil {
		return nil, e
	}
	payable, e := flagAttr(fn.Attrs, "payable", InvalidConstructor, fn.Name)
	if e != nil {
		return nil, e
	}
	sel, e := selectorAttr(fn.Attrs, InvalidConstructor, fn.Name)
	if e != nil {
		return nil, e
	}

	c := &ir.Constructor{Name: fn.Name, Params: params, Payable: payable, Docs: fn.Docs, Pos: fn.Pos}
	if sel != nil {
		c.Selector, c.Explicit = *sel, true
	}
	return c, nil
}

// ConvertMessage converts a message. The receiver must be a reference; a
// mutable reference makes the message mutating.
func ConvertMessage(fn *syntax.Fn) (*ir.Message, error) {
	if e := checkAttrs(fn.Attrs, messageKeys, InvalidMessage, fn.Name); e != nil {
		return nil, e
	}
	switch fn.Receiver {
	case syntax.RefReceiver, syntax.RefMutReceiver:
	default:
		return nil, invariantError(InvalidMessage, "", fn.Name, fn.Pos,
			"message receiver must be &self or &mut self, found %q", fn.Receiver)
	}
	if e := checkSignatureShape(fn, InvalidMessage); e != nil {
		return nil, e
	}
	params, e := convertParams(fn.Params, InvalidMessage, fn.Name)
	if e != nil {
		return nil, e
	}
	payable, e := flagAttr(fn.Attrs, "payable", InvalidMessage, fn.Name)
	if e != nil {
		return nil, e
	}
	sel, e := selectorAttr(fn.Attrs, InvalidMessage, fn.Name)
	if e != nil {
		return nil, e
	}

	m := &ir.Message{
		Name:    fn.Name,
		Params:  params,
		Mutates: fn.Receiver == syntax.RefMutReceiver,
		Payable: payable,
		Docs:    fn.Docs,
		Pos:     fn.Pos,
	}
	if ret, e := returnDesc(fn, InvalidMessage); e != nil {
		return nil, e
	} else if ret != nil {
		m.Return, m.ReturnDisplay = ret, fn.Result.String()
	}
	if sel != nil {
		m.Selector, m.Explicit = *sel, true
	}
	return m, nil
}

// checkSignatureShape rejects generic and qualified (async, const, unsafe,
// extern) functions.
func checkSignatureShape(fn *syntax.Fn, failure Failure) *CompileError {
	if len(fn.Generics) > 0 {
		return shapeError(failure, fn.Name, fn.Pos, "must not be generic")
	}
	if len(fn.Modifiers) > 0 {
		return shapeError(failure, fn.Name, fn.Pos, "must not be %s", fn.Modifiers[0])
	}
	return nil
}

// returnDesc reduces the declared return type; nil means unit.
func returnDesc(fn *syntax.Fn, failure Failure) (*ir.TypeDesc, *CompileError) {
	if fn.Result == nil {
		return nil, nil
	}
	if fn.Result.Kind == syntax.TupleType && len(fn.Result.Args) == 0 {
		return nil, nil
	}
	if fn.Result.IsSelf() {
		return nil, shapeError(failure, fn.Name, fn.Pos, "must not return Self")
	}
	desc, e := descOf(fn.Result, failure, fn.Name, fn.Pos)
	if e != nil {
		e.Message = "return type: " + e.Message
		return nil, e
	}
	return &desc, nil
}

func isStorageType(t *syntax.Type, storage string) bool {
	if t == nil || t.Kind != syntax.PathType || len(t.Args) > 0 {
		return false
	}
	return t.IsSelf() || (storage != "" && len(t.Segments) == 1 && t.Segments[0] == storage)
}

func resultString(t *syntax.Type) string {
	if t == nil {
		return "()"
	}
	return t.String()
}

func implName(raw *syntax.Impl) string {
	if raw.Trait != nil {
		return "impl " + raw.Trait.String() + " for " + raw.SelfType.String()
	}
	return "impl " + raw.SelfType.String()
}
