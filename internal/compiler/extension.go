package compiler

import (
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
)

// ConvertChainExtension converts a chain extension trait. The trait needs an
// explicit extension id. Every member must be a function signature with a
// function id unique within the extension; the only other member allowed is
// the associated ErrorCode type.
func ConvertChainExtension(raw *syntax.Trait) (*ir.ChainExtension, error) {
	if !raw.Attrs.Has("chain_extension") {
		return nil, annotationError(InvalidChainExtension, raw.Name, raw.Pos, "missing #[ink::chain_extension] annotation")
	}
	if e := checkAttrs(raw.Attrs, extensionKeys, InvalidChainExtension, raw.Name); e != nil {
		return nil, e
	}
	if len(raw.Generics) > 0 {
		return nil, shapeError(InvalidChainExtension, raw.Name, raw.Pos, "chain extension must not be generic")
	}
	extID, present, e := u16Attr(raw.Attrs, "extension", InvalidChainExtension, raw.Name)
	if e != nil {
		return nil, e
	}
	if !present {
		return nil, annotationError(InvalidChainExtension, raw.Name, raw.Pos, "missing extension id: use #[ink::chain_extension(extension = N)]")
	}

	ext := &ir.ChainExtension{Name: raw.Name, ID: extID, Docs: raw.Docs, Pos: raw.Pos}
	var diags Diagnostics
	byID := make(map[uint16]string)
	for _, member := range raw.Items {
		fn, ok := member.(*syntax.Fn)
		if !ok {
			if o, isOther := member.(*syntax.Other); isOther && o.Kind == "type" && o.Name == "ErrorCode" && len(o.Attrs) == 0 {
				continue
			}
			diags.collect(shapeError(InvalidChainExtension, raw.Name, member.Position(), "only function signatures and `type ErrorCode` are allowed"))
			continue
		}
		f, e := convertExtensionFunction(raw.Name, extID, fn)
		if e != nil {
			diags.collect(e)
			continue
		}
		if prev, dup := byID[f.ID]; dup {
			diags.collect(invariantError(InvalidChainExtension, DuplicateFunctionID, raw.Name, fn.Pos,
				"function id %d of %s is already used by %s", f.ID, f.Name, prev))
			continue
		}
		byID[f.ID] = f.Name
		ext.Functions = append(ext.Functions, f)
	}
	if err := diags.err(); err != nil {
		return nil, err
	}
	return ext, nil
}

func convertExtensionFunction(ext string, extID uint16, fn *syntax.Fn) (ir.ExtensionFunction, *CompileError) {
	item := ext + "::" + fn.Name
	if e := checkAttrs(fn.Attrs, extFnKeys, InvalidChainExtension, item); e != nil {
		return ir.ExtensionFunction{}, e
	}
	if fn.Attrs.Has("function") && fn.Attrs.Has("extension") {
		e := annotationError(InvalidChainExtension, item, fn.Pos, "use either function or extension, not both")
		e.Reason = ConflictingAnnotation
		return ir.ExtensionFunction{}, e
	}
	key := "function"
	if fn.Attrs.Has("extension") {
		key = "extension"
	}
	id, present, e := u16Attr(fn.Attrs, key, InvalidChainExtension, item)
	if e != nil {
		return ir.ExtensionFunction{}, e
	}
	if !present {
		return ir.ExtensionFunction{}, annotationError(InvalidChainExtension, item, fn.Pos, "missing #[ink(function = N)] annotation")
	}
	if fn.Receiver != syntax.NoReceiver {
		return ir.ExtensionFunction{}, shapeError(InvalidChainExtension, item, fn.Pos, "extension functions must not take %s", fn.Receiver)
	}
	if fn.HasBody {
		return ir.ExtensionFunction{}, shapeError(InvalidChainExtension, item, fn.Pos, "extension functions must not have a body")
	}
	if e := checkSignatureShape(fn, InvalidChainExtension); e != nil {
		e.Item = item
		return ir.ExtensionFunction{}, e
	}
	params, e := convertParams(fn.Params, InvalidChainExtension, item)
	if e != nil {
		return ir.ExtensionFunction{}, e
	}
	ret, e := returnDesc(fn, InvalidChainExtension)
	if e != nil {
		e.Item = item
		return ir.ExtensionFunction{}, e
	}
	handle := true
	if fn.Attrs.Has("handle_status") {
		if handle, e = flagAttr(fn.Attrs, "handle_status", InvalidChainExtension, item); e != nil {
			return ir.ExtensionFunction{}, e
		}
	}
	return ir.ExtensionFunction{
		Name:         fn.Name,
		ID:           id,
		Params:       params,
		Return:       ret,
		HandleStatus: handle,
		Selector:     selector.ExtensionSelector(extID, id),
		Pos:          fn.Pos,
	}, nil
}
