package compiler

import (
	"strconv"
	"strings"

	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
)

// Annotation keys accepted per declaration role.
var (
	moduleKeys      = keySet("contract", "env", "keep_attr")
	storageKeys     = keySet("storage")
	eventKeys       = keySet("event", "anonymous")
	eventFieldKeys  = keySet("topic")
	implKeys        = keySet("impl", "namespace")
	constructorKeys = keySet("constructor", "payable", "selector", "default")
	messageKeys     = keySet("message", "payable", "selector", "default")
	helperKeys      = keySet("helper")
	testKeys        = keySet("test", "e2e_test")
	traitKeys       = keySet("trait_definition", "namespace", "keep_attr")
	traitMsgKeys    = keySet("message", "payable", "selector")
	extensionKeys   = keySet("chain_extension", "extension")
	extFnKeys       = keySet("function", "extension", "handle_status")
)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// checkAttrs rejects unknown and duplicated annotation keys.
func checkAttrs(attrs syntax.Attrs, allowed map[string]bool, failure Failure, item string) *CompileError {
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if !allowed[a.Key] {
			e := annotationError(failure, item, a.Pos, "unknown ink! annotation %q here", a.Key)
			e.Reason = UnknownAnnotation
			return e
		}
		if seen[a.Key] {
			e := annotationError(failure, item, a.Pos, "duplicate ink! annotation %q", a.Key)
			e.Reason = DuplicateAnnotation
			return e
		}
		seen[a.Key] = true
	}
	return nil
}

// flagAttr reads a flag that may be written bare or as `key = true|false`.
func flagAttr(attrs syntax.Attrs, key string, failure Failure, item string) (bool, *CompileError) {
	a, ok := attrs.Get(key)
	if !ok {
		return false, nil
	}
	if !a.HasValue {
		return true, nil
	}
	v, err := strconv.ParseBool(a.Value)
	if err != nil {
		return false, annotationError(failure, item, a.Pos, "%s expects a boolean, got %q", key, a.Value)
	}
	return v, nil
}

// selectorAttr reads an explicit selector override.
func selectorAttr(attrs syntax.Attrs, failure Failure, item string) (*selector.Selector, *CompileError) {
	a, ok := attrs.Get("selector")
	if !ok {
		return nil, nil
	}
	if !a.HasValue {
		return nil, annotationError(failure, item, a.Pos, "selector annotation requires a value")
	}
	if strings.TrimSpace(a.Value) == "_" {
		return nil, annotationError(failure, item, a.Pos, "wildcard selectors are not supported")
	}
	sel, err := selector.Parse(a.Value)
	if err != nil {
		return nil, annotationError(failure, item, a.Pos, "%v", err)
	}
	return &sel, nil
}

// u16Attr reads a numeric id annotation such as `extension = 1`.
func u16Attr(attrs syntax.Attrs, key string, failure Failure, item string) (uint16, bool, *CompileError) {
	a, ok := attrs.Get(key)
	if !ok {
		return 0, false, nil
	}
	if !a.HasValue {
		return 0, true, annotationError(failure, item, a.Pos, "%s annotation requires a value", key)
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(a.Value, "_", ""), 0, 16)
	if err != nil {
		return 0, true, annotationError(failure, item, a.Pos, "%s must be an integer in 0..=65535, got %q", key, a.Value)
	}
	return uint16(v), true, nil
}

// stringAttr reads a string-valued annotation such as `namespace = "erc20"`.
func stringAttr(attrs syntax.Attrs, key string, failure Failure, item string) (string, *CompileError) {
	a, ok := attrs.Get(key)
	if !ok {
		return "", nil
	}
	if !a.HasValue || strings.TrimSpace(a.Value) == "" {
		return "", annotationError(failure, item, a.Pos, "%s annotation requires a non-empty value", key)
	}
	return strings.TrimSpace(a.Value), nil
}

// hasInkAttrs reports whether the item or any nested member carries ink!
// annotations.
func hasInkAttrs(item syntax.Item) bool {
	if len(item.Attributes()) > 0 {
		return true
	}
	var members []syntax.Item
	switch it := item.(type) {
	case *syntax.Impl:
		members = it.Items
	case *syntax.Trait:
		members = it.Items
	case *syntax.Struct:
		for _, f := range it.Fields {
			if len(f.Attrs) > 0 {
				return true
			}
		}
	}
	for _, m := range members {
		if len(m.Attributes()) > 0 {
			return true
		}
	}
	return false
}
