package compiler

import (
	"golang.org/x/sync/errgroup"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/syntax"
)

// ConvertItem converts a declaration outside the contract module: a module,
// a trait definition, a chain extension, a test or a plain type. Anything
// else carrying ink! annotations is InvalidItem; unannotated declarations
// come back as *ir.OtherItem.
func ConvertItem(raw syntax.Item, opts Options) (ir.Item, error) {
	opts = opts.normalized()
	switch it := raw.(type) {
	case *syntax.Mod:
		m, err := ConvertModule(it, opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	case *syntax.Trait:
		return convertTraitItem(it)
	case *syntax.Fn:
		if isTest(it.Attrs) {
			return testItem(it, "")
		}
		if len(it.Attrs) > 0 {
			return nil, annotationError(InvalidItem, it.Name, it.Pos, "unexpected ink! annotation %q on a free function", it.Attrs[0].Key)
		}
		return &ir.OtherItem{Kind: "fn", Name: it.Name, Pos: it.Pos}, nil
	case *syntax.Impl:
		if hasInkAttrs(it) {
			return nil, shapeError(InvalidItem, implName(it), it.Pos, "ink! impl blocks must be inside the contract module")
		}
		return &ir.OtherItem{Kind: "impl", Name: implName(it), Pos: it.Pos}, nil
	case *syntax.Struct:
		if hasInkAttrs(it) {
			return nil, shapeError(InvalidItem, it.Name, it.Pos, "ink! storage and events must be inside the contract module")
		}
		return typeItem(it, it.Name, "struct")
	case *syntax.Enum:
		if len(it.Attrs) > 0 {
			return nil, shapeError(InvalidItem, it.Name, it.Pos, "unexpected ink! annotation %q on an enum", it.Attrs[0].Key)
		}
		return typeItem(it, it.Name, "enum")
	case *syntax.Other:
		if len(it.Attrs) > 0 {
			return nil, annotationError(InvalidItem, it.Name, it.Pos, "unexpected ink! annotation %q on %s", it.Attrs[0].Key, it.Kind)
		}
		return &ir.OtherItem{Kind: it.Kind, Name: it.Name, Pos: it.Pos}, nil
	default:
		return nil, shapeError(InvalidItem, "", raw.Position(), "unrecognized declaration %T", raw)
	}
}

// ConvertModule converts a module. The #[ink::contract] module must be
// inline and hold exactly one storage struct at its own scope; its members
// are converted in parallel and every failure is reported. Other modules
// may hold tests, traits, extensions and plain types only.
func ConvertModule(raw *syntax.Mod, opts Options) (*ir.ItemMod, error) {
	opts = opts.normalized()
	if !raw.Attrs.Has("contract") {
		return convertPlainModule(raw, opts)
	}
	if e := checkAttrs(raw.Attrs, moduleKeys, InvalidModule, raw.Name); e != nil {
		return nil, e
	}
	if !raw.Inline {
		return nil, shapeError(InvalidModule, raw.Name, raw.Pos, "contract module must be declared inline")
	}

	var storages []syntax.Item
	for _, it := range raw.Items {
		if it.Attributes().Has("storage") {
			storages = append(storages, it)
		}
	}
	// A storage count other than one is reported together with the
	// members' own failures. Without storage, impl blocks are checked
	// against their own self type; with several, against the first.
	var storageErr *CompileError
	storage := ""
	switch len(storages) {
	case 0:
		storageErr = invariantError(InvalidModule, NoStorage, raw.Name, raw.Pos, "contract module declares no #[ink(storage)] struct")
	case 1:
		storage = itemName(storages[0])
	default:
		storageErr = invariantError(InvalidModule, MultipleStorage, raw.Name, storages[1].Position(),
			"contract module declares %d #[ink(storage)] items, exactly one is allowed", len(storages))
		storage = itemName(storages[0])
	}

	items, err := convertAll(len(raw.Items), opts.Workers, func(i int) (ir.Item, error) {
		it := raw.Items[i]
		if impl, ok := it.(*syntax.Impl); ok && storage == "" && impl.SelfType != nil {
			return convertModuleItem(it, raw.Name, impl.SelfType.Name(), opts)
		}
		return convertModuleItem(it, raw.Name, storage, opts)
	})
	if storageErr != nil {
		var diags Diagnostics
		diags.collect(err)
		return nil, diags.insert(storageErr)
	}
	if err != nil {
		return nil, err
	}
	return &ir.ItemMod{Name: raw.Name, Contract: true, Items: items, Docs: raw.Docs, Pos: raw.Pos}, nil
}

func convertPlainModule(raw *syntax.Mod, opts Options) (*ir.ItemMod, error) {
	if len(raw.Attrs) > 0 {
		return nil, annotationError(InvalidModule, raw.Name, raw.Pos, "unexpected ink! annotation %q on a module", raw.Attrs[0].Key)
	}
	var diags Diagnostics
	mod := &ir.ItemMod{Name: raw.Name, Docs: raw.Docs, Pos: raw.Pos}
	for _, it := range raw.Items {
		if m, ok := it.(*syntax.Mod); ok && m.Attrs.Has("contract") {
			diags.collect(shapeError(InvalidModule, m.Name, m.Pos, "the contract module must not be nested"))
			continue
		}
		var (
			item ir.Item
			err  error
		)
		if fn, ok := it.(*syntax.Fn); ok && isTest(fn.Attrs) {
			item, err = testItem(fn, raw.Name)
		} else {
			item, err = ConvertItem(it, opts)
		}
		if err != nil {
			diags.collect(err)
			continue
		}
		mod.Items = append(mod.Items, item)
	}
	if err := diags.err(); err != nil {
		return nil, err
	}
	return mod, nil
}

// convertModuleItem converts one member of the contract module.
func convertModuleItem(raw syntax.Item, module, storage string, opts Options) (ir.Item, error) {
	switch it := raw.(type) {
	case *syntax.Struct:
		isStorage, isEvent := it.Attrs.Has("storage"), it.Attrs.Has("event")
		switch {
		case isStorage && isEvent:
			e := annotationError(InvalidItem, it.Name, it.Pos, "a struct is either storage or an event")
			e.Reason = ConflictingAnnotation
			return nil, e
		case isStorage:
			s, err := ConvertStorage(it)
			if err != nil {
				return nil, err
			}
			return s, nil
		case isEvent:
			ev, err := ConvertEvent(it, opts.MaxEventTopics)
			if err != nil {
				return nil, err
			}
			return ev, nil
		case hasInkAttrs(it):
			if len(it.Attrs) > 0 {
				return nil, annotationError(InvalidItem, it.Name, it.Pos, "unexpected ink! annotation %q on a struct", it.Attrs[0].Key)
			}
			return nil, annotationError(InvalidItem, it.Name, it.Pos, "field annotations require #[ink(event)]")
		}
		return typeItem(it, it.Name, "struct")
	case *syntax.Enum:
		if it.Attrs.Has("storage") || it.Attrs.Has("event") {
			return nil, shapeError(InvalidItem, it.Name, it.Pos, "storage and events must be structs, found enum")
		}
		if len(it.Attrs) > 0 {
			return nil, annotationError(InvalidItem, it.Name, it.Pos, "unexpected ink! annotation %q on an enum", it.Attrs[0].Key)
		}
		return typeItem(it, it.Name, "enum")
	case *syntax.Impl:
		return ConvertImpl(it, storage)
	case *syntax.Fn:
		if isTest(it.Attrs) {
			return testItem(it, module)
		}
		if len(it.Attrs) > 0 {
			return nil, annotationError(InvalidItem, it.Name, it.Pos, "constructors and messages must be inside an impl block")
		}
		return &ir.OtherItem{Kind: "fn", Name: it.Name, Pos: it.Pos}, nil
	case *syntax.Mod:
		if it.Attrs.Has("contract") {
			return nil, shapeError(InvalidModule, it.Name, it.Pos, "contract modules must not be nested")
		}
		m, err := ConvertModule(it, opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return ConvertItem(raw, opts)
	}
}

func testItem(fn *syntax.Fn, module string) (ir.Item, error) {
	t, err := ConvertTest(fn)
	if err != nil {
		return nil, err
	}
	t.Module = module
	return t, nil
}

func typeItem(raw syntax.Item, name, kind string) (ir.Item, error) {
	td, err := ConvertTypeDef(raw)
	if err != nil {
		return nil, err
	}
	if td == nil {
		return &ir.OtherItem{Kind: kind, Name: name, Pos: raw.Position()}, nil
	}
	return td, nil
}

func itemName(it syntax.Item) string {
	switch v := it.(type) {
	case *syntax.Struct:
		return v.Name
	case *syntax.Enum:
		return v.Name
	case *syntax.Mod:
		return v.Name
	case *syntax.Trait:
		return v.Name
	case *syntax.Fn:
		return v.Name
	case *syntax.Other:
		return v.Name
	case *syntax.Impl:
		return implName(v)
	}
	return ""
}

// convertAll runs convert for 0..n-1 on at most workers goroutines. Every
// conversion runs to completion; results and errors keep index order.
func convertAll[T any](n, workers int, convert func(i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	errs := make([]error, n)

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			out[i], errs[i] = convert(i)
			return nil
		})
	}
	_ = g.Wait()

	var diags Diagnostics
	for _, err := range errs {
		diags.collect(err)
	}
	if err := diags.err(); err != nil {
		return nil, err
	}
	return out, nil
}
