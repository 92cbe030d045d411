package cuefront

import (
	"cuelang.org/go/cue"

	"github.com/roach88/inkir/internal/syntax"
)

var (
	contractFields    = []string{"docs", "storage", "events", "types", "constructors", "messages", "impls", "tests"}
	storageFields     = []string{"name", "docs", "fields"}
	eventFields       = []string{"docs", "anonymous", "fields"}
	fieldFields       = []string{"type", "topic", "docs"}
	typeFields        = []string{"docs", "fields", "variants"}
	implFields        = []string{"trait", "namespace", "constructors", "messages"}
	constructorFields = []string{"docs", "params", "payable", "selector", "default"}
	messageFields     = []string{"docs", "params", "returns", "mutates", "payable", "selector", "default"}
	testFields        = []string{"e2e"}
	traitFields       = []string{"docs", "namespace", "messages"}
	traitMsgFields    = []string{"docs", "params", "returns", "mutates", "payable", "selector"}
	extensionFields   = []string{"docs", "id", "functions"}
	extFnFields       = []string{"docs", "id", "params", "returns", "handle_status"}
)

func (d *decoder) contract(name string, v cue.Value) *syntax.Mod {
	d.known(v, " in contract "+name, contractFields...)
	m := &syntax.Mod{
		Name:   name,
		Attrs:  syntax.Attrs{attr(v, "contract")},
		Docs:   d.docs(v),
		Inline: true,
		Pos:    pos(v.Pos()),
	}

	if sv, ok := lookup(v, "storage"); ok {
		m.Items = append(m.Items, d.storage(sv))
	}
	d.each(v, "events", func(name string, ev cue.Value) {
		m.Items = append(m.Items, d.event(name, ev))
	})
	d.each(v, "types", func(name string, tv cue.Value) {
		if it := d.typeDef(name, tv); it != nil {
			m.Items = append(m.Items, it)
		}
	})

	selfType := syntax.MustParseType("Self")
	if sv, ok := lookup(v, "storage"); ok {
		if n := d.str(sv, "name"); n != "" {
			if t, err := syntax.ParseType(n); err == nil {
				selfType = t
			}
		}
	}

	_, hasCtors := lookup(v, "constructors")
	_, hasMsgs := lookup(v, "messages")
	if hasCtors || hasMsgs {
		m.Items = append(m.Items, d.impl(v, selfType, nil, nil))
	}
	if iv, ok := lookup(v, "impls"); ok {
		iter, err := iv.List()
		if err != nil {
			d.errs = append(d.errs, formatCUEError(err, iv.Path().String()))
		} else {
			for iter.Next() {
				d.known(iter.Value(), " in impl", implFields...)
				m.Items = append(m.Items, d.implBlock(iter.Value(), selfType))
			}
		}
	}

	d.each(v, "tests", func(name string, tv cue.Value) {
		d.known(tv, " in test "+name, testFields...)
		key := "test"
		if d.flag(tv, "e2e") {
			key = "e2e_test"
		}
		m.Items = append(m.Items, &syntax.Fn{
			Name:    name,
			Attrs:   syntax.Attrs{attr(tv, key)},
			HasBody: true,
			Pos:     pos(tv.Pos()),
		})
	})
	return m
}

func (d *decoder) storage(v cue.Value) *syntax.Struct {
	d.known(v, " in storage", storageFields...)
	s := &syntax.Struct{
		Name:  d.str(v, "name"),
		Attrs: syntax.Attrs{attr(v, "storage")},
		Docs:  d.docs(v),
		Pos:   pos(v.Pos()),
	}
	if s.Name == "" {
		d.fail(v, "storage name is required")
	}
	s.Fields = d.fields(v)
	s.Unit = len(s.Fields) == 0
	return s
}

func (d *decoder) event(name string, v cue.Value) *syntax.Struct {
	d.known(v, " in event "+name, eventFields...)
	s := &syntax.Struct{
		Name:  name,
		Attrs: syntax.Attrs{attr(v, "event")},
		Docs:  d.docs(v),
		Pos:   pos(v.Pos()),
	}
	if d.flag(v, "anonymous") {
		s.Attrs = append(s.Attrs, attr(v, "anonymous"))
	}
	s.Fields = d.fields(v)
	s.Unit = len(s.Fields) == 0
	return s
}

// fields reads `fields: {name: "Type"}` or `fields: {name: {type: "Type",
// topic: true}}`.
func (d *decoder) fields(v cue.Value) []syntax.Field {
	var out []syntax.Field
	d.each(v, "fields", func(name string, fv cue.Value) {
		f := syntax.Field{Name: name, Pos: pos(fv.Pos())}
		if fv.IncompleteKind() == cue.StructKind {
			d.known(fv, " in field "+name, fieldFields...)
			if tv, ok := lookup(fv, "type"); ok {
				f.Type = d.typ(tv)
			} else {
				d.fail(fv, "field type is required")
			}
			if d.flag(fv, "topic") {
				f.Attrs = syntax.Attrs{attr(fv, "topic")}
			}
			f.Docs = d.docs(fv)
		} else {
			f.Type = d.typ(fv)
		}
		out = append(out, f)
	})
	return out
}

func (d *decoder) typeDef(name string, v cue.Value) syntax.Item {
	d.known(v, " in type "+name, typeFields...)
	_, hasFields := lookup(v, "fields")
	if _, ok := lookup(v, "variants"); !ok || hasFields {
		s := &syntax.Struct{Name: name, Docs: d.docs(v), Pos: pos(v.Pos())}
		s.Fields = d.fields(v)
		s.Unit = len(s.Fields) == 0
		return s
	}

	e := &syntax.Enum{Name: name, Docs: d.docs(v), Pos: pos(v.Pos())}
	d.each(v, "variants", func(vname string, vv cue.Value) {
		variant := syntax.Variant{Name: vname, Pos: pos(vv.Pos())}
		switch vv.IncompleteKind() {
		case cue.ListKind:
			variant.Tuple = true
			iter, err := vv.List()
			if err != nil {
				d.errs = append(d.errs, formatCUEError(err, vv.Path().String()))
				break
			}
			for iter.Next() {
				variant.Fields = append(variant.Fields, syntax.Field{Type: d.typ(iter.Value()), Pos: pos(iter.Value().Pos())})
			}
		case cue.StructKind:
			iter, err := vv.Fields()
			if err != nil {
				d.errs = append(d.errs, formatCUEError(err, vv.Path().String()))
				break
			}
			for iter.Next() {
				variant.Fields = append(variant.Fields, syntax.Field{Name: iter.Label(), Type: d.typ(iter.Value()), Pos: pos(iter.Value().Pos())})
			}
		default:
			d.fail(vv, "variant must be a list of types or a struct of fields")
		}
		e.Variants = append(e.Variants, variant)
	})
	return e
}

// implBlock reads one entry of `impls`.
func (d *decoder) implBlock(v cue.Value, selfType *syntax.Type) *syntax.Impl {
	var (
		trait *syntax.Type
		attrs syntax.Attrs
	)
	if tv, ok := lookup(v, "trait"); ok {
		trait = d.typ(tv)
	}
	if nv, ok := lookup(v, "namespace"); ok {
		attrs = append(attrs, valueAttr(nv, "namespace", d.str(v, "namespace")))
	}
	return d.impl(v, selfType, trait, attrs)
}

func (d *decoder) impl(v cue.Value, selfType, trait *syntax.Type, attrs syntax.Attrs) *syntax.Impl {
	im := &syntax.Impl{SelfType: selfType, Trait: trait, Attrs: attrs, Pos: pos(v.Pos())}
	d.each(v, "constructors", func(name string, cv cue.Value) {
		d.known(cv, " in constructor "+name, constructorFields...)
		fn := d.fn(name, cv, "constructor")
		fn.Result = syntax.MustParseType("Self")
		im.Items = append(im.Items, fn)
	})
	d.each(v, "messages", func(name string, mv cue.Value) {
		d.known(mv, " in message "+name, messageFields...)
		im.Items = append(im.Items, d.message(name, mv, true))
	})
	return im
}

// fn reads the parts shared by constructors, messages and extension
// functions: docs, params, payable, selector and default.
func (d *decoder) fn(name string, v cue.Value, role string) *syntax.Fn {
	fn := &syntax.Fn{
		Name:    name,
		Attrs:   syntax.Attrs{attr(v, role)},
		Docs:    d.docs(v),
		HasBody: true,
		Pos:     pos(v.Pos()),
	}
	d.each(v, "params", func(pname string, pv cue.Value) {
		fn.Params = append(fn.Params, syntax.Param{Name: pname, Type: d.typ(pv), Pos: pos(pv.Pos())})
	})
	for _, key := range []string{"payable", "default"} {
		if d.flag(v, key) {
			fn.Attrs = append(fn.Attrs, attr(v, key))
		}
	}
	if sv, ok := lookup(v, "selector"); ok {
		fn.Attrs = append(fn.Attrs, valueAttr(sv, "selector", d.number(sv)))
	}
	return fn
}

func (d *decoder) message(name string, v cue.Value, body bool) *syntax.Fn {
	fn := d.fn(name, v, "message")
	fn.HasBody = body
	fn.Receiver = syntax.RefReceiver
	if d.flag(v, "mutates") {
		fn.Receiver = syntax.RefMutReceiver
	}
	if rv, ok := lookup(v, "returns"); ok {
		fn.Result = d.typ(rv)
	}
	return fn
}

func (d *decoder) trait(name string, v cue.Value) *syntax.Trait {
	d.known(v, " in trait "+name, traitFields...)
	t := &syntax.Trait{
		Name:  name,
		Attrs: syntax.Attrs{attr(v, "trait_definition")},
		Docs:  d.docs(v),
		Pos:   pos(v.Pos()),
	}
	if nv, ok := lookup(v, "namespace"); ok {
		t.Attrs = append(t.Attrs, valueAttr(nv, "namespace", d.str(v, "namespace")))
	}
	d.each(v, "messages", func(mname string, mv cue.Value) {
		d.known(mv, " in trait message "+mname, traitMsgFields...)
		t.Items = append(t.Items, d.message(mname, mv, false))
	})
	return t
}

func (d *decoder) extension(name string, v cue.Value) *syntax.Trait {
	d.known(v, " in extension "+name, extensionFields...)
	t := &syntax.Trait{
		Name:  name,
		Attrs: syntax.Attrs{attr(v, "chain_extension")},
		Docs:  d.docs(v),
		Pos:   pos(v.Pos()),
	}
	if iv, ok := lookup(v, "id"); ok {
		t.Attrs = append(t.Attrs, valueAttr(iv, "extension", d.number(iv)))
	}
	d.each(v, "functions", func(fname string, fv cue.Value) {
		d.known(fv, " in extension function "+fname, extFnFields...)
		fn := &syntax.Fn{Name: fname, Docs: d.docs(fv), Pos: pos(fv.Pos())}
		if iv, ok := lookup(fv, "id"); ok {
			fn.Attrs = append(fn.Attrs, valueAttr(iv, "function", d.number(iv)))
		}
		if hv, ok := lookup(fv, "handle_status"); ok {
			b, err := hv.Bool()
			if err != nil {
				d.errs = append(d.errs, formatCUEError(err, hv.Path().String()))
			}
			fn.Attrs = append(fn.Attrs, valueAttr(hv, "handle_status", boolText(b)))
		}
		d.each(fv, "params", func(pname string, pv cue.Value) {
			fn.Params = append(fn.Params, syntax.Param{Name: pname, Type: d.typ(pv), Pos: pos(pv.Pos())})
		})
		if rv, ok := lookup(fv, "returns"); ok {
			fn.Result = d.typ(rv)
		}
		t.Items = append(t.Items, fn)
	})
	return t
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
