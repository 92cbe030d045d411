package rustfront

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/inkir/internal/syntax"
)

// reader converts one parsed file. Errors are collected so that every
// malformed attribute in the file is reported.
type reader struct {
	path string
	src  []byte
	errs []error
}

func (r *reader) errorf(n *sitter.Node, format string, args ...any) {
	r.errs = append(r.errs, &ParseError{Pos: r.pos(n), Message: fmt.Sprintf(format, args...)})
}

func (r *reader) pos(n *sitter.Node) syntax.Pos {
	return position(r.path, n)
}

func (r *reader) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(r.src)
}

// pending accumulates the outer attributes and doc comments preceding the
// next item, field or variant.
type pending struct {
	attrs syntax.Attrs
	docs  []string
	pos   syntax.Pos // first outer attribute
}

// start is where a declaration begins: its first outer attribute, or the
// node itself when it has none.
func (r *reader) start(n *sitter.Node, p pending) syntax.Pos {
	if p.pos.IsValid() {
		return p.pos
	}
	return r.pos(n)
}

// take consumes n when it is an attribute or comment.
func (r *reader) take(p *pending, n *sitter.Node) bool {
	switch n.Type() {
	case "attribute_item":
		if !p.pos.IsValid() {
			p.pos = r.pos(n)
		}
		r.attribute(p, n)
	case "line_comment", "block_comment":
		if doc, ok := docText(r.text(n)); ok {
			p.docs = append(p.docs, doc)
		}
	case "inner_attribute_item":
	default:
		return false
	}
	return true
}

func (r *reader) attribute(p *pending, n *sitter.Node) {
	text := strings.TrimSpace(r.text(n))
	text = strings.TrimSuffix(strings.TrimPrefix(text, "#["), "]")

	if doc, ok := docAttr(text); ok {
		p.docs = append(p.docs, doc)
		return
	}
	if strings.HasPrefix(strings.ReplaceAll(text, " ", ""), "ink_e2e::test") {
		p.attrs = append(p.attrs, syntax.Attr{Key: "e2e_test", Pos: r.pos(n)})
		return
	}
	attrs, ok, err := syntax.ParseAttribute(text, r.pos(n))
	if err != nil {
		r.errs = append(r.errs, &ParseError{Pos: r.pos(n), Message: err.Error()})
		return
	}
	if ok {
		p.attrs = append(p.attrs, attrs...)
	}
}

// items converts the declarations directly under a source file or
// declaration list.
func (r *reader) items(container *sitter.Node) []syntax.Item {
	var (
		out []syntax.Item
		p   pending
	)
	for i := 0; i < int(container.NamedChildCount()); i++ {
		n := container.NamedChild(i)
		if r.take(&p, n) {
			continue
		}
		if it := r.item(n, p); it != nil {
			out = append(out, it)
		}
		p = pending{}
	}
	return out
}

func (r *reader) item(n *sitter.Node, p pending) syntax.Item {
	switch n.Type() {
	case "mod_item":
		return r.mod(n, p)
	case "struct_item":
		return r.structItem(n, p)
	case "enum_item":
		return r.enum(n, p)
	case "impl_item":
		return r.impl(n, p)
	case "trait_item":
		return r.trait(n, p)
	case "function_item", "function_signature_item":
		return r.fn(n, p)
	case "empty_statement":
		return nil
	default:
		return r.other(n, p)
	}
}

func (r *reader) mod(n *sitter.Node, p pending) *syntax.Mod {
	m := &syntax.Mod{
		Name:  r.text(n.ChildByFieldName("name")),
		Attrs: p.attrs,
		Docs:  p.docs,
		Pos:   r.start(n, p),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		m.Inline = true
		m.Items = r.items(body)
	}
	return m
}

func (r *reader) structItem(n *sitter.Node, p pending) *syntax.Struct {
	s := &syntax.Struct{
		Name:     r.text(n.ChildByFieldName("name")),
		Attrs:    p.attrs,
		Docs:     p.docs,
		Generics: r.generics(n.ChildByFieldName("type_parameters")),
		Pos:      r.start(n, p),
	}
	body := n.ChildByFieldName("body")
	switch {
	case body == nil:
		s.Unit = true
	case body.Type() == "ordered_field_declaration_list":
		s.Tuple = true
		s.Fields = r.tupleFields(body)
	default:
		s.Fields = r.namedFields(body)
	}
	return s
}

func (r *reader) namedFields(list *sitter.Node) []syntax.Field {
	var (
		out []syntax.Field
		p   pending
	)
	for i := 0; i < int(list.NamedChildCount()); i++ {
		n := list.NamedChild(i)
		if r.take(&p, n) {
			continue
		}
		if n.Type() != "field_declaration" {
			continue
		}
		out = append(out, syntax.Field{
			Name:  r.text(n.ChildByFieldName("name")),
			Type:  r.typ(n.ChildByFieldName("type")),
			Attrs: p.attrs,
			Docs:  p.docs,
			Pos:   r.start(n, p),
		})
		p = pending{}
	}
	return out
}

func (r *reader) tupleFields(list *sitter.Node) []syntax.Field {
	var (
		out []syntax.Field
		p   pending
	)
	for i := 0; i < int(list.NamedChildCount()); i++ {
		n := list.NamedChild(i)
		if r.take(&p, n) || n.Type() == "visibility_modifier" {
			continue
		}
		out = append(out, syntax.Field{Type: r.typ(n), Attrs: p.attrs, Docs: p.docs, Pos: r.start(n, p)})
		p = pending{}
	}
	return out
}

func (r *reader) enum(n *sitter.Node, p pending) *syntax.Enum {
	e := &syntax.Enum{
		Name:     r.text(n.ChildByFieldName("name")),
		Attrs:    p.attrs,
		Docs:     p.docs,
		Generics: r.generics(n.ChildByFieldName("type_parameters")),
		Pos:      r.start(n, p),
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return e
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		vn := body.NamedChild(i)
		if vn.Type() != "enum_variant" {
			continue
		}
		v := syntax.Variant{Name: r.text(vn.ChildByFieldName("name")), Pos: r.pos(vn)}
		if vb := vn.ChildByFieldName("body"); vb != nil {
			if vb.Type() == "ordered_field_declaration_list" {
				v.Tuple = true
				v.Fields = r.tupleFields(vb)
			} else {
				v.Fields = r.namedFields(vb)
			}
		}
		e.Variants = append(e.Variants, v)
	}
	return e
}

func (r *reader) impl(n *sitter.Node, p pending) *syntax.Impl {
	im := &syntax.Impl{
		SelfType: r.typ(n.ChildByFieldName("type")),
		Attrs:    p.attrs,
		Docs:     p.docs,
		Generics: r.generics(n.ChildByFieldName("type_parameters")),
		Pos:      r.start(n, p),
	}
	if tr := n.ChildByFieldName("trait"); tr != nil {
		im.Trait = r.typ(tr)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		im.Items = r.items(body)
	}
	return im
}

func (r *reader) trait(n *sitter.Node, p pending) *syntax.Trait {
	t := &syntax.Trait{
		Name:     r.text(n.ChildByFieldName("name")),
		Attrs:    p.attrs,
		Docs:     p.docs,
		Generics: r.generics(n.ChildByFieldName("type_parameters")),
		Pos:      r.start(n, p),
	}
	if bounds := n.ChildByFieldName("bounds"); bounds != nil {
		for i := 0; i < int(bounds.NamedChildCount()); i++ {
			t.Supertraits = append(t.Supertraits, strings.Join(strings.Fields(r.text(bounds.NamedChild(i))), " "))
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		t.Items = r.items(body)
	}
	return t
}

func (r *reader) fn(n *sitter.Node, p pending) *syntax.Fn {
	f := &syntax.Fn{
		Name:     r.text(n.ChildByFieldName("name")),
		Attrs:    p.attrs,
		Docs:     p.docs,
		Generics: r.generics(n.ChildByFieldName("type_parameters")),
		HasBody:  n.ChildByFieldName("body") != nil,
		Pos:      r.start(n, p),
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "function_modifiers" {
			f.Modifiers = r.modifiers(c)
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		r.params(f, params)
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		f.Result = r.typ(ret)
	}
	return f
}

func (r *reader) modifiers(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "extern_modifier" {
			out = append(out, "extern")
			continue
		}
		out = append(out, r.text(c))
	}
	return out
}

func (r *reader) params(f *syntax.Fn, list *sitter.Node) {
	for i := 0; i < int(list.NamedChildCount()); i++ {
		n := list.NamedChild(i)
		switch n.Type() {
		case "self_parameter":
			f.Receiver = syntax.ParseReceiver(r.text(n))
		case "parameter":
			name := r.text(n.ChildByFieldName("pattern"))
			if name == "self" && len(f.Params) == 0 {
				// self: Box<Self> and friends.
				f.Receiver = syntax.OtherReceiver
				continue
			}
			name = strings.TrimSpace(strings.TrimPrefix(name, "mut "))
			f.Params = append(f.Params, syntax.Param{
				Name: name,
				Type: r.typ(n.ChildByFieldName("type")),
				Pos:  r.pos(n),
			})
		case "variadic_parameter":
			r.errorf(n, "variadic parameters are not supported")
		}
	}
}

func (r *reader) generics(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		name := c.ChildByFieldName("name")
		if name == nil {
			name = c.ChildByFieldName("left")
		}
		if name == nil {
			name = c
		}
		out = append(out, r.text(name))
	}
	return out
}

func (r *reader) typ(n *sitter.Node) *syntax.Type {
	if n == nil {
		return nil
	}
	t, err := syntax.ParseType(r.text(n))
	if err != nil {
		r.errorf(n, "%v", err)
		return nil
	}
	return t
}

var otherKinds = map[string]string{
	"use_declaration":          "use",
	"const_item":               "const",
	"static_item":              "static",
	"type_item":                "type",
	"associated_type":          "type",
	"macro_invocation":         "macro",
	"macro_definition":         "macro_rules",
	"extern_crate_declaration": "extern crate",
	"union_item":               "union",
	"foreign_mod_item":         "extern",
}

func (r *reader) other(n *sitter.Node, p pending) *syntax.Other {
	kind, ok := otherKinds[n.Type()]
	if !ok {
		kind = n.Type()
	}
	o := &syntax.Other{Kind: kind, Attrs: p.attrs, Pos: r.start(n, p)}
	switch n.Type() {
	case "use_declaration":
		o.Name = strings.Join(strings.Fields(r.text(n.ChildByFieldName("argument"))), "")
	case "macro_invocation":
		o.Name = r.text(n.ChildByFieldName("macro"))
	default:
		o.Name = r.text(n.ChildByFieldName("name"))
	}
	return o
}

// docText extracts the text of an outer doc comment.
func docText(comment string) (string, bool) {
	switch {
	case strings.HasPrefix(comment, "///") && !strings.HasPrefix(comment, "////"):
		return strings.TrimSpace(comment[3:]), true
	case strings.HasPrefix(comment, "/**") && !strings.HasPrefix(comment, "/***") && comment != "/**/":
		body := strings.TrimSuffix(comment[3:], "*/")
		lines := strings.Split(body, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimPrefix(strings.TrimSpace(l), "* ")
		}
		return strings.TrimSpace(strings.Join(lines, "\n")), true
	}
	return "", false
}

// docAttr extracts the text of `doc = "..."`.
func docAttr(text string) (string, bool) {
	key, value, ok := strings.Cut(text, "=")
	if !ok || strings.TrimSpace(key) != "doc" {
		return "", false
	}
	s, err := strconv.Unquote(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}
