package syntax

import (
	"fmt"
	"strings"
	"unicode"
)

// TypeKind is the shape of a type expression.
type TypeKind int

const (
	PathType  TypeKind = iota // Vec<u8>, ink::primitives::AccountId, Self
	TupleType                 // (A, B), ()
	ArrayType                 // [u8; 32]
	SliceType                 // [u8]
	RefType                   // &T, &mut T
	OtherType                 // impl Trait, dyn Trait, fn(..), _, !, <T as X>::Y
)

// Type is a parsed type expression. Lifetimes are dropped.
type Type struct {
	Kind     TypeKind
	Segments []string // PathType segments
	Args     []*Type  // generic arguments, tuple elements, or the single element type
	Len      string   // ArrayType length as written
	Mut      bool     // RefType
	Text     string   // OtherType source text
	Pos      Pos
}

// Name returns the last path segment, or "" for non-path types.
func (t *Type) Name() string {
	if t == nil || t.Kind != PathType || len(t.Segments) == 0 {
		return ""
	}
	return t.Segments[len(t.Segments)-1]
}

// IsSelf reports whether the type is the bare `Self` path.
func (t *Type) IsSelf() bool {
	return t != nil && t.Kind == PathType && len(t.Segments) == 1 && t.Segments[0] == "Self" && len(t.Args) == 0
}

// String renders the type without insignificant whitespace.
func (t *Type) String() string {
	if t == nil {
		return "()"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.Kind {
	case PathType:
		b.WriteString(strings.Join(t.Segments, "::"))
		if len(t.Args) > 0 {
			b.WriteByte('<')
			writeList(b, t.Args)
			b.WriteByte('>')
		}
	case TupleType:
		b.WriteByte('(')
		writeList(b, t.Args)
		if len(t.Args) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case ArrayType:
		b.WriteByte('[')
		t.Args[0].write(b)
		b.WriteString("; ")
		b.WriteString(t.Len)
		b.WriteByte(']')
	case SliceType:
		b.WriteByte('[')
		t.Args[0].write(b)
		b.WriteByte(']')
	case RefType:
		b.WriteByte('&')
		if t.Mut {
			b.WriteString("mut ")
		}
		t.Args[0].write(b)
	default:
		b.WriteString(t.Text)
	}
}

func writeList(b *strings.Builder, ts []*Type) {
	for i, a := range ts {
		if i > 0 {
			b.WriteString(", ")
		}
		a.write(b)
	}
}

// ParseType parses a Rust type expression. Shapes the IR cannot describe
// (trait objects, impl Trait, function pointers, qualified paths) parse
// successfully as OtherType; only malformed text is an error.
func ParseType(text string) (*Type, error) {
	toks, err := lexType(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty type")
	}
	p := &typeParser{toks: toks}
	t, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", text, err)
	}
	if !p.done() {
		return nil, fmt.Errorf("type %q: unexpected %q", text, p.peek())
	}
	return t, nil
}

// MustParseType is like ParseType but panics on error.
// Use only in tests or with literal input.
func MustParseType(text string) *Type {
	t, err := ParseType(text)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	toks []string
	i    int
}

func (p *typeParser) done() bool   { return p.i >= len(p.toks) }
func (p *typeParser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.i]
}
func (p *typeParser) next() string {
	t := p.peek()
	p.i++
	return t
}

func (p *typeParser) expect(tok string) error {
	if got := p.next(); got != tok {
		if got == "" {
			return fmt.Errorf("expected %q, got end of input", tok)
		}
		return fmt.Errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *typeParser) parse() (*Type, error) {
	switch tok := p.peek(); {
	case tok == "":
		return nil, fmt.Errorf("unexpected end of input")
	case tok == "&":
		p.next()
		if strings.HasPrefix(p.peek(), "'") {
			p.next()
		}
		mut := false
		if p.peek() == "mut" {
			p.next()
			mut = true
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: RefType, Mut: mut, Args: []*Type{elem}}, nil
	case tok == "(":
		return p.parseTuple()
	case tok == "[":
		return p.parseBracket()
	case tok == "_" || tok == "!" || tok == "impl" || tok == "dyn" || tok == "fn" || tok == "<" || tok == "*" ||
		tok == "unsafe" || tok == "extern":
		return p.parseOther()
	case tok == "::" || isIdentToken(tok):
		return p.parsePath()
	default:
		return nil, fmt.Errorf("unexpected %q", tok)
	}
}

func (p *typeParser) parseTuple() (*Type, error) {
	p.next() // (
	t := &Type{Kind: TupleType}
	trailingComma := false
	for p.peek() != ")" {
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		t.Args = append(t.Args, elem)
		trailingComma = false
		if p.peek() == "," {
			p.next()
			trailingComma = true
			continue
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("expected \",\" or \")\", got %q", p.peek())
		}
	}
	p.next() // )
	if len(t.Args) == 1 && !trailingComma {
		// (T) is a parenthesised type, not a 1-tuple.
		return t.Args[0], nil
	}
	return t, nil
}

func (p *typeParser) parseBracket() (*Type, error) {
	p.next() // [
	elem, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.peek() == "]" {
		p.next()
		return &Type{Kind: SliceType, Args: []*Type{elem}}, nil
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	var lenToks []string
	depth := 0
	for {
		tok := p.peek()
		if tok == "" {
			return nil, fmt.Errorf("unterminated array type")
		}
		if tok == "]" && depth == 0 {
			break
		}
		switch tok {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
		lenToks = append(lenToks, p.next())
	}
	p.next() // ]
	if len(lenToks) == 0 {
		return nil, fmt.Errorf("array type without length")
	}
	return &Type{Kind: ArrayType, Args: []*Type{elem}, Len: strings.Join(lenToks, "")}, nil
}

func (p *typeParser) parsePath() (*Type, error) {
	t := &Type{Kind: PathType}
	if p.peek() == "::" {
		p.next()
	}
	for {
		seg := p.next()
		if !isIdentToken(seg) {
			return nil, fmt.Errorf("expected path segment, got %q", seg)
		}
		t.Segments = append(t.Segments, seg)
		if p.peek() == "::" && p.i+1 < len(p.toks) && p.toks[p.i+1] == "<" {
			p.next() // turbofish
		}
		if p.peek() == "<" {
			args, err := p.parseGenericArgs()
			if err != nil {
				return nil, err
			}
			t.Args = args
			if p.peek() == "::" {
				// Foo<T>::Bar is an associated item path.
				return &Type{Kind: OtherType, Text: t.String() + p.restUntilDelim()}, nil
			}
			return t, nil
		}
		if p.peek() != "::" {
			return t, nil
		}
		p.next()
	}
}

func (p *typeParser) parseGenericArgs() ([]*Type, error) {
	p.next() // <
	var args []*Type
	for p.peek() != ">" {
		if strings.HasPrefix(p.peek(), "'") {
			p.next()
		} else {
			arg, err := p.parse()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if p.peek() == "," {
			p.next()
			continue
		}
		if p.peek() != ">" {
			return nil, fmt.Errorf("expected \",\" or \">\", got %q", p.peek())
		}
	}
	p.next() // >
	return args, nil
}

// parseOther consumes a type the IR does not model, up to the next
// delimiter at the current nesting depth.
func (p *typeParser) parseOther() (*Type, error) {
	text := p.restUntilDelim()
	if text == "" {
		return nil, fmt.Errorf("unexpected %q", p.peek())
	}
	return &Type{Kind: OtherType, Text: text}, nil
}

func (p *typeParser) restUntilDelim() string {
	var parts []string
	depth := 0
	for !p.done() {
		tok := p.peek()
		if depth == 0 && (tok == "," || tok == ">" || tok == ")" || tok == "]" || tok == ";") {
			break
		}
		switch tok {
		case "(", "[", "<", "{":
			depth++
		case ")", "]", ">", "}":
			depth--
		}
		parts = append(parts, p.next())
	}
	return joinTokens(parts)
}

func joinTokens(parts []string) string {
	var b strings.Builder
	for i, tok := range parts {
		if i > 0 && isIdentToken(tok) && isIdentToken(parts[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func isIdentToken(tok string) bool {
	if tok == "" {
		return false
	}
	r := []rune(tok)[0]
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lexType splits a type expression into tokens. "::" and "->" are single
// tokens; lifetimes keep their leading quote.
func lexType(text string) ([]string, error) {
	var toks []string
	rs := []rune(text)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == ':' && i+1 < len(rs) && rs[i+1] == ':':
			toks = append(toks, "::")
			i += 2
		case r == '-' && i+1 < len(rs) && rs[i+1] == '>':
			toks = append(toks, "->")
			i += 2
		case r == '\'':
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			j := i
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		case strings.ContainsRune("<>()[]{},;&*!+=", r):
			toks = append(toks, string(r))
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q in type", r)
		}
	}
	return toks, nil
}
