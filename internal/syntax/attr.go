package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Attr is one ink! attribute argument: `message`, `payable`, `selector = 0xCAFE`.
// Value is unquoted when the argument was a string literal.
type Attr struct {
	Key      string
	Value    string
	HasValue bool
	Pos      Pos
}

func (a Attr) String() string {
	if a.HasValue {
		return a.Key + " = " + a.Value
	}
	return a.Key
}

// Attrs is an ordered attribute list.
type Attrs []Attr

// Has reports whether an argument with the key is present.
func (as Attrs) Has(key string) bool {
	_, ok := as.Get(key)
	return ok
}

// Get returns the first argument with the key.
func (as Attrs) Get(key string) (Attr, bool) {
	for _, a := range as {
		if a.Key == key {
			return a, true
		}
	}
	return Attr{}, false
}

// Keys returns argument keys in declaration order, duplicates included.
func (as Attrs) Keys() []string {
	keys := make([]string, len(as))
	for i, a := range as {
		keys[i] = a.Key
	}
	return keys
}

// inkPathPrefixes are the crate paths whose attributes carry ink! arguments.
var inkPathPrefixes = []string{"ink::", "ink_lang::"}

// ParseAttribute converts the text between `#[` and `]` into ink! arguments.
//
//	ink(message, payable)           -> message, payable
//	ink::contract                   -> contract
//	ink::chain_extension(extension = 1) -> chain_extension, extension = 1
//
// ok is false for attributes that are not ink! attributes (derive, cfg, doc).
func ParseAttribute(text string, pos Pos) (attrs Attrs, ok bool, err error) {
	text = strings.TrimSpace(text)
	path, rest := splitAttrPath(text)

	switch {
	case path == "ink":
		if rest == "" {
			return nil, true, fmt.Errorf("%s: empty ink attribute", pos)
		}
		args, err := parseParenArgs(rest, pos)
		if err != nil {
			return nil, true, err
		}
		if len(args) == 0 {
			return nil, true, fmt.Errorf("%s: empty ink attribute", pos)
		}
		return args, true, nil
	default:
		for _, prefix := range inkPathPrefixes {
			if !strings.HasPrefix(path, prefix) {
				continue
			}
			key := strings.TrimPrefix(path, prefix)
			if !isIdent(key) {
				return nil, true, fmt.Errorf("%s: invalid ink attribute path %q", pos, path)
			}
			attrs = Attrs{{Key: key, Pos: pos}}
			if rest != "" {
				args, err := parseParenArgs(rest, pos)
				if err != nil {
					return nil, true, err
				}
				attrs = append(attrs, args...)
			}
			return attrs, true, nil
		}
	}
	return nil, false, nil
}

// ParseArgs parses a comma separated argument list without surrounding
// parentheses, e.g. `message, selector = 0x01`.
func ParseArgs(text string, pos Pos) (Attrs, error) {
	var out Attrs
	for _, part := range splitTopLevel(text, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, err := parseArg(part, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// splitAttrPath separates the attribute path from a trailing `(...)` or `= ...`.
func splitAttrPath(text string) (path, rest string) {
	for i, r := range text {
		if r == '(' || r == '=' {
			return strings.Join(strings.Fields(text[:i]), ""), strings.TrimSpace(text[i:])
		}
	}
	return strings.Join(strings.Fields(text), ""), ""
}

func parseParenArgs(rest string, pos Pos) (Attrs, error) {
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return nil, fmt.Errorf("%s: malformed attribute arguments %q", pos, rest)
	}
	return ParseArgs(rest[1:len(rest)-1], pos)
}

func parseArg(part string, pos Pos) (Attr, error) {
	key, value, hasValue := strings.Cut(part, "=")
	key = strings.TrimSpace(key)
	if !isIdent(key) {
		return Attr{}, fmt.Errorf("%s: malformed attribute argument %q", pos, part)
	}
	a := Attr{Key: key, Pos: pos}
	if hasValue {
		value = strings.TrimSpace(value)
		if value == "" {
			return Attr{}, fmt.Errorf("%s: attribute argument %q has no value", pos, key)
		}
		if strings.HasPrefix(value, `"`) {
			unq, err := strconv.Unquote(value)
			if err != nil {
				return Attr{}, fmt.Errorf("%s: malformed string value for %q: %v", pos, key, err)
			}
			value = unq
		}
		a.Value = value
		a.HasValue = true
	}
	return a, nil
}

// splitTopLevel splits on sep outside brackets and string literals.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts   []string
		depth   int
		inStr   bool
		escaped bool
		start   int
	)
	for i, r := range s {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inStr = false
			}
			continue
		}
		switch r {
		case '"':
			inStr = true
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + len(string(sep))
			}
		}
	}
	return append(parts, s[start:])
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
