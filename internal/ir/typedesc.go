package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/inkir/internal/syntax"
)

// DescFromSyntax reduces a parsed type expression to a descriptor.
// References, bare Self, trait objects and array lengths that are not
// integer literals are rejected.
func DescFromSyntax(t *syntax.Type) (TypeDesc, error) {
	if t == nil {
		return TypeDesc{Kind: KindTuple}, nil
	}
	switch t.Kind {
	case syntax.PathType:
		if t.IsSelf() {
			return TypeDesc{}, fmt.Errorf("bare Self is not allowed here")
		}
		args, err := descList(t.Args)
		if err != nil {
			return TypeDesc{}, err
		}
		return TypeDesc{Kind: KindPath, Path: append([]string(nil), t.Segments...), Args: args}, nil
	case syntax.TupleType:
		elems, err := descList(t.Args)
		if err != nil {
			return TypeDesc{}, err
		}
		return TypeDesc{Kind: KindTuple, Args: elems}, nil
	case syntax.ArrayType:
		n, err := parseArrayLen(t.Len)
		if err != nil {
			return TypeDesc{}, err
		}
		elem, err := DescFromSyntax(t.Args[0])
		if err != nil {
			return TypeDesc{}, err
		}
		return TypeDesc{Kind: KindArray, Args: []TypeDesc{elem}, Len: n}, nil
	case syntax.SliceType:
		elem, err := DescFromSyntax(t.Args[0])
		if err != nil {
			return TypeDesc{}, err
		}
		return TypeDesc{Kind: KindSlice, Args: []TypeDesc{elem}}, nil
	case syntax.RefType:
		return TypeDesc{}, fmt.Errorf("reference type %q is not allowed", t.String())
	default:
		return TypeDesc{}, fmt.Errorf("type %q has no structural description", t.String())
	}
}

// ParseTypeDesc parses and reduces type text in one step.
func ParseTypeDesc(text string) (TypeDesc, error) {
	t, err := syntax.ParseType(text)
	if err != nil {
		return TypeDesc{}, err
	}
	return DescFromSyntax(t)
}

func descList(ts []*syntax.Type) ([]TypeDesc, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]TypeDesc, len(ts))
	for i, t := range ts {
		d, err := DescFromSyntax(t)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func parseArrayLen(text string) (uint64, error) {
	s := strings.TrimSuffix(strings.ReplaceAll(text, "_", ""), "usize")
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("array length %q must be an integer literal", text)
	}
	return n, nil
}
