package compiler

import (
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/syntax"
)

// ConvertEvent converts a struct carrying the event marker. Fields marked
// topic are indexed; at most maxTopics may be.
func ConvertEvent(raw *syntax.Struct, maxTopics int) (*ir.Event, error) {
	if !raw.Attrs.Has("event") {
		return nil, annotationError(InvalidEvent, raw.Name, raw.Pos, "missing #[ink(event)] annotation")
	}
	if e := checkAttrs(raw.Attrs, eventKeys, InvalidEvent, raw.Name); e != nil {
		return nil, e
	}
	anonymous, e := flagAttr(raw.Attrs, "anonymous", InvalidEvent, raw.Name)
	if e != nil {
		return nil, e
	}
	if raw.Tuple {
		return nil, shapeError(InvalidEvent, raw.Name, raw.Pos, "event must be a struct with named fields")
	}
	if len(raw.Generics) > 0 {
		return nil, shapeError(InvalidEvent, raw.Name, raw.Pos, "event must not be generic")
	}

	ev := &ir.Event{Name: raw.Name, Anonymous: anonymous, Docs: raw.Docs, Pos: raw.Pos}
	for _, f := range raw.Fields {
		if e := checkAttrs(f.Attrs, eventFieldKeys, InvalidEvent, raw.Name); e != nil {
			return nil, e
		}
		field, e := convertField(f, InvalidEvent, raw.Name)
		if e != nil {
			return nil, e
		}
		ev.Fields = append(ev.Fields, ir.EventField{Field: field, Indexed: f.Attrs.Has("topic")})
	}
	if n := ev.Topics(); n > maxTopics {
		return nil, invariantError(InvalidEvent, TooManyTopics, raw.Name, raw.Pos,
			"event has %d indexed fields, limit is %d", n, maxTopics)
	}
	return ev, nil
}

// ConvertTest converts a test function: free-standing with no parameters.
func ConvertTest(raw *syntax.Fn) (*ir.Test, error) {
	if e := checkAttrs(raw.Attrs, testKeys, InvalidTest, raw.Name); e != nil {
		return nil, e
	}
	if raw.Receiver != syntax.NoReceiver {
		return nil, shapeError(InvalidTest, raw.Name, raw.Pos, "test function must not take %s", raw.Receiver)
	}
	if len(raw.Params) > 0 {
		return nil, shapeError(InvalidTest, raw.Name, raw.Params[0].Pos, "test function must take no parameters, found %d", len(raw.Params))
	}
	return &ir.Test{Name: raw.Name, E2E: raw.Attrs.Has("e2e_test"), Pos: raw.Pos}, nil
}

func isTest(attrs syntax.Attrs) bool {
	return attrs.Has("test") || attrs.Has("e2e_test")
}
