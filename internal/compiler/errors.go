package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
)

// Kind is the error taxonomy.
type Kind string

const (
	// SyntaxShapeError: the raw form matches no recognized IR shape.
	SyntaxShapeError Kind = "SyntaxShapeError"
	// AnnotationError: a required role annotation is missing or malformed.
	AnnotationError Kind = "AnnotationError"
	// InvariantViolation: e.g. zero or multiple storages, ambiguous impl item.
	InvariantViolation Kind = "InvariantViolation"
	// SelectorCollision: two members share a 4-byte selector.
	SelectorCollision Kind = "SelectorCollision"
	// UnsupportedType: a type cannot be reduced for metadata.
	UnsupportedType Kind = "UnsupportedType"
)

// Failure names the conversion that failed.
type Failure string

const (
	InvalidChainExtension Failure = "InvalidChainExtension"
	InvalidTest           Failure = "InvalidTest"
	InvalidEvent          Failure = "InvalidEvent"
	InvalidStorage        Failure = "InvalidStorage"
	InvalidItem           Failure = "InvalidItem"
	InvalidConstructor    Failure = "InvalidConstructor"
	AmbiguousImplItem     Failure = "AmbiguousImplItem"
	InvalidMessage        Failure = "InvalidMessage"
	InvalidImpl           Failure = "InvalidImpl"
	InvalidModule         Failure = "InvalidModule"
	InvalidTraitDef       Failure = "InvalidTraitDef"
	InvalidContract       Failure = "InvalidContract"
)

// Reason refines an InvariantViolation or AnnotationError.
type Reason string

const (
	NoStorage             Reason = "NoStorage"
	MultipleStorage       Reason = "MultipleStorage"
	NoContract            Reason = "NoContract"
	MultipleContracts     Reason = "MultipleContracts"
	TooManyTopics         Reason = "TooManyTopics"
	DuplicateFunctionID   Reason = "DuplicateFunctionID"
	DuplicateTrait        Reason = "DuplicateTrait"
	UnknownTrait          Reason = "UnknownTrait"
	TraitMismatch         Reason = "TraitMismatch"
	UnknownAnnotation     Reason = "UnknownAnnotation"
	DuplicateAnnotation   Reason = "DuplicateAnnotation"
	ConflictingAnnotation Reason = "ConflictingAnnotation"
)

// Error codes (E200-E299), one per failure.
const (
	ErrInvalidChainExtension = "E201"
	ErrInvalidTest           = "E202"
	ErrInvalidEvent          = "E203"
	ErrInvalidStorage        = "E204"
	ErrInvalidItem           = "E205"
	ErrInvalidConstructor    = "E206"
	ErrAmbiguousImplItem     = "E207"
	ErrInvalidMessage        = "E208"
	ErrInvalidImpl           = "E209"
	ErrInvalidModule         = "E210"
	ErrInvalidTraitDef       = "E211"
	ErrInvalidContract       = "E212"
	ErrSelectorCollision     = "E220"
	ErrUnknown               = "E299"
)

var failureCodes = map[Failure]string{
	InvalidChainExtension: ErrInvalidChainExtension,
	InvalidTest:           ErrInvalidTest,
	InvalidEvent:          ErrInvalidEvent,
	InvalidStorage:        ErrInvalidStorage,
	InvalidItem:           ErrInvalidItem,
	InvalidConstructor:    ErrInvalidConstructor,
	AmbiguousImplItem:     ErrAmbiguousImplItem,
	InvalidMessage:        ErrInvalidMessage,
	InvalidImpl:           ErrInvalidImpl,
	InvalidModule:         ErrInvalidModule,
	InvalidTraitDef:       ErrInvalidTraitDef,
	InvalidContract:       ErrInvalidContract,
}

// CompileError is one offending declaration.
type CompileError struct {
	Kind    Kind
	Failure Failure
	Reason  Reason // optional
	Item    string // declaration name, if known
	Message string
	Pos     syntax.Pos
}

// Code returns the stable error code for the failure.
func (e *CompileError) Code() string {
	if c, ok := failureCodes[e.Failure]; ok {
		return c
	}
	return ErrUnknown
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "[%s] %s", e.Code(), e.Failure)
	if e.Reason != "" {
		fmt.Fprintf(&b, "(%s)", e.Reason)
	}
	if e.Item != "" {
		fmt.Fprintf(&b, ": %s", e.Item)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	return b.String()
}

// Diagnostics is a batch of per-item errors in declaration order.
type Diagnostics []*CompileError

func (d Diagnostics) Error() string {
	switch len(d) {
	case 0:
		return "no errors"
	case 1:
		return d[0].Error()
	}
	lines := make([]string, 0, len(d)+1)
	lines = append(lines, fmt.Sprintf("%d errors:", len(d)))
	for _, e := range d {
		lines = append(lines, "  "+e.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes each error to errors.Is and errors.As.
func (d Diagnostics) Unwrap() []error {
	out := make([]error, len(d))
	for i, e := range d {
		out[i] = e
	}
	return out
}

// Member identifies a selector-bearing contract member.
type Member struct {
	Kind string // "constructor", "message", "extension function"
	Name string
	Pos  syntax.Pos
}

func (m Member) String() string {
	if m.Pos.IsValid() {
		return fmt.Sprintf("%s %s (%s)", m.Kind, m.Name, m.Pos)
	}
	return m.Kind + " " + m.Name
}

// CollisionError reports the first pair of members that share a selector,
// constructors before messages before extension functions. It aborts
// assembly.
type CollisionError struct {
	Selector selector.Selector
	First    Member
	Second   Member
}

// Code returns ErrSelectorCollision.
func (e *CollisionError) Code() string { return ErrSelectorCollision }

func (e *CollisionError) Error() string {
	return fmt.Sprintf("[%s] %s %s: %s and %s", ErrSelectorCollision, SelectorCollision, e.Selector, e.First, e.Second)
}

// newError builds a CompileError; helpers below fix Kind.
func newError(kind Kind, failure Failure, item string, pos syntax.Pos, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Failure: failure, Item: item, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func shapeError(failure Failure, item string, pos syntax.Pos, format string, args ...any) *CompileError {
	return newError(SyntaxShapeError, failure, item, pos, format, args...)
}

func annotationError(failure Failure, item string, pos syntax.Pos, format string, args ...any) *CompileError {
	return newError(AnnotationError, failure, item, pos, format, args...)
}

func invariantError(failure Failure, reason Reason, item string, pos syntax.Pos, format string, args ...any) *CompileError {
	e := newError(InvariantViolation, failure, item, pos, format, args...)
	e.Reason = reason
	return e
}

// collect appends err to d, flattening nested Diagnostics.
func (d *Diagnostics) collect(err error) {
	switch e := err.(type) {
	case nil:
	case Diagnostics:
		*d = append(*d, e...)
	case *CompileError:
		*d = append(*d, e)
	default:
		*d = append(*d, &CompileError{Kind: SyntaxShapeError, Failure: InvalidItem, Message: err.Error()})
	}
}

// insert adds e before the first diagnostic declared after it in the same
// file. Without a position e goes first.
func (d Diagnostics) insert(e *CompileError) Diagnostics {
	at := len(d)
	if !e.Pos.IsValid() {
		at = 0
	}
	for i, x := range d[:at] {
		if x.Pos.File == e.Pos.File && (x.Pos.Line > e.Pos.Line ||
			x.Pos.Line == e.Pos.Line && x.Pos.Column > e.Pos.Column) {
			at = i
			break
		}
	}
	return slices.Insert(d, at, e)
}

// err returns d as an error, or nil when empty.
func (d Diagnostics) err() error {
	if len(d) == 0 {
		return nil
	}
	return d
}
