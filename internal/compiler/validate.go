package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/inkir/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Contract shape (E101-E107)
	ErrNoConstructors   = "E101" // at least one constructor required
	ErrNoMessages       = "E102" // at least one message required
	ErrInvalidName      = "E103" // identifier is not a valid name
	ErrDuplicateName    = "E104" // duplicate constructor/message/event name
	ErrDuplicateField   = "E105" // duplicate storage or event field
	ErrDuplicateType    = "E106" // two plain types share a name
	ErrDuplicateVariant = "E107" // two enum variants share a name
)

// ValidationError is one schema problem in an assembled contract.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks an assembled contract against rules that do not block
// assembly but make the contract unusable from off-chain tooling.
// Returns all errors found (does not fail-fast).
func Validate(c *ir.Contract) []ValidationError {
	var errs []ValidationError

	// E101/E102: a contract with nothing to call cannot be instantiated
	if len(c.Constructors) == 0 {
		errs = append(errs, ValidationError{
			Field:   "constructors",
			Message: "at least one constructor is required",
			Code:    ErrNoConstructors,
		})
	}
	if len(c.Messages) == 0 {
		errs = append(errs, ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
			Code:    ErrNoMessages,
		})
	}

	errs = append(errs, validateFields("storage", c.Storage.Fields)...)

	ctorNames := make(map[string]bool)
	for i, ctor := range c.Constructors {
		field := fmt.Sprintf("constructors[%d]", i)
		errs = append(errs, validateName(field+".name", ctor.Name, ctor.Pos.Line)...)
		if ctorNames[ctor.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate constructor name: %q", ctor.Name),
				Code:    ErrDuplicateName,
				Line:    ctor.Pos.Line,
			})
		}
		ctorNames[ctor.Name] = true
	}

	// Trait messages are labelled Trait::name, so they only clash with
	// messages of the same trait.
	msgNames := make(map[string]bool)
	for i, msg := range c.Messages {
		field := fmt.Sprintf("messages[%d]", i)
		errs = append(errs, validateName(field+".name", msg.Name, msg.Pos.Line)...)
		label := msg.Name
		if msg.Trait != "" {
			label = string(msg.Trait) + "::" + msg.Name
		}
		if msgNames[label] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate message name: %q", label),
				Code:    ErrDuplicateName,
				Line:    msg.Pos.Line,
			})
		}
		msgNames[label] = true
	}

	eventNames := make(map[string]bool)
	for i, ev := range c.Events {
		field := fmt.Sprintf("events[%d]", i)
		if eventNames[ev.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate event name: %q", ev.Name),
				Code:    ErrDuplicateName,
				Line:    ev.Pos.Line,
			})
		}
		eventNames[ev.Name] = true

		fields := make([]ir.Field, len(ev.Fields))
		for j, f := range ev.Fields {
			fields[j] = f.Field
		}
		errs = append(errs, validateFields(field, fields)...)
	}

	typeNames := make(map[string]bool)
	for i, td := range c.Types {
		field := fmt.Sprintf("types[%d]", i)
		if typeNames[td.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate type name: %q", td.Name),
				Code:    ErrDuplicateType,
				Line:    td.Pos.Line,
			})
		}
		typeNames[td.Name] = true

		variants := make(map[string]bool)
		for j, v := range td.Variants {
			if variants[v.Name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.variants[%d]", field, j),
					Message: fmt.Sprintf("duplicate variant %q in %s", v.Name, td.Name),
					Code:    ErrDuplicateVariant,
					Line:    td.Pos.Line,
				})
			}
			variants[v.Name] = true
		}
	}

	return errs
}

// validateFields checks names and uniqueness of named fields.
func validateFields(prefix string, fields []ir.Field) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for i, f := range fields {
		field := fmt.Sprintf("%s.fields[%d]", prefix, i)
		errs = append(errs, validateName(field, f.Name, f.Pos.Line)...)
		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateField,
				Line:    f.Pos.Line,
			})
		}
		seen[f.Name] = true
	}
	return errs
}

// validateName checks that name is a plain identifier.
func validateName(field, name string, line int) []ValidationError {
	if identPattern.MatchString(name) {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Message: fmt.Sprintf("invalid identifier %q", name),
		Code:    ErrInvalidName,
		Line:    line,
	}}
}
