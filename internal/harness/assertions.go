package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/typereg"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	// Members lists the selector-bearing members of the built contract.
	Members []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Members) > 0 {
		fmt.Fprintf(&buf, "\nMembers:\n")
		for i, m := range e.Members {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, m)
		}
	}

	return buf.String()
}

// members renders every constructor and message with its selector.
func members(spec *metadata.ContractSpec) []string {
	var out []string
	for _, c := range spec.Constructors {
		out = append(out, fmt.Sprintf("constructor %s %s", c.Label, c.Selector))
	}
	for _, m := range spec.Messages {
		out = append(out, fmt.Sprintf("message %s %s", m.Label, m.Selector))
	}
	return out
}

// assertSelector checks the selector of a constructor or message.
func assertSelector(spec *metadata.ContractSpec, a Assertion) error {
	want, err := selector.Parse(a.Selector)
	if err != nil {
		return err
	}

	var (
		got   selector.Selector
		found bool
	)
	for _, c := range spec.Constructors {
		if c.Label == a.Item {
			got, found = c.Selector, true
		}
	}
	if m, ok := spec.Message(a.Item); ok {
		got, found = m.Selector, true
	}

	if !found {
		return &AssertionError{
			Type:     AssertSelector,
			Expected: fmt.Sprintf("%s with selector %s", a.Item, want),
			Actual:   "no constructor or message with that label",
			Members:  members(spec),
		}
	}
	if got != want {
		return &AssertionError{
			Type:     AssertSelector,
			Expected: fmt.Sprintf("%s with selector %s", a.Item, want),
			Actual:   fmt.Sprintf("selector %s", got),
			Members:  members(spec),
		}
	}
	return nil
}

// assertCount checks the size of one section of the result.
func assertCount(result *Result, a Assertion) error {
	spec := result.Spec()
	var n int
	switch a.Of {
	case SectionConstructors:
		n = len(spec.Constructors)
	case SectionMessages:
		n = len(spec.Messages)
	case SectionEvents:
		n = len(spec.Events)
	case SectionTypes:
		n = len(spec.Types)
	case SectionTests:
		n = len(result.Contract.Tests)
	default:
		return fmt.Errorf("unknown section %q", a.Of)
	}

	if n != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d %s", a.Count, a.Of),
			Actual:   fmt.Sprintf("%d %s", n, a.Of),
		}
	}
	return nil
}

// assertFlag checks a boolean property. Constructors are searched before
// messages and messages before events.
func assertFlag(spec *metadata.ContractSpec, a Assertion) error {
	want := a.Want == nil || *a.Want

	got, ok := flagValue(spec, a.Item, a.Flag)
	if !ok {
		return &AssertionError{
			Type:     AssertFlag,
			Expected: fmt.Sprintf("%s to have flag %s", a.Item, a.Flag),
			Actual:   "no item with that label carries the flag",
			Members:  members(spec),
		}
	}
	if got != want {
		return &AssertionError{
			Type:     AssertFlag,
			Expected: fmt.Sprintf("%s %s = %t", a.Item, a.Flag, want),
			Actual:   fmt.Sprintf("%s %s = %t", a.Item, a.Flag, got),
		}
	}
	return nil
}

func flagValue(spec *metadata.ContractSpec, item, flag string) (bool, bool) {
	switch flag {
	case FlagPayable:
		for _, c := range spec.Constructors {
			if c.Label == item {
				return c.Payable, true
			}
		}
		if m, ok := spec.Message(item); ok {
			return m.Payable, true
		}
	case FlagMutates:
		if m, ok := spec.Message(item); ok {
			return m.Mutates, true
		}
	case FlagAnonymous:
		for _, e := range spec.Events {
			if e.Label == item {
				return e.Anonymous, true
			}
		}
	}
	return false, false
}

// assertTopics checks the number of indexed fields of an event.
func assertTopics(spec *metadata.ContractSpec, a Assertion) error {
	for _, e := range spec.Events {
		if e.Label != a.Item {
			continue
		}
		n := 0
		for _, arg := range e.Args {
			if arg.Indexed {
				n++
			}
		}
		if n != a.Count {
			return &AssertionError{
				Type:     AssertTopics,
				Expected: fmt.Sprintf("%d indexed fields on %s", a.Count, a.Item),
				Actual:   fmt.Sprintf("%d indexed fields", n),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertTopics,
		Expected: fmt.Sprintf("event %s", a.Item),
		Actual:   "not found",
	}
}

// assertType checks that the registry holds a primitive named path or a
// composite or variant whose path ends with path.
func assertType(spec *metadata.ContractSpec, a Assertion) error {
	want := strings.Split(a.Path, "::")
	for _, e := range spec.Types {
		if e.Type.Kind == typereg.KindPrimitive && e.Type.Primitive == a.Path {
			return nil
		}
		p := e.Type.Path
		if len(p) >= len(want) && slices.Equal(p[len(p)-len(want):], want) {
			return nil
		}
	}

	var have []string
	for _, e := range spec.Types {
		if e.Type.Kind == typereg.KindPrimitive {
			have = append(have, e.Type.Primitive)
		} else if len(e.Type.Path) > 0 {
			have = append(have, strings.Join(e.Type.Path, "::"))
		}
	}
	return &AssertionError{
		Type:     AssertType,
		Expected: fmt.Sprintf("type %s in registry", a.Path),
		Actual:   fmt.Sprintf("registered: %s", strings.Join(have, ", ")),
	}
}

// EvaluateAssertions runs all assertions against a successful result and
// returns the failure messages. Empty slice means all assertions passed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	spec := result.Spec()
	if spec == nil {
		if len(assertions) > 0 {
			errs = append(errs, "no metadata to assert against")
		}
		return errs
	}

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertSelector:
			err = assertSelector(spec, a)
		case AssertCount:
			err = assertCount(result, a)
		case AssertFlag:
			err = assertFlag(spec, a)
		case AssertTopics:
			err = assertTopics(spec, a)
		case AssertType:
			err = assertType(spec, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
