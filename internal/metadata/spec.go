// Package metadata derives a contract's ABI description from assembled IR.
//
// Specs are immutable values produced by staged builders. A builder
// accumulates fields through chained setters; Done checks that every
// required field was set and returns a copy that shares no slices with
// the builder.
package metadata

import (
	"fmt"
	"slices"

	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/typereg"
)

// TypeSpec references a registry entry together with the path the author
// wrote for it.
type TypeSpec struct {
	Type        typereg.ID `json:"type"`
	DisplayName []string   `json:"display_name"`
}

// ParamSpec is a constructor or message argument.
type ParamSpec struct {
	Label string   `json:"label"`
	Type  TypeSpec `json:"type"`
}

// EventParamSpec is an event field.
type EventParamSpec struct {
	Label   string   `json:"label"`
	Type    TypeSpec `json:"type"`
	Indexed bool     `json:"indexed"`
	Docs    []string `json:"docs"`
}

// ConstructorSpec describes one constructor.
type ConstructorSpec struct {
	Label    string            `json:"label"`
	Selector selector.Selector `json:"selector"`
	Payable  bool              `json:"payable"`
	Args     []ParamSpec       `json:"args"`
	Docs     []string          `json:"docs"`
}

// MessageSpec describes one message. Trait messages are labelled
// `Trait::name`.
type MessageSpec struct {
	Label      string            `json:"label"`
	Selector   selector.Selector `json:"selector"`
	Mutates    bool              `json:"mutates"`
	Payable    bool              `json:"payable"`
	Args       []ParamSpec       `json:"args"`
	ReturnType *TypeSpec         `json:"return_type"`
	Docs       []string          `json:"docs"`
}

// EventSpec describes one event.
type EventSpec struct {
	Label     string           `json:"label"`
	Args      []EventParamSpec `json:"args"`
	Anonymous bool             `json:"anonymous"`
	Docs      []string         `json:"docs"`
}

// StorageLayout is the storage struct's field layout in declaration order.
type StorageLayout struct {
	Name   string         `json:"name"`
	Fields []StorageField `json:"fields"`
}

// StorageField is one storage field.
type StorageField struct {
	Name string   `json:"name"`
	Type TypeSpec `json:"type"`
}

// ContractSpec is the complete ABI description of a contract.
type ContractSpec struct {
	Constructors []ConstructorSpec `json:"constructors"`
	Messages     []MessageSpec     `json:"messages"`
	Events       []EventSpec       `json:"events"`
	Storage      StorageLayout     `json:"storage"`
	Types        []typereg.Entry   `json:"types"`
	Docs         []string          `json:"docs"`
}

// Message looks up a message spec by label.
func (s *ContractSpec) Message(label string) (*MessageSpec, bool) {
	for i := range s.Messages {
		if s.Messages[i].Label == label {
			return &s.Messages[i], true
		}
	}
	return nil, false
}

// IncompleteSpecError reports a builder finalized without a required field.
type IncompleteSpecError struct {
	Spec  string
	Label string
	Field string
}

func (e *IncompleteSpecError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%s: missing %s", e.Spec, e.Field)
	}
	return fmt.Sprintf("%s %s: missing %s", e.Spec, e.Label, e.Field)
}

// ConstructorSpecBuilder builds a ConstructorSpec. Label and selector are
// required.
type ConstructorSpecBuilder struct {
	spec        ConstructorSpec
	hasSelector bool
}

// NewConstructorSpec starts a constructor spec.
func NewConstructorSpec() *ConstructorSpecBuilder {
	return &ConstructorSpecBuilder{}
}

func (b *ConstructorSpecBuilder) Label(label string) *ConstructorSpecBuilder {
	b.spec.Label = label
	return b
}

func (b *ConstructorSpecBuilder) Selector(s selector.Selector) *ConstructorSpecBuilder {
	b.spec.Selector = s
	b.hasSelector = true
	return b
}

func (b *ConstructorSpecBuilder) Payable(payable bool) *ConstructorSpecBuilder {
	b.spec.Payable = payable
	return b
}

func (b *ConstructorSpecBuilder) Args(args ...ParamSpec) *ConstructorSpecBuilder {
	b.spec.Args = append(b.spec.Args, args...)
	return b
}

func (b *ConstructorSpecBuilder) Docs(docs ...string) *ConstructorSpecBuilder {
	b.spec.Docs = append(b.spec.Docs, docs...)
	return b
}

// Done finalizes the spec.
func (b *ConstructorSpecBuilder) Done() (ConstructorSpec, error) {
	if b.spec.Label == "" {
		return ConstructorSpec{}, &IncompleteSpecError{Spec: "constructor", Field: "label"}
	}
	if !b.hasSelector {
		return ConstructorSpec{}, &IncompleteSpecError{Spec: "constructor", Label: b.spec.Label, Field: "selector"}
	}
	out := b.spec
	out.Args = cloneParams(b.spec.Args)
	out.Docs = cloneDocs(b.spec.Docs)
	return out, nil
}

// MessageSpecBuilder builds a MessageSpec. Label and selector are required.
type MessageSpecBuilder struct {
	spec        MessageSpec
	hasSelector bool
}

// NewMessageSpec starts a message spec.
func NewMessageSpec() *MessageSpecBuilder {
	return &MessageSpecBuilder{}
}

func (b *MessageSpecBuilder) Label(label string) *MessageSpecBuilder {
	b.spec.Label = label
	return b
}

func (b *MessageSpecBuilder) Selector(s selector.Selector) *MessageSpecBuilder {
	b.spec.Selector = s
	b.hasSelector = true
	return b
}

func (b *MessageSpecBuilder) Mutates(mutates bool) *MessageSpecBuilder {
	b.spec.Mutates = mutates
	return b
}

func (b *MessageSpecBuilder) Payable(payable bool) *MessageSpecBuilder {
	b.spec.Payable = payable
	return b
}

func (b *MessageSpecBuilder) Args(args ...ParamSpec) *MessageSpecBuilder {
	b.spec.Args = append(b.spec.Args, args...)
	return b
}

// Returns sets the return type. Messages without one return unit.
func (b *MessageSpecBuilder) Returns(t TypeSpec) *MessageSpecBuilder {
	b.spec.ReturnType = &t
	return b
}

func (b *MessageSpecBuilder) Docs(docs ...string) *MessageSpecBuilder {
	b.spec.Docs = append(b.spec.Docs, docs...)
	return b
}

// Done finalizes the spec.
func (b *MessageSpecBuilder) Done() (MessageSpec, error) {
	if b.spec.Label == "" {
		return MessageSpec{}, &IncompleteSpecError{Spec: "message", Field: "label"}
	}
	if !b.hasSelector {
		return MessageSpec{}, &IncompleteSpecError{Spec: "message", Label: b.spec.Label, Field: "selector"}
	}
	out := b.spec
	out.Args = cloneParams(b.spec.Args)
	out.Docs = cloneDocs(b.spec.Docs)
	if b.spec.ReturnType != nil {
		rt := cloneTypeSpec(*b.spec.ReturnType)
		out.ReturnType = &rt
	}
	return out, nil
}

// EventSpecBuilder builds an EventSpec. Label is required.
type EventSpecBuilder struct {
	spec EventSpec
}

// NewEventSpec starts an event spec.
func NewEventSpec() *EventSpecBuilder {
	return &EventSpecBuilder{}
}

func (b *EventSpecBuilder) Label(label string) *EventSpecBuilder {
	b.spec.Label = label
	return b
}

func (b *EventSpecBuilder) Args(args ...EventParamSpec) *EventSpecBuilder {
	b.spec.Args = append(b.spec.Args, args...)
	return b
}

func (b *EventSpecBuilder) Anonymous(anonymous bool) *EventSpecBuilder {
	b.spec.Anonymous = anonymous
	return b
}

func (b *EventSpecBuilder) Docs(docs ...string) *EventSpecBuilder {
	b.spec.Docs = append(b.spec.Docs, docs...)
	return b
}

// Done finalizes the spec.
func (b *EventSpecBuilder) Done() (EventSpec, error) {
	if b.spec.Label == "" {
		return EventSpec{}, &IncompleteSpecError{Spec: "event", Field: "label"}
	}
	out := b.spec
	out.Args = make([]EventParamSpec, len(b.spec.Args))
	for i, a := range b.spec.Args {
		a.Type = cloneTypeSpec(a.Type)
		a.Docs = cloneDocs(a.Docs)
		out.Args[i] = a
	}
	out.Docs = cloneDocs(b.spec.Docs)
	return out, nil
}

// ContractSpecBuilder assembles finished specs into a ContractSpec. Storage
// is required.
type ContractSpecBuilder struct {
	spec       ContractSpec
	hasStorage bool
}

// NewContractSpec starts a contract spec.
func NewContractSpec() *ContractSpecBuilder {
	return &ContractSpecBuilder{}
}

func (b *ContractSpecBuilder) Constructors(specs ...ConstructorSpec) *ContractSpecBuilder {
	b.spec.Constructors = append(b.spec.Constructors, specs...)
	return b
}

func (b *ContractSpecBuilder) Messages(specs ...MessageSpec) *ContractSpecBuilder {
	b.spec.Messages = append(b.spec.Messages, specs...)
	return b
}

func (b *ContractSpecBuilder) Events(specs ...EventSpec) *ContractSpecBuilder {
	b.spec.Events = append(b.spec.Events, specs...)
	return b
}

func (b *ContractSpecBuilder) Storage(layout StorageLayout) *ContractSpecBuilder {
	b.spec.Storage = layout
	b.hasStorage = true
	return b
}

// Types sets the registry snapshot.
func (b *ContractSpecBuilder) Types(entries []typereg.Entry) *ContractSpecBuilder {
	b.spec.Types = entries
	return b
}

func (b *ContractSpecBuilder) Docs(docs ...string) *ContractSpecBuilder {
	b.spec.Docs = append(b.spec.Docs, docs...)
	return b
}

// Done finalizes the spec.
func (b *ContractSpecBuilder) Done() (*ContractSpec, error) {
	if !b.hasStorage || b.spec.Storage.Name == "" {
		return nil, &IncompleteSpecError{Spec: "contract", Field: "storage"}
	}
	out := &ContractSpec{
		Constructors: orEmpty(slices.Clone(b.spec.Constructors)),
		Messages:     orEmpty(slices.Clone(b.spec.Messages)),
		Events:       orEmpty(slices.Clone(b.spec.Events)),
		Storage: StorageLayout{
			Name:   b.spec.Storage.Name,
			Fields: orEmpty(slices.Clone(b.spec.Storage.Fields)),
		},
		Types: orEmpty(slices.Clone(b.spec.Types)),
		Docs:  cloneDocs(b.spec.Docs),
	}
	return out, nil
}

func cloneTypeSpec(t TypeSpec) TypeSpec {
	t.DisplayName = orEmpty(slices.Clone(t.DisplayName))
	return t
}

func cloneParams(params []ParamSpec) []ParamSpec {
	out := make([]ParamSpec, len(params))
	for i, p := range params {
		p.Type = cloneTypeSpec(p.Type)
		out[i] = p
	}
	return out
}

func cloneDocs(docs []string) []string {
	return orEmpty(slices.Clone(docs))
}

// orEmpty keeps empty lists as [] in JSON output.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
