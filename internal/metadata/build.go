package metadata

import (
	"fmt"
	"maps"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/typereg"
)

// Options configures a metadata build.
type Options struct {
	// Aliases are merged over typereg.DefaultAliases.
	Aliases map[string]string
}

// Build derives the ContractSpec of an assembled contract. Types are
// registered in a fixed traversal (constructors, messages, events, then
// storage, each in declaration order) so identical input yields identical
// IDs. A type that cannot be reduced fails the whole build with an error
// wrapping *typereg.UnsupportedTypeError.
func Build(c *ir.Contract, opts Options) (*ContractSpec, error) {
	aliases := typereg.DefaultAliases()
	maps.Copy(aliases, opts.Aliases)
	resolver, err := typereg.NewResolver(aliases, c.Types)
	if err != nil {
		return nil, err
	}
	b := &builder{reg: typereg.NewRegistry(resolver)}

	spec := NewContractSpec().Docs(c.Storage.Docs...)
	for i := range c.Constructors {
		cs, err := b.constructor(&c.Constructors[i])
		if err != nil {
			return nil, err
		}
		spec.Constructors(cs)
	}
	for i := range c.Messages {
		ms, err := b.message(&c.Messages[i])
		if err != nil {
			return nil, err
		}
		spec.Messages(ms)
	}
	for i := range c.Events {
		es, err := b.event(&c.Events[i])
		if err != nil {
			return nil, err
		}
		spec.Events(es)
	}
	layout, err := b.storage(&c.Storage)
	if err != nil {
		return nil, err
	}

	return spec.Storage(layout).Types(b.reg.Entries()).Done()
}

type builder struct {
	reg *typereg.Registry
}

// typeSpec registers desc. where names the declaration for error context.
func (b *builder) typeSpec(desc ir.TypeDesc, where string) (TypeSpec, error) {
	id, err := b.reg.Register(desc)
	if err != nil {
		return TypeSpec{}, fmt.Errorf("%s: %w", where, err)
	}
	var display []string
	if desc.Kind == ir.KindPath {
		display = desc.Path
	}
	return TypeSpec{Type: id, DisplayName: display}, nil
}

func (b *builder) params(params []ir.Param, where string) ([]ParamSpec, error) {
	out := make([]ParamSpec, 0, len(params))
	for _, p := range params {
		t, err := b.typeSpec(p.Type, where+" argument "+p.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, ParamSpec{Label: p.Name, Type: t})
	}
	return out, nil
}

func (b *builder) constructor(c *ir.Constructor) (ConstructorSpec, error) {
	args, err := b.params(c.Params, "constructor "+c.Name)
	if err != nil {
		return ConstructorSpec{}, err
	}
	return NewConstructorSpec().
		Label(c.Name).
		Selector(c.Selector).
		Payable(c.Payable).
		Args(args...).
		Docs(c.Docs...).
		Done()
}

func (b *builder) message(m *ir.Message) (MessageSpec, error) {
	label := m.Name
	if m.Trait != "" {
		label = string(m.Trait) + "::" + m.Name
	}
	where := "message " + label
	args, err := b.params(m.Params, where)
	if err != nil {
		return MessageSpec{}, err
	}
	mb := NewMessageSpec().
		Label(label).
		Selector(m.Selector).
		Mutates(m.Mutates).
		Payable(m.Payable).
		Args(args...).
		Docs(m.Docs...)
	if m.Return != nil {
		rt, err := b.typeSpec(*m.Return, where+" return type")
		if err != nil {
			return MessageSpec{}, err
		}
		mb.Returns(rt)
	}
	return mb.Done()
}

func (b *builder) event(e *ir.Event) (EventSpec, error) {
	eb := NewEventSpec().Label(e.Name).Anonymous(e.Anonymous).Docs(e.Docs...)
	for _, f := range e.Fields {
		t, err := b.typeSpec(f.Type, "event "+e.Name+" field "+f.Name)
		if err != nil {
			return EventSpec{}, err
		}
		eb.Args(EventParamSpec{Label: f.Name, Type: t, Indexed: f.Indexed, Docs: f.Docs})
	}
	return eb.Done()
}

func (b *builder) storage(s *ir.Storage) (StorageLayout, error) {
	layout := StorageLayout{Name: s.Name, Fields: make([]StorageField, 0, len(s.Fields))}
	for _, f := range s.Fields {
		t, err := b.typeSpec(f.Type, "storage field "+f.Name)
		if err != nil {
			return StorageLayout{}, err
		}
		layout.Fields = append(layout.Fields, StorageField{Name: f.Name, Type: cloneTypeSpec(t)})
	}
	return layout, nil
}
