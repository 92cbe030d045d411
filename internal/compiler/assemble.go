package compiler

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/syntax"
)

// Assemble combines converted items into a Contract. It runs after every
// per-item conversion has succeeded:
//
//  1. find the single contract module
//  2. gather trait definitions, chain extensions, plain types and tests
//  3. flatten impl blocks into constructors and messages in declared order,
//     computing selectors and checking trait conformance
//  4. check that selectors are unique across constructors, messages and
//     chain extension functions
//
// Conformance failures are batched. A selector collision aborts with a
// *CollisionError naming the first colliding pair, walking constructors,
// then messages, then extension functions, each in declared order.
func Assemble(items []ir.Item, opts Options) (*ir.Contract, error) {
	opts = opts.normalized()

	var contracts []*ir.ItemMod
	walkModules(items, func(m *ir.ItemMod) {
		if m.Contract {
			contracts = append(contracts, m)
		}
	})
	switch len(contracts) {
	case 0:
		return nil, invariantError(InvalidContract, NoContract, "", firstPos(items), "no #[ink::contract] module found")
	case 1:
	default:
		return nil, invariantError(InvalidContract, MultipleContracts, contracts[1].Name, contracts[1].Pos,
			"found %d #[ink::contract] modules (%s, %s); exactly one is allowed", len(contracts), contracts[0].Name, contracts[1].Name)
	}
	mod := contracts[0]
	storages := mod.Storage()
	if len(storages) != 1 {
		return nil, invariantError(InvalidModule, NoStorage, mod.Name, mod.Pos, "contract module must hold exactly one storage, found %d", len(storages))
	}

	c := &ir.Contract{Name: mod.Name, Storage: *storages[0]}
	for _, ev := range mod.Events() {
		c.Events = append(c.Events, *ev)
	}

	var diags Diagnostics
	traits := make(map[ir.TraitID]*ir.InkTrait)
	for _, it := range allItems(items) {
		switch v := it.(type) {
		case *ir.InkTrait:
			if prev, dup := traits[v.ID]; dup {
				diags.collect(invariantError(InvalidTraitDef, DuplicateTrait, v.Name, v.Pos,
					"trait %s is already defined at %s", v.Name, prev.Pos))
				continue
			}
			traits[v.ID] = v
		case *ir.ChainExtension:
			c.Extensions = append(c.Extensions, *v)
		case *ir.TypeDef:
			c.Types = append(c.Types, *v)
		case *ir.Test:
			c.Tests = append(c.Tests, *v)
		}
	}

	for _, impl := range mod.Impls() {
		var tr *ir.InkTrait
		if impl.Trait != "" {
			var ok bool
			if tr, ok = traits[impl.Trait]; !ok {
				diags.collect(invariantError(InvalidImpl, UnknownTrait, string(impl.Trait), impl.Pos,
					"no #[ink::trait_definition] named %s", impl.Trait))
				continue
			}
			if !slices.ContainsFunc(c.Traits, func(t ir.InkTrait) bool { return t.ID == tr.ID }) {
				c.Traits = append(c.Traits, *tr)
			}
		}
		for _, ctor := range impl.Constructors() {
			out := *ctor
			if !out.Explicit {
				out.Selector = opts.Hash.Compute(selector.Signature(
					selector.QualifiedName(impl.Namespace, out.Name), ir.ParamTypes(out.Params)))
			}
			c.Constructors = append(c.Constructors, out)
		}
		if tr == nil {
			for _, msg := range impl.Messages() {
				out := *msg
				if !out.Explicit {
					out.Selector = opts.Hash.Compute(selector.Signature(
						selector.QualifiedName(impl.Namespace, out.Name), ir.ParamTypes(out.Params)))
				}
				c.Messages = append(c.Messages, out)
			}
			continue
		}
		msgs, err := traitMessages(impl, tr, opts.Hash)
		if err != nil {
			diags.collect(err)
			continue
		}
		c.Messages = append(c.Messages, msgs...)
	}
	if err := diags.err(); err != nil {
		return nil, err
	}

	if err := checkSelectors(c); err != nil {
		return nil, err
	}

	slog.Debug("contract assembled",
		"contract", c.Name,
		"constructors", len(c.Constructors),
		"messages", len(c.Messages),
		"events", len(c.Events),
		"extensions", len(c.Extensions),
		"traits", len(c.Traits))
	if len(c.Constructors) == 0 || len(c.Messages) == 0 {
		slog.Warn("contract is not callable",
			"contract", c.Name,
			"constructors", len(c.Constructors),
			"messages", len(c.Messages))
	}
	return c, nil
}

// traitMessages checks that impl implements exactly the members of tr and
// returns its messages with trait-derived selectors.
func traitMessages(impl *ir.ItemImpl, tr *ir.InkTrait, hash selector.Hash) ([]ir.Message, error) {
	var (
		diags Diagnostics
		out   []ir.Message
	)
	implemented := make(map[string]bool)
	for _, msg := range impl.Messages() {
		item := tr.Name + "::" + msg.Name
		member, ok := tr.Member(msg.Name)
		if !ok {
			diags.collect(invariantError(InvalidImpl, TraitMismatch, item, msg.Pos, "%s is not a member of trait %s", msg.Name, tr.Name))
			continue
		}
		implemented[msg.Name] = true
		if why := signatureMismatch(msg, member); why != "" {
			diags.collect(invariantError(InvalidImpl, TraitMismatch, item, msg.Pos, "signature differs from the trait definition: %s", why))
			continue
		}
		m := *msg
		m.Trait = tr.ID
		if member.Selector != nil {
			m.Selector, m.Explicit = *member.Selector, true
		} else {
			m.Selector = hash.Compute(selector.Signature(
				selector.QualifiedName(tr.Namespace, tr.Name, m.Name), ir.ParamTypes(m.Params)))
		}
		out = append(out, m)
	}
	for _, member := range tr.Members {
		if !implemented[member.Name] {
			diags.collect(invariantError(InvalidImpl, TraitMismatch, tr.Name+"::"+member.Name, impl.Pos,
				"missing implementation of trait message %s", member.Name))
		}
	}
	if err := diags.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// signatureMismatch describes the first difference between an implemented
// message and its trait member, or returns "".
func signatureMismatch(msg *ir.Message, member *ir.TraitMember) string {
	want, got := ir.ParamTypes(member.Params), ir.ParamTypes(msg.Params)
	switch {
	case !slices.Equal(want, got):
		return "parameters (" + strings.Join(got, ", ") + ") != (" + strings.Join(want, ", ") + ")"
	case returnString(msg.Return) != returnString(member.Return):
		return "return type " + returnString(msg.Return) + " != " + returnString(member.Return)
	case msg.Mutates != member.Mutates:
		if member.Mutates {
			return "receiver must be &mut self"
		}
		return "receiver must be &self"
	case msg.Payable != member.Payable:
		if member.Payable {
			return "message must be payable"
		}
		return "message must not be payable"
	}
	return ""
}

func returnString(t *ir.TypeDesc) string {
	if t == nil {
		return "()"
	}
	return t.Canonical()
}

// checkSelectors walks constructors, then messages, then extension
// functions, each in declared order, and reports the first selector seen
// twice.
func checkSelectors(c *ir.Contract) error {
	seen := make(map[selector.Selector]Member)
	check := func(sel selector.Selector, m Member) error {
		if first, dup := seen[sel]; dup {
			return &CollisionError{Selector: sel, First: first, Second: m}
		}
		seen[sel] = m
		return nil
	}
	for _, ctor := range c.Constructors {
		if err := check(ctor.Selector, Member{Kind: "constructor", Name: ctor.Name, Pos: ctor.Pos}); err != nil {
			return err
		}
	}
	for _, msg := range c.Messages {
		name := msg.Name
		if msg.Trait != "" {
			name = string(msg.Trait) + "::" + name
		}
		if err := check(msg.Selector, Member{Kind: "message", Name: name, Pos: msg.Pos}); err != nil {
			return err
		}
	}
	for _, ext := range c.Extensions {
		for _, fn := range ext.Functions {
			if err := check(fn.Selector, Member{Kind: "extension function", Name: ext.Name + "::" + fn.Name, Pos: fn.Pos}); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkModules calls fn for every module in items, depth first.
func walkModules(items []ir.Item, fn func(*ir.ItemMod)) {
	for _, it := range items {
		if m, ok := it.(*ir.ItemMod); ok {
			fn(m)
			walkModules(m.Items, fn)
		}
	}
}

// allItems flattens items and the contents of every module, depth first.
func allItems(items []ir.Item) []ir.Item {
	var out []ir.Item
	for _, it := range items {
		out = append(out, it)
		if m, ok := it.(*ir.ItemMod); ok {
			out = append(out, allItems(m.Items)...)
		}
	}
	return out
}

func firstPos(items []ir.Item) syntax.Pos {
	if len(items) == 0 {
		return syntax.Pos{}
	}
	return items[0].Position()
}
