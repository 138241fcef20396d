package scenario

import (
	"errors"
	"fmt"

	"convres/internal/rules"
	"convres/internal/types"
)

// Universe is the type model built from a scenario's declarations.
type Universe struct {
	Interner *types.Interner
	global   *scope
}

// Type resolves a type expression against the universe.
func (u *Universe) Type(expr string) (types.TypeID, error) {
	return parseType(u.Interner, u.global, expr)
}

var errNoName = errors.New("declaration without a name")

// Build declares every type, lambda and method group of f on a fresh
// interner. Numeric names come from rs.
func Build(f *File, rs *rules.Rules) (*Universe, error) {
	in := types.NewInterner()
	b := in.Builtins()
	global := newScope(nil)
	for name, id := range map[string]types.TypeID{
		"object":    b.Object,
		"string":    b.String,
		"bool":      b.Bool,
		"void":      b.Void,
		"null":      b.Null,
		"ValueType": b.ValueType,
		"Array":     b.Array,
		"Delegate":  b.Delegate,
	} {
		global.names[name] = id
	}
	for _, k := range rs.Kinds() {
		global.names[k.Name] = in.Numeric(k.Name)
	}
	u := &Universe{Interner: in, global: global}

	ids := make([]types.TypeID, len(f.Types))
	scopes := make([]*scope, len(f.Types))
	for i, d := range f.Types {
		id, err := u.declare(d)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", d.Name, err)
		}
		if err := global.define(d.Name, id); err != nil {
			return nil, err
		}
		ids[i] = id
		scopes[i] = newScope(global)
		for _, p := range d.Params {
			v, err := parseVariance(p.Variance)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", d.Name, err)
			}
			tp := in.AddTypeParam(id, p.Name, v)
			if err := scopes[i].define(p.Name, tp); err != nil {
				return nil, fmt.Errorf("type %q: %w", d.Name, err)
			}
		}
	}
	for i, d := range f.Types {
		if err := u.complete(ids[i], scopes[i], d); err != nil {
			return nil, fmt.Errorf("type %q: %w", d.Name, err)
		}
	}
	for _, l := range f.Lambdas {
		sig, err := u.signature(global, SignatureDecl{Params: l.Params, Result: l.Result})
		if err != nil {
			return nil, fmt.Errorf("lambda %q: %w", l.Name, err)
		}
		if err := global.define(l.Name, in.RegisterLambda(sig.Params, sig.Result)); err != nil {
			return nil, err
		}
	}
	for _, g := range f.Groups {
		overloads := make([]types.Signature, 0, len(g.Overloads))
		for _, o := range g.Overloads {
			sig, err := u.signature(global, o)
			if err != nil {
				return nil, fmt.Errorf("method group %q: %w", g.Name, err)
			}
			overloads = append(overloads, sig)
		}
		if err := global.define(g.Name, in.RegisterMethodGroup(g.Name, overloads...)); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (u *Universe) declare(d TypeDecl) (types.TypeID, error) {
	if d.Name == "" {
		return types.NoTypeID, errNoName
	}
	in := u.Interner
	switch d.Kind {
	case "", "class":
		id := in.DeclareClass(d.Name, types.NoTypeID)
		if d.Sealed {
			in.Seal(id)
		}
		return id, nil
	case "struct":
		return in.DeclareStruct(d.Name), nil
	case "interface":
		return in.DeclareInterface(d.Name), nil
	case "enum":
		under := d.Underlying
		if under == "" {
			under = "int"
		}
		id, ok := u.global.lookup(under)
		if !ok || in.Kind(id) != types.KindNumeric {
			return types.NoTypeID, fmt.Errorf("enum underlying type %q is not numeric", under)
		}
		return in.DeclareEnum(d.Name, id), nil
	case "delegate":
		return in.DeclareDelegate(d.Name, nil, in.Builtins().Void), nil
	}
	return types.NoTypeID, fmt.Errorf("unknown kind %q", d.Kind)
}

// complete fills in the parts of a declaration that may refer to other
// declared types.
func (u *Universe) complete(id types.TypeID, sc *scope, d TypeDecl) error {
	in := u.Interner
	resolve := func(expr string) (types.TypeID, error) { return parseType(in, sc, expr) }
	if d.Base != "" {
		if d.Kind != "" && d.Kind != "class" {
			return fmt.Errorf("only classes declare a base")
		}
		base, err := resolve(d.Base)
		if err != nil {
			return err
		}
		if in.Kind(base) != types.KindClass {
			return fmt.Errorf("base %s is not a class", in.Name(base))
		}
		in.SetBase(id, base)
	}
	for _, expr := range d.Interfaces {
		iface, err := resolve(expr)
		if err != nil {
			return err
		}
		if in.Kind(iface) != types.KindInterface {
			return fmt.Errorf("%s is not an interface", in.Name(iface))
		}
		in.AddInterface(id, iface)
	}
	tps := in.TypeParams(id)
	for i, p := range d.Params {
		if err := constrain(in, sc, tps[i], p); err != nil {
			return err
		}
	}
	if d.Invoke != nil {
		if d.Kind != "delegate" {
			return fmt.Errorf("only delegates declare an invoke signature")
		}
		sig, err := u.signature(sc, *d.Invoke)
		if err != nil {
			return err
		}
		in.SetInvoke(id, sig.Params, sig.Result)
	}
	for _, op := range d.Operators {
		from, err := resolve(op.From)
		if err != nil {
			return fmt.Errorf("operator: %w", err)
		}
		to, err := resolve(op.To)
		if err != nil {
			return fmt.Errorf("operator: %w", err)
		}
		in.AddOperator(id, types.Operator{From: from, To: to, Implicit: op.Implicit, Name: op.Name})
	}
	return nil
}

func constrain(in *types.Interner, sc *scope, tp types.TypeID, p TypeParamDecl) error {
	if p.Class && p.Struct {
		return fmt.Errorf("type parameter %s cannot be both class and struct", p.Name)
	}
	if p.Class {
		in.SetReferenceConstraint(tp)
	}
	if p.Struct {
		in.SetValueConstraint(tp)
	}
	for _, expr := range p.Constraints {
		c, err := parseType(in, sc, expr)
		if err != nil {
			return fmt.Errorf("constraint of %s: %w", p.Name, err)
		}
		in.AddConstraint(tp, c)
	}
	return nil
}

func (u *Universe) signature(sc *scope, d SignatureDecl) (types.Signature, error) {
	sig := types.Signature{Result: u.Interner.Builtins().Void}
	for _, expr := range d.Params {
		id, err := parseType(u.Interner, sc, expr)
		if err != nil {
			return types.Signature{}, err
		}
		sig.Params = append(sig.Params, id)
	}
	if d.Result != "" {
		id, err := parseType(u.Interner, sc, d.Result)
		if err != nil {
			return types.Signature{}, err
		}
		sig.Result = id
	}
	return sig, nil
}

func parseVariance(s string) (types.Variance, error) {
	switch s {
	case "":
		return types.Invariant, nil
	case "out":
		return types.Covariant, nil
	case "in":
		return types.Contravariant, nil
	}
	return types.Invariant, fmt.Errorf("invalid variance %q (expected: in|out)", s)
}
