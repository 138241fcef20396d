package types

import (
	"fmt"
	"slices"
)

// substitution maps the type parameters of a generic definition onto the
// arguments of one of its instantiations.
type substitution struct {
	params []TypeID
	args   []TypeID
}

func (s substitution) empty() bool {
	return len(s.params) == 0
}

// Substitute replaces each of params by the argument at the same index
// wherever it occurs inside id.
func (in *Interner) Substitute(id TypeID, params, args []TypeID) TypeID {
	if len(params) != len(args) {
		panic(fmt.Sprintf("types: substitute %d params with %d args", len(params), len(args)))
	}
	return in.subst(id, substitution{params: params, args: args})
}

func (in *Interner) subst(id TypeID, s substitution) TypeID {
	if s.empty() || id == NoTypeID {
		return id
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindTypeParam:
		if i := slices.Index(s.params, id); i >= 0 && i < len(s.args) {
			return s.args[i]
		}
		return id
	case KindArray, KindPointer, KindRef, KindNullable:
		elem := in.subst(tt.Elem, s)
		if elem == tt.Elem {
			return id
		}
		return in.Intern(Type{Kind: tt.Kind, Elem: elem, Count: tt.Count})
	case KindTuple:
		elems := in.TupleElems(id)
		out, changed := in.substList(elems, s)
		if !changed {
			return id
		}
		return in.RegisterTuple(out)
	case KindClass, KindStruct, KindInterface, KindEnum, KindDelegate:
		info, ok := in.Nominal(id)
		if !ok {
			return id
		}
		args := info.Args
		if info.Def == id {
			if len(info.Params) == 0 {
				return id
			}
			args = info.Params
		}
		out, changed := in.substList(args, s)
		if !changed {
			return id
		}
		return in.Instantiate(info.Def, out...)
	default:
		return id
	}
}

func (in *Interner) substList(ids []TypeID, s substitution) ([]TypeID, bool) {
	out := make([]TypeID, len(ids))
	changed := false
	for i, id := range ids {
		out[i] = in.subst(id, s)
		changed = changed || out[i] != id
	}
	return out, changed
}

func (in *Interner) substSignature(sig Signature, s substitution) Signature {
	params, _ := in.substList(sig.Params, s)
	return Signature{Params: params, Result: in.subst(sig.Result, s)}
}
