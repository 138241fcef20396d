package types

import (
	"slices"
)

// Signature describes the parameter and result types of an invocable.
type Signature struct {
	Params []TypeID
	Result TypeID
}

// Equal reports whether both signatures have identical types.
func (s Signature) Equal(other Signature) bool {
	return s.Result == other.Result && slices.Equal(s.Params, other.Params)
}

// MethodGroupInfo stores the overloads named by a method group expression.
type MethodGroupInfo struct {
	Name      string
	Overloads []Signature
}

// RegisterLambda describes an anonymous function whose parameters are
// explicitly typed and whose body yields result. A void result means the
// body returns nothing.
func (in *Interner) RegisterLambda(params []TypeID, result TypeID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.lambdas = append(in.lambdas, Signature{Params: slices.Clone(params), Result: result})
	return in.internLocked(Type{Kind: KindLambda, Payload: slotOf(len(in.lambdas)-1, "lambda")})
}

// RegisterMethodGroup describes a method group expression with its overloads.
func (in *Interner) RegisterMethodGroup(name string, overloads ...Signature) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	cloned := make([]Signature, len(overloads))
	for i, sig := range overloads {
		cloned[i] = Signature{Params: slices.Clone(sig.Params), Result: sig.Result}
	}
	in.groups = append(in.groups, MethodGroupInfo{Name: name, Overloads: cloned})
	return in.internLocked(Type{Kind: KindMethodGroup, Payload: slotOf(len(in.groups)-1, "method group")})
}

// Signature returns the invoke signature of a delegate or lambda.
func (in *Interner) Signature(id TypeID) (Signature, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return Signature{}, false
	}
	switch tt.Kind {
	case KindLambda:
		in.mu.RLock()
		defer in.mu.RUnlock()
		if tt.Payload == 0 || int(tt.Payload) >= len(in.lambdas) {
			return Signature{}, false
		}
		sig := in.lambdas[tt.Payload]
		return Signature{Params: slices.Clone(sig.Params), Result: sig.Result}, true
	case KindDelegate:
		def, sub, ok := in.definitionInfo(id)
		if !ok {
			return Signature{}, false
		}
		return in.substSignature(def.Invoke, sub), true
	default:
		return Signature{}, false
	}
}

// MethodGroup returns the overloads of a method group expression.
func (in *Interner) MethodGroup(id TypeID) (MethodGroupInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindMethodGroup {
		return MethodGroupInfo{}, false
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	if tt.Payload == 0 || int(tt.Payload) >= len(in.groups) {
		return MethodGroupInfo{}, false
	}
	return in.groups[tt.Payload], true
}
