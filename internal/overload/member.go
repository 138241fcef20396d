package overload

import (
	"fmt"

	"convres/internal/conv"
	"convres/internal/types"
)

// Param is one declared parameter of a member.
type Param struct {
	Name string
	Type types.TypeID
	// Declared is the type as written before method type arguments were
	// substituted; NoTypeID means Type. Only the more-specific tie-break
	// reads it.
	Declared   types.TypeID
	HasDefault bool
	// Variadic marks a trailing "params" array parameter.
	Variadic bool
}

func (p Param) declared() types.TypeID {
	if p.Declared != types.NoTypeID {
		return p.Declared
	}
	return p.Type
}

// Member is an overload candidate as seen by the binder. TypeParams and
// TypeArgs describe a generic method whose arguments are already inferred
// or supplied; parameter types are expected to be instantiated.
type Member struct {
	Name       string
	Params     []Param
	TypeParams []types.TypeID
	TypeArgs   []types.TypeID
}

func (m *Member) generic() bool {
	return len(m.TypeParams) > 0
}

func (m *Member) variadic() bool {
	return len(m.Params) > 0 && m.Params[len(m.Params)-1].Variadic
}

func (m *Member) String() string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%d", m.Name, len(m.Params))
}

// Argument is one supplied argument. An empty Name means positional.
type Argument struct {
	Name     string
	Type     types.TypeID
	Constant conv.Constant
}

// Positional builds positional arguments from types.
func Positional(ids ...types.TypeID) []Argument {
	out := make([]Argument, len(ids))
	for i, id := range ids {
		out[i] = Argument{Type: id}
	}
	return out
}

// Named builds a named argument.
func Named(name string, id types.TypeID) Argument {
	return Argument{Name: name, Type: id}
}

// validate enforces the member contract: known types, a variadic parameter
// only in last position and of array type, matching type parameter and
// argument counts.
func validate(m types.Model, idx int, mem *Member) {
	if mem == nil {
		contractViolation("resolve", idx, "nil member")
	}
	known := func(id types.TypeID, what string) {
		if _, ok := m.Lookup(id); !ok {
			contractViolation("resolve", idx, fmt.Sprintf("%s of %s is not part of the model", what, mem))
		}
	}
	for i, p := range mem.Params {
		known(p.Type, fmt.Sprintf("parameter %d", i))
		if p.Declared != types.NoTypeID {
			known(p.Declared, fmt.Sprintf("declared parameter %d", i))
		}
		if !p.Variadic {
			continue
		}
		if i != len(mem.Params)-1 {
			contractViolation("resolve", idx, fmt.Sprintf("variadic parameter %d of %s is not last", i, mem))
		}
		if m.Kind(p.Type) != types.KindArray {
			contractViolation("resolve", idx, fmt.Sprintf("variadic parameter of %s is not an array", mem))
		}
	}
	if len(mem.TypeParams) != len(mem.TypeArgs) {
		contractViolation("resolve", idx, fmt.Sprintf("%s has %d type parameters but %d type arguments",
			mem, len(mem.TypeParams), len(mem.TypeArgs)))
	}
	for i, tp := range mem.TypeParams {
		if m.Kind(tp) != types.KindTypeParam {
			contractViolation("resolve", idx, fmt.Sprintf("type parameter %d of %s is not a type parameter", i, mem))
		}
		known(mem.TypeArgs[i], fmt.Sprintf("type argument %d", i))
	}
}
