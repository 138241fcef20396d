package overload

import (
	"convres/internal/diag"
	"convres/internal/types"
)

// binding is the argument-to-parameter map of one member form.
type binding struct {
	paramOf    []int
	paramTypes []types.TypeID
	defaults   int
	reason     Reason
	ok         bool
}

func fail(code diag.Code, arg, param int) binding {
	return binding{reason: Reason{Code: code, Arg: arg, Param: param}}
}

// bind matches arguments to the parameters of mem. Positional arguments
// fill parameters in order and must precede named ones; a named argument
// binds the parameter of that name. In expanded form the variadic
// parameter takes every trailing positional argument, possibly none, and
// cannot be named.
func bind(m types.Model, mem *Member, form Form, args []Argument) binding {
	n := len(mem.Params)
	fixed := n
	var elem types.TypeID
	if form == FormExpanded {
		fixed = n - 1
		if t, ok := m.Lookup(mem.Params[n-1].Type); ok {
			elem = t.Elem
		}
	}

	b := binding{
		paramOf:    make([]int, len(args)),
		paramTypes: make([]types.TypeID, len(args)),
	}
	bound := make([]bool, n)
	named := false
	for i, a := range args {
		p := -1
		if a.Name == "" {
			switch {
			case named:
				return fail(diag.OvlPositionalAfterNamed, i, -1)
			case i < fixed:
				p = i
				b.paramTypes[i] = mem.Params[p].Type
			case form == FormExpanded:
				p = n - 1
				b.paramTypes[i] = elem
			default:
				return fail(diag.OvlArityMismatch, i, -1)
			}
		} else {
			named = true
			p = paramIndex(mem, a.Name)
			if p < 0 || (form == FormExpanded && p == n-1) {
				return fail(diag.OvlNamedArgNotFound, i, -1)
			}
			if bound[p] {
				return fail(diag.OvlNamedArgDuplicate, i, p)
			}
			b.paramTypes[i] = mem.Params[p].Type
		}
		bound[p] = true
		b.paramOf[i] = p
	}

	for p, ok := range bound {
		switch {
		case ok:
		case form == FormExpanded && p == n-1:
		case mem.Params[p].HasDefault:
			b.defaults++
		default:
			return fail(diag.OvlRequiredParamMissing, -1, p)
		}
	}
	b.reason = noReason()
	b.ok = true
	return b
}

func paramIndex(mem *Member, name string) int {
	for i, p := range mem.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
