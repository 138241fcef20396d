package overload

import (
	"testing"

	"convres/internal/conv"
	"convres/internal/rules"
	"convres/internal/types"
)

type world struct {
	in *types.Interner
	r  *Resolver

	short, ushort, int_, uint_, long, double types.TypeID
	obj, str                                 types.TypeID
	animal, dog, cat, iWalk                  types.TypeID
}

func newWorld(t testing.TB, rs *rules.Rules, opts ...Option) *world {
	t.Helper()
	in := types.NewInterner()
	w := &world{in: in}
	w.short = in.Numeric("short")
	w.ushort = in.Numeric("ushort")
	w.int_ = in.Numeric("int")
	w.uint_ = in.Numeric("uint")
	w.long = in.Numeric("long")
	w.double = in.Numeric("double")
	b := in.Builtins()
	w.obj, w.str = b.Object, b.String
	w.iWalk = in.DeclareInterface("IWalk")
	w.animal = in.DeclareClass("Animal", types.NoTypeID)
	w.dog = in.DeclareClass("Dog", w.animal)
	in.AddInterface(w.dog, w.iWalk)
	w.cat = in.DeclareClass("Cat", w.animal)
	w.r = New(conv.New(in, rs), opts...)
	return w
}

// fn declares a member with unnamed positional parameters.
func fn(name string, params ...types.TypeID) *Member {
	m := &Member{Name: name}
	for i, p := range params {
		m.Params = append(m.Params, Param{Name: string(rune('a' + i)), Type: p})
	}
	return m
}

func indices(cs []Candidate) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Index
	}
	return out
}
