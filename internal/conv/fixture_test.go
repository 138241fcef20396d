package conv

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"convres/internal/rules"
	"convres/internal/types"
)

// universe is a small C#-like type graph shared by the classifier tests.
type universe struct {
	in *types.Interner
	c  *Classifier

	sbyte, byte_, short, ushort, char, int_, uint_, long, ulong types.TypeID
	float, double, decimal                                      types.TypeID

	obj, str, null, void, valueType types.TypeID

	animal, dog, cat, sealedBox types.TypeID
	iWalk, iComparable          types.TypeID
	point                       types.TypeID // struct Point : IComparable
	color                       types.TypeID // enum Color : int

	ienum, icomparer types.TypeID // IEnumerable<out T>, IComparer<in T>
}

func newUniverse(t testing.TB, opts ...Option) *universe {
	t.Helper()
	return newUniverseWithRules(t, rules.Default(), opts...)
}

func newUniverseWithRules(t testing.TB, r *rules.Rules, opts ...Option) *universe {
	t.Helper()
	in := types.NewInterner()
	u := &universe{in: in}
	b := in.Builtins()
	u.obj, u.str, u.null, u.void, u.valueType = b.Object, b.String, b.Null, b.Void, b.ValueType

	u.sbyte = in.Numeric("sbyte")
	u.byte_ = in.Numeric("byte")
	u.short = in.Numeric("short")
	u.ushort = in.Numeric("ushort")
	u.char = in.Numeric("char")
	u.int_ = in.Numeric("int")
	u.uint_ = in.Numeric("uint")
	u.long = in.Numeric("long")
	u.ulong = in.Numeric("ulong")
	u.float = in.Numeric("float")
	u.double = in.Numeric("double")
	u.decimal = in.Numeric("decimal")

	u.iWalk = in.DeclareInterface("IWalk")
	u.iComparable = in.DeclareInterface("IComparable")
	u.animal = in.DeclareClass("Animal", types.NoTypeID)
	u.dog = in.DeclareClass("Dog", u.animal)
	in.AddInterface(u.dog, u.iWalk)
	u.cat = in.DeclareClass("Cat", u.animal)
	u.sealedBox = in.DeclareClass("SealedBox", types.NoTypeID)
	in.Seal(u.sealedBox)

	u.point = in.DeclareStruct("Point")
	in.AddInterface(u.point, u.iComparable)
	u.color = in.DeclareEnum("Color", u.int_)

	u.ienum = in.DeclareInterface("IEnumerable")
	in.AddTypeParam(u.ienum, "T", types.Covariant)
	u.icomparer = in.DeclareInterface("IComparer")
	in.AddTypeParam(u.icomparer, "T", types.Contravariant)

	u.c = New(in, r, opts...)
	return u
}

func (u *universe) numerics() []types.TypeID {
	return []types.TypeID{u.sbyte, u.byte_, u.short, u.ushort, u.char, u.int_, u.uint_,
		u.long, u.ulong, u.float, u.double, u.decimal}
}

// sample returns a spread of types covering every kind the classifier
// handles.
func (u *universe) sample() []types.TypeID {
	in := u.in
	out := append(u.numerics(), u.obj, u.str, u.null, u.valueType,
		u.animal, u.dog, u.cat, u.sealedBox, u.iWalk, u.iComparable, u.point, u.color,
		in.Nullable(u.int_), in.Nullable(u.long), in.Nullable(u.point),
		in.Array(u.dog, 1), in.Array(u.animal, 1), in.Array(u.int_, 1),
		in.Instantiate(u.ienum, u.dog), in.Instantiate(u.ienum, u.animal),
		in.Instantiate(u.icomparer, u.dog), in.Instantiate(u.icomparer, u.animal),
		in.Pointer(u.int_), in.Pointer(u.void),
	)
	return out
}

// maze is a graph where user-defined resolution has to look through a
// long base chain before it sees every candidate.
type maze struct {
	iface, x1, x2, s, s2 types.TypeID
	wrap                 types.TypeID // Wrap<T> { implicit operator Wrap<T>(T) }
	chain                []types.TypeID
}

// addMaze declares
//
//	interface I
//	class C10 : I; class C9 : C10; ... class C1 : C2
//	class X1 : I; class X2 : C1
//	class S  { implicit operator X1(S); implicit operator X2(S) }
//	class S2 { implicit operator X2(S2) }
//	class Wrap<T> where T : I { implicit operator Wrap<T>(T) }
func (u *universe) addMaze(depth int) *maze {
	in := u.in
	m := &maze{iface: in.DeclareInterface("I")}
	prev := types.NoTypeID
	for i := depth; i >= 1; i-- {
		c := in.DeclareClass(fmt.Sprintf("C%d", i), prev)
		if prev == types.NoTypeID {
			in.AddInterface(c, m.iface)
		}
		m.chain = append(m.chain, c)
		prev = c
	}
	m.x1 = in.DeclareClass("X1", types.NoTypeID)
	in.AddInterface(m.x1, m.iface)
	m.x2 = in.DeclareClass("X2", prev)

	m.s = in.DeclareClass("S", types.NoTypeID)
	in.AddOperator(m.s, types.Operator{From: m.s, To: m.x1, Implicit: true, Name: "op_Implicit"})
	in.AddOperator(m.s, types.Operator{From: m.s, To: m.x2, Implicit: true, Name: "op_Implicit"})
	m.s2 = in.DeclareClass("S2", types.NoTypeID)
	in.AddOperator(m.s2, types.Operator{From: m.s2, To: m.x2, Implicit: true, Name: "op_Implicit"})

	m.wrap = in.DeclareClass("Wrap", types.NoTypeID)
	wt := in.AddTypeParam(m.wrap, "T", types.Invariant)
	in.AddConstraint(wt, m.iface)
	in.AddOperator(m.wrap, types.Operator{From: wt, To: m.wrap, Implicit: true, Name: "op_Implicit"})
	return m
}

// sample lists the maze types together with instantiations of Wrap.
func (m *maze) sample(in *types.Interner) []types.TypeID {
	out := []types.TypeID{m.iface, m.x1, m.x2, m.s, m.s2, m.chain[0], m.chain[len(m.chain)-1]}
	return append(out, in.Instantiate(m.wrap, m.x1), in.Instantiate(m.wrap, m.x2), in.Instantiate(m.wrap, m.iface))
}

func (u *universe) implicit(src, dst types.TypeID) Conversion {
	conv, _ := u.c.Classify(src, dst, Implicit())
	return conv
}

func (u *universe) explicit(src, dst types.TypeID) Conversion {
	conv, _ := u.c.Classify(src, dst, Explicit())
	return conv
}

func dump(v ...any) string {
	return spew.Sdump(v...)
}
