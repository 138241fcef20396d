package types

import (
	"slices"
	"sync"
	"testing"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Object == NoTypeID || b.Bool == NoTypeID || b.ValueType == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	obj, _ := in.Lookup(b.Object)
	if obj.Kind != KindObject {
		t.Fatalf("expected object kind, got %v", obj.Kind)
	}
	if in.BaseType(b.ValueType) != b.Object {
		t.Fatalf("ValueType must derive from object")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().String
	arr1 := in.Array(elem, 1)
	arr2 := in.Array(elem, 1)
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	if in.Array(elem, 2) == arr1 {
		t.Fatalf("array rank must affect identity")
	}
	if in.Numeric("int") != in.Numeric("int") {
		t.Fatalf("numeric types should be deduplicated by name")
	}
}

func TestInstantiateDeduplicatesAndSubstitutes(t *testing.T) {
	in := NewInterner()
	i32 := in.Numeric("int")
	iface := in.DeclareInterface("IBox")
	it := in.AddTypeParam(iface, "T", Covariant)
	box := in.DeclareClass("Box", NoTypeID)
	bt := in.AddTypeParam(box, "T", Invariant)
	in.AddInterface(box, in.Instantiate(iface, in.Array(bt, 1)))

	boxInt := in.Instantiate(box, i32)
	if boxInt != in.Instantiate(box, i32) {
		t.Fatalf("instantiations should be deduplicated")
	}
	if in.Instantiate(box, bt) != box {
		t.Fatalf("instantiating with own parameters must yield the definition")
	}
	got := slices.Collect(in.Interfaces(boxInt))
	want := in.Instantiate(iface, in.Array(i32, 1))
	if len(got) != 1 || got[0] != want {
		t.Fatalf("expected %s, got %v", in.Name(want), got)
	}
	if name := in.Name(want); name != "IBox<int[]>" {
		t.Fatalf("unexpected label %q", name)
	}
	if info, _ := in.TypeParam(it); info.Variance != Covariant {
		t.Fatalf("variance not recorded")
	}
}

func TestSubstituteNestedArguments(t *testing.T) {
	in := NewInterner()
	i32 := in.Numeric("int")
	eq := in.DeclareInterface("IEquatable")
	in.AddTypeParam(eq, "T", Invariant)
	tp := in.NewMethodTypeParam("T", 0)

	open := in.Nullable(in.Instantiate(eq, in.Array(tp, 1)))
	got := in.Substitute(open, []TypeID{tp}, []TypeID{i32})
	if want := in.Nullable(in.Instantiate(eq, in.Array(i32, 1))); got != want {
		t.Fatalf("expected %s, got %s", in.Name(want), in.Name(got))
	}
	if in.Substitute(open, nil, nil) != open {
		t.Fatalf("empty substitution must return the type unchanged")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("mismatched params and args should panic")
		}
	}()
	in.Substitute(open, []TypeID{tp}, nil)
}

func TestOperatorsAreSubstituted(t *testing.T) {
	in := NewInterner()
	i32 := in.Numeric("int")
	wrap := in.DeclareStruct("Wrap")
	wt := in.AddTypeParam(wrap, "T", Invariant)
	in.AddOperator(wrap, Operator{From: wt, To: wrap, Implicit: true})

	inst := in.Instantiate(wrap, i32)
	var ops []Operator
	for op := range in.Operators(inst) {
		ops = append(ops, op)
	}
	if len(ops) != 1 {
		t.Fatalf("expected one operator, got %d", len(ops))
	}
	if ops[0].From != i32 || ops[0].To != inst || ops[0].Declaring != inst {
		t.Fatalf("operator not substituted: %+v", ops[0])
	}
	if !ops[0].IsLiftable(in) {
		t.Fatalf("struct operator over int should be liftable")
	}
}

func TestBaseTypesOfBuiltinKinds(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	s := in.DeclareStruct("S")
	d := in.DeclareDelegate("D", nil, b.Void)
	c := in.DeclareClass("C", NoTypeID)
	cases := map[TypeID]TypeID{
		s:                 b.ValueType,
		d:                 b.Delegate,
		c:                 b.Object,
		in.Array(c, 1):    b.Array,
		in.Nullable(s):    b.ValueType,
		b.String:          b.Object,
		in.Numeric("int"): b.ValueType,
	}
	for id, want := range cases {
		if got := in.BaseType(id); got != want {
			t.Fatalf("BaseType(%s) = %s, want %s", in.Name(id), in.Name(got), in.Name(want))
		}
	}
}

func TestTypeParamReferenceThroughConstraints(t *testing.T) {
	in := NewInterner()
	c := in.DeclareClass("C", NoTypeID)
	u := in.NewMethodTypeParam("U", 0)
	v := in.NewMethodTypeParam("V", 1)
	in.AddConstraint(u, c)
	in.AddConstraint(v, u)
	if !in.IsReferenceType(v) {
		t.Fatalf("V : U : C should be a reference type")
	}
	// cyclic constraints must not recurse forever
	a := in.NewMethodTypeParam("A", 2)
	b := in.NewMethodTypeParam("B", 3)
	in.AddConstraint(a, b)
	in.AddConstraint(b, a)
	if in.IsReferenceType(a) {
		t.Fatalf("cyclic unconstrained parameters are not reference types")
	}
}

func TestConcurrentInstantiation(t *testing.T) {
	in := NewInterner()
	list := in.DeclareClass("List", NoTypeID)
	in.AddTypeParam(list, "T", Invariant)
	elem := in.Numeric("long")

	var wg sync.WaitGroup
	ids := make([]TypeID, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = in.Instantiate(list, elem)
		}(i)
	}
	wg.Wait()
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent instantiation produced distinct ids")
		}
	}
}
