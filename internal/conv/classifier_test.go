package conv

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convres/internal/budget"
	"convres/internal/diag"
	"convres/internal/rules"
	"convres/internal/types"
)

func TestReflexivity(t *testing.T) {
	u := newUniverse(t)
	for _, id := range append(u.sample(), u.in.Erroneous("Missing")) {
		for _, ctx := range []Context{Implicit(), Explicit(), {Mode: ModeStandard}} {
			conv, bag := u.c.Classify(id, id, ctx)
			assert.Equal(t, Identity, conv.Kind(), "%s in %s mode", u.in.Name(id), ctx.Mode)
			assert.Zero(t, bag.Len())
		}
	}
}

func TestNumericWidening(t *testing.T) {
	u := newUniverse(t)

	assert.Equal(t, ImplicitNumeric, u.implicit(u.int_, u.long).Kind())

	narrow, bag := u.c.Classify(u.long, u.int_, Implicit())
	assert.Equal(t, NoConversion, narrow.Kind())
	assert.Equal(t, FailureNone, narrow.Failure())
	assert.False(t, bag.HasErrors())

	assert.Equal(t, ExplicitNumeric, u.explicit(u.long, u.int_).Kind())
	assert.True(t, u.explicit(u.long, u.int_).IsExplicit())

	cases := []struct {
		src, dst types.TypeID
		want     Kind
	}{
		{u.byte_, u.short, ImplicitNumeric},
		{u.sbyte, u.byte_, NoConversion},
		{u.char, u.int_, ImplicitNumeric},
		{u.short, u.char, NoConversion},
		{u.short, u.uint_, NoConversion},
		{u.ushort, u.uint_, ImplicitNumeric},
		{u.long, u.float, ImplicitNumeric},
		{u.ulong, u.decimal, ImplicitNumeric},
		{u.float, u.decimal, NoConversion},
		{u.double, u.float, NoConversion},
	}
	for _, tc := range cases {
		got := u.implicit(tc.src, tc.dst)
		assert.Equal(t, tc.want, got.Kind(), "%s -> %s", u.in.Name(tc.src), u.in.Name(tc.dst))
	}
	for _, a := range u.numerics() {
		for _, b := range u.numerics() {
			if a == b {
				continue
			}
			got := u.explicit(a, b)
			assert.True(t, got.Kind() == ImplicitNumeric || got.Kind() == ExplicitNumeric,
				"every numeric pair converts by cast: %s -> %s = %s", u.in.Name(a), u.in.Name(b), got)
		}
	}
}

func TestBoxingAndUnboxing(t *testing.T) {
	u := newUniverse(t)

	assert.Equal(t, Boxing, u.implicit(u.point, u.iComparable).Kind())
	assert.Equal(t, Boxing, u.implicit(u.point, u.obj).Kind())
	assert.Equal(t, Boxing, u.implicit(u.point, u.valueType).Kind())
	assert.Equal(t, Boxing, u.implicit(u.int_, u.obj).Kind())
	assert.Equal(t, Boxing, u.implicit(u.color, u.obj).Kind())
	assert.Equal(t, Boxing, u.implicit(u.in.Nullable(u.int_), u.obj).Kind())
	assert.Equal(t, NoConversion, u.implicit(u.point, u.iWalk).Kind())
	assert.Equal(t, NoConversion, u.implicit(u.point, u.animal).Kind())

	assert.Equal(t, NoConversion, u.implicit(u.iComparable, u.point).Kind())
	assert.Equal(t, Unboxing, u.explicit(u.iComparable, u.point).Kind())
	assert.Equal(t, Unboxing, u.explicit(u.obj, u.int_).Kind())
	assert.Equal(t, Unboxing, u.explicit(u.obj, u.in.Nullable(u.int_)).Kind())
	assert.Equal(t, NoConversion, u.explicit(u.str, u.int_).Kind())
}

func TestBoxingPredicateIsInjected(t *testing.T) {
	in := types.NewInterner()
	noStructs := func(m types.Model, src, _ types.TypeID) bool {
		return m.Kind(src) != types.KindStruct
	}
	r, err := rules.Parse(rules.DefaultSource(), rules.WithBoxing(noStructs))
	require.NoError(t, err)
	c := New(in, r)

	point := in.DeclareStruct("Point")
	obj := in.Builtins().Object
	assert.Equal(t, NoConversion, c.ClassifyImplicit(point, obj).Kind())
	assert.Equal(t, Boxing, c.ClassifyImplicit(in.Numeric("int"), obj).Kind())
}

func TestReferenceConversions(t *testing.T) {
	u := newUniverse(t)
	in := u.in

	cases := []struct {
		name     string
		src, dst types.TypeID
		implicit Kind
		explicit Kind
	}{
		{"upcast", u.dog, u.animal, ImplicitReference, ImplicitReference},
		{"to object", u.dog, u.obj, ImplicitReference, ImplicitReference},
		{"string to object", u.str, u.obj, ImplicitReference, ImplicitReference},
		{"implemented interface", u.dog, u.iWalk, ImplicitReference, ImplicitReference},
		{"downcast", u.animal, u.dog, NoConversion, ExplicitReference},
		{"siblings", u.dog, u.cat, NoConversion, NoConversion},
		{"unsealed to interface", u.cat, u.iWalk, NoConversion, ExplicitReference},
		{"sealed to interface", u.sealedBox, u.iWalk, NoConversion, NoConversion},
		{"interface to class", u.iWalk, u.cat, NoConversion, ExplicitReference},
		{"interface to interface", u.iWalk, u.iComparable, NoConversion, ExplicitReference},
		{"array covariance", in.Array(u.dog, 1), in.Array(u.animal, 1), ImplicitReference, ImplicitReference},
		{"array downcast", in.Array(u.animal, 1), in.Array(u.dog, 1), NoConversion, ExplicitReference},
		{"value arrays are invariant", in.Array(u.int_, 1), in.Array(u.obj, 1), NoConversion, NoConversion},
		{"rank mismatch", in.Array(u.dog, 2), in.Array(u.animal, 1), NoConversion, NoConversion},
		{"null to class", u.null, u.dog, ImplicitReference, ImplicitReference},
		{"null to nullable", u.null, in.Nullable(u.int_), ImplicitNullable, ImplicitNullable},
		{"null to value", u.null, u.int_, NoConversion, NoConversion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.implicit, u.implicit(tc.src, tc.dst).Kind())
			assert.Equal(t, tc.explicit, u.explicit(tc.src, tc.dst).Kind())
		})
	}
}

func TestVariance(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	enumDog, enumAnimal := in.Instantiate(u.ienum, u.dog), in.Instantiate(u.ienum, u.animal)
	cmpDog, cmpAnimal := in.Instantiate(u.icomparer, u.dog), in.Instantiate(u.icomparer, u.animal)

	assert.Equal(t, ImplicitReference, u.implicit(enumDog, enumAnimal).Kind())
	assert.Equal(t, NoConversion, u.implicit(enumAnimal, enumDog).Kind())
	assert.Equal(t, ExplicitReference, u.explicit(enumAnimal, enumDog).Kind())
	assert.Equal(t, ImplicitReference, u.implicit(cmpAnimal, cmpDog).Kind())
	assert.Equal(t, NoConversion, u.implicit(cmpDog, cmpAnimal).Kind())

	// variance never applies to value type arguments
	enumInt, enumObj := in.Instantiate(u.ienum, u.int_), in.Instantiate(u.ienum, u.obj)
	assert.Equal(t, NoConversion, u.implicit(enumInt, enumObj).Kind())

	// a class implementing IEnumerable<Dog> reaches IEnumerable<Animal>
	kennel := in.DeclareClass("Kennel", types.NoTypeID)
	in.AddInterface(kennel, enumDog)
	assert.Equal(t, ImplicitReference, u.implicit(kennel, enumAnimal).Kind())
}

func TestVarianceIsGatedByLanguageVersion(t *testing.T) {
	old := rules.Default().WithVersion(semver.MustParse("3.0.0"))
	u := newUniverseWithRules(t, old)
	enumDog, enumAnimal := u.in.Instantiate(u.ienum, u.dog), u.in.Instantiate(u.ienum, u.animal)

	assert.Equal(t, NoConversion, u.implicit(enumDog, enumAnimal).Kind())
	assert.Equal(t, ImplicitReference, u.implicit(u.dog, u.animal).Kind())
}

func TestNullableConversions(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	intN, longN := in.Nullable(u.int_), in.Nullable(u.long)

	lifted := u.implicit(intN, longN)
	require.Equal(t, ImplicitNullable, lifted.Kind())
	assert.True(t, lifted.IsLifted())
	under, ok := lifted.Underlying()
	require.True(t, ok)
	assert.Equal(t, ImplicitNumeric, under.Kind())
	assert.Equal(t, u.int_, under.Source())
	assert.Equal(t, u.long, under.Destination())
	assert.Equal(t, "ImplicitNullable[lifted](ImplicitNumeric)", lifted.String())

	wrapped := u.implicit(u.int_, longN)
	assert.Equal(t, "ImplicitNullable(ImplicitNumeric)", wrapped.String())
	assert.False(t, wrapped.IsLifted())
	assert.Equal(t, "ImplicitNullable(Identity)", u.implicit(u.int_, intN).String())

	assert.Equal(t, NoConversion, u.implicit(longN, intN).Kind())
	assert.Equal(t, NoConversion, u.implicit(intN, u.int_).Kind())

	unwrap := u.explicit(intN, u.int_)
	assert.Equal(t, "ExplicitNullable(Identity)", unwrap.String())
	assert.False(t, unwrap.IsLifted())
	narrow := u.explicit(longN, intN)
	assert.Equal(t, "ExplicitNullable[lifted](ExplicitNumeric)", narrow.String())
	assert.Equal(t, "ExplicitNullable(ExplicitNumeric)", u.explicit(u.long, intN).String())
}

func TestConstantExpressions(t *testing.T) {
	u := newUniverse(t)
	classify := func(src, dst types.TypeID, ctx Context) Conversion {
		conv, _ := u.c.Classify(src, dst, ctx)
		return conv
	}

	assert.Equal(t, ImplicitConstantExpression, classify(u.int_, u.byte_, Implicit().WithConstant(200)).Kind())
	assert.Equal(t, NoConversion, classify(u.int_, u.byte_, Implicit().WithConstant(300)).Kind())
	assert.Equal(t, ExplicitNumeric, classify(u.int_, u.byte_, Explicit().WithConstant(300)).Kind())
	assert.Equal(t, NoConversion, classify(u.int_, u.uint_, Implicit().WithConstant(-1)).Kind())
	assert.Equal(t, ImplicitConstantExpression, classify(u.int_, u.uint_, Implicit().WithConstant(7)).Kind())
	assert.Equal(t, ImplicitConstantExpression, classify(u.long, u.ulong, Implicit().WithConstant(7)).Kind())
	assert.Equal(t, NoConversion, classify(u.long, u.int_, Implicit().WithConstant(7)).Kind())

	// widening wins over the constant rule
	assert.Equal(t, ImplicitNumeric, classify(u.int_, u.long, Implicit().WithConstant(1)).Kind())

	assert.Equal(t, "ImplicitNullable(ImplicitConstantExpression)",
		classify(u.int_, u.in.Nullable(u.byte_), Implicit().WithConstant(5)).String())

	assert.Equal(t, ImplicitConstantExpression, classify(u.int_, u.color, Implicit().WithConstant(0)).Kind())
	assert.Equal(t, NoConversion, classify(u.int_, u.color, Implicit().WithConstant(1)).Kind())
}

func TestEnumConversions(t *testing.T) {
	u := newUniverse(t)
	shade := u.in.DeclareEnum("Shade", u.byte_)

	assert.Equal(t, NoConversion, u.implicit(u.color, u.int_).Kind())
	assert.Equal(t, ExplicitNumeric, u.explicit(u.color, u.int_).Kind())
	assert.Equal(t, ExplicitNumeric, u.explicit(u.long, u.color).Kind())
	assert.Equal(t, ExplicitNumeric, u.explicit(u.color, shade).Kind())
	assert.Equal(t, Boxing, u.implicit(u.color, u.valueType).Kind())
	assert.Equal(t, Unboxing, u.explicit(u.obj, u.color).Kind())
}

func TestTypeParameters(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	box := in.DeclareClass("Box", types.NoTypeID)
	tp := in.AddTypeParam(box, "T", types.Invariant)
	in.AddConstraint(tp, u.animal)
	up := in.AddTypeParam(box, "U", types.Invariant)
	vp := in.AddTypeParam(box, "V", types.Invariant)
	in.AddConstraint(vp, tp)
	sp := in.NewMethodTypeParam("S", 0)
	in.SetValueConstraint(sp)

	assert.Equal(t, ImplicitThroughGenericConstraint, u.implicit(tp, u.animal).Kind())
	assert.Equal(t, ImplicitThroughGenericConstraint, u.implicit(tp, u.obj).Kind())
	assert.Equal(t, ImplicitThroughGenericConstraint, u.implicit(up, u.obj).Kind())
	assert.Equal(t, ImplicitThroughGenericConstraint, u.implicit(vp, tp).Kind())
	assert.Equal(t, ImplicitThroughGenericConstraint, u.implicit(vp, u.animal).Kind())
	assert.Equal(t, ImplicitThroughGenericConstraint, u.implicit(sp, u.valueType).Kind())
	assert.Equal(t, NoConversion, u.implicit(tp, u.dog).Kind())
	assert.Equal(t, NoConversion, u.implicit(tp, u.iWalk).Kind())
	assert.Equal(t, NoConversion, u.implicit(tp, vp).Kind())

	assert.Equal(t, ExplicitReference, u.explicit(tp, u.iWalk).Kind())
	assert.Equal(t, ExplicitReference, u.explicit(u.animal, tp).Kind())
	assert.Equal(t, ExplicitReference, u.explicit(u.iWalk, tp).Kind())
	assert.Equal(t, Unboxing, u.explicit(u.obj, up).Kind())
	assert.Equal(t, ImplicitReference, u.implicit(u.null, tp).Kind())
}

func TestCyclicConstraintsAreTooComplex(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	owner := in.DeclareClass("Cycle", types.NoTypeID)
	tp := in.AddTypeParam(owner, "T", types.Invariant)
	up := in.AddTypeParam(owner, "U", types.Invariant)
	in.AddConstraint(tp, up)
	in.AddConstraint(up, tp)

	conv, bag := u.c.Classify(tp, u.str, Implicit())
	assert.Equal(t, NoConversion, conv.Kind())
	assert.True(t, conv.TooComplex(), dump(conv))
	assert.True(t, bag.Has(diag.ConvRecursionLimit))

	// a success does not depend on the exhausted branch
	assert.Equal(t, ImplicitThroughGenericConstraint, u.implicit(tp, u.obj).Kind())
}

// X<T> : IIn<IIn<X<X<T>>>> expands without bound when X<int> is tested
// against IIn<X<int>> through contravariance.
func TestExpandingGenericChainExhaustsBudget(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	iin := in.DeclareInterface("IIn")
	in.AddTypeParam(iin, "T", types.Contravariant)
	x := in.DeclareClass("X", types.NoTypeID)
	xt := in.AddTypeParam(x, "T", types.Invariant)
	in.AddInterface(x, in.Instantiate(iin, in.Instantiate(iin, in.Instantiate(x, in.Instantiate(x, xt)))))

	src := in.Instantiate(x, u.int_)
	dst := in.Instantiate(iin, src)

	for _, maxDepth := range []int{4, 8, budget.DefaultMax} {
		ctx := Implicit().WithBudget(budget.New(maxDepth))
		conv, bag := u.c.Classify(src, dst, ctx)
		require.Equal(t, NoConversion, conv.Kind(), "max=%d", maxDepth)
		assert.True(t, conv.TooComplex(), "max=%d: %s", maxDepth, conv)
		require.Equal(t, 1, bag.Len())
		d := bag.Items()[0]
		assert.Equal(t, diag.ConvRecursionLimit, d.Code)
		assert.Equal(t, []types.TypeID{src, dst}, d.Types)
	}

	// the same graph still answers questions that terminate
	assert.Equal(t, ImplicitReference, u.implicit(src, u.obj).Kind())
}

func TestPointerConversions(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	intPtr, voidPtr := in.Pointer(u.int_), in.Pointer(u.void)

	assert.Equal(t, PointerConversion, u.implicit(intPtr, voidPtr).Kind())
	assert.Equal(t, PointerConversion, u.implicit(u.null, intPtr).Kind())
	assert.Equal(t, NoConversion, u.implicit(voidPtr, intPtr).Kind())
	assert.Equal(t, PointerConversion, u.explicit(voidPtr, intPtr).Kind())
	assert.Equal(t, PointerConversion, u.explicit(intPtr, u.long).Kind())
	assert.Equal(t, PointerConversion, u.explicit(u.int_, intPtr).Kind())
	assert.Equal(t, NoConversion, u.explicit(u.float, intPtr).Kind())
}

func TestMethodGroupsAndLambdas(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	handler := in.DeclareDelegate("Handler", []types.TypeID{u.dog}, u.void)
	measure := in.DeclareDelegate("Measure", []types.TypeID{u.dog}, u.long)

	onAnimal := in.RegisterMethodGroup("OnAnimal", types.Signature{Params: []types.TypeID{u.animal}, Result: u.void})
	assert.Equal(t, MethodGroupToDelegate, u.implicit(onAnimal, handler).Kind())

	exactWins := in.RegisterMethodGroup("OnAny",
		types.Signature{Params: []types.TypeID{u.animal}, Result: u.void},
		types.Signature{Params: []types.TypeID{u.dog}, Result: u.void})
	assert.Equal(t, MethodGroupToDelegate, u.implicit(exactWins, handler).Kind())

	tied := in.RegisterMethodGroup("OnTied",
		types.Signature{Params: []types.TypeID{u.animal}, Result: u.void},
		types.Signature{Params: []types.TypeID{u.obj}, Result: u.void})
	conv, bag := u.c.Classify(tied, handler, Implicit())
	assert.True(t, conv.Ambiguous())
	assert.True(t, bag.Has(diag.ConvMethodGroupAmbiguous))

	onInt := in.RegisterMethodGroup("OnInt", types.Signature{Params: []types.TypeID{u.int_}, Result: u.void})
	assert.Equal(t, NoConversion, u.implicit(onInt, handler).Kind())

	conv, bag = u.c.Classify(onAnimal, u.int_, Implicit())
	assert.Equal(t, FailureNoContext, conv.Failure())
	assert.True(t, bag.Has(diag.ConvMethodGroupNoContext))

	lengthOf := in.RegisterLambda([]types.TypeID{u.dog}, u.int_)
	assert.Equal(t, AnonymousFunctionToDelegate, u.implicit(lengthOf, measure).Kind())
	assert.Equal(t, AnonymousFunctionToDelegate, u.implicit(lengthOf, handler).Kind())
	nameOf := in.RegisterLambda([]types.TypeID{u.dog}, u.str)
	assert.Equal(t, NoConversion, u.implicit(nameOf, measure).Kind())
	widerParam := in.RegisterLambda([]types.TypeID{u.animal}, u.void)
	assert.Equal(t, NoConversion, u.implicit(widerParam, handler).Kind())
	silent := in.RegisterLambda([]types.TypeID{u.dog}, u.void)
	assert.Equal(t, NoConversion, u.implicit(silent, measure).Kind())
}

func TestMethodGroupFeatureGate(t *testing.T) {
	u := newUniverseWithRules(t, rules.Default().WithVersion(semver.MustParse("1.0.0")))
	handler := u.in.DeclareDelegate("Handler", []types.TypeID{u.dog}, u.void)
	group := u.in.RegisterMethodGroup("OnDog", types.Signature{Params: []types.TypeID{u.dog}, Result: u.void})

	conv, bag := u.c.Classify(group, handler, Implicit())
	assert.Equal(t, NoConversion, conv.Kind())
	assert.True(t, bag.Has(diag.ConvFeatureDisabled))
}

func TestMethodGroupHookIsInjected(t *testing.T) {
	in := types.NewInterner()
	calls := 0
	hook := func(g types.MethodGroupInfo, _ types.Signature, _ func(from, to types.TypeID) bool) rules.MethodGroupMatch {
		calls++
		return rules.MethodGroupMatch{Index: len(g.Overloads) - 1}
	}
	r, err := rules.Parse(rules.DefaultSource(), rules.WithMethodGroupHook(hook))
	require.NoError(t, err)
	c := New(in, r, WithCache(nil))

	str := in.Builtins().String
	handler := in.DeclareDelegate("Handler", []types.TypeID{str}, in.Builtins().Void)
	group := in.RegisterMethodGroup("Anything", types.Signature{Params: []types.TypeID{in.Numeric("int")}})
	assert.Equal(t, MethodGroupToDelegate, c.ClassifyImplicit(group, handler).Kind())
	assert.Equal(t, 1, calls)
}

func TestErroneousTypes(t *testing.T) {
	u := newUniverse(t)
	missing := u.in.Erroneous("Missing")

	conv, bag := u.c.Classify(missing, u.int_, Implicit())
	assert.Equal(t, NoConversion, conv.Kind())
	assert.Equal(t, FailureErroneous, conv.Failure())
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.ConvErroneousType, bag.Items()[0].Code)
	assert.Equal(t, []types.TypeID{missing}, bag.Items()[0].Types)

	conv, _ = u.c.Classify(u.dog, u.in.Array(missing, 1), Explicit())
	assert.False(t, conv.Exists())
}

func TestContractViolationsPanic(t *testing.T) {
	u := newUniverse(t)
	bogus := types.TypeID(1 << 20)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*ContractError)
		require.True(t, ok, "unexpected panic value %v", r)
		assert.Equal(t, bogus, err.Type)
		assert.Contains(t, err.Error(), "not part of the model")
	}()
	u.c.Classify(u.int_, bogus, Implicit())
}

func TestUnknownModeIsAContractViolation(t *testing.T) {
	u := newUniverse(t)
	assert.Panics(t, func() {
		u.c.Classify(u.int_, u.long, Context{Mode: Mode(42)})
	})
	assert.Panics(t, func() { New(nil, nil) })
}

func TestParseHelpers(t *testing.T) {
	for k := NoConversion; k <= PointerConversion; k++ {
		got, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("Coercion")
	assert.False(t, ok)

	m, err := ParseMode("cast")
	require.NoError(t, err)
	assert.Equal(t, ModeExplicit, m)
	_, err = ParseMode("sideways")
	assert.Error(t, err)
}
