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

type temperature struct {
	*universe
	celsius    types.TypeID
	fromDouble types.Operator
	toDouble   types.Operator
	celsiusN   types.TypeID
	doubleN    types.TypeID
}

// newTemperature declares
//
//	struct Celsius {
//	    implicit operator Celsius(double)
//	    explicit operator double(Celsius)
//	}
func newTemperature(t *testing.T, r *rules.Rules) *temperature {
	t.Helper()
	u := newUniverseWithRules(t, r)
	in := u.in
	celsius := in.DeclareStruct("Celsius")
	in.AddOperator(celsius, types.Operator{From: u.double, To: celsius, Implicit: true, Name: "op_Implicit"})
	in.AddOperator(celsius, types.Operator{From: celsius, To: u.double, Name: "op_Explicit"})
	return &temperature{
		universe:   u,
		celsius:    celsius,
		fromDouble: types.Operator{Declaring: celsius, From: u.double, To: celsius, Implicit: true, Order: 1, Name: "op_Implicit"},
		toDouble:   types.Operator{Declaring: celsius, From: celsius, To: u.double, Order: 2, Name: "op_Explicit"},
		celsiusN:   in.Nullable(celsius),
		doubleN:    in.Nullable(u.double),
	}
}

func TestImplicitUserDefined(t *testing.T) {
	tc := newTemperature(t, rules.Default())

	conv := tc.implicit(tc.int_, tc.celsius)
	require.Equal(t, ImplicitUserDefined, conv.Kind(), dump(conv))
	op, ok := conv.Operator()
	require.True(t, ok)
	assert.Equal(t, tc.fromDouble, op)
	assert.Equal(t, "ImplicitUserDefined(ImplicitNumeric, Identity)", conv.String())

	before, ok := conv.Before()
	require.True(t, ok)
	assert.Equal(t, tc.int_, before.Source())
	assert.Equal(t, tc.double, before.Destination())

	assert.Equal(t, ImplicitUserDefined, tc.implicit(tc.double, tc.celsius).Kind())
	assert.Equal(t, NoConversion, tc.implicit(tc.celsius, tc.double).Kind())
	assert.Equal(t, NoConversion, tc.implicit(tc.decimal, tc.celsius).Kind())
}

func TestExplicitUserDefined(t *testing.T) {
	tc := newTemperature(t, rules.Default())

	conv := tc.explicit(tc.celsius, tc.double)
	require.Equal(t, ExplicitUserDefined, conv.Kind())
	op, _ := conv.Operator()
	assert.Equal(t, tc.toDouble, op)
	assert.True(t, conv.IsExplicit())

	narrowed := tc.explicit(tc.celsius, tc.float)
	assert.Equal(t, "ExplicitUserDefined(Identity, ExplicitNumeric)", narrowed.String())

	// a cast still prefers the implicit operator when it applies
	assert.Equal(t, ImplicitUserDefined, tc.explicit(tc.double, tc.celsius).Kind())
}

func TestUserDefinedIntoNullable(t *testing.T) {
	tc := newTemperature(t, rules.Default())

	conv := tc.implicit(tc.int_, tc.celsiusN)
	require.Equal(t, ImplicitUserDefined, conv.Kind())
	assert.False(t, conv.IsLifted())
	after, ok := conv.After()
	require.True(t, ok)
	assert.Equal(t, "ImplicitNullable(Identity)", after.String())
}

func TestLiftedUserDefined(t *testing.T) {
	tc := newTemperature(t, rules.Default())

	conv := tc.implicit(tc.doubleN, tc.celsiusN)
	require.Equal(t, ImplicitUserDefined, conv.Kind(), dump(conv))
	assert.True(t, conv.IsLifted())
	under, ok := conv.Underlying()
	require.True(t, ok)
	assert.Equal(t, tc.double, under.Source())
	assert.Equal(t, tc.celsius, under.Destination())
	assert.False(t, under.IsLifted())

	// a nullable source never reaches the non-nullable operator result
	assert.Equal(t, NoConversion, tc.implicit(tc.doubleN, tc.celsius).Kind())
}

func TestLiftedUserDefinedFeatureGate(t *testing.T) {
	tc := newTemperature(t, rules.Default().WithVersion(semver.MustParse("1.5.0")))
	assert.Equal(t, NoConversion, tc.implicit(tc.doubleN, tc.celsiusN).Kind())
	assert.Equal(t, ImplicitUserDefined, tc.implicit(tc.double, tc.celsius).Kind())
}

func TestInheritedOperators(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	meters := in.DeclareClass("Meters", types.NoTypeID)
	in.AddOperator(meters, types.Operator{From: meters, To: u.double, Implicit: true})
	sub := in.DeclareClass("SubMeters", meters)

	conv := u.implicit(sub, u.double)
	require.Equal(t, ImplicitUserDefined, conv.Kind())
	assert.Equal(t, "ImplicitUserDefined(ImplicitReference, Identity)", conv.String())
}

func TestMostSpecificOperatorWins(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	gauge := in.DeclareStruct("Gauge")
	in.AddOperator(gauge, types.Operator{From: u.long, To: gauge, Implicit: true})
	in.AddOperator(gauge, types.Operator{From: u.int_, To: gauge, Implicit: true})

	conv := u.implicit(u.short, gauge)
	require.Equal(t, ImplicitUserDefined, conv.Kind())
	op, _ := conv.Operator()
	assert.Equal(t, u.int_, op.From, "int is encompassed by long")
}

func TestAmbiguousUserDefined(t *testing.T) {
	u := newUniverse(t)
	in := u.in
	i1 := in.DeclareInterface("I1")
	i2 := in.DeclareInterface("I2")
	impl := in.DeclareClass("Impl", types.NoTypeID)
	in.AddInterface(impl, i1)
	in.AddInterface(impl, i2)
	x := in.DeclareClass("X", types.NoTypeID)
	in.AddOperator(x, types.Operator{From: i1, To: x, Implicit: true})
	in.AddOperator(x, types.Operator{From: i2, To: x, Implicit: true})

	conv, bag := u.c.Classify(impl, x, Implicit())
	assert.Equal(t, NoConversion, conv.Kind())
	assert.True(t, conv.Ambiguous())
	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, diag.ConvAmbiguousUserDefined, d.Code)
	require.Len(t, d.Operators, 2)
	assert.Equal(t, i1, d.Operators[0].From)
	assert.Equal(t, i2, d.Operators[1].From)

	// a source matching one operand exactly is not ambiguous
	assert.Equal(t, ImplicitUserDefined, u.implicit(i1, x).Kind())
}

func TestResolveUserDefinedDirectly(t *testing.T) {
	tc := newTemperature(t, rules.Default())

	conv, bag := tc.c.ResolveUserDefined(tc.int_, tc.celsius, Implicit())
	assert.Equal(t, ImplicitUserDefined, conv.Kind())
	assert.Zero(t, bag.Len())

	conv, _ = tc.c.ResolveUserDefined(tc.celsius, tc.double, Implicit())
	assert.False(t, conv.Exists())
	conv, _ = tc.c.ResolveUserDefined(tc.celsius, tc.double, Explicit())
	assert.Equal(t, ExplicitUserDefined, conv.Kind())

	// built-in conversions are not its concern
	conv, _ = tc.c.ResolveUserDefined(tc.int_, tc.long, Implicit())
	assert.False(t, conv.Exists())
}

func TestUserDefinedExhaustionIsNotAChoice(t *testing.T) {
	u := newUniverse(t, WithCache(nil))
	m := u.addMaze(10)

	ambiguousFrom := 0
	for maxDepth := 1; maxDepth <= budget.DefaultMax; maxDepth++ {
		ctx := Implicit().WithBudget(budget.New(maxDepth))
		conv, bag := u.c.Classify(m.s, m.iface, ctx)
		require.False(t, conv.Exists(), "max=%d: %s", maxDepth, dump(conv))
		switch {
		case conv.TooComplex():
			require.Zero(t, ambiguousFrom, "max=%d went back to too-complex", maxDepth)
			assert.True(t, bag.Has(diag.ConvRecursionLimit), "max=%d", maxDepth)
			assert.False(t, bag.Has(diag.ConvAmbiguousUserDefined), "max=%d", maxDepth)
		case conv.Ambiguous():
			if ambiguousFrom == 0 {
				ambiguousFrom = maxDepth
			}
			assert.False(t, bag.Has(diag.ConvRecursionLimit), "max=%d", maxDepth)
		default:
			t.Fatalf("max=%d: unexpected %s", maxDepth, conv)
		}
	}
	assert.Greater(t, ambiguousFrom, 4)

	conv, bag := u.c.ResolveUserDefined(m.s, m.iface, Implicit().WithBudget(budget.New(4)))
	assert.True(t, conv.TooComplex(), conv.String())
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, []types.TypeID{m.s, m.iface}, bag.Items()[0].Types)
}

func TestUserDefinedSuccessNeedsTheWholeChain(t *testing.T) {
	u := newUniverse(t, WithCache(nil))
	m := u.addMaze(10)

	small, _ := u.c.Classify(m.s2, m.iface, Implicit().WithBudget(budget.New(4)))
	assert.True(t, small.TooComplex(), small.String())

	conv, bag := u.c.Classify(m.s2, m.iface, Implicit())
	require.Equal(t, ImplicitUserDefined, conv.Kind(), dump(conv))
	assert.Zero(t, bag.Len())
	assert.Equal(t, "ImplicitUserDefined(Identity, ImplicitReference)", conv.String())
}
