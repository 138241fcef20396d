package overload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convres/internal/conv"
	"convres/internal/diag"
	"convres/internal/rules"
	"convres/internal/types"
)

func TestIdentityBeatsWidening(t *testing.T) {
	w := newWorld(t, nil)
	fInt, fLong := fn("f", w.int_), fn("f", w.long)

	res := w.r.Resolve([]*Member{fInt, fLong}, Positional(w.int_))
	require.Equal(t, UniqueBest, res.Outcome, res.String())
	assert.Same(t, fInt, res.Best.Member)
	assert.Equal(t, conv.Identity, res.Best.Conversions[0].Kind())
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, conv.ImplicitNumeric, res.Candidates[1].Conversions[0].Kind())
	assert.Zero(t, res.Diagnostics.Len())

	// input order does not matter
	res = w.r.Resolve([]*Member{fLong, fInt}, Positional(w.int_))
	require.True(t, res.OK())
	assert.Same(t, fInt, res.Best.Member)
	assert.Equal(t, 1, res.Best.Index)
}

func TestIncomparableWideningsAreAmbiguous(t *testing.T) {
	src := strings.Replace(string(rules.DefaultSource()),
		`implicit = ["int", "long", "float", "double", "decimal"]`,
		`implicit = ["int", "uint", "long", "float", "double", "decimal"]`, 1)
	rs, err := rules.Parse([]byte(src))
	require.NoError(t, err)
	require.True(t, rs.ImplicitNumeric("short", "uint"))

	w := newWorld(t, rs)
	fInt, fUint := fn("f", w.int_), fn("f", w.uint_)
	res := w.r.Resolve([]*Member{fInt, fUint}, Positional(w.short))
	require.Equal(t, Ambiguous, res.Outcome, res.String())
	assert.Equal(t, []int{0, 1}, indices(res.Tied))
	assert.True(t, res.Diagnostics.Has(diag.OvlAmbiguous))

	ex := Explain(res)
	require.Len(t, ex, 2)
	for i, e := range ex {
		assert.Equal(t, diag.OvlAmbiguous, e.Code)
		assert.Equal(t, i, e.Candidate)
	}
	assert.Equal(t, []types.TypeID{w.int_}, ex[0].Types)
	assert.Equal(t, []types.TypeID{w.uint_}, ex[1].Types)
}

func TestDefaultRulesKeepShortToUintExplicit(t *testing.T) {
	w := newWorld(t, nil)
	fInt, fUint := fn("f", w.int_), fn("f", w.uint_)

	res := w.r.Resolve([]*Member{fInt, fUint}, Positional(w.short))
	require.True(t, res.OK(), res.String())
	assert.Same(t, fInt, res.Best.Member)

	// ushort widens to both, which the default table cannot order
	res = w.r.Resolve([]*Member{fInt, fUint}, Positional(w.ushort))
	assert.Equal(t, Ambiguous, res.Outcome)
}

func TestDominanceAcrossSeveralCandidates(t *testing.T) {
	w := newWorld(t, nil)
	members := []*Member{fn("f", w.obj), fn("f", w.double), fn("f", w.long)}

	res := w.r.Resolve(members, Positional(w.int_))
	require.True(t, res.OK(), res.String())
	assert.Equal(t, 2, res.Best.Index)

	res = w.r.Resolve([]*Member{fn("g", w.obj), fn("g", w.animal)}, Positional(w.dog))
	require.True(t, res.OK())
	assert.Equal(t, 1, res.Best.Index)
}

func TestMixedArgumentsAreAmbiguous(t *testing.T) {
	w := newWorld(t, nil)
	a := fn("f", w.int_, w.long)
	b := fn("f", w.long, w.int_)

	res := w.r.Resolve([]*Member{a, b}, Positional(w.int_, w.int_))
	require.Equal(t, Ambiguous, res.Outcome)
	assert.Len(t, res.Tied, 2)
}

func TestNoApplicableCandidateReasons(t *testing.T) {
	w := newWorld(t, nil)
	members := []*Member{
		fn("f", w.str),
		fn("g", w.dog, w.int_),
		fn("h"),
	}

	res := w.r.Resolve(members, Positional(w.cat))
	require.Equal(t, NoApplicableCandidate, res.Outcome)
	require.Len(t, res.Rejected, 3)
	assert.True(t, res.Diagnostics.Has(diag.OvlNoApplicable))

	ex := Explain(res)
	require.Len(t, ex, 3)
	assert.Equal(t, Explanation{Candidate: 0, Member: "f", Code: diag.OvlArgumentConversion, Arg: 0, Param: 0,
		Types: []types.TypeID{w.cat, w.str}}, ex[0])
	assert.Equal(t, diag.OvlRequiredParamMissing, ex[1].Code)
	assert.Equal(t, 1, ex[1].Param)
	assert.Equal(t, diag.OvlArityMismatch, ex[2].Code)
	assert.Equal(t, 0, ex[2].Arg)

	for _, c := range res.Rejected {
		assert.False(t, c.Applicable())
	}
	assert.Equal(t, InapplicableArgumentConversionFailed, res.Rejected[0].Verdict)
	assert.Equal(t, InapplicableArityMismatch, res.Rejected[1].Verdict)
	assert.Equal(t, "OVL2007 #0 f arg 0 param 0", ex[0].String())
}

func TestEmptyCandidateSet(t *testing.T) {
	w := newWorld(t, nil)
	res := w.r.Resolve(nil, Positional(w.int_))
	assert.Equal(t, NoApplicableCandidate, res.Outcome)
	assert.True(t, res.Diagnostics.Has(diag.OvlEmptyCandidateSet))
	ex := Explain(res)
	require.Len(t, ex, 1)
	assert.Equal(t, diag.OvlEmptyCandidateSet, ex[0].Code)
}

func TestVariadicForms(t *testing.T) {
	w := newWorld(t, nil)
	ints := w.in.Array(w.int_, 1)
	sum := &Member{Name: "sum", Params: []Param{{Name: "xs", Type: ints, Variadic: true}}}

	res := w.r.Resolve([]*Member{sum}, Positional(w.int_, w.int_, w.int_))
	require.True(t, res.OK(), res.String())
	assert.True(t, res.Best.Expanded())
	assert.Equal(t, []int{0, 0, 0}, res.Best.ParamOf)
	assert.Equal(t, []types.TypeID{w.int_, w.int_, w.int_}, res.Best.ParamTypes)

	res = w.r.Resolve([]*Member{sum}, Positional(ints))
	require.True(t, res.OK())
	assert.False(t, res.Best.Expanded())

	res = w.r.Resolve([]*Member{sum}, nil)
	require.True(t, res.OK())
	assert.True(t, res.Best.Expanded())
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, diag.OvlRequiredParamMissing, res.Candidates[0].Reason.Code)

	res = w.r.Resolve([]*Member{sum}, Positional(w.int_, w.str))
	require.Equal(t, NoApplicableCandidate, res.Outcome)
	ex := Explain(res)
	require.Len(t, ex, 2)
	assert.Equal(t, FormNormal, ex[0].Form)
	assert.Equal(t, FormExpanded, ex[1].Form)
	assert.Equal(t, 1, ex[1].Arg)
}

func TestTieBreaks(t *testing.T) {
	w := newWorld(t, nil)
	ints := w.in.Array(w.int_, 1)

	t.Run("normal over expanded", func(t *testing.T) {
		pair := fn("f", w.int_, w.int_)
		many := &Member{Name: "f", Params: []Param{{Name: "xs", Type: ints, Variadic: true}}}
		res := w.r.Resolve([]*Member{many, pair}, Positional(w.int_, w.int_))
		require.True(t, res.OK(), res.String())
		assert.Same(t, pair, res.Best.Member)
	})

	t.Run("more declared parameters when expanded", func(t *testing.T) {
		short := &Member{Name: "f", Params: []Param{{Name: "xs", Type: ints, Variadic: true}}}
		long := &Member{Name: "f", Params: []Param{{Name: "x", Type: w.int_}, {Name: "xs", Type: ints, Variadic: true}}}
		res := w.r.Resolve([]*Member{short, long}, Positional(w.int_, w.int_))
		require.True(t, res.OK(), res.String())
		assert.Same(t, long, res.Best.Member)
	})

	t.Run("all supplied over defaults", func(t *testing.T) {
		one := fn("f", w.int_)
		withDefault := &Member{Name: "f", Params: []Param{{Name: "a", Type: w.int_}, {Name: "b", Type: w.str, HasDefault: true}}}
		res := w.r.Resolve([]*Member{withDefault, one}, Positional(w.int_))
		require.True(t, res.OK(), res.String())
		assert.Same(t, one, res.Best.Member)
		assert.Equal(t, 1, res.Candidates[0].Defaults)
	})

	t.Run("default counts are not compared", func(t *testing.T) {
		oneDefault := &Member{Name: "f", Params: []Param{{Name: "a", Type: w.int_}, {Name: "b", Type: w.str, HasDefault: true}}}
		twoDefaults := &Member{Name: "f", Params: []Param{
			{Name: "a", Type: w.int_},
			{Name: "b", Type: w.str, HasDefault: true},
			{Name: "c", Type: w.long, HasDefault: true},
		}}
		res := w.r.Resolve([]*Member{oneDefault, twoDefaults}, Positional(w.int_))
		require.Equal(t, Ambiguous, res.Outcome, res.String())
		assert.Equal(t, []int{0, 1}, indices(res.Tied))
		assert.Equal(t, 1, res.Tied[0].Defaults)
		assert.Equal(t, 2, res.Tied[1].Defaults)
	})

	t.Run("non-generic over generic", func(t *testing.T) {
		tp := w.in.NewMethodTypeParam("T", 0)
		generic := &Member{
			Name:       "f",
			Params:     []Param{{Name: "x", Type: w.int_, Declared: tp}},
			TypeParams: []types.TypeID{tp},
			TypeArgs:   []types.TypeID{w.int_},
		}
		plain := fn("f", w.int_)
		res := w.r.Resolve([]*Member{generic, plain}, Positional(w.int_))
		require.True(t, res.OK(), res.String())
		assert.Same(t, plain, res.Best.Member)
	})

	t.Run("more specific declared types", func(t *testing.T) {
		tp := w.in.NewMethodTypeParam("T", 0)
		up := w.in.NewMethodTypeParam("U", 0)
		partly := &Member{
			Name:       "f",
			Params:     []Param{{Name: "x", Type: w.int_, Declared: tp}, {Name: "y", Type: w.int_}},
			TypeParams: []types.TypeID{tp},
			TypeArgs:   []types.TypeID{w.int_},
		}
		fully := &Member{
			Name:       "f",
			Params:     []Param{{Name: "x", Type: w.int_, Declared: up}, {Name: "y", Type: w.int_, Declared: up}},
			TypeParams: []types.TypeID{up},
			TypeArgs:   []types.TypeID{w.int_},
		}
		res := w.r.Resolve([]*Member{fully, partly}, Positional(w.int_, w.int_))
		require.True(t, res.OK(), res.String())
		assert.Same(t, partly, res.Best.Member)
	})

	t.Run("conversions decide before defaults", func(t *testing.T) {
		withDefault := &Member{Name: "f", Params: []Param{{Name: "a", Type: w.long}, {Name: "b", Type: w.str, HasDefault: true}}}
		res := w.r.Resolve([]*Member{withDefault, fn("f", w.double)}, Positional(w.int_))
		require.True(t, res.OK(), res.String())
		assert.Same(t, withDefault, res.Best.Member, "long is the better target before any tie-break")
	})
}

func TestNamedArguments(t *testing.T) {
	w := newWorld(t, nil)
	pick := fn("pick", w.int_, w.str)

	res := w.r.Resolve([]*Member{pick}, []Argument{Named("b", w.str), Named("a", w.int_)})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, []int{1, 0}, res.Best.ParamOf)

	cases := []struct {
		name  string
		args  []Argument
		code  diag.Code
		arg   int
		param int
	}{
		{"unknown name", []Argument{{Type: w.int_}, Named("c", w.str)}, diag.OvlNamedArgNotFound, 1, -1},
		{"duplicate", []Argument{{Type: w.int_}, Named("a", w.int_)}, diag.OvlNamedArgDuplicate, 1, 0},
		{"positional after named", []Argument{Named("a", w.int_), {Type: w.str}}, diag.OvlPositionalAfterNamed, 1, -1},
		{"missing", []Argument{Named("b", w.str)}, diag.OvlRequiredParamMissing, -1, 0},
		{"too many", Positional(w.int_, w.str, w.str), diag.OvlArityMismatch, 2, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := w.r.Resolve([]*Member{pick}, tc.args)
			require.Equal(t, NoApplicableCandidate, res.Outcome)
			c := res.Rejected[0]
			assert.Equal(t, InapplicableArityMismatch, c.Verdict)
			assert.Equal(t, tc.code, c.Reason.Code)
			assert.Equal(t, tc.arg, c.Reason.Arg)
			assert.Equal(t, tc.param, c.Reason.Param)
		})
	}
}

func TestNamedArgumentsAreRankedByArgument(t *testing.T) {
	w := newWorld(t, nil)
	exact := &Member{Name: "f", Params: []Param{{Name: "x", Type: w.int_}, {Name: "y", Type: w.long}}}
	swapped := &Member{Name: "f", Params: []Param{{Name: "y", Type: w.long}, {Name: "x", Type: w.long}}}

	res := w.r.Resolve([]*Member{swapped, exact}, []Argument{Named("x", w.int_), Named("y", w.long)})
	require.True(t, res.OK(), res.String())
	assert.Same(t, exact, res.Best.Member)
}

func TestConstraintViolations(t *testing.T) {
	w := newWorld(t, nil)
	generic := func(arg types.TypeID, constrain func(tp types.TypeID)) *Member {
		tp := w.in.NewMethodTypeParam("T", 0)
		constrain(tp)
		return &Member{
			Name:       "walk",
			Params:     []Param{{Name: "x", Type: arg, Declared: tp}},
			TypeParams: []types.TypeID{tp},
			TypeArgs:   []types.TypeID{arg},
		}
	}

	refOnly := generic(w.int_, w.in.SetReferenceConstraint)
	res := w.r.Resolve([]*Member{refOnly}, Positional(w.int_))
	require.Equal(t, NoApplicableCandidate, res.Outcome)
	assert.Equal(t, InapplicableConstraintViolation, res.Rejected[0].Verdict)
	assert.Equal(t, diag.OvlConstraintViolation, res.Rejected[0].Reason.Code)

	valueOnly := generic(w.dog, w.in.SetValueConstraint)
	res = w.r.Resolve([]*Member{valueOnly}, Positional(w.dog))
	assert.Equal(t, InapplicableConstraintViolation, res.Rejected[0].Verdict)

	walker := func(tp types.TypeID) { w.in.AddConstraint(tp, w.iWalk) }
	res = w.r.Resolve([]*Member{generic(w.cat, walker)}, Positional(w.cat))
	require.Equal(t, NoApplicableCandidate, res.Outcome)
	assert.Equal(t, []types.TypeID{w.cat, w.iWalk}, res.Rejected[0].Reason.Types)

	res = w.r.Resolve([]*Member{generic(w.dog, walker)}, Positional(w.dog))
	assert.True(t, res.OK(), res.String())

	boxed := generic(w.int_, func(tp types.TypeID) { w.in.AddConstraint(tp, w.obj) })
	res = w.r.Resolve([]*Member{boxed}, Positional(w.int_))
	assert.True(t, res.OK(), res.String())
}

func TestConstraintOnSiblingTypeParameter(t *testing.T) {
	w := newWorld(t, nil)
	tp := w.in.NewMethodTypeParam("T", 0)
	up := w.in.NewMethodTypeParam("U", 1)
	w.in.AddConstraint(up, tp)
	member := func(targ, uarg types.TypeID) *Member {
		return &Member{
			Name:       "assign",
			Params:     []Param{{Name: "to", Type: targ, Declared: tp}, {Name: "from", Type: uarg, Declared: up}},
			TypeParams: []types.TypeID{tp, up},
			TypeArgs:   []types.TypeID{targ, uarg},
		}
	}

	res := w.r.Resolve([]*Member{member(w.animal, w.dog)}, Positional(w.animal, w.dog))
	assert.True(t, res.OK(), res.String())
	res = w.r.Resolve([]*Member{member(w.dog, w.animal)}, Positional(w.dog, w.animal))
	assert.Equal(t, InapplicableConstraintViolation, res.Rejected[0].Verdict)
}

func TestConstraintMentioningTypeParameter(t *testing.T) {
	w := newWorld(t, nil)
	equatable := w.in.DeclareInterface("IEquatable")
	w.in.AddTypeParam(equatable, "T", types.Invariant)
	point := w.in.DeclareStruct("Point")
	w.in.AddInterface(point, w.in.Instantiate(equatable, point))
	other := w.in.DeclareStruct("Other")

	tp := w.in.NewMethodTypeParam("T", 0)
	w.in.AddConstraint(tp, w.in.Instantiate(equatable, tp))
	member := func(arg types.TypeID) *Member {
		return &Member{
			Name:       "same",
			Params:     []Param{{Name: "x", Type: arg, Declared: tp}},
			TypeParams: []types.TypeID{tp},
			TypeArgs:   []types.TypeID{arg},
		}
	}

	res := w.r.Resolve([]*Member{member(point)}, Positional(point))
	require.Equal(t, UniqueBest, res.Outcome, res.String())

	res = w.r.Resolve([]*Member{member(other)}, Positional(other))
	require.Equal(t, NoApplicableCandidate, res.Outcome)
	assert.Equal(t, InapplicableConstraintViolation, res.Rejected[0].Verdict)
	assert.Equal(t, []types.TypeID{other, w.in.Instantiate(equatable, other)}, res.Rejected[0].Reason.Types)
}

func TestConstantArguments(t *testing.T) {
	w := newWorld(t, nil)
	b := w.in.Numeric("byte")
	take := fn("take", b)

	res := w.r.Resolve([]*Member{take}, []Argument{{Type: w.int_, Constant: conv.IntConstant(7)}})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, conv.ImplicitConstantExpression, res.Best.Conversions[0].Kind())

	res = w.r.Resolve([]*Member{take}, []Argument{{Type: w.int_, Constant: conv.IntConstant(700)}})
	assert.Equal(t, NoApplicableCandidate, res.Outcome)
}

func TestUserDefinedArgumentConversion(t *testing.T) {
	w := newWorld(t, nil)
	celsius := w.in.DeclareStruct("Celsius")
	w.in.AddOperator(celsius, types.Operator{From: w.double, To: celsius, Implicit: true})

	res := w.r.Resolve([]*Member{fn("warm", celsius)}, Positional(w.int_))
	require.True(t, res.OK(), res.String())
	assert.Equal(t, conv.ImplicitUserDefined, res.Best.Conversions[0].Kind())
}

func TestContractViolations(t *testing.T) {
	w := newWorld(t, nil)
	catch := func(f func()) (err *ContractError) {
		defer func() {
			if r := recover(); r != nil {
				err, _ = r.(*ContractError)
			}
		}()
		f()
		return nil
	}

	err := catch(func() { w.r.Resolve([]*Member{fn("f", w.int_), nil}, nil) })
	require.NotNil(t, err)
	assert.Equal(t, 1, err.Candidate)
	assert.Contains(t, err.Error(), "nil member")

	notArray := &Member{Name: "f", Params: []Param{{Name: "xs", Type: w.int_, Variadic: true}}}
	require.NotNil(t, catch(func() { w.r.Resolve([]*Member{notArray}, nil) }))

	notLast := &Member{Name: "f", Params: []Param{
		{Name: "xs", Type: w.in.Array(w.int_, 1), Variadic: true},
		{Name: "y", Type: w.int_},
	}}
	require.NotNil(t, catch(func() { w.r.Resolve([]*Member{notLast}, nil) }))

	unbalanced := &Member{Name: "f", TypeParams: []types.TypeID{w.in.NewMethodTypeParam("T", 0)}}
	require.NotNil(t, catch(func() { w.r.Resolve([]*Member{unbalanced}, nil) }))

	err = catch(func() { w.r.Resolve([]*Member{fn("f", w.int_)}, Positional(types.TypeID(1<<20))) })
	require.NotNil(t, err)
	assert.Equal(t, -1, err.Candidate)

	assert.Panics(t, func() { New(nil) })
}

func TestOutcomeNames(t *testing.T) {
	assert.Equal(t, "UniqueBest", UniqueBest.String())
	assert.Equal(t, "InapplicableConstraintViolation", InapplicableConstraintViolation.String())
	assert.Equal(t, "expanded", FormExpanded.String())
}
