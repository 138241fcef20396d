package conv

import (
	"cmp"
	"slices"

	"convres/internal/budget"
	"convres/internal/diag"
	"convres/internal/rules"
	"convres/internal/types"
)

// udCandidate is an operator, or its lifted form, that survived the
// applicability test.
type udCandidate struct {
	op     types.Operator
	from   types.TypeID
	to     types.TypeID
	lifted bool
}

// ResolveUserDefined runs user-defined conversion resolution alone. With
// ctx.Mode explicit both implicit and explicit operators are considered.
func (c *Classifier) ResolveUserDefined(src, dst types.TypeID, ctx Context) (Conversion, *diag.Bag) {
	c.check("resolve user-defined", src)
	c.check("resolve user-defined", dst)
	w := c.newWalk()
	res := w.userDefined(src, dst, ctx.Mode.explicit(), ctx.Budget)
	return w.finish(res, src, dst), w.bag
}

// userDefined finds the most specific operator converting src to dst.
// Ambiguity yields NoConversion marked Ambiguous plus a diagnostic listing
// the tied operators. If the budget runs out anywhere in this phase the
// candidate set is incomplete, so the result is TooComplex rather than a
// choice among the operators that happened to be reached.
func (w *walk) userDefined(src, dst types.TypeID, explicit bool, b budget.Budget) Conversion {
	if src == dst {
		return none(src, dst)
	}
	outer := w.exhausted
	w.exhausted = false
	defer func() { w.exhausted = w.exhausted || outer }()

	nb, ok := w.enter(b)
	if !ok {
		return failed(src, dst, FailureTooComplex)
	}
	// Lifted forms are only considered for nullable sources; a non-nullable
	// source reaches T? through the after leg instead.
	lifting := w.kind(src) == types.KindNullable && w.r.Enabled(rules.FeatureLiftedUserDefined)

	var cands []udCandidate
	for _, d := range w.operatorSources(w.unwrapNullable(src), w.unwrapNullable(dst), nb) {
		for op := range w.m.Operators(d) {
			if !explicit && !op.Implicit {
				continue
			}
			forms := []udCandidate{{op: op, from: op.From, to: op.To}}
			if lifting && op.IsLiftable(w.m) {
				forms = append(forms, udCandidate{
					op:     op,
					from:   w.m.Nullable(op.From),
					to:     w.m.Nullable(op.To),
					lifted: true,
				})
			}
			for _, f := range forms {
				if w.udApplicable(src, dst, f, explicit, nb) && !slices.Contains(cands, f) {
					cands = append(cands, f)
				}
			}
		}
	}
	if w.exhausted {
		return failed(src, dst, FailureTooComplex)
	}
	if len(cands) == 0 {
		return none(src, dst)
	}

	sx, okS := w.mostSpecificSource(src, cands, explicit, nb)
	tx, okT := w.mostSpecificTarget(dst, cands, explicit, nb)
	if w.exhausted {
		return failed(src, dst, FailureTooComplex)
	}
	if !okS || !okT {
		return w.ambiguousUD(src, dst, cands)
	}
	var exact, liftedExact []udCandidate
	for _, c := range cands {
		if c.from != sx || c.to != tx {
			continue
		}
		if c.lifted {
			liftedExact = append(liftedExact, c)
		} else {
			exact = append(exact, c)
		}
	}
	var chosen udCandidate
	switch {
	case len(exact) == 1:
		chosen = exact[0]
	case len(exact) == 0 && len(liftedExact) == 1:
		chosen = liftedExact[0]
	case len(exact) > 1:
		return w.ambiguousUD(src, dst, exact)
	case len(liftedExact) > 1:
		return w.ambiguousUD(src, dst, liftedExact)
	default:
		return w.ambiguousUD(src, dst, cands)
	}

	legMode, kind := ModeStandard, ImplicitUserDefined
	if explicit {
		legMode, kind = ModeStandardExplicit, ExplicitUserDefined
	}
	before := w.classify(src, chosen.from, legMode, nb, Constant{})
	after := w.classify(chosen.to, dst, legMode, nb, Constant{})
	if w.exhausted {
		return failed(src, dst, FailureTooComplex)
	}
	conv := Conversion{
		kind:   kind,
		src:    src,
		dst:    dst,
		op:     chosen.op,
		hasOp:  true,
		lifted: chosen.lifted,
		before: &before,
		after:  &after,
	}
	if chosen.lifted {
		inner := Conversion{kind: kind, src: chosen.op.From, dst: chosen.op.To, op: chosen.op, hasOp: true}
		conv.underlying = &inner
	}
	return conv
}

func (w *walk) ambiguousUD(src, dst types.TypeID, tied []udCandidate) Conversion {
	ops := make([]types.Operator, 0, len(tied))
	for _, c := range tied {
		if !slices.Contains(ops, c.op) {
			ops = append(ops, c.op)
		}
	}
	slices.SortFunc(ops, func(a, b types.Operator) int {
		return cmp.Or(cmp.Compare(a.Declaring, b.Declaring), cmp.Compare(a.Order, b.Order))
	})
	diag.ReportError(w.reporter(), diag.ConvAmbiguousUserDefined, src, dst).WithOperators(ops...).Emit()
	return failed(src, dst, FailureAmbiguous)
}

// operatorSources lists the types whose operators are considered: the
// unwrapped source and destination when they are classes or structs, the
// base classes of class types, and the class constraints of type
// parameters.
func (w *walk) operatorSources(s0, t0 types.TypeID, b budget.Budget) []types.TypeID {
	var out []types.TypeID
	add := func(id types.TypeID) {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	var visit func(id types.TypeID, b budget.Budget)
	visit = func(id types.TypeID, b budget.Budget) {
		switch w.kind(id) {
		case types.KindStruct:
			add(id)
		case types.KindClass:
			for cur := id; w.kind(cur) == types.KindClass; cur = w.m.BaseType(cur) {
				add(cur)
				nb, ok := w.enter(b)
				if !ok {
					return
				}
				b = nb
			}
		case types.KindTypeParam:
			info, ok := w.m.TypeParam(id)
			if !ok {
				return
			}
			for _, c := range info.Constraints {
				nb, ok := w.enter(b)
				if !ok {
					return
				}
				visit(c, nb)
			}
		}
	}
	visit(s0, b)
	visit(t0, b)
	return out
}

func (w *walk) encompassed(a, b types.TypeID, bud budget.Budget) bool {
	if a == b {
		return true
	}
	return w.classify(a, b, ModeStandard, bud, Constant{}).Exists()
}

// related is the explicit form: either type encompasses the other.
func (w *walk) related(a, b types.TypeID, bud budget.Budget) bool {
	return w.encompassed(a, b, bud) || w.encompassed(b, a, bud)
}

func (w *walk) udApplicable(src, dst types.TypeID, c udCandidate, explicit bool, b budget.Budget) bool {
	if explicit {
		return w.related(src, c.from, b) && w.related(c.to, dst, b)
	}
	return w.encompassed(src, c.from, b) && w.encompassed(c.to, dst, b)
}

func (w *walk) mostSpecificSource(src types.TypeID, cands []udCandidate, explicit bool, b budget.Budget) (types.TypeID, bool) {
	var froms []types.TypeID
	for _, c := range cands {
		if c.from == src {
			return src, true
		}
		if !slices.Contains(froms, c.from) {
			froms = append(froms, c.from)
		}
	}
	if !explicit {
		return w.mostEncompassed(froms, b)
	}
	var encompassing []types.TypeID
	for _, f := range froms {
		if w.encompassed(src, f, b) {
			encompassing = append(encompassing, f)
		}
	}
	if len(encompassing) > 0 {
		return w.mostEncompassed(encompassing, b)
	}
	return w.mostEncompassing(froms, b)
}

func (w *walk) mostSpecificTarget(dst types.TypeID, cands []udCandidate, explicit bool, b budget.Budget) (types.TypeID, bool) {
	var tos []types.TypeID
	for _, c := range cands {
		if c.to == dst {
			return dst, true
		}
		if !slices.Contains(tos, c.to) {
			tos = append(tos, c.to)
		}
	}
	if !explicit {
		return w.mostEncompassing(tos, b)
	}
	var encompassed []types.TypeID
	for _, t := range tos {
		if w.encompassed(t, dst, b) {
			encompassed = append(encompassed, t)
		}
	}
	if len(encompassed) > 0 {
		return w.mostEncompassing(encompassed, b)
	}
	return w.mostEncompassed(tos, b)
}

// mostEncompassed returns the unique type that converts to every other
// type of the set.
func (w *walk) mostEncompassed(set []types.TypeID, b budget.Budget) (types.TypeID, bool) {
	return w.unique(set, func(x, y types.TypeID) bool { return w.encompassed(x, y, b) })
}

// mostEncompassing returns the unique type every other type of the set
// converts to.
func (w *walk) mostEncompassing(set []types.TypeID, b budget.Budget) (types.TypeID, bool) {
	return w.unique(set, func(x, y types.TypeID) bool { return w.encompassed(y, x, b) })
}

func (w *walk) unique(set []types.TypeID, rel func(x, y types.TypeID) bool) (types.TypeID, bool) {
	found := types.NoTypeID
	for _, x := range set {
		all := true
		for _, y := range set {
			if x != y && !rel(x, y) {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		if found != types.NoTypeID {
			return types.NoTypeID, false
		}
		found = x
	}
	return found, found != types.NoTypeID
}
