// Package overload picks the best member of an overload set for an
// argument list.
//
// Resolution runs three filters and a ranking step. Every member is first
// bound to the arguments in normal form and, when that fails for a member
// ending in a params array, in expanded form. Bound candidates then have
// their method type arguments checked against constraints and every
// argument classified against its parameter type. Applicable candidates
// are compared argument by argument with conv.Classifier.Better; a
// candidate better than every other one wins, otherwise the mutually
// non-dominated candidates are reported as ambiguous. No match and
// ambiguity are ordinary results; only malformed input panics.
package overload

import (
	"fmt"
	"strconv"

	"convres/internal/budget"
	"convres/internal/conv"
	"convres/internal/diag"
	"convres/internal/trace"
	"convres/internal/types"
)

// Resolver resolves overload sets against one classifier. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	classifier *conv.Classifier
	model      types.Model
	maxDepth   int
	tracer     trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTracer emits a "resolve" span per call at debug level.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMaxDepth sets the recursion budget of every argument classification.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) { r.maxDepth = n }
}

// New creates a resolver on top of c.
func New(c *conv.Classifier, opts ...Option) *Resolver {
	if c == nil {
		contractViolation("new", -1, "nil classifier")
	}
	r := &Resolver{
		classifier: c,
		model:      c.Model(),
		maxDepth:   budget.DefaultMax,
		tracer:     trace.Nop,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classifier returns the classifier arguments are converted with.
func (r *Resolver) Classifier() *conv.Classifier { return r.classifier }

// Resolve picks the best of members for args. It always returns one of
// the three outcomes; a nil member, a type unknown to the model or a
// malformed parameter list panics with *ContractError.
func (r *Resolver) Resolve(members []*Member, args []Argument) Result {
	for i, mem := range members {
		validate(r.model, i, mem)
	}
	for i, a := range args {
		if _, ok := r.model.Lookup(a.Type); !ok {
			contractViolation("resolve", -1, fmt.Sprintf("argument %d type is not part of the model", i))
		}
	}

	span := trace.Begin(r.tracer, trace.ScopeStep, "resolve", 0)
	bag := diag.NewBag(0)
	res := r.resolve(members, args, bag)
	bag.Dedup()
	bag.Sort()
	res.Diagnostics = bag
	if r.tracer.Enabled() && r.tracer.Level() >= trace.LevelDebug {
		applicable := 0
		for _, c := range res.Candidates {
			if c.Applicable() {
				applicable++
			}
		}
		span.WithExtra("members", strconv.Itoa(len(members))).
			WithExtra("args", strconv.Itoa(len(args))).
			WithExtra("applicable", strconv.Itoa(applicable))
	}
	span.End(res.Outcome.String())
	return res
}

func (r *Resolver) resolve(members []*Member, args []Argument, bag *diag.Bag) Result {
	argTypes := make([]types.TypeID, len(args))
	for i, a := range args {
		argTypes[i] = a.Type
	}
	rep := diag.BagReporter{Bag: bag}
	if len(members) == 0 {
		diag.ReportError(rep, diag.OvlEmptyCandidateSet, argTypes...).Emit()
		return Result{Outcome: NoApplicableCandidate}
	}

	var all, applicable []Candidate
	for i, mem := range members {
		c := r.evaluate(i, mem, FormNormal, args, bag)
		all = append(all, c)
		if !c.Applicable() && mem.variadic() {
			c = r.evaluate(i, mem, FormExpanded, args, bag)
			all = append(all, c)
		}
		if c.Applicable() {
			applicable = append(applicable, c)
		}
	}

	switch len(applicable) {
	case 0:
		diag.ReportError(rep, diag.OvlNoApplicable, argTypes...).Emit()
		return Result{Outcome: NoApplicableCandidate, Rejected: all, Candidates: all}
	case 1:
		return Result{Outcome: UniqueBest, Best: applicable[0], Candidates: all}
	}

	best, tied := r.rank(args, applicable)
	if best >= 0 {
		return Result{Outcome: UniqueBest, Best: applicable[best], Candidates: all}
	}
	out := make([]Candidate, len(tied))
	for i, k := range tied {
		out[i] = applicable[k]
	}
	diag.ReportError(rep, diag.OvlAmbiguous, argTypes...).Emit()
	return Result{Outcome: Ambiguous, Tied: out, Candidates: all}
}

// evaluate runs the arity, constraint and conversion filters for one form
// of mem.
func (r *Resolver) evaluate(idx int, mem *Member, form Form, args []Argument, bag *diag.Bag) Candidate {
	c := Candidate{Index: idx, Member: mem, Form: form, Reason: noReason()}
	b := bind(r.model, mem, form, args)
	if !b.ok {
		c.Verdict = InapplicableArityMismatch
		c.Reason = b.reason
		return c
	}
	c.ParamOf, c.ParamTypes, c.Defaults = b.paramOf, b.paramTypes, b.defaults

	if reason, ok := r.checkConstraints(mem, bag); !ok {
		c.Verdict = InapplicableConstraintViolation
		c.Reason = reason
		return c
	}

	c.Conversions = make([]conv.Conversion, 0, len(args))
	for j, a := range args {
		ctx := conv.Context{Mode: conv.ModeImplicit, Budget: budget.New(r.maxDepth), Constant: a.Constant}
		cv, diags := r.classifier.Classify(a.Type, c.ParamTypes[j], ctx)
		bag.Merge(diags)
		c.Conversions = append(c.Conversions, cv)
		if !cv.IsImplicit() {
			c.Verdict = InapplicableArgumentConversionFailed
			c.Reason = Reason{
				Code:  diag.OvlArgumentConversion,
				Arg:   j,
				Param: c.ParamOf[j],
				Types: []types.TypeID{a.Type, c.ParamTypes[j]},
			}
			return c
		}
	}
	return c
}

// checkConstraints verifies each type argument of a generic member
// against the reference, value and type constraints of its parameter.
// Type parameters of the member are substituted throughout a constraint,
// so IEquatable<T> is checked as IEquatable<arg>.
func (r *Resolver) checkConstraints(mem *Member, bag *diag.Bag) (Reason, bool) {
	for i, tp := range mem.TypeParams {
		info, ok := r.model.TypeParam(tp)
		if !ok {
			continue
		}
		arg := mem.TypeArgs[i]
		violation := Reason{Code: diag.OvlConstraintViolation, Arg: -1, Param: -1, Types: []types.TypeID{arg, tp}}
		if info.ReferenceType && !r.model.IsReferenceType(arg) {
			return violation, false
		}
		if info.ValueType && (!r.model.IsValueType(arg) || r.model.Kind(arg) == types.KindNullable) {
			return violation, false
		}
		for _, c := range info.Constraints {
			target := r.model.Substitute(c, mem.TypeParams, mem.TypeArgs)
			ctx := conv.Context{Mode: conv.ModeStandard, Budget: budget.New(r.maxDepth)}
			cv, diags := r.classifier.Classify(arg, target, ctx)
			bag.Merge(diags)
			if !satisfies(cv.Kind()) {
				violation.Types = []types.TypeID{arg, target}
				return violation, false
			}
		}
	}
	return noReason(), true
}

// satisfies lists the conversions that may satisfy a type constraint.
func satisfies(k conv.Kind) bool {
	switch k {
	case conv.Identity, conv.ImplicitReference, conv.Boxing, conv.ImplicitThroughGenericConstraint:
		return true
	}
	return false
}
