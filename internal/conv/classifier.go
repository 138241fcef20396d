// Package conv classifies conversions between types and compares them.
//
// Classify is a pure function of (source, destination, Context): it never
// mutates the type graph it borrows, never blocks and never panics on
// language-level situations. A missing conversion is an ordinary
// NoConversion value; recursion budget exhaustion is a NoConversion marked
// TooComplex together with a CNV1002 diagnostic. Only contract violations,
// such as a TypeID the model does not know, panic with *ContractError.
//
// Categories are tried in a fixed order and the first match wins:
//
//	identity, implicit numeric, implicit nullable, implicit reference or
//	boxing, implicit pointer, through generic constraint, implicit
//	user-defined, method group or anonymous function to delegate,
//	constant expression
//
// Cast requests (ModeExplicit) then try explicit numeric, explicit nullable,
// explicit reference, unboxing, explicit pointer and finally explicit
// user-defined conversions.
package conv

import (
	"convres/internal/budget"
	"convres/internal/diag"
	"convres/internal/rules"
	"convres/internal/trace"
	"convres/internal/types"
)

// Classifier holds the borrowed type model, the language rules and the
// shared result cache. It is safe for concurrent use.
type Classifier struct {
	model  types.Model
	rules  *rules.Rules
	cache  *Cache
	tracer trace.Tracer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTracer emits a "classify" span per root call at debug level.
func WithTracer(t trace.Tracer) Option {
	return func(c *Classifier) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithCache shares a result cache between classifiers over the same model
// and rules. A nil cache disables caching.
func WithCache(cache *Cache) Option {
	return func(c *Classifier) { c.cache = cache }
}

// New creates a classifier over m. A nil rule set selects rules.Default().
func New(m types.Model, r *rules.Rules, opts ...Option) *Classifier {
	if m == nil {
		contractViolation("new", types.NoTypeID, "nil type model")
	}
	if r == nil {
		r = rules.Default()
	}
	c := &Classifier{
		model:  m,
		rules:  r,
		cache:  NewCache(),
		tracer: trace.Nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Model() types.Model  { return c.model }
func (c *Classifier) Rules() *rules.Rules { return c.rules }
func (c *Classifier) Cache() *Cache       { return c.cache }

// Classify decides whether and how a value of src becomes a value of dst.
// The returned bag belongs to the caller.
func (c *Classifier) Classify(src, dst types.TypeID, ctx Context) (Conversion, *diag.Bag) {
	c.check("classify", src)
	c.check("classify", dst)
	if ctx.Mode > ModeStandardExplicit {
		contractViolation("classify", src, "unknown mode "+ctx.Mode.String())
	}

	key := newCacheKey(src, dst, ctx)
	if c.cache != nil {
		if e, ok := c.cache.load(key); ok {
			return e.conv, e.bag()
		}
	}

	span := trace.Begin(c.tracer, trace.ScopeStep, "classify", 0)
	w := c.newWalk()
	res := w.classify(src, dst, ctx.Mode, ctx.Budget, ctx.Constant)
	res = w.finish(res, src, dst)
	if c.debug() {
		span.WithExtra("src", c.model.Name(src)).
			WithExtra("dst", c.model.Name(dst)).
			WithExtra("mode", ctx.Mode.String()).
			WithExtra("budget", ctx.Budget.String())
	}
	span.End(res.String())

	if c.cache == nil {
		return res, w.bag
	}
	e := c.cache.store(key, cacheEntry{conv: res, diags: w.bag.Items()})
	return e.conv, e.bag()
}

// ClassifyImplicit is Classify with a fresh implicit context.
func (c *Classifier) ClassifyImplicit(src, dst types.TypeID) Conversion {
	conv, _ := c.Classify(src, dst, Implicit())
	return conv
}

// ClassifyExplicit is Classify with a fresh cast context.
func (c *Classifier) ClassifyExplicit(src, dst types.TypeID) Conversion {
	conv, _ := c.Classify(src, dst, Explicit())
	return conv
}

func (c *Classifier) check(op string, id types.TypeID) {
	if _, ok := c.model.Lookup(id); !ok {
		contractViolation(op, id, "type is not part of the model")
	}
}

func (c *Classifier) debug() bool {
	return c.tracer.Enabled() && c.tracer.Level() >= trace.LevelDebug
}

// walk is the state of one root call: the caller-owned bag and whether the
// budget ran out anywhere below the root.
type walk struct {
	m         types.Model
	r         *rules.Rules
	bag       *diag.Bag
	exhausted bool
}

func (c *Classifier) newWalk() *walk {
	return &walk{m: c.model, r: c.rules, bag: diag.NewBag(0)}
}

func (w *walk) reporter() diag.Reporter {
	return diag.BagReporter{Bag: w.bag}
}

func (w *walk) enter(b budget.Budget) (budget.Budget, bool) {
	nb, ok := b.Enter()
	if !ok {
		w.exhausted = true
	}
	return nb, ok
}

// finish turns a failure caused by budget exhaustion into a TooComplex
// result for the root pair and reports it once. Exhaustion in a branch that
// did not decide the outcome is dropped.
func (w *walk) finish(res Conversion, src, dst types.TypeID) Conversion {
	if !res.Exists() && w.exhausted && (res.failure == FailureNone || res.failure == FailureTooComplex) {
		res = failed(src, dst, FailureTooComplex)
		diag.ReportError(w.reporter(), diag.ConvRecursionLimit, src, dst).Emit()
	}
	w.bag.Dedup()
	w.bag.Sort()
	return res
}

func (w *walk) kind(id types.TypeID) types.Kind {
	return w.m.Kind(id)
}

func (w *walk) elem(id types.TypeID) types.TypeID {
	t, ok := w.m.Lookup(id)
	if !ok {
		return types.NoTypeID
	}
	return t.Elem
}

func (w *walk) unwrapNullable(id types.TypeID) types.TypeID {
	if w.kind(id) == types.KindNullable {
		return w.elem(id)
	}
	return id
}

func (w *walk) erroneous(ids ...types.TypeID) {
	for _, id := range ids {
		if w.kind(id) == types.KindError {
			diag.ReportError(w.reporter(), diag.ConvErroneousType, id).Emit()
		}
	}
}

func (w *walk) classify(src, dst types.TypeID, mode Mode, b budget.Budget, k Constant) Conversion {
	if src == dst {
		return simple(Identity, src, dst)
	}
	sk, dk := w.kind(src), w.kind(dst)
	if sk == types.KindError || dk == types.KindError {
		w.erroneous(src, dst)
		return failed(src, dst, FailureErroneous)
	}

	if sk == types.KindNumeric && dk == types.KindNumeric && w.implicitNumeric(src, dst) {
		return simple(ImplicitNumeric, src, dst)
	}
	if conv, ok := w.implicitNullable(src, dst, sk, dk, b, k); ok {
		return conv
	}
	if conv, ok := w.implicitReference(src, dst, sk, dk, b); ok {
		return conv
	}
	if w.implicitPointer(src, dst, sk, dk) {
		return simple(PointerConversion, src, dst)
	}
	if sk == types.KindTypeParam && w.viaConstraint(src, dst, b) {
		return simple(ImplicitThroughGenericConstraint, src, dst)
	}

	fallback := none(src, dst)
	if !mode.standard() {
		ud := w.userDefined(src, dst, false, b)
		if ud.Exists() {
			return ud
		}
		if ud.failure != FailureNone {
			fallback = ud
		}
		if conv, ok := w.delegateConversion(src, dst, sk, dk, b); ok {
			if conv.Exists() {
				return conv
			}
			fallback = conv
		}
	}
	if k.Valid && w.constantConversion(src, dst, sk, dk, k) {
		return simple(ImplicitConstantExpression, src, dst)
	}

	if !mode.explicit() {
		return fallback
	}
	if w.explicitNumeric(src, dst, sk, dk) {
		return simple(ExplicitNumeric, src, dst)
	}
	if conv, ok := w.explicitNullable(src, dst, sk, dk, b); ok {
		return conv
	}
	if kind, ok := w.explicitReference(src, dst, sk, dk, b); ok {
		return simple(kind, src, dst)
	}
	if w.unboxing(src, dst, sk, dk, b) {
		return simple(Unboxing, src, dst)
	}
	if w.explicitPointer(src, dst, sk, dk) {
		return simple(PointerConversion, src, dst)
	}
	if mode == ModeExplicit {
		ud := w.userDefined(src, dst, true, b)
		if ud.Exists() || ud.failure != FailureNone {
			return ud
		}
	}
	return fallback
}
