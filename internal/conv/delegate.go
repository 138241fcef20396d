package conv

import (
	"convres/internal/budget"
	"convres/internal/diag"
	"convres/internal/rules"
	"convres/internal/types"
)

// delegateConversion handles method group and anonymous function sources.
// The second result is false when src is neither; otherwise the conversion
// is final, existing or not.
func (w *walk) delegateConversion(src, dst types.TypeID, sk, dk types.Kind, b budget.Budget) (Conversion, bool) {
	if sk != types.KindMethodGroup && sk != types.KindLambda {
		return Conversion{}, false
	}
	if dk != types.KindDelegate {
		diag.ReportError(w.reporter(), diag.ConvMethodGroupNoContext, src, dst).Emit()
		return failed(src, dst, FailureNoContext), true
	}
	target, ok := w.m.Signature(dst)
	if !ok {
		return none(src, dst), true
	}
	nb, ok := w.enter(b)
	if !ok {
		return none(src, dst), true
	}
	if sk == types.KindMethodGroup {
		return w.methodGroup(src, dst, target, nb), true
	}
	return w.lambda(src, dst, target, nb), true
}

func (w *walk) methodGroup(src, dst types.TypeID, target types.Signature, b budget.Budget) Conversion {
	if !w.r.Enabled(rules.FeatureMethodGroupConversions) {
		diag.ReportError(w.reporter(), diag.ConvFeatureDisabled, src, dst).Emit()
		return none(src, dst)
	}
	group, ok := w.m.MethodGroup(src)
	if !ok {
		return none(src, dst)
	}
	refConv := func(from, to types.TypeID) bool {
		if from == to {
			return true
		}
		return w.m.IsReferenceType(from) && w.refConv(from, to, b)
	}
	match := w.r.BindMethodGroup(group, target, refConv)
	switch {
	case match.Ambiguous:
		diag.ReportError(w.reporter(), diag.ConvMethodGroupAmbiguous, src, dst).Emit()
		return failed(src, dst, FailureAmbiguous)
	case match.Index < 0 || match.Index >= len(group.Overloads):
		return none(src, dst)
	}
	return simple(MethodGroupToDelegate, src, dst)
}

// lambda requires identical parameter types and a body result that
// converts implicitly to the delegate result. A void delegate accepts any
// body.
func (w *walk) lambda(src, dst types.TypeID, target types.Signature, b budget.Budget) Conversion {
	sig, ok := w.m.Signature(src)
	if !ok || len(sig.Params) != len(target.Params) {
		return none(src, dst)
	}
	for i := range sig.Params {
		if sig.Params[i] != target.Params[i] {
			return none(src, dst)
		}
	}
	void := w.m.Builtins().Void
	switch {
	case target.Result == void:
	case sig.Result == void:
		return none(src, dst)
	default:
		res := w.classify(sig.Result, target.Result, ModeImplicit, b, Constant{})
		if !res.IsImplicit() {
			return none(src, dst)
		}
	}
	return simple(AnonymousFunctionToDelegate, src, dst)
}
