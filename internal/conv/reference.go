package conv

import (
	"convres/internal/budget"
	"convres/internal/rules"
	"convres/internal/types"
)

// implicitReference covers the null literal, implicit reference conversions
// between reference types and boxing of value types. Type parameters are
// left to viaConstraint.
func (w *walk) implicitReference(src, dst types.TypeID, sk, dk types.Kind, b budget.Budget) (Conversion, bool) {
	switch {
	case sk == types.KindNull:
		if w.m.IsReferenceType(dst) {
			return simple(ImplicitReference, src, dst), true
		}
		return Conversion{}, false
	case sk == types.KindTypeParam || dk == types.KindTypeParam:
		return Conversion{}, false
	case w.m.IsReferenceType(src):
		if w.m.IsReferenceType(dst) && w.refConv(src, dst, b) {
			return simple(ImplicitReference, src, dst), true
		}
		return Conversion{}, false
	case sk == types.KindNullable:
		if w.boxes(w.elem(src), dst, b) {
			return simple(Boxing, src, dst), true
		}
	case w.m.IsValueType(src):
		if w.boxes(src, dst, b) {
			return simple(Boxing, src, dst), true
		}
	}
	return Conversion{}, false
}

// refConv reports an identity or implicit reference conversion.
func (w *walk) refConv(src, dst types.TypeID, b budget.Budget) bool {
	if src == dst {
		return true
	}
	sk, dk := w.kind(src), w.kind(dst)
	if sk == types.KindError || dk == types.KindError {
		w.erroneous(src, dst)
		return false
	}
	if sk == types.KindNull {
		return w.m.IsReferenceType(dst)
	}
	if !w.m.IsReferenceType(src) || !w.m.IsReferenceType(dst) {
		return false
	}
	if dk == types.KindObject {
		return true
	}
	switch sk {
	case types.KindTypeParam:
		return w.viaConstraint(src, dst, b)
	case types.KindArray:
		if dk == types.KindArray {
			return w.arrayElems(src, dst, b, w.refConv)
		}
	}
	if dk == types.KindTypeParam {
		return false
	}
	return w.derives(src, dst, b)
}

// arrayElems relates two arrays of equal rank whose element types are
// reference types by the given element relation.
func (w *walk) arrayElems(src, dst types.TypeID, b budget.Budget, rel func(s, d types.TypeID, b budget.Budget) bool) bool {
	st, _ := w.m.Lookup(src)
	dt, _ := w.m.Lookup(dst)
	if st.Count != dt.Count {
		return false
	}
	if !w.m.IsReferenceType(st.Elem) || !w.m.IsReferenceType(dt.Elem) {
		return false
	}
	nb, ok := w.enter(b)
	return ok && rel(st.Elem, dt.Elem, nb)
}

// derives walks the base chain of src looking for dst, checking the
// interfaces of every type on the way when dst is an interface.
func (w *walk) derives(src, dst types.TypeID, b budget.Budget) bool {
	dk := w.kind(dst)
	variant := dk == types.KindInterface || dk == types.KindDelegate
	for cur := src; cur != types.NoTypeID; cur = w.m.BaseType(cur) {
		if cur == dst {
			return true
		}
		if variant && w.variantConv(cur, dst, b) {
			return true
		}
		if dk == types.KindInterface && w.implements(cur, dst, b) {
			return true
		}
		nb, ok := w.enter(b)
		if !ok {
			return false
		}
		b = nb
	}
	return false
}

// implements searches the interfaces of t, transitively, for one that is
// identical or variance-convertible to iface.
func (w *walk) implements(t, iface types.TypeID, b budget.Budget) bool {
	for i := range w.m.Interfaces(t) {
		if i == iface {
			return true
		}
		nb, ok := w.enter(b)
		if !ok {
			return false
		}
		if w.variantConv(i, iface, nb) || w.implements(i, iface, nb) {
			return true
		}
	}
	return false
}

// variantConv relates two instantiations of the same generic interface or
// delegate through the declared variance of each type parameter.
func (w *walk) variantConv(src, dst types.TypeID, b budget.Budget) bool {
	if src == dst {
		return true
	}
	def := w.m.Definition(src)
	if def != w.m.Definition(dst) || !w.r.Enabled(rules.FeatureVariance) {
		return false
	}
	params := w.m.TypeParams(def)
	sargs, dargs := w.m.TypeArgs(src), w.m.TypeArgs(dst)
	if len(params) == 0 || len(sargs) != len(params) || len(dargs) != len(params) {
		return false
	}
	for i, p := range params {
		sa, da := sargs[i], dargs[i]
		if sa == da {
			continue
		}
		info, ok := w.m.TypeParam(p)
		if !ok {
			return false
		}
		nb, ok := w.enter(b)
		if !ok {
			return false
		}
		switch info.Variance {
		case types.Covariant:
			if !w.m.IsReferenceType(sa) || !w.refConv(sa, da, nb) {
				return false
			}
		case types.Contravariant:
			if !w.m.IsReferenceType(da) || !w.refConv(da, sa, nb) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// boxes reports whether the value type v boxes to dst: object, ValueType,
// a base class of v, or an interface v implements, subject to the language
// boxing predicate.
func (w *walk) boxes(v, dst types.TypeID, b budget.Budget) bool {
	if !w.m.IsValueType(v) || !w.m.IsReferenceType(dst) || w.kind(dst) == types.KindTypeParam {
		return false
	}
	if w.kind(dst) != types.KindObject && !w.derives(v, dst, b) {
		return false
	}
	return w.r.CanBox(w.m, v, dst)
}

func (w *walk) classLike(k types.Kind) bool {
	switch k {
	case types.KindObject, types.KindClass, types.KindString, types.KindArray, types.KindDelegate:
		return true
	}
	return false
}

// explicitReference covers downcasts and the conversions involving type
// parameters. The second result is false when no rule applies.
func (w *walk) explicitReference(src, dst types.TypeID, sk, dk types.Kind, b budget.Budget) (Kind, bool) {
	if sk == types.KindTypeParam || dk == types.KindTypeParam {
		return w.explicitTypeParam(src, dst, sk, dk, b)
	}
	if w.explicitRef(src, dst, b) {
		return ExplicitReference, true
	}
	return NoConversion, false
}

func (w *walk) explicitRef(src, dst types.TypeID, b budget.Budget) bool {
	if !w.m.IsReferenceType(src) || !w.m.IsReferenceType(dst) {
		return false
	}
	sk, dk := w.kind(src), w.kind(dst)
	if sk == types.KindError || dk == types.KindError {
		return false
	}
	if sk == types.KindObject {
		return true
	}
	switch {
	case sk == types.KindArray && dk == types.KindArray:
		return w.arrayElems(src, dst, b, func(s, d types.TypeID, nb budget.Budget) bool {
			return w.refConv(s, d, nb) || w.explicitRef(s, d, nb)
		})
	case w.classLike(sk) && w.classLike(dk):
		return w.refConv(dst, src, b)
	case w.classLike(sk) && dk == types.KindInterface:
		return !w.m.IsSealed(src) || w.refConv(src, dst, b)
	case sk == types.KindInterface && w.classLike(dk):
		return !w.m.IsSealed(dst) || w.refConv(dst, src, b)
	case sk == types.KindInterface && dk == types.KindInterface:
		return true
	}
	return false
}

// explicitTypeParam: from a base of T's constraints or any interface to T,
// from T to any interface. Reference-constrained T converts by reference,
// otherwise the conversion unboxes.
func (w *walk) explicitTypeParam(src, dst types.TypeID, sk, dk types.Kind, b budget.Budget) (Kind, bool) {
	if dk == types.KindTypeParam {
		ok := sk == types.KindInterface || w.viaConstraint(dst, src, b)
		if !ok {
			return NoConversion, false
		}
		if w.m.IsReferenceType(dst) {
			return ExplicitReference, true
		}
		return Unboxing, true
	}
	if dk == types.KindInterface {
		return ExplicitReference, true
	}
	return NoConversion, false
}

// unboxing converts object, ValueType or an interface back to a value type
// (or its nullable form) that boxes to the source.
func (w *walk) unboxing(src, dst types.TypeID, sk, dk types.Kind, b budget.Budget) bool {
	if sk == types.KindTypeParam || sk == types.KindNull || !w.m.IsReferenceType(src) {
		return false
	}
	target := dst
	if dk == types.KindNullable {
		target = w.elem(dst)
	}
	switch w.kind(target) {
	case types.KindNullable, types.KindTypeParam:
		return false
	}
	return w.m.IsValueType(target) && w.boxes(target, src, b)
}
