package conv

import (
	"convres/internal/budget"
	"convres/internal/types"
)

// implicitNullable wraps S into T? and lifts S? into T? when the unwrapped
// pair has an identity, implicit numeric or constant conversion.
func (w *walk) implicitNullable(src, dst types.TypeID, sk, dk types.Kind, b budget.Budget, k Constant) (Conversion, bool) {
	if dk != types.KindNullable {
		return Conversion{}, false
	}
	if sk == types.KindNull {
		return simple(ImplicitNullable, src, dst), true
	}
	inner := src
	lifted := sk == types.KindNullable
	if lifted {
		inner = w.elem(src)
		k = Constant{}
	}
	nb, ok := w.enter(b)
	if !ok {
		return Conversion{}, false
	}
	under := w.classify(inner, w.elem(dst), ModeStandard, nb, k)
	switch under.kind {
	case Identity, ImplicitNumeric, ImplicitConstantExpression:
		conv := wrap(ImplicitNullable, src, dst, under)
		conv.lifted = lifted
		return conv, true
	}
	return Conversion{}, false
}

// explicitNullable covers S? to T, S to T? and S? to T? where the unwrapped
// pair converts by identity or numerically.
func (w *walk) explicitNullable(src, dst types.TypeID, sk, dk types.Kind, b budget.Budget) (Conversion, bool) {
	if sk != types.KindNullable && dk != types.KindNullable {
		return Conversion{}, false
	}
	if sk == types.KindNull {
		return Conversion{}, false
	}
	nb, ok := w.enter(b)
	if !ok {
		return Conversion{}, false
	}
	under := w.classify(w.unwrapNullable(src), w.unwrapNullable(dst), ModeStandardExplicit, nb, Constant{})
	switch under.kind {
	case Identity, ImplicitNumeric, ExplicitNumeric, ImplicitConstantExpression:
		conv := wrap(ExplicitNullable, src, dst, under)
		conv.lifted = sk == types.KindNullable && dk == types.KindNullable
		return conv, true
	}
	return Conversion{}, false
}
