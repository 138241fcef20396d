package conv

import (
	"convres/internal/budget"
	"convres/internal/types"
)

// viaConstraint reports whether type parameter src converts to dst through
// its effective constraints: object, ValueType for struct-constrained
// parameters, a constraint type or anything it converts to by reference,
// and other type parameters src is constrained to. Constraint chains may be
// cyclic; the budget bounds the walk.
func (w *walk) viaConstraint(src, dst types.TypeID, b budget.Budget) bool {
	if w.kind(dst) == types.KindObject {
		return true
	}
	info, ok := w.m.TypeParam(src)
	if !ok {
		return false
	}
	if info.ValueType && dst == w.m.Builtins().ValueType {
		return true
	}
	dstParam := w.kind(dst) == types.KindTypeParam
	for _, c := range info.Constraints {
		if c == dst {
			return true
		}
		nb, ok := w.enter(b)
		if !ok {
			return false
		}
		if w.kind(c) == types.KindTypeParam {
			if w.viaConstraint(c, dst, nb) {
				return true
			}
			continue
		}
		if !dstParam && w.refConv(c, dst, nb) {
			return true
		}
	}
	return false
}
