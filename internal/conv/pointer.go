package conv

import (
	"convres/internal/rules"
	"convres/internal/types"
)

// implicitPointer: null to any pointer, any pointer to void*.
func (w *walk) implicitPointer(src, dst types.TypeID, sk, dk types.Kind) bool {
	if dk != types.KindPointer || !w.r.Enabled(rules.FeaturePointerConversions) {
		return false
	}
	switch sk {
	case types.KindNull:
		return true
	case types.KindPointer:
		return w.kind(w.elem(dst)) == types.KindVoid
	}
	return false
}

// explicitPointer: pointer to pointer, pointer to and from integral types.
func (w *walk) explicitPointer(src, dst types.TypeID, sk, dk types.Kind) bool {
	if !w.r.Enabled(rules.FeaturePointerConversions) {
		return false
	}
	switch {
	case sk == types.KindPointer && dk == types.KindPointer:
		return true
	case sk == types.KindPointer:
		return w.integral(dst)
	case dk == types.KindPointer:
		return w.integral(src)
	}
	return false
}
