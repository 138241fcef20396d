package conv

import (
	"convres/internal/rules"
	"convres/internal/types"
)

// numericName resolves a numeric type, or the underlying type of an enum,
// to its name in the rule table.
func (w *walk) numericName(id types.TypeID) (string, bool) {
	switch w.kind(id) {
	case types.KindNumeric:
		return w.m.NumericName(id)
	case types.KindEnum:
		return w.m.NumericName(w.m.Underlying(id))
	}
	return "", false
}

func (w *walk) implicitNumeric(src, dst types.TypeID) bool {
	from, ok := w.m.NumericName(src)
	if !ok {
		return false
	}
	to, ok := w.m.NumericName(dst)
	return ok && w.r.ImplicitNumeric(from, to)
}

// explicitNumeric covers the numeric cast table plus enum conversions:
// enum to and from any numeric type, and enum to enum.
func (w *walk) explicitNumeric(src, dst types.TypeID, sk, dk types.Kind) bool {
	if sk == types.KindEnum || dk == types.KindEnum {
		numericOrEnum := func(k types.Kind) bool {
			return k == types.KindNumeric || k == types.KindEnum
		}
		return numericOrEnum(sk) && numericOrEnum(dk)
	}
	if sk != types.KindNumeric || dk != types.KindNumeric {
		return false
	}
	from, ok := w.m.NumericName(src)
	if !ok {
		return false
	}
	to, ok := w.m.NumericName(dst)
	return ok && w.r.ExplicitNumeric(from, to)
}

// constantConversion narrows an integral constant whose value fits the
// destination. The literal zero also converts to any enum.
func (w *walk) constantConversion(src, dst types.TypeID, sk, dk types.Kind, k Constant) bool {
	if !w.r.Enabled(rules.FeatureConstantConversions) || sk != types.KindNumeric {
		return false
	}
	from, ok := w.m.NumericName(src)
	if !ok {
		return false
	}
	switch dk {
	case types.KindNumeric:
		to, ok := w.m.NumericName(dst)
		return ok && w.r.FitsConstant(from, to, k.Value)
	case types.KindEnum:
		kind, ok := w.r.Kind(from)
		return ok && kind.Integral && k.Value == 0
	}
	return false
}

func (w *walk) integral(id types.TypeID) bool {
	name, ok := w.m.NumericName(id)
	if !ok {
		return false
	}
	kind, ok := w.r.Kind(name)
	return ok && kind.Integral
}
