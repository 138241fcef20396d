package rules

import (
	"convres/internal/types"
)

// DefaultBoxing allows any value type, nullable included, to box.
func DefaultBoxing(m types.Model, src, _ types.TypeID) bool {
	return m.IsValueType(src)
}

// DefaultMethodGroup binds a delegate to the overload whose parameters
// accept the delegate's parameters by identity or reference conversion and
// whose result converts the same way to the delegate's result. Exact matches
// win over compatible ones.
func DefaultMethodGroup(group types.MethodGroupInfo, target types.Signature, refConv func(from, to types.TypeID) bool) MethodGroupMatch {
	exact := -1
	exactCount := 0
	compatible := -1
	compatibleCount := 0
	for i, sig := range group.Overloads {
		if len(sig.Params) != len(target.Params) {
			continue
		}
		if sig.Equal(target) {
			exact = i
			exactCount++
			continue
		}
		ok := sig.Result == target.Result || refConv(sig.Result, target.Result)
		for j := 0; ok && j < len(sig.Params); j++ {
			ok = target.Params[j] == sig.Params[j] || refConv(target.Params[j], sig.Params[j])
		}
		if ok {
			compatible = i
			compatibleCount++
		}
	}
	switch {
	case exactCount == 1:
		return MethodGroupMatch{Index: exact}
	case exactCount > 1:
		return MethodGroupMatch{Index: -1, Ambiguous: true}
	case compatibleCount == 1:
		return MethodGroupMatch{Index: compatible}
	case compatibleCount > 1:
		return MethodGroupMatch{Index: -1, Ambiguous: true}
	}
	return MethodGroupMatch{Index: -1}
}
