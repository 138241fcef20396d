// Package rules holds the language-specific tables the conversion engine is
// parameterised by: the numeric conversion matrix, the boxing predicate, the
// method group hook and the feature gates of a language version.
package rules

import (
	"math"
	"slices"

	"github.com/Masterminds/semver/v3"

	"convres/internal/types"
)

// NumericKind describes one built-in numeric type.
type NumericKind struct {
	Name          string
	Signed        bool
	Integral      bool
	Bits          uint8
	Rank          int
	Implicit      []string
	Explicit      []string
	ConstantsFrom []string
}

// Min returns the smallest value of an integral kind.
func (k NumericKind) Min() int64 {
	if !k.Integral || !k.Signed {
		return 0
	}
	if k.Bits >= 64 {
		return math.MinInt64
	}
	return -(int64(1) << (k.Bits - 1))
}

// Max returns the largest value of an integral kind.
func (k NumericKind) Max() uint64 {
	if !k.Integral {
		return 0
	}
	bits := k.Bits
	if k.Signed {
		bits--
	}
	if bits >= 64 {
		return math.MaxUint64
	}
	return uint64(1)<<bits - 1
}

// Contains reports whether v lies in the range of an integral kind.
func (k NumericKind) Contains(v int64) bool {
	if !k.Integral {
		return false
	}
	if v < 0 {
		return k.Signed && v >= k.Min()
	}
	return uint64(v) <= k.Max()
}

// BoxingPredicate decides whether a value of src can be boxed to the
// reference type dst. The classifier has already established that dst is
// object, ValueType or an interface src implements.
type BoxingPredicate func(m types.Model, src, dst types.TypeID) bool

// MethodGroupMatch is the outcome of a MethodGroupHook.
type MethodGroupMatch struct {
	Index     int // chosen overload, -1 when none
	Ambiguous bool
}

// MethodGroupHook picks the overload of a method group a delegate with the
// target signature binds to. refConv reports an implicit identity or
// reference conversion between two types.
type MethodGroupHook func(group types.MethodGroupInfo, target types.Signature, refConv func(from, to types.TypeID) bool) MethodGroupMatch

// Rules is an immutable, validated rule set. Share it freely between
// goroutines.
type Rules struct {
	Version                  *semver.Version
	ExplicitAllNumeric       bool
	SignedBetterThanUnsigned bool

	kinds    []NumericKind
	byName   map[string]int
	implicit map[[2]string]bool
	explicit map[[2]string]bool
	features map[Feature]*semver.Constraints

	boxing      BoxingPredicate
	methodGroup MethodGroupHook
}

// Kinds returns the numeric kinds in rank order.
func (r *Rules) Kinds() []NumericKind {
	return slices.Clone(r.kinds)
}

// Kind returns the numeric kind with the given name.
func (r *Rules) Kind(name string) (NumericKind, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return NumericKind{}, false
	}
	return r.kinds[idx], true
}

// Rank returns the position of name in the numeric rank ordering, -1 when
// the name is unknown.
func (r *Rules) Rank(name string) int {
	idx, ok := r.byName[name]
	if !ok {
		return -1
	}
	return idx
}

// ImplicitNumeric reports whether from widens implicitly to to.
func (r *Rules) ImplicitNumeric(from, to string) bool {
	return r.implicit[[2]string{from, to}]
}

// ExplicitNumeric reports whether a cast from from to to is allowed and is
// not already implicit.
func (r *Rules) ExplicitNumeric(from, to string) bool {
	if from == to || r.ImplicitNumeric(from, to) {
		return false
	}
	if r.ExplicitAllNumeric {
		_, okFrom := r.byName[from]
		_, okTo := r.byName[to]
		return okFrom && okTo
	}
	return r.explicit[[2]string{from, to}]
}

// FitsConstant reports whether an integral constant of kind from with the
// given value converts implicitly to to.
func (r *Rules) FitsConstant(from, to string, value int64) bool {
	k, ok := r.Kind(to)
	if !ok || !slices.Contains(k.ConstantsFrom, from) {
		return false
	}
	return k.Contains(value)
}

// PreferSigned reports whether a is a better conversion target than b by
// the signed-over-unsigned tie rule.
func (r *Rules) PreferSigned(a, b string) bool {
	if !r.SignedBetterThanUnsigned {
		return false
	}
	ka, okA := r.Kind(a)
	kb, okB := r.Kind(b)
	return okA && okB && ka.Integral && kb.Integral && ka.Signed && !kb.Signed
}

// CanBox applies the boxing predicate.
func (r *Rules) CanBox(m types.Model, src, dst types.TypeID) bool {
	return r.boxing(m, src, dst)
}

// BindMethodGroup applies the method group hook.
func (r *Rules) BindMethodGroup(group types.MethodGroupInfo, target types.Signature, refConv func(from, to types.TypeID) bool) MethodGroupMatch {
	return r.methodGroup(group, target, refConv)
}
