package types

import (
	"iter"
	"slices"
)

// Model is the capability interface the conversion engine consumes. The
// engine only borrows the graph behind it; implementations must be safe for
// concurrent readers.
type Model interface {
	Lookup(id TypeID) (Type, bool)
	Kind(id TypeID) Kind
	Builtins() Builtins
	Name(id TypeID) string

	// NumericName names a built-in numeric type.
	NumericName(id TypeID) (string, bool)

	// Definition returns the generic definition of an instantiation, or id.
	Definition(id TypeID) TypeID
	TypeArgs(id TypeID) []TypeID
	TypeParams(def TypeID) []TypeID
	TypeParam(id TypeID) (TypeParamInfo, bool)

	// BaseType returns the direct base class, NoTypeID at the root.
	BaseType(id TypeID) TypeID
	// Interfaces lazily yields the directly implemented interfaces with
	// generic arguments substituted.
	Interfaces(id TypeID) iter.Seq[TypeID]
	// Operators lazily yields conversion operators declared on id.
	Operators(id TypeID) iter.Seq[Operator]

	Signature(id TypeID) (Signature, bool)
	MethodGroup(id TypeID) (MethodGroupInfo, bool)
	TupleElems(id TypeID) []TypeID
	Underlying(id TypeID) TypeID
	// Substitute replaces params with args anywhere inside id, including
	// nested generic arguments, arrays, nullables and tuples.
	Substitute(id TypeID, params, args []TypeID) TypeID
	// Nullable returns the nullable wrapper over elem, creating it on demand
	// for lifted operator forms.
	Nullable(elem TypeID) TypeID

	IsReferenceType(id TypeID) bool
	IsValueType(id TypeID) bool
	IsSealed(id TypeID) bool
}

var _ Model = (*Interner)(nil)

const maxConstraintDepth = 64

// Kind returns the kind of id, KindInvalid when unknown.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Definition returns the generic definition of an instantiation, or id itself.
func (in *Interner) Definition(id TypeID) TypeID {
	info, ok := in.Nominal(id)
	if !ok {
		return id
	}
	return info.Def
}

// TypeArgs returns the type arguments of a generic instantiation. A generic
// definition reports its own type parameters.
func (in *Interner) TypeArgs(id TypeID) []TypeID {
	info, ok := in.Nominal(id)
	if !ok {
		return nil
	}
	if info.Def == id {
		return slices.Clone(info.Params)
	}
	return slices.Clone(info.Args)
}

// TypeParams returns the type parameters declared by a generic definition.
func (in *Interner) TypeParams(def TypeID) []TypeID {
	info, ok := in.Nominal(in.Definition(def))
	if !ok {
		return nil
	}
	return slices.Clone(info.Params)
}

// BaseType returns the direct base class of id.
func (in *Interner) BaseType(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	switch tt.Kind {
	case KindString:
		return in.builtins.Object
	case KindArray:
		return in.builtins.Array
	case KindNullable, KindNumeric, KindBool, KindTuple:
		return in.builtins.ValueType
	case KindClass, KindStruct, KindEnum, KindDelegate:
		if id == in.builtins.ValueType || id == in.builtins.Array || id == in.builtins.Delegate {
			return in.builtins.Object
		}
		def, sub, ok := in.definitionInfo(id)
		if !ok {
			return NoTypeID
		}
		switch def.Kind {
		case KindStruct, KindEnum:
			return in.builtins.ValueType
		case KindDelegate:
			return in.builtins.Delegate
		}
		if def.Base == NoTypeID {
			return in.builtins.Object
		}
		return in.subst(def.Base, sub)
	default:
		return NoTypeID
	}
}

// Interfaces lazily yields the interfaces id implements directly.
func (in *Interner) Interfaces(id TypeID) iter.Seq[TypeID] {
	return func(yield func(TypeID) bool) {
		def, sub, ok := in.definitionInfo(id)
		if !ok {
			return
		}
		for _, iface := range def.Interfaces {
			if !yield(in.subst(iface, sub)) {
				return
			}
		}
	}
}

// Operators lazily yields the conversion operators declared on id.
func (in *Interner) Operators(id TypeID) iter.Seq[Operator] {
	return func(yield func(Operator) bool) {
		def, sub, ok := in.definitionInfo(id)
		if !ok {
			return
		}
		for _, op := range def.Operators {
			op.Declaring = id
			op.From = in.subst(op.From, sub)
			op.To = in.subst(op.To, sub)
			if !yield(op) {
				return
			}
		}
	}
}

// Underlying returns the numeric type beneath an enum.
func (in *Interner) Underlying(id TypeID) TypeID {
	def, _, ok := in.definitionInfo(id)
	if !ok || def.Kind != KindEnum {
		return NoTypeID
	}
	return def.Underlying
}

// IsSealed reports whether no type can derive from id.
func (in *Interner) IsSealed(id TypeID) bool {
	switch in.Kind(id) {
	case KindString, KindNumeric, KindBool, KindStruct, KindEnum, KindDelegate,
		KindArray, KindNullable, KindTuple, KindPointer:
		return true
	case KindClass:
		def, _, ok := in.definitionInfo(id)
		return ok && def.Sealed
	default:
		return false
	}
}

// IsReferenceType reports whether values of id are references.
func (in *Interner) IsReferenceType(id TypeID) bool {
	switch in.Kind(id) {
	case KindObject, KindString, KindClass, KindInterface, KindDelegate, KindArray:
		return true
	case KindTypeParam:
		return in.typeParamIsReference(id, 0)
	default:
		return false
	}
}

// IsValueType reports whether values of id are copied by value.
func (in *Interner) IsValueType(id TypeID) bool {
	switch in.Kind(id) {
	case KindNumeric, KindBool, KindStruct, KindEnum, KindNullable, KindTuple:
		return true
	case KindTypeParam:
		info, ok := in.TypeParam(id)
		return ok && info.ValueType
	default:
		return false
	}
}

// typeParamIsReference follows constraints; depth guards constraint cycles
// such as T : U, U : T, which declarations may contain before validation.
func (in *Interner) typeParamIsReference(id TypeID, depth int) bool {
	info, ok := in.TypeParam(id)
	if !ok {
		return false
	}
	if info.ReferenceType {
		return true
	}
	if depth > maxConstraintDepth {
		return false
	}
	for _, c := range info.Constraints {
		switch in.Kind(c) {
		case KindClass, KindDelegate, KindArray, KindString:
			if c != in.builtins.ValueType {
				return true
			}
		case KindTypeParam:
			if in.typeParamIsReference(c, depth+1) {
				return true
			}
		}
	}
	return false
}
