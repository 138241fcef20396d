package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindError        // unresolved or erroneous type reference
	KindVoid
	KindObject // root of the reference hierarchy
	KindBool
	KindString
	KindNumeric
	KindClass
	KindStruct
	KindInterface
	KindEnum
	KindDelegate
	KindArray
	KindPointer
	KindRef
	KindNullable
	KindTuple
	KindTypeParam
	KindNull // type of the null literal
	KindMethodGroup
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindError:
		return "error"
	case KindVoid:
		return "void"
	case KindObject:
		return "object"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindDelegate:
		return "delegate"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindRef:
		return "ref"
	case KindNullable:
		return "nullable"
	case KindTuple:
		return "tuple"
	case KindTypeParam:
		return "type-param"
	case KindNull:
		return "null"
	case KindMethodGroup:
		return "method-group"
	case KindLambda:
		return "lambda"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsNominal reports whether types of this kind carry nominal metadata.
func (k Kind) IsNominal() bool {
	switch k {
	case KindClass, KindStruct, KindInterface, KindEnum, KindDelegate:
		return true
	default:
		return false
	}
}

// Variance describes how a generic parameter relates instantiations.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant          // out
	Contravariant      // in
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "out"
	case Contravariant:
		return "in"
	default:
		return "invariant"
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // array/pointer/ref/nullable element, enum underlying type
	Count   uint32 // array rank
	Payload uint32 // slot in the per-kind side table
}

// Descriptor helpers ---------------------------------------------------------

// MakeArray describes an array of the element type with the given rank.
func MakeArray(elem TypeID, rank uint32) Type {
	if rank == 0 {
		rank = 1
	}
	return Type{Kind: KindArray, Elem: elem, Count: rank}
}

// MakePointer describes an unmanaged pointer.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeRef describes a by-reference type.
func MakeRef(elem TypeID) Type {
	return Type{Kind: KindRef, Elem: elem}
}

// MakeNullable describes the optional wrapper over a value type.
func MakeNullable(elem TypeID) Type {
	return Type{Kind: KindNullable, Elem: elem}
}
