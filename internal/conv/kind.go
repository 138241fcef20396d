package conv

import "fmt"

// Kind tags a Conversion.
type Kind uint8

const (
	NoConversion Kind = iota
	Identity
	ImplicitNumeric
	ExplicitNumeric
	ImplicitReference
	ExplicitReference
	Boxing
	Unboxing
	ImplicitNullable
	ExplicitNullable
	ImplicitUserDefined
	ExplicitUserDefined
	MethodGroupToDelegate
	AnonymousFunctionToDelegate
	ImplicitConstantExpression
	ImplicitThroughGenericConstraint
	PointerConversion
)

var kindNames = [...]string{
	NoConversion:                     "NoConversion",
	Identity:                         "Identity",
	ImplicitNumeric:                  "ImplicitNumeric",
	ExplicitNumeric:                  "ExplicitNumeric",
	ImplicitReference:                "ImplicitReference",
	ExplicitReference:                "ExplicitReference",
	Boxing:                           "Boxing",
	Unboxing:                         "Unboxing",
	ImplicitNullable:                 "ImplicitNullable",
	ExplicitNullable:                 "ExplicitNullable",
	ImplicitUserDefined:              "ImplicitUserDefined",
	ExplicitUserDefined:              "ExplicitUserDefined",
	MethodGroupToDelegate:            "MethodGroupToDelegate",
	AnonymousFunctionToDelegate:      "AnonymousFunctionToDelegate",
	ImplicitConstantExpression:       "ImplicitConstantExpression",
	ImplicitThroughGenericConstraint: "ImplicitThroughGenericConstraint",
	PointerConversion:                "PointerConversion",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind maps a kind name back to its value.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return NoConversion, false
}

// IsExplicitOnly reports whether the kind is only produced for cast requests.
func (k Kind) IsExplicitOnly() bool {
	switch k {
	case ExplicitNumeric, ExplicitReference, Unboxing, ExplicitNullable, ExplicitUserDefined:
		return true
	}
	return false
}

// IsUserDefined reports whether the conversion applies a declared operator.
func (k Kind) IsUserDefined() bool {
	return k == ImplicitUserDefined || k == ExplicitUserDefined
}

// IsNumeric reports whether the kind converts between numeric values.
func (k Kind) IsNumeric() bool {
	switch k {
	case ImplicitNumeric, ExplicitNumeric, ImplicitConstantExpression:
		return true
	}
	return false
}

// IsReference reports whether the kind preserves reference identity.
func (k Kind) IsReference() bool {
	switch k {
	case ImplicitReference, ExplicitReference, ImplicitThroughGenericConstraint:
		return true
	}
	return false
}
