package conv

import (
	"strings"

	"convres/internal/types"
)

// Failure explains why a NoConversion result does not exist.
type Failure uint8

const (
	FailureNone Failure = iota
	// FailureTooComplex marks recursion budget exhaustion.
	FailureTooComplex
	// FailureAmbiguous marks an ambiguous user-defined or method group conversion.
	FailureAmbiguous
	// FailureNoContext marks a method group or lambda classified against a
	// non-delegate destination.
	FailureNoContext
	// FailureErroneous marks an erroneous source or destination.
	FailureErroneous
)

func (f Failure) String() string {
	switch f {
	case FailureTooComplex:
		return "too-complex"
	case FailureAmbiguous:
		return "ambiguous"
	case FailureNoContext:
		return "no-context"
	case FailureErroneous:
		return "erroneous"
	default:
		return "none"
	}
}

// Conversion is an immutable classification of source to destination.
// The zero value is a NoConversion with no endpoints.
type Conversion struct {
	kind       Kind
	failure    Failure
	src        types.TypeID
	dst        types.TypeID
	op         types.Operator
	hasOp      bool
	lifted     bool
	underlying *Conversion
	before     *Conversion
	after      *Conversion
}

func none(src, dst types.TypeID) Conversion {
	return Conversion{kind: NoConversion, src: src, dst: dst}
}

func failed(src, dst types.TypeID, f Failure) Conversion {
	return Conversion{kind: NoConversion, failure: f, src: src, dst: dst}
}

func simple(kind Kind, src, dst types.TypeID) Conversion {
	return Conversion{kind: kind, src: src, dst: dst}
}

func wrap(kind Kind, src, dst types.TypeID, inner Conversion) Conversion {
	return Conversion{kind: kind, src: src, dst: dst, underlying: &inner}
}

func (c Conversion) Kind() Kind                { return c.kind }
func (c Conversion) Source() types.TypeID      { return c.src }
func (c Conversion) Destination() types.TypeID { return c.dst }
func (c Conversion) Exists() bool              { return c.kind != NoConversion }
func (c Conversion) Failure() Failure          { return c.failure }

// TooComplex reports that classification gave up on the recursion budget.
func (c Conversion) TooComplex() bool { return c.failure == FailureTooComplex }

// Ambiguous reports that several operators or overloads tied.
func (c Conversion) Ambiguous() bool { return c.failure == FailureAmbiguous }

// IsImplicit reports whether the conversion may be applied without a cast.
func (c Conversion) IsImplicit() bool {
	return c.Exists() && !c.kind.IsExplicitOnly()
}

// IsExplicit reports whether the conversion requires a cast.
func (c Conversion) IsExplicit() bool {
	return c.kind.IsExplicitOnly()
}

// Operator returns the user-defined operator applied, if any.
func (c Conversion) Operator() (types.Operator, bool) {
	return c.op, c.hasOp
}

// IsLifted reports whether the conversion was synthesized over the
// unwrapped forms of nullable operands.
func (c Conversion) IsLifted() bool {
	return c.lifted
}

// Underlying returns the nested conversion of a nullable or lifted
// conversion.
func (c Conversion) Underlying() (Conversion, bool) {
	if c.underlying == nil {
		return Conversion{}, false
	}
	return *c.underlying, true
}

// Before returns the standard conversion from the source into the operand
// of a user-defined operator.
func (c Conversion) Before() (Conversion, bool) {
	if c.before == nil {
		return Conversion{}, false
	}
	return *c.before, true
}

// After returns the standard conversion from the operator result to the
// destination.
func (c Conversion) After() (Conversion, bool) {
	if c.after == nil {
		return Conversion{}, false
	}
	return *c.after, true
}

// Equal compares conversions structurally.
func (c Conversion) Equal(o Conversion) bool {
	if c.kind != o.kind || c.failure != o.failure || c.src != o.src || c.dst != o.dst ||
		c.hasOp != o.hasOp || c.op != o.op || c.lifted != o.lifted {
		return false
	}
	return equalPtr(c.underlying, o.underlying) && equalPtr(c.before, o.before) && equalPtr(c.after, o.after)
}

func equalPtr(a, b *Conversion) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// String renders the kind with nested conversions, e.g.
// "ImplicitNullable(ImplicitNumeric)".
func (c Conversion) String() string {
	var sb strings.Builder
	c.write(&sb)
	return sb.String()
}

func (c Conversion) write(sb *strings.Builder) {
	sb.WriteString(c.kind.String())
	if c.failure != FailureNone {
		sb.WriteByte('[')
		sb.WriteString(c.failure.String())
		sb.WriteByte(']')
	}
	if c.lifted {
		sb.WriteString("[lifted]")
	}
	var nested []*Conversion
	for _, p := range []*Conversion{c.before, c.underlying, c.after} {
		if p != nil {
			nested = append(nested, p)
		}
	}
	if len(nested) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, p := range nested {
		if i > 0 {
			sb.WriteString(", ")
		}
		p.write(sb)
	}
	sb.WriteByte(')')
}
