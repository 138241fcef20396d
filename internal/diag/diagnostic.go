package diag

import (
	"slices"

	"convres/internal/types"
)

// NoIndex marks a diagnostic that is not tied to an argument or parameter.
const NoIndex = -1

// Diagnostic is one use-site finding. Types are in a code-specific order,
// usually source then destination.
type Diagnostic struct {
	Severity  Severity
	Code      Code
	Types     []types.TypeID
	Operators []types.Operator
	Index     int
}

// NewError builds an error diagnostic over refs.
func NewError(code Code, refs ...types.TypeID) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Types: slices.Clone(refs), Index: NoIndex}
}

// NewWarning builds a warning diagnostic over refs.
func NewWarning(code Code, refs ...types.TypeID) Diagnostic {
	d := NewError(code, refs...)
	d.Severity = SevWarning
	return d
}

func (d Diagnostic) WithIndex(idx int) Diagnostic {
	d.Index = idx
	return d
}

func (d Diagnostic) WithOperators(ops ...types.Operator) Diagnostic {
	d.Operators = slices.Concat(d.Operators, ops)
	return d
}

// Equal compares diagnostics field by field.
func (d Diagnostic) Equal(other Diagnostic) bool {
	return d.Severity == other.Severity &&
		d.Code == other.Code &&
		d.Index == other.Index &&
		slices.Equal(d.Types, other.Types) &&
		slices.Equal(d.Operators, other.Operators)
}

// compare orders errors first, then by code, index and types.
func compare(a, b Diagnostic) int {
	if a.Severity != b.Severity {
		return int(b.Severity) - int(a.Severity)
	}
	if a.Code != b.Code {
		return int(a.Code) - int(b.Code)
	}
	if a.Index != b.Index {
		return a.Index - b.Index
	}
	return slices.Compare(a.Types, b.Types)
}
