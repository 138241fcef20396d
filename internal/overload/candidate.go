package overload

import (
	"fmt"

	"convres/internal/conv"
	"convres/internal/diag"
	"convres/internal/types"
)

// Form tells whether a variadic member was tried with its params array
// expanded into individual elements.
type Form uint8

const (
	FormNormal Form = iota
	FormExpanded
)

func (f Form) String() string {
	if f == FormExpanded {
		return "expanded"
	}
	return "normal"
}

// Verdict is the applicability of one candidate.
type Verdict uint8

const (
	Applicable Verdict = iota
	InapplicableArityMismatch
	InapplicableArgumentConversionFailed
	InapplicableConstraintViolation
)

var verdictNames = [...]string{
	Applicable:                           "Applicable",
	InapplicableArityMismatch:            "InapplicableArityMismatch",
	InapplicableArgumentConversionFailed: "InapplicableArgumentConversionFailed",
	InapplicableConstraintViolation:      "InapplicableConstraintViolation",
}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return fmt.Sprintf("Verdict(%d)", v)
}

// Reason pins down why a candidate was rejected. Arg and Param are -1 when
// they do not apply. Types holds the types involved: argument and
// parameter type for conversion failures, type argument and constraint for
// constraint violations.
type Reason struct {
	Code  diag.Code
	Arg   int
	Param int
	Types []types.TypeID
}

func noReason() Reason {
	return Reason{Arg: -1, Param: -1}
}

// Candidate is one member in one form together with everything computed
// for it.
type Candidate struct {
	// Index is the position of Member in the list passed to Resolve.
	Index   int
	Member  *Member
	Form    Form
	Verdict Verdict
	Reason  Reason
	// ParamOf maps each argument to the parameter it binds; in expanded
	// form trailing arguments map to the variadic parameter.
	ParamOf []int
	// ParamTypes is the type each argument converts to.
	ParamTypes []types.TypeID
	// Conversions holds one conversion per argument, computed up to the
	// first failing argument.
	Conversions []conv.Conversion
	// Defaults counts parameters left to their default value.
	Defaults int
}

// Applicable reports whether the candidate survived every filter.
func (c Candidate) Applicable() bool {
	return c.Verdict == Applicable
}

// Expanded reports whether the candidate is the expanded params form.
func (c Candidate) Expanded() bool {
	return c.Form == FormExpanded
}

func (c Candidate) String() string {
	s := c.Member.String()
	if c.Expanded() {
		s += "[expanded]"
	}
	return s
}
