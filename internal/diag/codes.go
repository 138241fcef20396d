package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Conversion classification
	ConvInfo                 Code = 1000
	ConvErroneousType        Code = 1001
	ConvRecursionLimit       Code = 1002
	ConvAmbiguousUserDefined Code = 1003
	ConvMethodGroupNoContext Code = 1004
	ConvMethodGroupAmbiguous Code = 1005
	ConvFeatureDisabled      Code = 1006

	// Overload resolution
	OvlInfo                 Code = 2000
	OvlNoApplicable         Code = 2001
	OvlAmbiguous            Code = 2002
	OvlArityMismatch        Code = 2003
	OvlNamedArgNotFound     Code = 2004
	OvlNamedArgDuplicate    Code = 2005
	OvlPositionalAfterNamed Code = 2006
	OvlArgumentConversion   Code = 2007
	OvlRequiredParamMissing Code = 2008
	OvlConstraintViolation  Code = 2009
	OvlEmptyCandidateSet    Code = 2010

	// Language rule tables
	RulInfo            Code = 3000
	RulUnknownNumeric  Code = 3001
	RulSelfConversion  Code = 3002
	RulConflictingRule Code = 3003
	RulBadConstraint   Code = 3004
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		ConvInfo:                 "Conversion information",
		ConvErroneousType:        "referenced type is erroneous",
		ConvRecursionLimit:       "type is too complex to analyze",
		ConvAmbiguousUserDefined: "ambiguous user-defined conversion",
		ConvMethodGroupNoContext: "method group has no matching overload for the delegate",
		ConvMethodGroupAmbiguous: "method group conversion is ambiguous",
		ConvFeatureDisabled:      "conversion requires a newer language version",
		OvlInfo:                  "Overload resolution information",
		OvlNoApplicable:          "no applicable overload",
		OvlAmbiguous:             "ambiguous overload",
		OvlArityMismatch:         "wrong number of arguments",
		OvlNamedArgNotFound:      "named argument does not match any parameter",
		OvlNamedArgDuplicate:     "parameter bound by more than one argument",
		OvlPositionalAfterNamed:  "positional argument follows named argument",
		OvlArgumentConversion:    "argument cannot be converted to parameter type",
		OvlRequiredParamMissing:  "required parameter has no argument",
		OvlConstraintViolation:   "type argument violates constraint",
		OvlEmptyCandidateSet:     "no candidates to resolve",
		RulInfo:                  "Rule table information",
		RulUnknownNumeric:        "unknown numeric type in rule table",
		RulSelfConversion:        "numeric type converts to itself",
		RulConflictingRule:       "conversion is both implicit and explicit",
		RulBadConstraint:         "invalid feature constraint",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CNV%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("OVL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RUL%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseID maps a stable identifier such as "OVL2002" back to its Code.
func ParseID(id string) (Code, bool) {
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
