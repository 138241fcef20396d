package conv

import (
	"fmt"

	"convres/internal/budget"
)

// Mode selects which conversion categories classification may use.
type Mode uint8

const (
	// ModeImplicit is an implicit conversion request.
	ModeImplicit Mode = iota
	// ModeExplicit is a cast; explicit categories are tried after the
	// implicit ones fail.
	ModeExplicit
	// ModeStandard allows only standard implicit conversions: no
	// user-defined operators, method groups or lambdas.
	ModeStandard
	// ModeStandardExplicit adds explicit built-in conversions to
	// ModeStandard. It classifies the legs of explicit user-defined
	// conversions.
	ModeStandardExplicit
)

func (m Mode) String() string {
	switch m {
	case ModeImplicit:
		return "implicit"
	case ModeExplicit:
		return "explicit"
	case ModeStandard:
		return "standard"
	case ModeStandardExplicit:
		return "standard-explicit"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "implicit":
		return ModeImplicit, nil
	case "explicit", "cast":
		return ModeExplicit, nil
	case "standard":
		return ModeStandard, nil
	case "standard-explicit":
		return ModeStandardExplicit, nil
	}
	return ModeImplicit, fmt.Errorf("invalid conversion mode: %q (expected: implicit|explicit|standard|standard-explicit)", s)
}

func (m Mode) explicit() bool {
	return m == ModeExplicit || m == ModeStandardExplicit
}

func (m Mode) standard() bool {
	return m == ModeStandard || m == ModeStandardExplicit
}

// Constant carries the value of an integral constant expression source.
type Constant struct {
	Value int64
	Valid bool
}

// IntConstant marks the source as a constant expression with value v.
func IntConstant(v int64) Constant {
	return Constant{Value: v, Valid: true}
}

// Context is the applicability context of one classification request.
type Context struct {
	Mode     Mode
	Budget   budget.Budget
	Constant Constant
}

// Implicit returns a fresh implicit context with the default budget.
func Implicit() Context {
	return Context{Mode: ModeImplicit, Budget: budget.Default()}
}

// Explicit returns a fresh cast context with the default budget.
func Explicit() Context {
	return Context{Mode: ModeExplicit, Budget: budget.Default()}
}

// WithBudget returns a copy of ctx with another recursion budget.
func (ctx Context) WithBudget(b budget.Budget) Context {
	ctx.Budget = b
	return ctx
}

// WithConstant returns a copy of ctx whose source is a constant expression.
func (ctx Context) WithConstant(v int64) Context {
	ctx.Constant = IntConstant(v)
	return ctx
}
