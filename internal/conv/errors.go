package conv

import (
	"fmt"

	"convres/internal/types"
)

// ContractError is the panic value raised when a caller breaks the
// classifier's input contract, e.g. by passing an unknown TypeID.
type ContractError struct {
	Op     string
	Type   types.TypeID
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("conv: %s: %s (type #%d)", e.Op, e.Reason, e.Type)
}

func contractViolation(op string, id types.TypeID, reason string) {
	panic(&ContractError{Op: op, Type: id, Reason: reason})
}
