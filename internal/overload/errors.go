package overload

import "fmt"

// ContractError is the panic value raised for malformed candidate lists or
// arguments. Candidate is the offending member index, -1 for arguments.
type ContractError struct {
	Op        string
	Candidate int
	Reason    string
}

func (e *ContractError) Error() string {
	if e.Candidate < 0 {
		return fmt.Sprintf("overload: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("overload: %s: candidate %d: %s", e.Op, e.Candidate, e.Reason)
}

func contractViolation(op string, candidate int, reason string) {
	panic(&ContractError{Op: op, Candidate: candidate, Reason: reason})
}
