package overload

import (
	"fmt"

	"convres/internal/diag"
)

// Outcome is the variant of a Result.
type Outcome uint8

const (
	UniqueBest Outcome = iota
	Ambiguous
	NoApplicableCandidate
)

func (o Outcome) String() string {
	switch o {
	case UniqueBest:
		return "UniqueBest"
	case Ambiguous:
		return "Ambiguous"
	case NoApplicableCandidate:
		return "NoApplicableCandidate"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Result is the outcome of one resolution. Exactly one of Best, Tied and
// Rejected is meaningful, selected by Outcome:
//
//	UniqueBest            Best
//	Ambiguous             Tied, two or more candidates in input order
//	NoApplicableCandidate Rejected, one entry per rejected candidate
//
// Candidates lists every candidate that was tried, applicable or not.
type Result struct {
	Outcome    Outcome
	Best       Candidate
	Tied       []Candidate
	Rejected   []Candidate
	Candidates []Candidate
	// Diagnostics holds use-site findings collected while classifying
	// arguments plus one entry for the outcome when it is a failure.
	Diagnostics *diag.Bag
}

// OK reports a unique best candidate.
func (r Result) OK() bool {
	return r.Outcome == UniqueBest
}

func (r Result) String() string {
	switch r.Outcome {
	case UniqueBest:
		return fmt.Sprintf("UniqueBest(%s)", r.Best)
	case Ambiguous:
		s := "Ambiguous("
		for i, c := range r.Tied {
			if i > 0 {
				s += ", "
			}
			s += c.String()
		}
		return s + ")"
	default:
		return fmt.Sprintf("NoApplicableCandidate(%d rejected)", len(r.Rejected))
	}
}
