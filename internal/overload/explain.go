package overload

import (
	"fmt"
	"slices"

	"convres/internal/diag"
	"convres/internal/types"
)

// Explanation is the structured reason for one rejected or tied candidate.
// Rendering it is left to the caller.
type Explanation struct {
	Candidate int
	Member    string
	Form      Form
	Code      diag.Code
	Arg       int
	Param     int
	Types     []types.TypeID
}

func (e Explanation) String() string {
	s := fmt.Sprintf("%s #%d %s", e.Code.ID(), e.Candidate, e.Member)
	if e.Form == FormExpanded {
		s += "[expanded]"
	}
	if e.Arg >= 0 {
		s += fmt.Sprintf(" arg %d", e.Arg)
	}
	if e.Param >= 0 {
		s += fmt.Sprintf(" param %d", e.Param)
	}
	return s
}

// Explain lists one Explanation per rejected candidate of a
// NoApplicableCandidate result, or per tied candidate of an Ambiguous one.
// Tied candidates carry OVL2002 and the parameter types they bind. A
// UniqueBest result has nothing to explain.
func Explain(res Result) []Explanation {
	switch res.Outcome {
	case NoApplicableCandidate:
		if len(res.Rejected) == 0 {
			return []Explanation{{Candidate: -1, Code: diag.OvlEmptyCandidateSet, Arg: -1, Param: -1}}
		}
		out := make([]Explanation, 0, len(res.Rejected))
		for _, c := range res.Rejected {
			out = append(out, Explanation{
				Candidate: c.Index,
				Member:    c.Member.Name,
				Form:      c.Form,
				Code:      c.Reason.Code,
				Arg:       c.Reason.Arg,
				Param:     c.Reason.Param,
				Types:     slices.Clone(c.Reason.Types),
			})
		}
		return out
	case Ambiguous:
		out := make([]Explanation, 0, len(res.Tied))
		for _, c := range res.Tied {
			out = append(out, Explanation{
				Candidate: c.Index,
				Member:    c.Member.Name,
				Form:      c.Form,
				Code:      diag.OvlAmbiguous,
				Arg:       -1,
				Param:     -1,
				Types:     slices.Clone(c.ParamTypes),
			})
		}
		return out
	}
	return nil
}
