package overload

import (
	"slices"

	"convres/internal/conv"
	"convres/internal/types"
)

// rank compares every pair of applicable candidates. It returns the index
// of the candidate that dominates all others, or -1 and the indices of the
// tied set in input order.
func (r *Resolver) rank(args []Argument, cands []Candidate) (int, []int) {
	n := len(cands)
	dom := make([][]bool, n)
	for i := range dom {
		dom[i] = make([]bool, n)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			switch r.compare(args, cands[i], cands[j]) {
			case conv.Left:
				dom[i][j] = true
			case conv.Right:
				dom[j][i] = true
			}
		}
	}

	dominatesAll := func(i int) bool {
		for k := range n {
			if k != i && !dom[i][k] {
				return false
			}
		}
		return true
	}
	for i := range n {
		if dominatesAll(i) {
			return i, nil
		}
	}

	var tied []int
	for i := range n {
		beaten := false
		for k := range n {
			if dom[k][i] {
				beaten = true
				break
			}
		}
		if !beaten {
			tied = append(tied, i)
		}
	}
	switch len(tied) {
	case 0:
		// dominance cycle: nobody survives, everybody is tied
		for i := range n {
			tied = append(tied, i)
		}
	case 1:
		// the survivor fails to dominate someone beaten by a third
		// candidate; those two are mutually non-dominated
		top := tied[0]
		for k := range n {
			if k != top && !dom[top][k] {
				tied = append(tied, k)
			}
		}
		slices.Sort(tied)
	}
	return -1, tied
}

// compare decides whether x is a better function member than y: better
// for at least one argument and worse for none. When every argument ties
// and both bind identical parameter types the tie-break rules apply.
func (r *Resolver) compare(args []Argument, x, y Candidate) conv.Betterness {
	xBetter, yBetter := false, false
	for j, a := range args {
		switch r.classifier.Better(a.Type, x.Conversions[j], y.Conversions[j]) {
		case conv.Left:
			xBetter = true
		case conv.Right:
			yBetter = true
		}
	}
	switch {
	case xBetter && !yBetter:
		return conv.Left
	case yBetter && !xBetter:
		return conv.Right
	case xBetter && yBetter:
		return conv.Neither
	}
	if !slices.Equal(x.ParamTypes, y.ParamTypes) {
		return conv.Neither
	}
	return r.tieBreak(x, y)
}

// tieBreak orders candidates whose per-argument conversions are
// indistinguishable:
//
//  1. a non-generic member beats a generic one
//  2. the normal form beats the expanded form
//  3. between expanded forms, more declared parameters win
//  4. supplying every parameter beats relying on defaults
//  5. more specific declared parameter types win
//
// Rule 4 only asks whether any default was substituted, as C# does; a
// member filling one default is not preferred over one filling two, so
// such a pair stays ambiguous unless rule 5 separates them.
func (r *Resolver) tieBreak(x, y Candidate) conv.Betterness {
	prefer := func(px, py bool) conv.Betterness {
		switch {
		case px && !py:
			return conv.Left
		case py && !px:
			return conv.Right
		}
		return conv.Neither
	}
	if b := prefer(!x.Member.generic(), !y.Member.generic()); b != conv.Neither {
		return b
	}
	if b := prefer(!x.Expanded(), !y.Expanded()); b != conv.Neither {
		return b
	}
	if x.Expanded() && y.Expanded() {
		if b := prefer(len(x.Member.Params) > len(y.Member.Params), len(y.Member.Params) > len(x.Member.Params)); b != conv.Neither {
			return b
		}
	}
	if b := prefer(x.Defaults == 0, y.Defaults == 0); b != conv.Neither {
		return b
	}
	return r.moreSpecific(x, y)
}

// moreSpecific compares declared parameter types at each argument
// position: a type parameter is less specific than any other type.
func (r *Resolver) moreSpecific(x, y Candidate) conv.Betterness {
	xMore, yMore := false, false
	for j := range x.ParamOf {
		gx := r.isTypeParam(x.Member.Params[x.ParamOf[j]].declared())
		gy := r.isTypeParam(y.Member.Params[y.ParamOf[j]].declared())
		switch {
		case gx && !gy:
			yMore = true
		case gy && !gx:
			xMore = true
		}
	}
	switch {
	case xMore && !yMore:
		return conv.Left
	case yMore && !xMore:
		return conv.Right
	}
	return conv.Neither
}

func (r *Resolver) isTypeParam(id types.TypeID) bool {
	return r.model.Kind(id) == types.KindTypeParam
}
