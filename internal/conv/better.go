package conv

import (
	"convres/internal/budget"
	"convres/internal/types"
)

// Betterness is the outcome of comparing two conversions from one source.
type Betterness int8

const (
	Neither Betterness = iota
	Left
	Right
)

func (b Betterness) String() string {
	switch b {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "neither"
	}
}

// Flip swaps Left and Right.
func (b Betterness) Flip() Betterness {
	switch b {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return Neither
	}
}

// Better compares two conversions from the same source type. Rules apply
// in order and the first decisive one wins:
//
//  1. an existing conversion beats a missing one
//  2. identity beats everything else
//  3. a conversion beats its nullable-wrapped or lifted counterpart; two
//     wrapped conversions compare their underlying conversions
//  4. between numeric conversions the closer destination wins: T1 beats T2
//     when T1 widens implicitly to T2 and not the reverse
//  5. a non-boxing conversion beats a boxing one
//  6. between reference conversions the more derived destination wins
//
// Better(from, a, a) is always Neither and Better(from, a, b) is always the
// flip of Better(from, b, a).
func (c *Classifier) Better(from types.TypeID, a, b Conversion) Betterness {
	c.check("better", from)
	for _, x := range []Conversion{a, b} {
		if x.Exists() && x.src != from {
			contractViolation("better", x.src, "conversion does not start at the compared source")
		}
	}
	w := c.newWalk()
	return w.better(a, b, budget.Default())
}

func (w *walk) better(a, b Conversion, bud budget.Budget) Betterness {
	if a.Equal(b) {
		return Neither
	}
	switch ae, be := a.Exists(), b.Exists(); {
	case ae && !be:
		return Left
	case !ae && be:
		return Right
	case !ae && !be:
		return Neither
	}
	if ai, bi := a.kind == Identity, b.kind == Identity; ai != bi {
		if ai {
			return Left
		}
		return Right
	}
	if a.dst == b.dst {
		return Neither
	}
	if r := w.betterLifted(a, b, bud); r != Neither {
		return r
	}
	if a.kind.IsNumeric() && b.kind.IsNumeric() {
		if r := w.betterNumericTarget(a.dst, b.dst); r != Neither {
			return r
		}
	}
	if ab, bb := a.kind == Boxing, b.kind == Boxing; ab != bb {
		if bb {
			return Left
		}
		return Right
	}
	if referenceTarget(a.kind) && referenceTarget(b.kind) {
		aToB := w.refConv(a.dst, b.dst, bud)
		bToA := w.refConv(b.dst, a.dst, bud)
		switch {
		case aToB && !bToA:
			return Left
		case bToA && !aToB:
			return Right
		}
	}
	return Neither
}

func referenceTarget(k Kind) bool {
	return k.IsReference() || k == Boxing
}

// wrapped reports whether c is a nullable wrap or lifted conversion with a
// nested conversion to compare.
func wrapped(c Conversion) bool {
	if c.underlying == nil {
		return false
	}
	return c.lifted || c.kind == ImplicitNullable || c.kind == ExplicitNullable
}

func (w *walk) betterLifted(a, b Conversion, bud budget.Budget) Betterness {
	aw, bw := wrapped(a), wrapped(b)
	switch {
	case aw && !bw && a.underlying.Equal(b):
		return Right
	case bw && !aw && b.underlying.Equal(a):
		return Left
	case aw && bw && a.underlying.src == b.underlying.src:
		nb, ok := w.enter(bud)
		if !ok {
			return Neither
		}
		return w.better(*a.underlying, *b.underlying, nb)
	}
	return Neither
}

func (w *walk) betterNumericTarget(x, y types.TypeID) Betterness {
	xn, okX := w.numericName(x)
	yn, okY := w.numericName(y)
	if !okX || !okY || xn == yn {
		return Neither
	}
	xy, yx := w.r.ImplicitNumeric(xn, yn), w.r.ImplicitNumeric(yn, xn)
	switch {
	case xy && !yx:
		return Left
	case yx && !xy:
		return Right
	case w.r.PreferSigned(xn, yn):
		return Left
	case w.r.PreferSigned(yn, xn):
		return Right
	}
	return Neither
}
