// Package budget bounds recursive descent into self-referential type graphs.
//
// A Budget is a plain value: callers pass it down by value, every recursive
// step calls Enter and continues with the returned copy, and returning from
// the step automatically restores the caller's depth. Nothing is shared, so
// concurrent classifications never interfere with each other.
package budget

import (
	"fmt"

	"fortio.org/safecast"
)

// DefaultMax is the depth allowed when no explicit maximum is configured.
const DefaultMax = 50

// Budget is a depth counter plus its maximum.
type Budget struct {
	depth uint16
	max   uint16
}

// New creates a fresh budget with the given maximum depth. Non-positive
// values select DefaultMax.
func New(maxDepth int) Budget {
	if maxDepth <= 0 {
		maxDepth = DefaultMax
	}
	m, err := safecast.Conv[uint16](maxDepth)
	if err != nil {
		m = ^uint16(0)
	}
	return Budget{max: m}
}

// Default returns a budget with DefaultMax.
func Default() Budget {
	return New(DefaultMax)
}

// Enter consumes one unit. It returns the budget to use for the nested step
// and false once the maximum has been reached.
func (b Budget) Enter() (Budget, bool) {
	if b.max == 0 {
		b = Default().withDepth(b.depth)
	}
	if b.depth >= b.max {
		return b, false
	}
	b.depth++
	return b, true
}

func (b Budget) withDepth(depth uint16) Budget {
	b.depth = depth
	return b
}

// Depth reports how many units have been consumed.
func (b Budget) Depth() int { return int(b.depth) }

// Max reports the configured maximum.
func (b Budget) Max() int {
	if b.max == 0 {
		return DefaultMax
	}
	return int(b.max)
}

// Remaining reports how many nested steps are still allowed.
func (b Budget) Remaining() int { return b.Max() - int(b.depth) }

// Exhausted reports whether another Enter would fail.
func (b Budget) Exhausted() bool { return int(b.depth) >= b.Max() }

func (b Budget) String() string {
	return fmt.Sprintf("%d/%d", b.depth, b.Max())
}
