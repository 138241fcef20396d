package diag

import (
	"slices"

	"fortio.org/safecast"
)

// DefaultMax bounds a bag created without an explicit limit.
const DefaultMax = 256

// Bag is an append-only, bounded list of diagnostics owned by one
// classification or resolution call. A nil *Bag reads as empty.
type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag returns a bag holding at most max diagnostics; non-positive
// means DefaultMax.
func NewBag(max int) *Bag {
	if max <= 0 {
		max = DefaultMax
	}
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		limit = ^uint16(0)
	}
	return &Bag{max: limit}
}

// Add appends d and reports false once the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if b == nil {
		return false
	}
	if b.max == 0 {
		b.max = DefaultMax
	}
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	return b.any(func(d Diagnostic) bool { return d.Severity == SevError })
}

// Has reports whether a diagnostic with code was recorded.
func (b *Bag) Has(code Code) bool {
	return b.any(func(d Diagnostic) bool { return d.Code == code })
}

func (b *Bag) any(pred func(Diagnostic) bool) bool {
	return b != nil && slices.ContainsFunc(b.items, pred)
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns a copy of the recorded diagnostics.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return slices.Clone(b.items)
}

// Merge appends everything other holds, raising the limit if it has to.
func (b *Bag) Merge(other *Bag) {
	if b == nil || other.Len() == 0 {
		return
	}
	incoming := slices.Clone(other.items)
	total := len(b.items) + len(incoming)
	if limit, err := safecast.Conv[uint16](total); err != nil {
		b.max = ^uint16(0)
		incoming = incoming[:int(b.max)-len(b.items)]
	} else if limit > b.max {
		b.max = limit
	}
	b.items = append(b.items, incoming...)
}

// Sort orders errors first, then by code, index and types.
func (b *Bag) Sort() {
	if b == nil {
		return
	}
	slices.SortStableFunc(b.items, compare)
}

// Dedup drops repeated diagnostics, keeping the first of each.
func (b *Bag) Dedup() {
	if b == nil {
		return
	}
	out := b.items[:0]
	for _, d := range b.items {
		if !slices.ContainsFunc(out, d.Equal) {
			out = append(out, d)
		}
	}
	clear(b.items[len(out):])
	b.items = out
}
