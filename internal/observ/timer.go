// Package observ measures the phases of a CLI run.
package observ

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Phase is the accumulated time spent in every span of one name.
type Phase struct {
	Name  string        `json:"name"`
	Count int           `json:"count"`
	Total time.Duration `json:"total_ns"`
	Note  string        `json:"note,omitempty"`
}

// Millis reports Total in milliseconds.
func (p Phase) Millis() float64 {
	return float64(p.Total) / float64(time.Millisecond)
}

// Timer accumulates phases by name, in first-seen order. Workers may
// record spans concurrently.
type Timer struct {
	mu     sync.Mutex
	now    func() time.Time
	phases []Phase
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Mark opens a span of phase name; calling the returned func closes it.
// A non-empty note replaces the phase note.
func (t *Timer) Mark(name string) func(note string) {
	start := t.clock()
	return func(note string) {
		elapsed := t.clock().Sub(start)
		t.mu.Lock()
		defer t.mu.Unlock()
		i := slices.IndexFunc(t.phases, func(p Phase) bool { return p.Name == name })
		if i < 0 {
			t.phases = append(t.phases, Phase{Name: name})
			i = len(t.phases) - 1
		}
		p := &t.phases[i]
		p.Count++
		p.Total += elapsed
		if note != "" {
			p.Note = note
		}
	}
}

// Time runs fn as a span of phase name, noting "failed" when fn errs.
func (t *Timer) Time(name string, fn func() error) error {
	done := t.Mark(name)
	err := fn()
	if err != nil {
		done("failed")
	} else {
		done("")
	}
	return err
}

// Phases returns a snapshot of the recorded phases.
func (t *Timer) Phases() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.phases)
}

// Total sums every phase.
func (t *Timer) Total() time.Duration {
	var sum time.Duration
	for _, p := range t.Phases() {
		sum += p.Total
	}
	return sum
}

// Summary renders one line per phase followed by the total.
func (t *Timer) Summary() string {
	phases := t.Phases()
	total := t.Total()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range phases {
		fmt.Fprintf(&b, "  %-12s %8.2f ms", p.Name, p.Millis())
		if p.Count > 1 {
			fmt.Fprintf(&b, " x%d", p.Count)
		}
		if total > 0 {
			fmt.Fprintf(&b, " %5.1f%%", 100*float64(p.Total)/float64(total))
		}
		if p.Note != "" {
			b.WriteString("  " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %8.2f ms\n", "total", Phase{Total: total}.Millis())
	return b.String()
}

func (t *Timer) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}
