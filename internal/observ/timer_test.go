package observ

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := time.Unix(0, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	tm.Mark("load")("2 files")
	require.NoError(t, tm.Time("run", func() error { return nil }))
	require.NoError(t, tm.Time("run", func() error { return nil }))
	require.Error(t, tm.Time("render", func() error { return errors.New("boom") }))

	phases := tm.Phases()
	require.Len(t, phases, 3)
	assert.Equal(t, Phase{Name: "load", Count: 1, Total: 2 * time.Millisecond, Note: "2 files"}, phases[0])
	assert.Equal(t, 2, phases[1].Count)
	assert.Equal(t, "failed", phases[2].Note)
	assert.Equal(t, 8*time.Millisecond, tm.Total())

	want := "timings:\n" +
		"  load             2.00 ms  25.0%  2 files\n" +
		"  run              4.00 ms x2  50.0%\n" +
		"  render           2.00 ms  25.0%  failed\n" +
		"  total            8.00 ms\n"
	assert.Equal(t, want, tm.Summary())
}

func TestTimerEmpty(t *testing.T) {
	tm := NewTimer()
	assert.Empty(t, tm.Phases())
	assert.Equal(t, "timings:\n  total            0.00 ms\n", tm.Summary())
}

func TestTimerConcurrentSpans(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() { tm.Mark("scenario")("") })
	}
	wg.Wait()
	phases := tm.Phases()
	require.Len(t, phases, 1)
	assert.Equal(t, 16, phases[0].Count)
}
