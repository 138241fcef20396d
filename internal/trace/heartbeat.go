package trace

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a liveness event every interval until stopped. A trace
// whose heartbeats continue past a query's begin without its end points at
// a classification that does not terminate.
type Heartbeat struct {
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// StartHeartbeat starts beating on t. It returns nil when t is disabled or
// interval is not positive; Stop accepts nil.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel}
	h.done.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.Emit(&Event{
					Time:   now,
					Kind:   KindHeartbeat,
					Scope:  ScopeCommand,
					Name:   "heartbeat",
					Detail: "#" + strconv.Itoa(n),
					Extra:  map[string]string{"goroutines": strconv.Itoa(runtime.NumGoroutine())},
				})
			}
		}
	})
	return h
}

// Stop ends the heartbeat and waits for its goroutine. It is idempotent.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	h.done.Wait()
}
