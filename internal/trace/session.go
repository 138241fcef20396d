package trace

import "github.com/google/uuid"

// SessionTracer stamps every event with a session id so traces from
// concurrent CLI runs written to one sink can be told apart.
type SessionTracer struct {
	Tracer
	id string
}

// NewSession wraps t with a fresh random session id.
func NewSession(t Tracer) *SessionTracer {
	if t == nil {
		t = Nop
	}
	return &SessionTracer{Tracer: t, id: uuid.NewString()}
}

// WithSessionID wraps t with a caller-chosen session id.
func WithSessionID(t Tracer, id uuid.UUID) *SessionTracer {
	if t == nil {
		t = Nop
	}
	return &SessionTracer{Tracer: t, id: id.String()}
}

// ID returns the session id.
func (t *SessionTracer) ID() string {
	return t.id
}

// Emit stamps the session id and forwards the event.
func (t *SessionTracer) Emit(ev *Event) {
	if ev.Session == "" {
		ev.Session = t.id
	}
	t.Tracer.Emit(ev)
}
