package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the kind of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindHeartbeat
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindHeartbeat: "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText renders the kind in NDJSON output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Scope is the granularity of a span. Smaller scopes are coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1
	ScopeScenario
	ScopeQuery
	// ScopeStep is a single Classify or Resolve call.
	ScopeStep
)

var scopeNames = [...]string{ScopeCommand: "command", ScopeScenario: "scenario", ScopeQuery: "query", ScopeStep: "step"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// MarshalText renders the scope in NDJSON output.
func (s Scope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Level is the finest scope a tracer keeps. LevelDebug keeps every step.
type Level uint8

const (
	LevelOff Level = iota
	LevelCommand
	LevelScenario
	LevelQuery
	LevelDebug
)

var levelNames = [...]string{"off", "command", "scenario", "query", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Allows reports whether events of scope are kept at level l.
func (l Level) Allows(scope Scope) bool {
	return l != LevelOff && uint8(scope) <= uint8(l)
}

// Event is one trace record.
type Event struct {
	Time     time.Time         `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     Kind              `json:"kind"`
	Scope    Scope             `json:"scope"`
	SpanID   uint64            `json:"span"`
	ParentID uint64            `json:"parent,omitempty"`
	Session  string            `json:"session,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Elapsed  time.Duration     `json:"elapsed_ns,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}
