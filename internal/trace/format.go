package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Format is the encoding of streamed events.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat converts a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatEvent encodes ev as one line.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		data, err := json.Marshal(ev)
		if err != nil {
			data = fmt.Appendf(nil, `{"seq":%d,"error":%q}`, ev.Seq, err.Error())
		}
		return append(data, '\n')
	}
	return appendText(nil, ev)
}

// appendText renders
//
//	[    12] step     > classify
//	[    13] step     < classify (ImplicitNumeric) {dst=long, src=int} 41µs
func appendText(b []byte, ev *Event) []byte {
	b = fmt.Appendf(b, "[%6d] %-8s ", ev.Seq, ev.Scope)
	switch ev.Kind {
	case KindSpanBegin:
		b = append(b, "> "...)
	case KindSpanEnd:
		b = append(b, "< "...)
	default:
		b = append(b, "* "...)
	}
	b = append(b, ev.Name...)
	if ev.Detail != "" {
		b = fmt.Appendf(b, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		b = append(b, " {"...)
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				b = append(b, ", "...)
			}
			b = fmt.Appendf(b, "%s=%s", k, ev.Extra[k])
		}
		b = append(b, '}')
	}
	if ev.Kind == KindSpanEnd {
		b = fmt.Appendf(b, " %s", ev.Elapsed)
	}
	return append(b, '\n')
}
