// Package report renders scenario reports.
//
// Pretty output is a per-scenario table with coloured status markers and
// columns sized by display width. JSON and msgpack carry the reports
// unchanged for tooling; golden output is a stable plain-text form for
// snapshot tests.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"convres/internal/scenario"
)

// Format selects the renderer.
type Format uint8

const (
	FormatPretty Format = iota
	FormatJSON
	FormatMsgpack
	FormatGolden
)

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	case "golden":
		return FormatGolden, nil
	}
	return FormatPretty, fmt.Errorf("unsupported format %q (expected: pretty|json|msgpack|golden)", s)
}

// Options configures rendering.
type Options struct {
	Format Format
	Color  bool
	// Width caps the pretty table width; zero means unlimited.
	Width int
	// Verbose lists passing queries too; failures are always listed.
	Verbose bool
}

// Render writes reports to w.
func Render(w io.Writer, reports []*scenario.Report, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(reports)
	case FormatGolden:
		_, err := io.WriteString(w, Golden(reports))
		return err
	default:
		return renderPretty(w, reports, opts)
	}
}

// Golden renders reports as one line per query followed by indented
// mismatches, explanations and diagnostics.
func Golden(reports []*scenario.Report) string {
	var b strings.Builder
	for _, rep := range reports {
		fmt.Fprintf(&b, "== %s\n", rep.Scenario)
		for _, o := range rep.Outcomes {
			status := "ok"
			if !o.Pass {
				status = "FAIL"
			}
			fmt.Fprintf(&b, "%s %s %q: %s\n", status, o.Kind, o.Name, o.Got)
			for _, m := range o.Mismatches {
				fmt.Fprintf(&b, "  ! %s\n", m)
			}
			for _, e := range o.Explain {
				fmt.Fprintf(&b, "  - %s\n", e)
			}
			if o.Diagnostics != "" {
				for line := range strings.SplitSeq(o.Diagnostics, "\n") {
					fmt.Fprintf(&b, "  > %s\n", line)
				}
			}
		}
	}
	return b.String()
}

// Totals sums passed and failed queries over reports.
func Totals(reports []*scenario.Report) (passed, failed int) {
	for _, rep := range reports {
		passed += rep.Passed
		failed += rep.Failed
	}
	return passed, failed
}
