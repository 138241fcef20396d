package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"convres/internal/scenario"
)

type palette struct {
	pass, fail, dim, head *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		pass: color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
		head: color.New(color.FgCyan, color.Bold),
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.dim, p.head} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

const (
	statusWidth = 4
	kindWidth   = 8
	gap         = 2
)

func renderPretty(w io.Writer, reports []*scenario.Report, opts Options) error {
	pal := newPalette(opts.Color)
	var b strings.Builder
	for _, rep := range reports {
		pal.head.Fprintf(&b, "%s", rep.Scenario)
		if rep.Path != "" {
			pal.dim.Fprintf(&b, "  %s", rep.Path)
		}
		b.WriteByte('\n')

		rows := rep.Outcomes
		if !opts.Verbose {
			rows = failing(rows)
		}
		nameWidth := 0
		for _, o := range rows {
			nameWidth = max(nameWidth, runewidth.StringWidth(o.Name))
		}
		gotWidth := 0
		if opts.Width > 0 {
			// the name column gives way first, then the result column
			fixed := 2 + statusWidth + gap + kindWidth + gap
			nameWidth = min(nameWidth, max(8, (opts.Width-fixed)/2))
			gotWidth = max(8, opts.Width-fixed-nameWidth-gap)
		}
		for _, o := range rows {
			b.WriteString("  ")
			if o.Pass {
				pal.pass.Fprint(&b, pad("ok", statusWidth))
			} else {
				pal.fail.Fprint(&b, pad("FAIL", statusWidth))
			}
			b.WriteString(strings.Repeat(" ", gap))
			pal.dim.Fprint(&b, pad(o.Kind, kindWidth))
			b.WriteString(strings.Repeat(" ", gap))
			b.WriteString(pad(truncate(o.Name, nameWidth), nameWidth))
			b.WriteString(strings.Repeat(" ", gap))
			b.WriteString(truncate(o.Got, gotWidth))
			b.WriteByte('\n')
			for _, m := range o.Mismatches {
				pal.fail.Fprintf(&b, "        %s\n", m)
			}
			if !o.Pass || opts.Verbose {
				for _, e := range o.Explain {
					pal.dim.Fprintf(&b, "        %s\n", e)
				}
			}
		}
		fmt.Fprintf(&b, "  %d passed, %d failed\n\n", rep.Passed, rep.Failed)
	}
	passed, failed := Totals(reports)
	summary := pal.pass
	if failed > 0 {
		summary = pal.fail
	}
	summary.Fprintf(&b, "%d scenarios, %d passed, %d failed\n", len(reports), passed, failed)
	_, err := io.WriteString(w, b.String())
	return err
}

func failing(outcomes []scenario.Outcome) []scenario.Outcome {
	var out []scenario.Outcome
	for _, o := range outcomes {
		if !o.Pass {
			out = append(out, o)
		}
	}
	return out
}

// pad right-pads s with spaces to width display cells.
func pad(s string, width int) string {
	if n := runewidth.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
