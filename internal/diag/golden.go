package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"convres/internal/types"
)

// Namer renders type identifiers; *types.Interner satisfies it.
type Namer interface {
	Name(id types.TypeID) string
}

type goldenDiagnostic struct {
	Severity string
	Code     string
	Index    int
	Types    string
	Title    string
}

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and scenario expectations. Entries
// are sorted deterministically and joined by newlines.
func FormatGoldenDiagnostics(diags []Diagnostic, names Namer) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]goldenDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = append(rendered, goldenDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Index:    d.Index,
			Types:    typeList(d.Types, names),
			Title:    d.Code.Title(),
		})
	}

	slices.SortStableFunc(rendered, func(a, b goldenDiagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Severity, b.Severity),
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Index, b.Index),
			cmp.Compare(a.Types, b.Types),
		)
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s", d.Severity, d.Code)
		if d.Index != NoIndex {
			fmt.Fprintf(&b, " #%d", d.Index)
		}
		if d.Types != "" {
			fmt.Fprintf(&b, " (%s)", d.Types)
		}
		fmt.Fprintf(&b, " %s", d.Title)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func typeList(ids []types.TypeID, names Namer) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if names == nil {
			parts = append(parts, fmt.Sprintf("#%d", id))
			continue
		}
		parts = append(parts, names.Name(id))
	}
	return strings.Join(parts, ", ")
}
