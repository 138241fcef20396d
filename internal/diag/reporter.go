package diag

import "convres/internal/types"

// Reporter is the sink the classifier and resolver emit into.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter appends into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) { r.Bag.Add(d) }

// ReportBuilder collects optional details before a diagnostic is emitted.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// ReportError starts an error diagnostic bound for r.
func ReportError(r Reporter, code Code, refs ...types.TypeID) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: NewError(code, refs...)}
}

// WithIndex ties the diagnostic to an argument or parameter position.
func (b *ReportBuilder) WithIndex(idx int) *ReportBuilder {
	b.diag = b.diag.WithIndex(idx)
	return b
}

// WithOperators attaches the user-defined operators involved.
func (b *ReportBuilder) WithOperators(ops ...types.Operator) *ReportBuilder {
	b.diag = b.diag.WithOperators(ops...)
	return b
}

// Emit reports the diagnostic; later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b.emitted || b.reporter == nil {
		return
	}
	b.emitted = true
	b.reporter.Report(b.diag)
}
