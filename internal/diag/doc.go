// Package diag defines the diagnostic model shared by the conversion
// classifier and the overload resolver.
//
// # Data model
//
// Diagnostic is a structured record, not a message:
//
//   - Severity: warning or error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go).
//     CNV codes come from classification, OVL codes from overload resolution,
//     RUL codes from rule table validation.
//   - Types: the TypeIDs the finding refers to, in a code-specific order.
//   - Operators: user-defined operators involved, e.g. the tied candidates of
//     an ambiguous user-defined conversion.
//   - Index: argument or parameter position, NoIndex when not applicable.
//
// Rendering to text is left to callers; FormatGoldenDiagnostics provides the
// stable one-line form used by tests and the CLI short output.
//
// # Emitting diagnostics
//
// Producers write into a Reporter. BagReporter aggregates into a Bag, which
// supports sorting, deduplication and merging. Every public operation of the
// engine returns its own Bag so concurrent callers never share one.
package diag
