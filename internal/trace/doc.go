// Package trace records what the classifier, the overload resolver and the
// scenario runner did, as nested spans.
//
// Nothing in the engine prints. A Tracer is attached to a Classifier or
// Resolver with WithTracer, or to a context with WithTracer, and receives
// begin/end events. Each event has a Scope; the tracer's Level decides
// which scopes are kept:
//
//	command   one CLI command
//	scenario  one scenario file
//	query     one query of a scenario
//	step      one Classify or Resolve call (debug only)
//
// Sinks are StreamTracer (text or NDJSON lines), RingTracer (the last N
// events, for tests and post-mortem dumps) and MultiTracer. SessionTracer
// stamps a per-process id so interleaved traces can be split apart.
//
//	convres run --trace=run.ndjson --trace-level=debug scenarios/
package trace
