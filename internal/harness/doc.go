// Package harness runs scenarios deterministically and compares their
// traces against golden files.
//
// Determinism comes from three constraints layered on top of the normal
// executor: a single worker, an injector batch size of one, and trace
// events that omit every hardware-dependent field (tick counts, wall
// durations). Under those constraints the logical-clock timestamps, the
// task order, and the outcomes are identical on every run and every
// machine, so the canonical-JSON trace is byte-stable.
//
// Golden files live in testdata/golden and are regenerated with:
//
//	go test ./internal/harness -update
package harness
