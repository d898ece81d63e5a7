// Package kernel defines the shared data model of the hotpath execution
// kernel: the ExecutionContext consumed by guard evaluation and pattern
// dispatch, the HookExecutionResult produced for every executed task, and
// the structured error taxonomy shared by the tick and sched packages.
//
// OWNERSHIP MODEL:
//
// An ExecutionContext is owned by the caller and borrowed by the kernel for
// the duration of exactly one guard/pattern evaluation. The kernel never
// mutates a context. Callers that reuse a context across evaluations are
// responsible for any invalidation of cached guard results (see guard
// package).
//
// The canonical JSON encoder in this package is the ONLY serialization used
// for golden-trace comparison. It sorts object keys by UTF-16 code units and
// NFC-normalizes strings so byte-level comparison is deterministic across
// platforms.
package kernel
