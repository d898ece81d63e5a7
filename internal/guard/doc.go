// Package guard implements the boolean guard-evaluation engine.
//
// A guard is a pure value: a closed union of predicate, resource, and state
// primitives composed with And/Or/Not. Evaluation against an
// ExecutionContext is a deterministic total function - there is no error
// path. Absent or out-of-range inputs (unknown observation index, invalid
// resource type, nil operands) resolve to false, never to an error or a
// panic. This fail-closed default keeps guard evaluation on the hot path:
// no allocation, no I/O, no suspension.
//
// SHORT-CIRCUIT CONTRACT:
//
// And evaluates operands left to right and stops at the first false; Or
// stops at the first true. Operands past the short-circuit point are never
// evaluated. Fallback chains rely on this: a later operand may be expensive
// or only valid when the earlier ones held.
//
// The CachedEvaluator amortizes repeated evaluation of identical guards in
// tight loops. The cache key is caller-supplied: it must capture every
// context field the guard reads, because the cache cannot derive it.
package guard
