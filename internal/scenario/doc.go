// Package scenario loads declarative workload definitions.
//
// A scenario is a YAML file describing tasks to spawn: which pattern each
// invokes, its guard tree, its execution context, and which built-in
// handler behavior it runs. Files are validated against an embedded CUE
// schema before decoding, so a malformed scenario fails with a schema
// error instead of a zero-valued struct.
//
// Scenarios drive two consumers: the run CLI command and the deterministic
// golden-trace harness.
package scenario
