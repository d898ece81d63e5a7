// Package tick measures elapsed execution cost in hardware cycle-counter
// ticks and enforces per-operation tick budgets.
//
// TICK SOURCE SELECTION:
//
// The counter backend is chosen at build time, never per call: amd64 builds
// read the processor timestamp counter (RDTSC), arm64 builds read the
// virtual counter register (CNTVCT_EL0), and every other target falls back
// to the monotonic clock. The hot path calls one function and never
// inspects the platform at runtime.
//
// BUDGET SEMANTICS:
//
// A budget violation is soft by default: CheckBudget returns a structured
// *BudgetExceededError that the caller records, counts, or escalates.
// Nothing in this package aborts execution; only an explicit caller choice
// converts a soft violation into a hard failure.
package tick
