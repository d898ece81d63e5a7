// Package pattern defines the closed domain of workflow control-flow
// patterns and the O(1) dispatch table that maps a pattern id to its phase
// slots, tick budget, and guard bitmap.
//
// The pattern set is the 39 Van der Aalst control-flow patterns plus four
// reserved ids (39-42); ids are stable and the set does not grow at
// runtime, so dispatch is a plain array index over a fixed table, not a
// vtable. Each entry is padded to 64 bytes so a lookup touches exactly one
// cache line.
//
// The table is immutable after construction. Reconfiguration builds a new
// table and swaps a single atomic pointer (see Handle); concurrent readers
// never observe an in-place mutation.
package pattern
