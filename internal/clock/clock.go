// Package clock implements a Lamport logical clock for deterministic
// cross-worker event ordering.
//
// All completed work is stamped with a strictly increasing timestamp from
// this clock. This ensures:
//   - Deterministic ordering (no wall-clock race conditions)
//   - Replay produces identical order
//   - Causal relationships are explicit
//
// Wall-clock submission time implies NOTHING about ordering; only these
// timestamps define the global order, and consumers requiring it read it
// from completed results. Two events that carry the same timestamp are
// logically concurrent; Event breaks the tie by core id so downstream
// replay still sees one deterministic total order.
package clock

import (
	"math"
	"sync/atomic"
)

// Timestamp is a 64-bit Lamport counter value. Monotonic per clock.
type Timestamp uint64

// Zero is the sentinel below every real timestamp; a clock starts here and
// the first Tick returns Zero+1.
const Zero Timestamp = 0

// Max is the sentinel above every real timestamp.
const Max Timestamp = math.MaxUint64

// HappensBefore reports whether a precedes b in the happened-before order.
func HappensBefore(a, b Timestamp) bool {
	return a < b
}

// IsConcurrent reports whether neither timestamp precedes the other.
func IsConcurrent(a, b Timestamp) bool {
	return !HappensBefore(a, b) && !HappensBefore(b, a)
}

// LogicalClock is a Lamport clock safe for concurrent use.
//
// Tick implements Lamport's local-event rule; Observe implements the
// receive rule. Both are lock-free: a single CAS retry loop per call.
type LogicalClock struct {
	now atomic.Uint64
}

// New creates a clock at Zero. The first Tick returns 1.
func New() *LogicalClock {
	return &LogicalClock{}
}

// NewAt creates a clock starting at a specific timestamp.
// Used for replay to resume from a known position.
func NewAt(start Timestamp) *LogicalClock {
	c := &LogicalClock{}
	c.now.Store(uint64(start))
	return c
}

// Tick increments the clock and returns the new timestamp.
// Every call returns a unique, strictly increasing value.
func (c *LogicalClock) Tick() Timestamp {
	return Timestamp(c.now.Add(1))
}

// Observe merges a remote timestamp: the clock advances to
// max(local, remote)+1 and returns the new value. The result is strictly
// greater than both inputs.
func (c *LogicalClock) Observe(remote Timestamp) Timestamp {
	for {
		local := c.now.Load()
		next := local
		if uint64(remote) > next {
			next = uint64(remote)
		}
		next++
		if c.now.CompareAndSwap(local, next) {
			return Timestamp(next)
		}
	}
}

// FastForward jumps the clock to target if target is ahead.
// The clock never moves backward; a stale target is a no-op. Used by
// deterministic replay to line the clock up with a recorded position.
func (c *LogicalClock) FastForward(target Timestamp) {
	for {
		local := c.now.Load()
		if uint64(target) <= local {
			return
		}
		if c.now.CompareAndSwap(local, uint64(target)) {
			return
		}
	}
}

// Now returns the current timestamp without advancing the clock.
func (c *LogicalClock) Now() Timestamp {
	return Timestamp(c.now.Load())
}
