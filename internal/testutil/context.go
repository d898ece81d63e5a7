// Package testutil provides deterministic builders for kernel test
// fixtures.
package testutil

import (
	"time"

	"github.com/roach88/hotpath/internal/kernel"
)

// FixedTime is the timestamp used by all built contexts. A constant wall
// time keeps any serialized fixture byte-stable.
var FixedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// ContextOption mutates a context under construction.
type ContextOption func(*kernel.ExecutionContext)

// WithObservations pushes the given observations in order.
// Panics if the values exceed the buffer capacity; a fixture that
// overflows is a bug in the test, not a runtime condition.
func WithObservations(values ...float64) ContextOption {
	return func(ctx *kernel.ExecutionContext) {
		for _, v := range values {
			if !ctx.Observations.Push(v) {
				panic("testutil: observation buffer overflow")
			}
		}
	}
}

// WithResources sets the resource snapshot.
func WithResources(cpu, memory, io, queueDepth float64) ContextOption {
	return func(ctx *kernel.ExecutionContext) {
		ctx.Resources = kernel.NewResourceSnapshot(cpu, memory, io, queueDepth)
	}
}

// WithFlags sets state flag bits.
func WithFlags(flags kernel.StateFlags) ContextOption {
	return func(ctx *kernel.ExecutionContext) {
		ctx.StateFlags |= flags
	}
}

// NewContext builds an execution context with the fixed timestamp.
func NewContext(taskID string, opts ...ContextOption) *kernel.ExecutionContext {
	ctx := &kernel.ExecutionContext{
		TaskID:    taskID,
		Timestamp: FixedTime,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}
