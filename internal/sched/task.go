package sched

import (
	"github.com/roach88/hotpath/internal/guard"
	"github.com/roach88/hotpath/internal/kernel"
	"github.com/roach88/hotpath/internal/pattern"
)

// HandlerFunc is the suspended computation a task carries. It receives the
// task's borrowed context and returns the handler value.
type HandlerFunc func(*kernel.ExecutionContext) (any, error)

// Task is one unit of work: a pattern invocation with its guard and
// context.
//
// A task is owned by exactly one queue at a time; ownership transfers
// atomically on steal or pop, so a task is executed exactly once. The
// executor never copies a task after spawn.
type Task struct {
	// ID correlates the task with its result. Assigned by the executor's
	// id generator when left empty.
	ID string

	// Pattern selects the dispatch entry supplying the tick budget and
	// phase plan.
	Pattern pattern.ID

	// Guard gates execution. A nil guard always passes.
	Guard guard.Guard

	// Context is borrowed from the caller for the duration of this task's
	// evaluation. The kernel does not mutate it.
	Context *kernel.ExecutionContext

	// Handler is invoked when the guard passes. A nil handler completes
	// with a nil value.
	Handler HandlerFunc
}
