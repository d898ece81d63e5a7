package sched

import (
	"sync/atomic"

	"github.com/roach88/hotpath/internal/pattern"
)

// Metrics holds the executor's observational counters.
//
// Counters are independently-owned atomics with no cross-field consistency:
// a snapshot taken mid-flight may see a task spawned but not yet completed.
// They are monotonically non-decreasing for the process lifetime, except
// IdleWorkers which fluctuates with the park loop.
type Metrics struct {
	tasksSpawned     atomic.Uint64
	tasksCompleted   atomic.Uint64
	tasksFailed      atomic.Uint64
	tasksStolen      atomic.Uint64
	budgetViolations atomic.Uint64
	resultsDropped   atomic.Uint64
	idleWorkers      atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	TasksSpawned     uint64 `json:"tasks_spawned"`
	TasksCompleted   uint64 `json:"tasks_completed"`
	TasksFailed      uint64 `json:"tasks_failed"`
	TasksStolen      uint64 `json:"tasks_stolen"`
	BudgetViolations uint64 `json:"budget_violations"`
	ResultsDropped   uint64 `json:"results_dropped"`
	IdleWorkers      int64  `json:"idle_workers"`
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TasksSpawned:     m.tasksSpawned.Load(),
		TasksCompleted:   m.tasksCompleted.Load(),
		TasksFailed:      m.tasksFailed.Load(),
		TasksStolen:      m.tasksStolen.Load(),
		BudgetViolations: m.budgetViolations.Load(),
		ResultsDropped:   m.resultsDropped.Load(),
		IdleWorkers:      m.idleWorkers.Load(),
	}
}

// Observer receives per-task execution observations. Implementations must
// be safe for concurrent use and cheap: they run on the worker, after the
// measured window but before the next task.
//
// The observe package adapts Observer to Prometheus collectors.
type Observer interface {
	ObserveTask(p pattern.ID, ticks uint64, metBudget bool)
}
