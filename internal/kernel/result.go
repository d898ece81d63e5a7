package kernel

import "time"

// Outcome classifies how a task finished.
type Outcome string

const (
	// OutcomeCompleted means the guard passed and the handler returned.
	OutcomeCompleted Outcome = "completed"
	// OutcomeGuardRejected means the guard evaluated to false; the handler
	// was never invoked.
	OutcomeGuardRejected Outcome = "guard_rejected"
	// OutcomeFailed means the handler returned an error or panicked.
	OutcomeFailed Outcome = "failed"
	// OutcomeUnknownPattern means the pattern id resolved to no dispatch
	// entry (id out of range or reserved).
	OutcomeUnknownPattern Outcome = "unknown_pattern"
)

// HookExecutionResult is the per-invocation record returned to callers and
// consumed by external telemetry. TicksUsed and MetHotPathConstraint are the
// span attributes an external tracer exports.
//
// Err is populated for OutcomeFailed; Value for OutcomeCompleted.
type HookExecutionResult struct {
	TaskID               string
	Outcome              Outcome
	Value                any
	Err                  error
	TicksUsed            uint64
	ExecutionTime        time.Duration
	MetHotPathConstraint bool
}
