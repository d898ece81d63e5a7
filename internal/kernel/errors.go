package kernel

import (
	"errors"
	"fmt"
)

// KernelError represents a structured error detected inside the kernel.
//
// Kernel errors include:
//   - Budget violations: a measured operation exceeded its tick budget
//   - Measurement failures: the cycle-reading backend misbehaved
//   - Unknown pattern: a task referenced an out-of-range or reserved id
//   - Task panic: a handler panicked and was isolated by the worker
//
// KernelError includes structured fields for diagnostics and telemetry.
type KernelError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// TaskID identifies the affected task, when known.
	TaskID string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes kernel errors.
type ErrorCode string

const (
	// ErrCodeBudgetExceeded indicates an operation ran past its tick budget.
	// Soft by default: reported and counted, escalated only by the caller.
	ErrCodeBudgetExceeded ErrorCode = "BUDGET_EXCEEDED"

	// ErrCodeInvalidMeasurement indicates a measurement was requested with
	// invalid parameters (zero iterations, nil operation).
	ErrCodeInvalidMeasurement ErrorCode = "INVALID_MEASUREMENT"

	// ErrCodeMeasurementFailed indicates the cycle-reading backend itself
	// malfunctioned. Rare: the backend falls back to a monotonic clock
	// before failing outright.
	ErrCodeMeasurementFailed ErrorCode = "MEASUREMENT_FAILED"

	// ErrCodeUnknownPattern indicates a dispatch lookup for an id with no
	// populated entry.
	ErrCodeUnknownPattern ErrorCode = "UNKNOWN_PATTERN"

	// ErrCodeTaskPanicked indicates a task handler panicked. The panic is
	// confined to the task; the worker survives.
	ErrCodeTaskPanicked ErrorCode = "TASK_PANICKED"
)

// Error implements the error interface.
func (e *KernelError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s: %s (task=%s)", e.Code, e.Message, e.TaskID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsBudgetError returns true if the error is a budget-exceeded error.
// Uses errors.As to handle wrapped errors.
func IsBudgetError(err error) bool {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.Code == ErrCodeBudgetExceeded
	}
	return false
}

// IsMeasurementError returns true for either measurement error code.
// Uses errors.As to handle wrapped errors.
func IsMeasurementError(err error) bool {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.Code == ErrCodeInvalidMeasurement || ke.Code == ErrCodeMeasurementFailed
	}
	return false
}

// IsTaskPanic returns true if the error is a task panic error.
// Uses errors.As to handle wrapped errors.
func IsTaskPanic(err error) bool {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.Code == ErrCodeTaskPanicked
	}
	return false
}

// IsUnknownPattern returns true if the error is an unknown-pattern error.
// Uses errors.As to handle wrapped errors.
func IsUnknownPattern(err error) bool {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.Code == ErrCodeUnknownPattern
	}
	return false
}

// NewTaskPanicError creates a KernelError for a recovered task panic.
func NewTaskPanicError(taskID string, recovered any) *KernelError {
	return &KernelError{
		Code:    ErrCodeTaskPanicked,
		Message: fmt.Sprintf("task handler panicked: %v", recovered),
		TaskID:  taskID,
	}
}

// NewUnknownPatternError creates a KernelError for a failed dispatch lookup.
func NewUnknownPatternError(taskID string, patternID uint8) *KernelError {
	return &KernelError{
		Code:    ErrCodeUnknownPattern,
		Message: fmt.Sprintf("no dispatch entry for pattern id %d", patternID),
		TaskID:  taskID,
		Details: map[string]string{
			"pattern_id": fmt.Sprintf("%d", patternID),
		},
	}
}
