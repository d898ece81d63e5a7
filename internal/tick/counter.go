package tick

import (
	"errors"
	"fmt"
)

// readNow is the selected backend. Indirected through a variable so tests
// can substitute a deterministic source; production code never reassigns it.
var readNow = readTicks

// SourceName returns the name of the build-selected counter backend.
func SourceName() string {
	return sourceName
}

// Now returns the current tick count.
func Now() uint64 {
	return readNow()
}

// Counter is an in-flight measurement started by Start.
type Counter struct {
	start uint64
}

// Start samples the current tick count.
func Start() Counter {
	return Counter{start: readNow()}
}

// Elapsed returns the ticks elapsed since Start, saturating at zero if the
// counter reads backwards (CPU migration on cores with unsynchronized
// counters, or a coarse fallback clock).
func (c Counter) Elapsed() uint64 {
	now := readNow()
	if now < c.start {
		return 0
	}
	return now - c.start
}

// BudgetExceededError is returned when a measured operation ran past its
// tick budget.
//
// The violation is soft: callers count and log it, and only escalate to a
// hard failure by propagating the error. It is never silently dropped by
// this package - CheckBudget always surfaces it.
type BudgetExceededError struct {
	Actual uint64 // Ticks the operation used
	Budget uint64 // Ticks the operation was allowed
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("tick budget exceeded: %d ticks > %d budget", e.Actual, e.Budget)
}

// IsBudgetExceeded returns true if the error is a budget violation.
// Uses errors.As to handle wrapped errors.
func IsBudgetExceeded(err error) bool {
	var be *BudgetExceededError
	return errors.As(err, &be)
}

// CheckBudget compares the counter's elapsed ticks against budget.
// Returns nil within budget, *BudgetExceededError otherwise.
func CheckBudget(c Counter, budget uint64) error {
	actual := c.Elapsed()
	if actual > budget {
		return &BudgetExceededError{Actual: actual, Budget: budget}
	}
	return nil
}

// Measure runs f and returns its result with the ticks it used.
func Measure[T any](f func() T) (T, uint64) {
	c := Start()
	result := f()
	return result, c.Elapsed()
}

// MeasureFunc runs f and returns the ticks it used.
func MeasureFunc(f func()) uint64 {
	c := Start()
	f()
	return c.Elapsed()
}
