package kernel

import "time"

// MaxObservations is the fixed capacity of a context's observation buffer.
//
// The buffer is a value type with inline storage so that copying a context
// never allocates and a guard read never chases a pointer.
const MaxObservations = 16

// ResourceType identifies one dimension of the resource snapshot.
type ResourceType uint8

const (
	// ResourceCPU is available CPU headroom, in percent (0-100).
	ResourceCPU ResourceType = iota
	// ResourceMemory is available memory headroom, in percent (0-100).
	ResourceMemory
	// ResourceIO is available IO bandwidth headroom, in percent (0-100).
	ResourceIO
	// ResourceQueueDepth is remaining queue capacity, in percent (0-100).
	ResourceQueueDepth

	// NumResourceTypes bounds the valid ResourceType domain.
	NumResourceTypes
)

// String returns the snake_case name used in scenario files and traces.
func (r ResourceType) String() string {
	switch r {
	case ResourceCPU:
		return "cpu"
	case ResourceMemory:
		return "memory"
	case ResourceIO:
		return "io"
	case ResourceQueueDepth:
		return "queue_depth"
	default:
		return "unknown"
	}
}

// ResourceTypeFromString parses a resource type name.
// Returns (NumResourceTypes, false) for unknown names.
func ResourceTypeFromString(s string) (ResourceType, bool) {
	switch s {
	case "cpu":
		return ResourceCPU, true
	case "memory":
		return ResourceMemory, true
	case "io":
		return ResourceIO, true
	case "queue_depth":
		return ResourceQueueDepth, true
	default:
		return NumResourceTypes, false
	}
}

// ResourceSnapshot is a point-in-time view of resource availability.
//
// Values are indexed by ResourceType. Out-of-range reads return (0, false)
// rather than panicking - guard evaluation is fail-closed on absent inputs.
type ResourceSnapshot struct {
	available [NumResourceTypes]float64
}

// NewResourceSnapshot builds a snapshot from explicit availability values.
func NewResourceSnapshot(cpu, memory, io, queueDepth float64) ResourceSnapshot {
	var s ResourceSnapshot
	s.available[ResourceCPU] = cpu
	s.available[ResourceMemory] = memory
	s.available[ResourceIO] = io
	s.available[ResourceQueueDepth] = queueDepth
	return s
}

// Available returns the availability for a resource type.
// Returns (0, false) for out-of-range types.
func (s ResourceSnapshot) Available(t ResourceType) (float64, bool) {
	if t >= NumResourceTypes {
		return 0, false
	}
	return s.available[t], true
}

// StateFlags is a bitmask of context state bits checked by state guards.
type StateFlags uint64

// Well-known state flags. Callers may define additional bits; the guard
// engine treats the mask as opaque.
const (
	FlagInitialized StateFlags = 1 << iota
	FlagWarm
	FlagDegraded
	FlagDraining
	FlagReplaying
)

// Has reports whether every bit in required is set.
func (f StateFlags) Has(required StateFlags) bool {
	return f&required == required
}

// StateFlagFromString parses a well-known flag name.
// Returns (0, false) for unknown names; caller-defined bits have no names.
func StateFlagFromString(s string) (StateFlags, bool) {
	switch s {
	case "initialized":
		return FlagInitialized, true
	case "warm":
		return FlagWarm, true
	case "degraded":
		return FlagDegraded, true
	case "draining":
		return FlagDraining, true
	case "replaying":
		return FlagReplaying, true
	default:
		return 0, false
	}
}

// ObservationBuffer is a fixed-capacity buffer of observed values.
//
// Observations are appended by the caller before submitting work; guards
// read them by index. Reads past Count return (0, false).
type ObservationBuffer struct {
	values [MaxObservations]float64
	count  int
}

// Push appends an observation. Returns false if the buffer is full.
func (b *ObservationBuffer) Push(v float64) bool {
	if b.count >= MaxObservations {
		return false
	}
	b.values[b.count] = v
	b.count++
	return true
}

// At returns the observation at index i.
// Returns (0, false) if i is out of range.
func (b *ObservationBuffer) At(i int) (float64, bool) {
	if i < 0 || i >= b.count {
		return 0, false
	}
	return b.values[i], true
}

// Count returns the number of observations pushed.
func (b *ObservationBuffer) Count() int {
	return b.count
}

// ExecutionContext is the immutable input to one guard/pattern evaluation.
//
// It is owned by the caller and borrowed by the kernel; nothing in the
// kernel mutates it. TaskID correlates the context with the task it was
// built for and with the HookExecutionResult produced from it.
type ExecutionContext struct {
	TaskID       string
	Timestamp    time.Time
	Resources    ResourceSnapshot
	Observations ObservationBuffer
	StateFlags   StateFlags
}
