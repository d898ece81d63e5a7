package pattern

// ID identifies one workflow control-flow pattern. Valid ids are in
// [0, NumPatterns); ids in [NumRealPatterns, NumPatterns) are reserved
// placeholders and must not be treated as real patterns by callers.
type ID uint8

// The canonical control-flow patterns. Ids are stable: they index the
// dispatch table and appear in traces and the bench history database.
const (
	Sequence ID = iota
	ParallelSplit
	Synchronization
	ExclusiveChoice
	SimpleMerge
	MultiChoice
	StructuredSynchronizingMerge
	MultiMerge
	StructuredDiscriminator
	ArbitraryCycles
	ImplicitTermination
	MultipleInstancesWithoutSync
	MultipleInstancesDesignTime
	MultipleInstancesRuntime
	MultipleInstancesUnbounded
	DeferredChoice
	InterleavedParallelRouting
	Milestone
	CancelActivity
	CancelCase
	StructuredLoop
	Recursion
	TransientTrigger
	PersistentTrigger
	CancelRegion
	CancelMultipleInstanceActivity
	CompleteMultipleInstanceActivity
	BlockingDiscriminator
	CancellingDiscriminator
	StructuredPartialJoin
	BlockingPartialJoin
	CancellingPartialJoin
	GeneralizedAndJoin
	StaticPartialJoinMultipleInstances
	CancellingPartialJoinMultipleInstances
	DynamicPartialJoinMultipleInstances
	AcyclicSynchronizingMerge
	GeneralSynchronizingMerge
	CriticalSection

	Reserved39
	Reserved40
	Reserved41
	Reserved42
)

const (
	// NumRealPatterns counts the populated, non-reserved patterns.
	NumRealPatterns = int(Reserved39)
	// NumPatterns bounds the valid ID domain, reserved ids included.
	NumPatterns = int(Reserved42) + 1
)

// tickCosts is the compile-time-fixed tick cost per pattern, in counter
// ticks. Costs reflect the structural work a pattern's handler phases
// perform: plain routing is cheap, synchronizing joins over multiple
// branches are the most expensive. Reserved ids carry cost 1.
var tickCosts = [NumPatterns]uint8{
	Sequence:                               1,
	ParallelSplit:                          2,
	Synchronization:                        3,
	ExclusiveChoice:                        2,
	SimpleMerge:                            2,
	MultiChoice:                            3,
	StructuredSynchronizingMerge:           5,
	MultiMerge:                             3,
	StructuredDiscriminator:                4,
	ArbitraryCycles:                        4,
	ImplicitTermination:                    2,
	MultipleInstancesWithoutSync:           3,
	MultipleInstancesDesignTime:            4,
	MultipleInstancesRuntime:               5,
	MultipleInstancesUnbounded:             6,
	DeferredChoice:                         3,
	InterleavedParallelRouting:             5,
	Milestone:                              3,
	CancelActivity:                         2,
	CancelCase:                             3,
	StructuredLoop:                         2,
	Recursion:                              5,
	TransientTrigger:                       2,
	PersistentTrigger:                      2,
	CancelRegion:                           4,
	CancelMultipleInstanceActivity:         4,
	CompleteMultipleInstanceActivity:       4,
	BlockingDiscriminator:                  5,
	CancellingDiscriminator:                5,
	StructuredPartialJoin:                  5,
	BlockingPartialJoin:                    6,
	CancellingPartialJoin:                  6,
	GeneralizedAndJoin:                     7,
	StaticPartialJoinMultipleInstances:     6,
	CancellingPartialJoinMultipleInstances: 7,
	DynamicPartialJoinMultipleInstances:    7,
	AcyclicSynchronizingMerge:              6,
	GeneralSynchronizingMerge:              7,
	CriticalSection:                        4,
	Reserved39:                             1,
	Reserved40:                             1,
	Reserved41:                             1,
	Reserved42:                             1,
}

var names = [NumPatterns]string{
	Sequence:                               "sequence",
	ParallelSplit:                          "parallel_split",
	Synchronization:                        "synchronization",
	ExclusiveChoice:                        "exclusive_choice",
	SimpleMerge:                            "simple_merge",
	MultiChoice:                            "multi_choice",
	StructuredSynchronizingMerge:           "structured_synchronizing_merge",
	MultiMerge:                             "multi_merge",
	StructuredDiscriminator:                "structured_discriminator",
	ArbitraryCycles:                        "arbitrary_cycles",
	ImplicitTermination:                    "implicit_termination",
	MultipleInstancesWithoutSync:           "mi_without_synchronization",
	MultipleInstancesDesignTime:            "mi_design_time_knowledge",
	MultipleInstancesRuntime:               "mi_runtime_knowledge",
	MultipleInstancesUnbounded:             "mi_without_runtime_knowledge",
	DeferredChoice:                         "deferred_choice",
	InterleavedParallelRouting:             "interleaved_parallel_routing",
	Milestone:                              "milestone",
	CancelActivity:                         "cancel_activity",
	CancelCase:                             "cancel_case",
	StructuredLoop:                         "structured_loop",
	Recursion:                              "recursion",
	TransientTrigger:                       "transient_trigger",
	PersistentTrigger:                      "persistent_trigger",
	CancelRegion:                           "cancel_region",
	CancelMultipleInstanceActivity:         "cancel_mi_activity",
	CompleteMultipleInstanceActivity:       "complete_mi_activity",
	BlockingDiscriminator:                  "blocking_discriminator",
	CancellingDiscriminator:                "cancelling_discriminator",
	StructuredPartialJoin:                  "structured_partial_join",
	BlockingPartialJoin:                    "blocking_partial_join",
	CancellingPartialJoin:                  "cancelling_partial_join",
	GeneralizedAndJoin:                     "generalized_and_join",
	StaticPartialJoinMultipleInstances:     "static_partial_join_mi",
	CancellingPartialJoinMultipleInstances: "cancelling_partial_join_mi",
	DynamicPartialJoinMultipleInstances:    "dynamic_partial_join_mi",
	AcyclicSynchronizingMerge:              "acyclic_synchronizing_merge",
	GeneralSynchronizingMerge:              "general_synchronizing_merge",
	CriticalSection:                        "critical_section",
	Reserved39:                             "reserved_39",
	Reserved40:                             "reserved_40",
	Reserved41:                             "reserved_41",
	Reserved42:                             "reserved_42",
}

// HotPathTickBudget is the per-operation cycle budget for hot-path
// operations. Process-wide, fixed at startup.
const HotPathTickBudget = 8

// minHotPathEligible is the floor on hot-path-eligible patterns the cost
// table must preserve. Construction panics below this floor rather than
// shipping a table that silently lost the latency property.
const minHotPathEligible = 30

func init() {
	if n := HotPathEligibleCount(); n < minHotPathEligible {
		panic("pattern: cost table leaves too few hot-path eligible patterns")
	}
	for id := 0; id < NumPatterns; id++ {
		if c := tickCosts[id]; c < 1 || c > 7 {
			panic("pattern: tick cost out of range [1,7]")
		}
	}
}

// Valid reports whether id is inside the table domain (reserved included).
func (id ID) Valid() bool {
	return int(id) < NumPatterns
}

// Reserved reports whether id is a reserved placeholder.
func (id ID) Reserved() bool {
	return int(id) >= NumRealPatterns && int(id) < NumPatterns
}

// TickCost returns the compile-time-fixed tick cost for id.
// Out-of-range ids return 0, which no real pattern carries.
func (id ID) TickCost() uint8 {
	if !id.Valid() {
		return 0
	}
	return tickCosts[id]
}

// IsHotPathEligible reports whether the pattern fits the hot-path budget.
func (id ID) IsHotPathEligible() bool {
	return id.Valid() && uint64(tickCosts[id]) <= HotPathTickBudget
}

// String returns the snake_case pattern name.
func (id ID) String() string {
	if !id.Valid() {
		return "invalid"
	}
	return names[id]
}

// FromString parses a pattern name. Reserved names do not parse: callers
// must not construct reserved ids from input.
func FromString(s string) (ID, bool) {
	for id := 0; id < NumRealPatterns; id++ {
		if names[id] == s {
			return ID(id), true
		}
	}
	return 0, false
}

// HotPathEligibleCount counts patterns whose tick cost fits the budget.
func HotPathEligibleCount() int {
	n := 0
	for id := 0; id < NumPatterns; id++ {
		if ID(id).IsHotPathEligible() {
			n++
		}
	}
	return n
}

// All returns the real (non-reserved) pattern ids in ascending order.
func All() []ID {
	ids := make([]ID, NumRealPatterns)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}
