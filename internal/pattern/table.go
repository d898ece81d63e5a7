package pattern

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/roach88/hotpath/internal/guard"
)

// PhaseSlot names one step of a pattern handler's phase sequence.
// The executor walks an entry's slots in order and stops at PhaseNone.
type PhaseSlot uint8

const (
	// PhaseNone terminates a phase sequence.
	PhaseNone PhaseSlot = iota
	// PhaseGuard evaluates the task's guard.
	PhaseGuard
	// PhaseSetup prepares branch or instance bookkeeping.
	PhaseSetup
	// PhaseSplit fans control flow out to branches or instances.
	PhaseSplit
	// PhaseJoin waits on incoming branches.
	PhaseJoin
	// PhaseMerge folds branch results into one continuation.
	PhaseMerge
	// PhaseCancel withdraws in-flight branches.
	PhaseCancel
	// PhaseTrigger consumes an external trigger signal.
	PhaseTrigger
	// PhaseComplete publishes the handler result.
	PhaseComplete
)

// MaxPhaseSlots is the fixed length of an entry's phase sequence.
const MaxPhaseSlots = 8

// DispatchEntry is one slot of the dispatch table.
//
// The struct is padded to exactly 64 bytes so that consecutive entries
// occupy distinct cache lines and one lookup touches exactly one line.
// Field order keeps GuardBitmap naturally aligned at offset 0.
type DispatchEntry struct {
	GuardBitmap uint32
	PatternID   ID
	TickBudget  uint8
	PhaseSlots  [MaxPhaseSlots]PhaseSlot
	_           [50]byte
}

// Compile-time check that an entry is exactly one cache line.
var _ = [1]struct{}{}[unsafe.Sizeof(DispatchEntry{})-64]

// TableSize is the slot count of the dispatch table. Sized as a power of
// two well above NumPatterns so index masking stays cheap and future id
// ranges keep their alignment. Only the first NumPatterns slots are
// populated; the rest are zero entries that Get never returns.
const TableSize = 256

// DispatchTable maps pattern ids to dispatch entries in O(1).
//
// The table is immutable once built. Workers hold a *DispatchTable obtained
// from a Handle and only ever call Get.
type DispatchTable struct {
	entries [TableSize]DispatchEntry
}

// NewDispatchTable builds the default table from the fixed cost table.
func NewDispatchTable() *DispatchTable {
	t, err := NewBuilder().Build()
	if err != nil {
		// The default cost table always validates; see init in patterns.go.
		panic(fmt.Sprintf("pattern: default table invalid: %v", err))
	}
	return t
}

// Get returns the entry for id, or nil when id has no populated slot.
// Never panics: a corrupted or future-reserved id resolves to nil and the
// caller reports an unknown pattern.
func (t *DispatchTable) Get(id ID) *DispatchEntry {
	if !id.Valid() {
		return nil
	}
	return &t.entries[id]
}

// getMut exists only for table construction. It is never called from a
// worker's hot path; workers see tables only through Handle.Load.
func (t *DispatchTable) getMut(id ID) *DispatchEntry {
	return &t.entries[id]
}

// Handle publishes a dispatch table to concurrent readers.
//
// Reconfiguration builds a complete new table and swaps the pointer;
// readers that loaded the old table keep a consistent (if stale) view until
// their next Load.
type Handle struct {
	p atomic.Pointer[DispatchTable]
}

// NewHandle creates a handle publishing t.
func NewHandle(t *DispatchTable) *Handle {
	h := &Handle{}
	h.p.Store(t)
	return h
}

// Load returns the current table.
func (h *Handle) Load() *DispatchTable {
	return h.p.Load()
}

// Swap atomically publishes next and returns the previous table.
func (h *Handle) Swap(next *DispatchTable) *DispatchTable {
	return h.p.Swap(next)
}

// Builder constructs validated dispatch tables.
//
// The builder replaces compile-time validity encodings from the design:
// overrides outside [1, HotPathTickBudget] or that drop the eligible-pattern
// floor are rejected by Build, not discovered in production.
type Builder struct {
	budgets map[ID]uint8
}

// NewBuilder starts from the fixed cost table with no overrides.
func NewBuilder() *Builder {
	return &Builder{budgets: make(map[ID]uint8)}
}

// WithTickBudget overrides the tick budget for one pattern.
func (b *Builder) WithTickBudget(id ID, budget uint8) *Builder {
	b.budgets[id] = budget
	return b
}

// Build validates the configuration and returns an immutable table.
func (b *Builder) Build() (*DispatchTable, error) {
	eligible := 0
	budgets := [NumPatterns]uint8{}

	for i := 0; i < NumPatterns; i++ {
		id := ID(i)
		budget := id.TickCost()
		if override, ok := b.budgets[id]; ok {
			if id.Reserved() {
				return nil, fmt.Errorf("pattern %s is reserved and cannot be configured", id)
			}
			budget = override
		}
		if budget < 1 || uint64(budget) > HotPathTickBudget {
			return nil, fmt.Errorf("pattern %s: tick budget %d outside [1,%d]",
				id, budget, HotPathTickBudget)
		}
		budgets[i] = budget
		if uint64(budget) <= HotPathTickBudget {
			eligible++
		}
	}

	if eligible < minHotPathEligible {
		return nil, fmt.Errorf("only %d of %d patterns hot-path eligible, need %d",
			eligible, NumPatterns, minHotPathEligible)
	}

	t := &DispatchTable{}
	for i := 0; i < NumPatterns; i++ {
		id := ID(i)
		e := t.getMut(id)
		e.PatternID = id
		e.TickBudget = budgets[i]
		e.GuardBitmap = guardBitmap(id)
		e.PhaseSlots = phasePlan(id)
	}
	return t, nil
}

// phasePlan derives the fixed handler phase sequence for a pattern.
// Reserved ids get an empty plan.
func phasePlan(id ID) [MaxPhaseSlots]PhaseSlot {
	var plan [MaxPhaseSlots]PhaseSlot
	if id.Reserved() {
		return plan
	}

	i := 0
	put := func(p PhaseSlot) {
		if i < MaxPhaseSlots {
			plan[i] = p
			i++
		}
	}

	put(PhaseGuard)
	switch id {
	case Sequence, ImplicitTermination, StructuredLoop, ArbitraryCycles, Recursion:
		// Plain routing: guard, then complete.
	case ParallelSplit, MultiChoice, ExclusiveChoice, DeferredChoice,
		MultipleInstancesWithoutSync, MultipleInstancesDesignTime,
		MultipleInstancesRuntime, MultipleInstancesUnbounded:
		put(PhaseSetup)
		put(PhaseSplit)
	case Synchronization, GeneralizedAndJoin, StructuredPartialJoin,
		BlockingPartialJoin, StaticPartialJoinMultipleInstances,
		DynamicPartialJoinMultipleInstances:
		put(PhaseJoin)
		put(PhaseMerge)
	case SimpleMerge, MultiMerge, StructuredSynchronizingMerge,
		AcyclicSynchronizingMerge, GeneralSynchronizingMerge:
		put(PhaseMerge)
	case StructuredDiscriminator, BlockingDiscriminator:
		put(PhaseJoin)
	case CancellingDiscriminator, CancellingPartialJoin,
		CancellingPartialJoinMultipleInstances:
		put(PhaseJoin)
		put(PhaseCancel)
	case CancelActivity, CancelCase, CancelRegion,
		CancelMultipleInstanceActivity, CompleteMultipleInstanceActivity:
		put(PhaseCancel)
	case TransientTrigger, PersistentTrigger:
		put(PhaseTrigger)
	case Milestone, CriticalSection, InterleavedParallelRouting:
		put(PhaseSetup)
	}
	put(PhaseComplete)
	return plan
}

// guardBitmap derives the guard kinds a pattern's guard may touch. Every
// real pattern admits predicates and compound guards; state- and
// load-sensitive patterns widen the mask.
func guardBitmap(id ID) uint32 {
	if id.Reserved() {
		return 0
	}

	mask := guard.KindPredicate | guard.KindCompound
	switch id {
	case Milestone, CriticalSection, InterleavedParallelRouting,
		DeferredChoice, TransientTrigger, PersistentTrigger,
		ImplicitTermination:
		mask |= guard.KindState
	case MultipleInstancesWithoutSync, MultipleInstancesDesignTime,
		MultipleInstancesRuntime, MultipleInstancesUnbounded,
		CancelRegion, CancelCase, CancelActivity,
		CancelMultipleInstanceActivity, CompleteMultipleInstanceActivity:
		mask |= guard.KindResource
	}
	return mask
}
