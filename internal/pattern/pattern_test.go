package pattern

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickCosts_FixedAndEligible(t *testing.T) {
	for i := 0; i < NumPatterns; i++ {
		id := ID(i)
		cost := id.TickCost()
		assert.GreaterOrEqual(t, cost, uint8(1), "pattern %s", id)
		assert.LessOrEqual(t, cost, uint8(7), "pattern %s", id)
		assert.Equal(t, uint64(cost) <= HotPathTickBudget, id.IsHotPathEligible(),
			"eligibility must be derived from cost for %s", id)
	}

	assert.GreaterOrEqual(t, HotPathEligibleCount(), minHotPathEligible)
}

func TestKnownCosts(t *testing.T) {
	assert.Equal(t, uint8(1), Sequence.TickCost())
	assert.Equal(t, uint8(2), ParallelSplit.TickCost())
	assert.Equal(t, uint8(7), GeneralizedAndJoin.TickCost())
}

func TestReservedIDs(t *testing.T) {
	for _, id := range []ID{Reserved39, Reserved40, Reserved41, Reserved42} {
		assert.True(t, id.Reserved())
		assert.Equal(t, uint8(1), id.TickCost())

		// Reserved names must not parse back into ids.
		_, ok := FromString(id.String())
		assert.False(t, ok, "reserved id %s must not parse", id)
	}

	assert.False(t, Sequence.Reserved())
	assert.False(t, CriticalSection.Reserved())
}

func TestID_StringRoundTrip(t *testing.T) {
	for _, id := range All() {
		parsed, ok := FromString(id.String())
		require.True(t, ok, "pattern %d", id)
		assert.Equal(t, id, parsed)
	}

	assert.Equal(t, "invalid", ID(200).String())
	_, ok := FromString("three_way_handshake")
	assert.False(t, ok)
}

func TestDispatchEntry_CacheLineSize(t *testing.T) {
	assert.Equal(t, uintptr(64), unsafe.Sizeof(DispatchEntry{}))
}

func TestDispatchTable_Get(t *testing.T) {
	table := NewDispatchTable()

	e := table.Get(Sequence)
	require.NotNil(t, e)
	assert.Equal(t, Sequence, e.PatternID)
	assert.Equal(t, uint8(1), e.TickBudget)

	e = table.Get(GeneralizedAndJoin)
	require.NotNil(t, e)
	assert.Equal(t, uint8(7), e.TickBudget)
}

func TestDispatchTable_GetOutOfRange(t *testing.T) {
	table := NewDispatchTable()

	assert.Nil(t, table.Get(ID(NumPatterns)))
	assert.Nil(t, table.Get(ID(200)))
	assert.Nil(t, table.Get(ID(255)))
}

func TestDispatchTable_PhasePlans(t *testing.T) {
	table := NewDispatchTable()

	// Every real pattern starts with a guard phase and ends its plan with
	// completion before the PhaseNone tail.
	for _, id := range All() {
		e := table.Get(id)
		require.NotNil(t, e)
		assert.Equal(t, PhaseGuard, e.PhaseSlots[0], "pattern %s", id)

		last := PhaseNone
		for _, p := range e.PhaseSlots {
			if p == PhaseNone {
				break
			}
			last = p
		}
		assert.Equal(t, PhaseComplete, last, "pattern %s", id)
	}

	// Split patterns fan out; join patterns wait.
	split := table.Get(ParallelSplit)
	assert.Contains(t, split.PhaseSlots[:], PhaseSplit)
	join := table.Get(Synchronization)
	assert.Contains(t, join.PhaseSlots[:], PhaseJoin)
	cancel := table.Get(CancelCase)
	assert.Contains(t, cancel.PhaseSlots[:], PhaseCancel)
}

func TestDispatchTable_ReservedEntriesEmpty(t *testing.T) {
	table := NewDispatchTable()

	e := table.Get(Reserved40)
	require.NotNil(t, e)
	assert.Equal(t, uint32(0), e.GuardBitmap)
	assert.Equal(t, PhaseNone, e.PhaseSlots[0])
}

func TestBuilder_Overrides(t *testing.T) {
	table, err := NewBuilder().
		WithTickBudget(Sequence, 3).
		WithTickBudget(GeneralizedAndJoin, 8).
		Build()
	require.NoError(t, err)

	assert.Equal(t, uint8(3), table.Get(Sequence).TickBudget)
	assert.Equal(t, uint8(8), table.Get(GeneralizedAndJoin).TickBudget)

	// The base cost table is untouched.
	assert.Equal(t, uint8(1), Sequence.TickCost())
}

func TestBuilder_RejectsInvalidBudget(t *testing.T) {
	_, err := NewBuilder().WithTickBudget(Sequence, 0).Build()
	assert.Error(t, err)

	_, err = NewBuilder().WithTickBudget(Sequence, 9).Build()
	assert.Error(t, err)

	_, err = NewBuilder().WithTickBudget(Reserved39, 2).Build()
	assert.Error(t, err)
}

func TestHandle_Swap(t *testing.T) {
	first := NewDispatchTable()
	h := NewHandle(first)
	assert.Same(t, first, h.Load())

	second, err := NewBuilder().WithTickBudget(Sequence, 2).Build()
	require.NoError(t, err)

	prev := h.Swap(second)
	assert.Same(t, first, prev)
	assert.Same(t, second, h.Load())

	// The swapped-out table is still a consistent view for readers that
	// loaded it before the swap.
	assert.Equal(t, uint8(1), prev.Get(Sequence).TickBudget)
	assert.Equal(t, uint8(2), h.Load().Get(Sequence).TickBudget)
}
