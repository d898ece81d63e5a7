package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceSnapshot_Available(t *testing.T) {
	s := NewResourceSnapshot(80, 60, 40, 20)

	v, ok := s.Available(ResourceCPU)
	assert.True(t, ok)
	assert.Equal(t, 80.0, v)

	v, ok = s.Available(ResourceQueueDepth)
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)
}

func TestResourceSnapshot_OutOfRange(t *testing.T) {
	s := NewResourceSnapshot(80, 60, 40, 20)

	// Out-of-range types resolve to (0, false), never panic.
	v, ok := s.Available(NumResourceTypes)
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = s.Available(ResourceType(200))
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestResourceType_StringRoundTrip(t *testing.T) {
	for rt := ResourceCPU; rt < NumResourceTypes; rt++ {
		parsed, ok := ResourceTypeFromString(rt.String())
		assert.True(t, ok, "resource type %d should round-trip", rt)
		assert.Equal(t, rt, parsed)
	}

	_, ok := ResourceTypeFromString("gpu")
	assert.False(t, ok)
}

func TestObservationBuffer_PushAt(t *testing.T) {
	var b ObservationBuffer

	assert.Equal(t, 0, b.Count())

	assert.True(t, b.Push(42))
	assert.True(t, b.Push(7))
	assert.Equal(t, 2, b.Count())

	v, ok := b.At(0)
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)

	v, ok = b.At(1)
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)
}

func TestObservationBuffer_OutOfRange(t *testing.T) {
	var b ObservationBuffer
	b.Push(1)

	_, ok := b.At(-1)
	assert.False(t, ok)

	_, ok = b.At(1)
	assert.False(t, ok)

	_, ok = b.At(MaxObservations)
	assert.False(t, ok)
}

func TestObservationBuffer_FullCapacity(t *testing.T) {
	var b ObservationBuffer

	for i := 0; i < MaxObservations; i++ {
		assert.True(t, b.Push(float64(i)))
	}

	// Capacity is fixed: further pushes are rejected, not grown.
	assert.False(t, b.Push(99))
	assert.Equal(t, MaxObservations, b.Count())
}

func TestStateFlags_Has(t *testing.T) {
	f := FlagInitialized | FlagWarm

	assert.True(t, f.Has(FlagInitialized))
	assert.True(t, f.Has(FlagInitialized|FlagWarm))
	assert.False(t, f.Has(FlagDegraded))
	assert.False(t, f.Has(FlagInitialized|FlagDegraded))

	// Every mask contains the empty mask.
	assert.True(t, f.Has(0))
}
