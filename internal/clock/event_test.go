package clock

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Compare(t *testing.T) {
	a := Event[string]{Timestamp: 1, CoreID: 0, Payload: "a"}
	b := Event[string]{Timestamp: 2, CoreID: 0, Payload: "b"}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
}

func TestEvent_TiebreakByCoreID(t *testing.T) {
	// Equal timestamps: legitimately concurrent, ordered by core id.
	a := Event[string]{Timestamp: 5, CoreID: 1}
	b := Event[string]{Timestamp: 5, CoreID: 3}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))

	// Equal timestamp and core id compare equal.
	c := Event[string]{Timestamp: 5, CoreID: 1}
	assert.Equal(t, 0, a.Compare(c))
	assert.False(t, a.Before(c))
	assert.False(t, c.Before(a))
}

func TestEvent_OrderIsAntisymmetricAndTransitive(t *testing.T) {
	events := []Event[int]{
		{Timestamp: 1, CoreID: 2},
		{Timestamp: 1, CoreID: 0},
		{Timestamp: 3, CoreID: 1},
		{Timestamp: 2, CoreID: 3},
		{Timestamp: 2, CoreID: 3},
	}

	for _, a := range events {
		for _, b := range events {
			// Antisymmetry: at most one strict direction.
			if a.Before(b) {
				assert.False(t, b.Before(a))
			}
			for _, c := range events {
				// Transitivity.
				if a.Before(b) && b.Before(c) {
					assert.True(t, a.Before(c))
				}
			}
		}
	}
}

func TestSortEvents_Deterministic(t *testing.T) {
	base := []Event[int]{
		{Timestamp: 3, CoreID: 0, Payload: 30},
		{Timestamp: 1, CoreID: 1, Payload: 11},
		{Timestamp: 1, CoreID: 0, Payload: 10},
		{Timestamp: 2, CoreID: 2, Payload: 22},
	}

	// Any shuffle sorts to the same order.
	rng := rand.New(rand.NewSource(7))
	var want []int
	for trial := 0; trial < 20; trial++ {
		events := make([]Event[int], len(base))
		copy(events, base)
		rng.Shuffle(len(events), func(i, j int) {
			events[i], events[j] = events[j], events[i]
		})

		SortEvents(events)

		got := make([]int, len(events))
		for i, e := range events {
			got[i] = e.Payload
		}
		if trial == 0 {
			want = got
			assert.Equal(t, []int{10, 11, 22, 30}, got)
		} else {
			assert.Equal(t, want, got)
		}
	}
}
