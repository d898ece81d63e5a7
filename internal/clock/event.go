package clock

import "sort"

// Event stamps a payload with a logical timestamp and the id of the worker
// core that produced it.
//
// Ordering is lexicographic over (Timestamp, CoreID). Events with equal
// timestamps are legitimately concurrent at the application level; the core
// id tiebreak resolves them to one deterministic global order, which
// downstream replay and counterfactual re-execution depend on.
type Event[T any] struct {
	Timestamp Timestamp
	CoreID    uint8
	Payload   T
}

// Compare returns -1, 0, or +1 for the (Timestamp, CoreID) order.
func (e Event[T]) Compare(other Event[T]) int {
	if e.Timestamp != other.Timestamp {
		if e.Timestamp < other.Timestamp {
			return -1
		}
		return 1
	}
	if e.CoreID != other.CoreID {
		if e.CoreID < other.CoreID {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether e orders strictly before other.
func (e Event[T]) Before(other Event[T]) bool {
	return e.Compare(other) < 0
}

// SortEvents sorts events in place into the deterministic global order.
// The sort is stable so events comparing equal keep their relative order.
func SortEvents[T any](events []Event[T]) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
}
