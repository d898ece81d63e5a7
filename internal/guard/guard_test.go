package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/hotpath/internal/kernel"
)

func testContext() *kernel.ExecutionContext {
	ctx := &kernel.ExecutionContext{
		TaskID:     "task-1",
		Resources:  kernel.NewResourceSnapshot(80, 60, 40, 20),
		StateFlags: kernel.FlagInitialized | kernel.FlagWarm,
	}
	ctx.Observations.Push(42)
	ctx.Observations.Push(7)
	return ctx
}

// mustNotEvaluate is a probe that fails the test if the evaluator reaches it.
func mustNotEvaluate(t *testing.T) Guard {
	t.Helper()
	return probe{fn: func(*kernel.ExecutionContext) bool {
		t.Fatal("guard past the short-circuit point was evaluated")
		return false
	}}
}

func TestEvaluate_PredicateOps(t *testing.T) {
	ctx := testContext()

	assert.True(t, Evaluate(Predicate{Op: OpEqual, Index: 0, Value: 42}, ctx))
	assert.False(t, Evaluate(Predicate{Op: OpEqual, Index: 0, Value: 41}, ctx))

	assert.True(t, Evaluate(Predicate{Op: OpNotEqual, Index: 1, Value: 8}, ctx))
	assert.False(t, Evaluate(Predicate{Op: OpNotEqual, Index: 1, Value: 7}, ctx))

	assert.True(t, Evaluate(Predicate{Op: OpGreaterThan, Index: 0, Value: 40}, ctx))
	assert.False(t, Evaluate(Predicate{Op: OpGreaterThan, Index: 0, Value: 42}, ctx))

	assert.True(t, Evaluate(Predicate{Op: OpInRange, Index: 0, Value: 40, Upper: 50}, ctx))
	assert.True(t, Evaluate(Predicate{Op: OpInRange, Index: 0, Value: 42, Upper: 42}, ctx))
	assert.False(t, Evaluate(Predicate{Op: OpInRange, Index: 0, Value: 43, Upper: 50}, ctx))
}

func TestEvaluate_FailClosed(t *testing.T) {
	ctx := testContext()

	// Out-of-range observation index.
	assert.False(t, Evaluate(Predicate{Op: OpEqual, Index: 9, Value: 0}, ctx))
	assert.False(t, Evaluate(Predicate{Op: OpEqual, Index: -1, Value: 0}, ctx))

	// Out-of-range resource type.
	assert.False(t, Evaluate(Resource{Type: kernel.NumResourceTypes, Threshold: 0}, ctx))

	// Unknown predicate op.
	assert.False(t, Evaluate(Predicate{Op: PredicateOp(200), Index: 0, Value: 42}, ctx))

	// Nil guard, nil context, nil Not operand.
	assert.False(t, Evaluate(nil, ctx))
	assert.False(t, Evaluate(State{Required: kernel.FlagWarm}, nil))
	assert.False(t, Evaluate(Not{}, ctx))
}

func TestEvaluate_ResourceThreshold(t *testing.T) {
	ctx := testContext()

	assert.True(t, Evaluate(Resource{Type: kernel.ResourceCPU, Threshold: 50}, ctx))
	assert.True(t, Evaluate(Resource{Type: kernel.ResourceCPU, Threshold: 80}, ctx))
	assert.False(t, Evaluate(Resource{Type: kernel.ResourceCPU, Threshold: 81}, ctx))
	assert.False(t, Evaluate(Resource{Type: kernel.ResourceQueueDepth, Threshold: 50}, ctx))
}

func TestEvaluate_StateFlags(t *testing.T) {
	ctx := testContext()

	assert.True(t, Evaluate(State{Required: kernel.FlagInitialized}, ctx))
	assert.True(t, Evaluate(State{Required: kernel.FlagInitialized | kernel.FlagWarm}, ctx))
	assert.False(t, Evaluate(State{Required: kernel.FlagDegraded}, ctx))
	assert.False(t, Evaluate(State{Required: kernel.FlagWarm | kernel.FlagDegraded}, ctx))
}

func TestEvaluate_AndShortCircuit(t *testing.T) {
	ctx := testContext()

	// The probe after the failing operand must never run.
	g := And{Guards: []Guard{
		Predicate{Op: OpEqual, Index: 0, Value: 0}, // false
		mustNotEvaluate(t),
	}}
	assert.False(t, Evaluate(g, ctx))
}

func TestEvaluate_OrShortCircuit(t *testing.T) {
	ctx := testContext()

	g := Or{Guards: []Guard{
		Predicate{Op: OpEqual, Index: 0, Value: 42}, // true
		mustNotEvaluate(t),
	}}
	assert.True(t, Evaluate(g, ctx))
}

func TestEvaluate_EmptyCombinators(t *testing.T) {
	ctx := testContext()

	assert.True(t, Evaluate(And{}, ctx), "empty And is vacuously true")
	assert.False(t, Evaluate(Or{}, ctx), "empty Or is vacuously false")
}

func TestEvaluate_Not(t *testing.T) {
	ctx := testContext()

	assert.False(t, Evaluate(Not{Guard: State{Required: kernel.FlagWarm}}, ctx))
	assert.True(t, Evaluate(Not{Guard: State{Required: kernel.FlagDegraded}}, ctx))
}

func TestEvaluate_FallbackChain(t *testing.T) {
	ctx := testContext()

	// Fallback chain: primary branch fails on resources, fallback branch
	// passes on state. The Or must try branches in order.
	g := Or{Guards: []Guard{
		And{Guards: []Guard{
			Resource{Type: kernel.ResourceQueueDepth, Threshold: 90}, // false
			mustNotEvaluate(t),
		}},
		State{Required: kernel.FlagInitialized},
	}}
	assert.True(t, Evaluate(g, ctx))
}

func TestEvaluate_CPUAndObservationScenario(t *testing.T) {
	// observations[0]=42 and cpu_available=80 against
	// And(Predicate(Equal, 0, 42), Resource(CPU, 50)).
	ctx := &kernel.ExecutionContext{
		Resources: kernel.NewResourceSnapshot(80, 0, 0, 0),
	}
	ctx.Observations.Push(42)

	g := And{Guards: []Guard{
		Predicate{Op: OpEqual, Index: 0, Value: 42},
		Resource{Type: kernel.ResourceCPU, Threshold: 50},
	}}
	assert.True(t, Evaluate(g, ctx))
}

func TestEvaluate_Deterministic(t *testing.T) {
	ctx := testContext()
	g := And{Guards: []Guard{
		Or{Guards: []Guard{
			Predicate{Op: OpGreaterThan, Index: 0, Value: 100},
			State{Required: kernel.FlagWarm},
		}},
		Not{Guard: Resource{Type: kernel.ResourceIO, Threshold: 99}},
	}}

	first := Evaluate(g, ctx)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Evaluate(g, ctx))
	}
}

func TestKindMask(t *testing.T) {
	assert.Equal(t, KindPredicate, KindMask(Predicate{}))
	assert.Equal(t, KindResource, KindMask(Resource{}))
	assert.Equal(t, KindState, KindMask(State{}))

	g := And{Guards: []Guard{
		Predicate{},
		Not{Guard: Resource{}},
	}}
	assert.Equal(t, KindCompound|KindPredicate|KindResource, KindMask(g))
}

func TestPredicateOp_StringRoundTrip(t *testing.T) {
	for _, op := range []PredicateOp{OpEqual, OpNotEqual, OpGreaterThan, OpInRange} {
		parsed, ok := PredicateOpFromString(op.String())
		assert.True(t, ok)
		assert.Equal(t, op, parsed)
	}

	_, ok := PredicateOpFromString("matches")
	assert.False(t, ok)
}
