package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotpath/internal/guard"
	"github.com/roach88/hotpath/internal/kernel"
	"github.com/roach88/hotpath/internal/pattern"
)

func TestCompileGuardTree(t *testing.T) {
	upper := 100.0
	spec := GuardSpec{
		Kind: "and",
		Guards: []GuardSpec{
			{Kind: "predicate", Op: "in_range", Index: 1, Value: 10, Upper: &upper},
			{Kind: "not", Guard: &GuardSpec{Kind: "state", Flags: []string{"draining"}}},
			{Kind: "or", Guards: []GuardSpec{
				{Kind: "resource", Resource: "cpu", Threshold: 50},
				{Kind: "resource", Resource: "queue_depth", Threshold: 5},
			}},
		},
	}

	g, err := CompileGuard(spec)
	require.NoError(t, err)

	and, ok := g.(guard.And)
	require.True(t, ok)
	require.Len(t, and.Guards, 3)

	pred, ok := and.Guards[0].(guard.Predicate)
	require.True(t, ok)
	assert.Equal(t, guard.OpInRange, pred.Op)
	assert.Equal(t, 100.0, pred.Upper)

	not, ok := and.Guards[1].(guard.Not)
	require.True(t, ok)
	state, ok := not.Guard.(guard.State)
	require.True(t, ok)
	assert.Equal(t, kernel.FlagDraining, state.Required)
}

func TestCompileGuardErrors(t *testing.T) {
	cases := []struct {
		name string
		spec GuardSpec
	}{
		{"unknown kind", GuardSpec{Kind: "xor"}},
		{"unknown op", GuardSpec{Kind: "predicate", Op: "near"}},
		{"in_range without upper", GuardSpec{Kind: "predicate", Op: "in_range"}},
		{"unknown resource", GuardSpec{Kind: "resource", Resource: "gpu"}},
		{"unknown flag", GuardSpec{Kind: "state", Flags: []string{"turbo"}}},
		{"empty and", GuardSpec{Kind: "and"}},
		{"not without child", GuardSpec{Kind: "not"}},
		{"nested error", GuardSpec{Kind: "or", Guards: []GuardSpec{{Kind: "bogus"}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileGuard(tc.spec)
			assert.Error(t, err)
		})
	}
}

func TestCompileContext(t *testing.T) {
	ctx, err := CompileContext("t-1", ContextSpec{
		Observations: []float64{1, 2, 3},
		CPU:          80,
		QueueDepth:   4,
		Flags:        []string{"initialized", "warm"},
	})
	require.NoError(t, err)

	assert.Equal(t, "t-1", ctx.TaskID)
	assert.WithinDuration(t, time.Now(), ctx.Timestamp, time.Minute)
	assert.Equal(t, 3, ctx.Observations.Count())

	v, ok := ctx.Observations.At(2)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	cpu, ok := ctx.Resources.Available(kernel.ResourceCPU)
	require.True(t, ok)
	assert.Equal(t, 80.0, cpu)

	assert.True(t, ctx.StateFlags.Has(kernel.FlagInitialized|kernel.FlagWarm))
	assert.False(t, ctx.StateFlags.Has(kernel.FlagDegraded))
}

func TestCompileContextTooManyObservations(t *testing.T) {
	obs := make([]float64, kernel.MaxObservations+1)
	_, err := CompileContext("t", ContextSpec{Observations: obs})
	assert.Error(t, err)
}

func TestCompileTask(t *testing.T) {
	task, err := CompileTask(TaskSpec{
		ID:      "t-1",
		Pattern: "deferred_choice",
		Handler: "echo",
	})
	require.NoError(t, err)
	assert.Equal(t, pattern.DeferredChoice, task.Pattern)
	require.NotNil(t, task.Handler)

	// Defaulted handler.
	task, err = CompileTask(TaskSpec{Pattern: "sequence"})
	require.NoError(t, err)
	require.NotNil(t, task.Handler)

	_, err = CompileTask(TaskSpec{Pattern: "quantum_join"})
	assert.Error(t, err)

	_, err = CompileTask(TaskSpec{Pattern: "sequence", Handler: "explode"})
	assert.Error(t, err)
}
