package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotpath/internal/kernel"
)

func TestNewContextDefaults(t *testing.T) {
	ctx := NewContext("t-1")
	assert.Equal(t, "t-1", ctx.TaskID)
	assert.Equal(t, FixedTime, ctx.Timestamp)
	assert.Zero(t, ctx.Observations.Count())
}

func TestNewContextOptions(t *testing.T) {
	ctx := NewContext("t-2",
		WithObservations(1, 2),
		WithResources(80, 50, 10, 3),
		WithFlags(kernel.FlagInitialized|kernel.FlagWarm),
	)

	v, ok := ctx.Observations.At(1)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	cpu, ok := ctx.Resources.Available(kernel.ResourceCPU)
	require.True(t, ok)
	assert.Equal(t, 80.0, cpu)

	assert.True(t, ctx.StateFlags.Has(kernel.FlagWarm))
}

func TestWithObservationsOverflowPanics(t *testing.T) {
	values := make([]float64, kernel.MaxObservations+1)
	assert.Panics(t, func() {
		NewContext("t-3", WithObservations(values...))
	})
}
