package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineHappyPath(t *testing.T) {
	t.Parallel()
	m := NewStateMachine()
	require.Equal(t, StateOff, m.Current())

	assert.True(t, m.StartLoad())
	assert.Equal(t, StateLoading, m.Current())

	assert.True(t, m.LoadSucceeded())
	assert.Equal(t, StateReady, m.Current())

	assert.True(t, m.ToggleOn())
	assert.Equal(t, StateActive, m.Current())

	assert.True(t, m.ToggleOff())
	assert.Equal(t, StateReady, m.Current())
}

func TestStateMachineIllegalTransitionsAreNoOps(t *testing.T) {
	t.Parallel()
	m := NewStateMachine()

	// Nothing is loaded yet.
	assert.False(t, m.ToggleOn())
	assert.False(t, m.ToggleOff())
	assert.False(t, m.LoadSucceeded())
	assert.False(t, m.LoadFailed("boom"))
	assert.Equal(t, StateOff, m.Current())

	require.True(t, m.StartLoad())

	// While loading, toggles and a second load are rejected.
	assert.False(t, m.StartLoad())
	assert.False(t, m.ToggleOn())
	assert.False(t, m.ToggleOff())
	assert.Equal(t, StateLoading, m.Current())
}

func TestStateMachineNeverReturnsToOff(t *testing.T) {
	t.Parallel()
	m := NewStateMachine()
	require.True(t, m.StartLoad())
	require.True(t, m.LoadSucceeded())

	// There is no transition out of READY except ACTIVE.
	assert.False(t, m.StartLoad())
	assert.False(t, m.LoadSucceeded())
	assert.False(t, m.LoadFailed("boom"))
	assert.Equal(t, StateReady, m.Current())
}

func TestStateMachineErrorAndRetry(t *testing.T) {
	t.Parallel()
	m := NewStateMachine()
	require.True(t, m.StartLoad())
	require.True(t, m.LoadFailed("model file not found"))

	assert.Equal(t, StateError, m.Current())
	assert.Equal(t, "model file not found", m.Reason())

	// Toggles stay rejected in ERROR; retry is allowed.
	assert.False(t, m.ToggleOn())
	require.True(t, m.StartLoad())
	assert.Equal(t, StateLoading, m.Current())
	assert.Empty(t, m.Reason())

	require.True(t, m.LoadSucceeded())
	assert.Equal(t, StateReady, m.Current())
}
