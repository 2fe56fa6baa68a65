package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionAllowedPaths(t *testing.T) {
	assert.True(t, CanTransition(StateCreated, StateStarting))
	assert.True(t, CanTransition(StateStarting, StateRunning))
	assert.True(t, CanTransition(StateRunning, StateRestarting))
	assert.True(t, CanTransition(StateStopping, StateStopped))
	assert.True(t, CanTransition(StateStopped, StateStarting))
}

func TestCanTransitionRejectsIllegalPaths(t *testing.T) {
	assert.False(t, CanTransition(StateCreated, StateRunning))
	assert.False(t, CanTransition(StateTerminated, StateRunning))
	assert.False(t, CanTransition(StateStopped, StateRunning))
}

func TestTerminatedIsAbsorbing(t *testing.T) {
	assert.True(t, StateTerminated.IsTerminal())
	for to := StateCreated; to <= StateTerminated; to++ {
		assert.False(t, CanTransition(StateTerminated, to), "terminated -> %s", to)
	}
}

func TestAcceptsUserMessages(t *testing.T) {
	assert.True(t, StateRunning.AcceptsUserMessages())
	assert.True(t, StateStarting.AcceptsUserMessages())
	assert.False(t, StateStopped.AcceptsUserMessages())
	assert.False(t, StateTerminated.AcceptsUserMessages())
	assert.False(t, StateFailed.AcceptsUserMessages())
}
