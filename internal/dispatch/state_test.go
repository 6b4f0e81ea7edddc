package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	assert.True(t, stateReceived.canMove(stateResolving))
	assert.True(t, stateResolving.canMove(stateStaticStreaming))
	assert.True(t, stateResolving.canMove(stateDelegating))
	assert.True(t, stateDelegating.canMove(stateCompleted))
	assert.True(t, stateStaticStreaming.canMove(stateFailed))

	assert.False(t, stateReceived.canMove(stateDelegating))
	assert.False(t, stateDelegating.canMove(stateStaticStreaming))
	assert.False(t, stateCompleted.canMove(stateFailed))
	assert.False(t, stateFailed.canMove(stateCompleted))
}

func TestStateToPanicsOnInvalidTransition(t *testing.T) {
	assert.Panics(t, func() { stateCompleted.to(stateResolving) })
	assert.NotPanics(t, func() { stateReceived.to(stateFailed) })
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "static_streaming", stateStaticStreaming.String())
	assert.Equal(t, "state(42)", state(42).String())
}
