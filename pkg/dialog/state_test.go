package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineHappyPath(t *testing.T) {
	sm := NewStateMachine()
	ctx := context.Background()

	assert.Equal(t, StateIdle, sm.State())
	require.NoError(t, sm.Fire(ctx, EventInvite))
	assert.Equal(t, StateEarly, sm.State())
	require.NoError(t, sm.Fire(ctx, EventAck))
	assert.Equal(t, StateEstablished, sm.State())
	require.NoError(t, sm.Fire(ctx, EventBye))
	assert.Equal(t, StateTerminated, sm.State())
}

func TestStateMachineRejectsAckFromIdle(t *testing.T) {
	sm := NewStateMachine()
	err := sm.Fire(context.Background(), EventAck)
	assert.Error(t, err)
	assert.Equal(t, StateIdle, sm.State())
}

func TestStateMachineAbortFromAnyState(t *testing.T) {
	sm := NewStateMachine()
	ctx := context.Background()
	require.NoError(t, sm.Fire(ctx, EventInvite))
	require.NoError(t, sm.Fire(ctx, EventAbort))
	assert.Equal(t, StateTerminated, sm.State())
}

func TestStateMachineCancelFromEarly(t *testing.T) {
	sm := NewStateMachine()
	ctx := context.Background()
	require.NoError(t, sm.Fire(ctx, EventInvite))
	require.NoError(t, sm.Fire(ctx, EventCancel))
	assert.Equal(t, StateTerminated, sm.State())
}
