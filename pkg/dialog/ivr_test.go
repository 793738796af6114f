package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIvrMachineEnterVoicebotThenIntroFinished(t *testing.T) {
	m := NewIvrMachine()
	ctx := context.Background()

	assert.Equal(t, IvrMenuWaiting, m.State())
	require.NoError(t, m.Fire(ctx, IvrEventEnterVoicebot))
	assert.Equal(t, IvrVoicebotIntroPlaying, m.State())
	require.NoError(t, m.Fire(ctx, IvrEventIntroFinished))
	assert.Equal(t, IvrVoicebotMode, m.State())
}

func TestIvrMachineOnlyEnterVoicebotLeavesMenuWaiting(t *testing.T) {
	m := NewIvrMachine()
	err := m.Fire(context.Background(), IvrEventIntroFinished)
	assert.Error(t, err)
	assert.Equal(t, IvrMenuWaiting, m.State())
}

func TestIvrMachineTransferBridging(t *testing.T) {
	m := NewIvrMachine()
	ctx := context.Background()
	require.NoError(t, m.Fire(ctx, IvrEventEnterVoicebot))
	require.NoError(t, m.Fire(ctx, IvrEventIntroFinished))
	require.NoError(t, m.Fire(ctx, IvrEventEnterTransfer))
	assert.Equal(t, IvrTransferring, m.State())
	require.NoError(t, m.Fire(ctx, IvrEventTransferBridged))
	assert.Equal(t, IvrB2buaMode, m.State())
}

func TestIvrMachineTransferFailureReturnsToVoicebotMode(t *testing.T) {
	m := NewIvrMachine()
	ctx := context.Background()
	require.NoError(t, m.Fire(ctx, IvrEventEnterVoicebot))
	require.NoError(t, m.Fire(ctx, IvrEventIntroFinished))
	require.NoError(t, m.Fire(ctx, IvrEventEnterTransfer))
	require.NoError(t, m.Fire(ctx, IvrEventTransferFailed))
	assert.Equal(t, IvrVoicebotMode, m.State())
}
