package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

func TestNonInviteTransactionStartsTrying(t *testing.T) {
	nist := NewNonInviteServerTransaction(sipmsg.NewRequest("BYE", mustURI(t)), "127.0.0.1:5060", &fakeSender{}, testTimers())
	assert.Equal(t, NonInviteTrying, nist.State())
}

func TestNonInviteTransactionFinalResponseGoesCompletedThenTerminated(t *testing.T) {
	sender := &fakeSender{}
	nist := NewNonInviteServerTransaction(sipmsg.NewRequest("BYE", mustURI(t)), "127.0.0.1:5060", sender, testTimers())

	require.NoError(t, nist.SendResponse(sipmsg.NewResponse(200, "")))
	assert.Equal(t, NonInviteCompleted, nist.State())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, NonInviteTerminated, nist.State())
}

func TestNonInviteTransactionRetransmitAbsorbsDuplicateRequest(t *testing.T) {
	sender := &fakeSender{}
	nist := NewNonInviteServerTransaction(sipmsg.NewRequest("BYE", mustURI(t)), "127.0.0.1:5060", sender, testTimers())

	require.NoError(t, nist.SendResponse(sipmsg.NewResponse(200, "")))
	require.NoError(t, nist.HandleRetransmittedRequest())

	assert.Equal(t, 2, sender.count())
}
