package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/dialog"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/ports/fake"
)

func testConfig() Config {
	return Config{
		LocalIP:                  "10.0.0.5",
		LocalRTPPort:             20000,
		Vad:                      DefaultVadConfig(),
		IvrTimeout:               50 * time.Millisecond,
		TransferAnnounceInterval: 10 * time.Millisecond,
		TransferTargets:          map[string]string{"operator": "+819000000000"},
	}
}

func newTestCoordinator() *Coordinator {
	return NewCoordinator("call-1", testConfig(), fake.NewAI(), fake.NewStorage(1))
}

func drainOut(c *Coordinator) []OutEvent {
	var out []OutEvent
	for {
		select {
		case ev := <-c.Out:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestInviteAckReachesEstablishedAndPlaysMenu(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()

	c.handleControl(ctx, SipInvite{CallID: "call-1"})
	assert.Equal(t, dialog.StateEarly, c.State())

	c.handleControl(ctx, SipAck{})
	assert.Equal(t, dialog.StateEstablished, c.State())

	out := drainOut(c)
	require.NotEmpty(t, out)
	_, ok := out[len(out)-1].(AppRequestTts)
	assert.True(t, ok)
}

func TestMenuDigitOneEntersVoicebotIntro(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()
	c.handleControl(ctx, SipInvite{CallID: "call-1"})
	c.handleControl(ctx, SipAck{})
	drainOut(c)

	c.handleControl(ctx, MenuDigit{Digit: '1'})
	assert.Equal(t, dialog.IvrVoicebotIntroPlaying, c.IvrState())
}

func TestMenuDigitOutsideMenuWaitingIsIgnored(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()
	c.handleControl(ctx, SipInvite{CallID: "call-1"})
	c.handleControl(ctx, SipAck{})
	c.handleControl(ctx, MenuDigit{Digit: '1'})
	require.Equal(t, dialog.IvrVoicebotIntroPlaying, c.IvrState())

	c.handleControl(ctx, MenuDigit{Digit: '1'})
	assert.Equal(t, dialog.IvrVoicebotIntroPlaying, c.IvrState())
}

func TestMenuDigitThreeStartsTransferAndEmitsInvite(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()
	c.handleControl(ctx, SipInvite{CallID: "call-1"})
	c.handleControl(ctx, SipAck{})
	drainOut(c)

	c.handleControl(ctx, MenuDigit{Digit: '3'})
	assert.Equal(t, dialog.IvrTransferring, c.IvrState())

	out := drainOut(c)
	found := false
	for _, ev := range out {
		if _, ok := ev.(SendOutboundInvite); ok {
			found = true
		}
	}
	assert.True(t, found, "expected a SendOutboundInvite among emitted events")
}

func TestByeTerminatesDialog(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()
	c.handleControl(ctx, SipInvite{CallID: "call-1"})
	c.handleControl(ctx, SipAck{})

	c.handleControl(ctx, SipBye{})
	assert.Equal(t, dialog.StateTerminated, c.State())
}

func TestIvrTimeoutRequestsHangupWhileMenuWaiting(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()
	c.handleControl(ctx, SipInvite{CallID: "call-1"})
	c.handleControl(ctx, SipAck{})
	drainOut(c)

	c.handleControl(ctx, IvrTimeout{})
	out := drainOut(c)
	require.NotEmpty(t, out)
	_, ok := out[len(out)-1].(AppRequestHangup)
	assert.True(t, ok)
}

func TestUnresolvableTransferTargetDoesNotChangeIvrState(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()
	c.handleControl(ctx, SipInvite{CallID: "call-1"})
	c.handleControl(ctx, SipAck{})
	drainOut(c)

	c.handleControl(ctx, AppTransferRequest{Person: "nobody"})
	assert.Equal(t, dialog.IvrMenuWaiting, c.IvrState())
}
