package b2bua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

func newByeFor(callID string) *sipmsg.Request {
	uri := &sipmsg.URI{Scheme: "sip", User: "b", Host: "10.0.0.1"}
	req := sipmsg.NewRequest("BYE", uri)
	req.Headers.Add("Call-ID", callID)
	return req
}

func TestBridgeRegisterAndDispatch(t *testing.T) {
	b := NewBridge()
	ch, cleanup := b.Register("call-1", 4)
	defer cleanup()

	require.True(t, b.Owns("call-1"))

	req := newByeFor("call-1")
	require.NoError(t, b.Dispatch(req))

	select {
	case got := <-ch:
		assert.Same(t, req, got)
	default:
		t.Fatal("expected dispatched message on registered channel")
	}
}

func TestBridgeDispatchUnknownCallIDErrors(t *testing.T) {
	b := NewBridge()
	err := b.Dispatch(newByeFor("no-such-call"))
	assert.ErrorIs(t, err, notOwnedError("no-such-call"))
}

func TestBridgeCleanupUnregistersAndCloses(t *testing.T) {
	b := NewBridge()
	ch, cleanup := b.Register("call-2", 1)
	cleanup()

	assert.False(t, b.Owns("call-2"))
	_, open := <-ch
	assert.False(t, open)
}

func TestBridgeDispatchDropsOnFullChannel(t *testing.T) {
	b := NewBridge()
	ch, cleanup := b.Register("call-3", 1)
	defer cleanup()

	first := newByeFor("call-3")
	second := newByeFor("call-3")
	require.NoError(t, b.Dispatch(first))
	require.NoError(t, b.Dispatch(second)) // dropped, channel already full

	got := <-ch
	assert.Same(t, first, got)
	select {
	case <-ch:
		t.Fatal("expected no second message: full channel should drop latest")
	default:
	}
}
