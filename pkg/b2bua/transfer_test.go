package b2bua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboundInviteBuildsFreshDialog(t *testing.T) {
	req, leg := NewOutboundInvite("+819011112222", "10.0.0.5", 20000, "rustbot")

	assert.Equal(t, "INVITE", req.Method)
	require.NotEmpty(t, req.Headers.Get("Call-ID"))
	assert.Equal(t, req.Headers.Get("Call-ID"), leg.CallID)
	assert.Equal(t, req.Headers.Get("Call-ID"), leg.RTPKey)
	assert.Equal(t, uint32(1), leg.CSeq)
	assert.Contains(t, req.Headers.Get("Via"), "branch=z9hG4bK")
	assert.Contains(t, req.Headers.Get("From"), leg.FromTag)
	assert.Contains(t, string(req.Body), "m=audio 20000 RTP/AVP 0")
}

func TestNewOutboundInviteCallIDsAreUnique(t *testing.T) {
	_, leg1 := NewOutboundInvite("+819011112222", "10.0.0.5", 20000, "rustbot")
	_, leg2 := NewOutboundInvite("+819011112222", "10.0.0.5", 20000, "rustbot")
	assert.NotEqual(t, leg1.CallID, leg2.CallID)
}

func TestNewByeBumpsCSeq(t *testing.T) {
	_, leg := NewOutboundInvite("+819011112222", "10.0.0.5", 20000, "rustbot")
	bye := NewBye(leg, "+819011112222", "10.0.0.5")

	assert.Equal(t, "BYE", bye.Method)
	assert.Equal(t, uint32(2), leg.CSeq)
	assert.Equal(t, "2 BYE", bye.Headers.Get("CSeq"))
	assert.Equal(t, leg.CallID, bye.Headers.Get("Call-ID"))
}
