package b2bua

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sdpneg"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// BLeg is the coordinator-side record of a transfer's outbound leg: enough
// to forward RTP to it, cascade a BYE, and track in-dialog sequencing.
type BLeg struct {
	CallID     string
	RemoteAddr string // B-leg peer's RTP destination, once 200 OK is seen
	RTPKey     string // stream manager key for the B-leg's RTP stream
	CSeq       uint32
	FromTag    string
}

// NewOutboundInvite builds a fresh UAC-role INVITE for the B-leg: new
// branch and Call-ID, SDP offering localIP:localRTPPort PCMU, From tag
// freshly generated so 200 OK/ACK correlate correctly.
func NewOutboundInvite(targetURI, localIP string, localRTPPort int, fromDisplay string) (*sipmsg.Request, *BLeg) {
	callID := uuid.NewString()
	branch := "z9hG4bK" + uuid.NewString()
	fromTag := uuid.NewString()

	uri, err := sipmsg.ParseURI(targetURI)
	if err != nil {
		// targetURI comes from Directory.Resolve, which only ever returns
		// E.164 numbers; build a sip: URI out of it instead of failing.
		uri = &sipmsg.URI{Scheme: "sip", User: targetURI, Host: localIP}
	}

	req := sipmsg.NewRequest("INVITE", uri)
	req.Headers.Add("Via", fmt.Sprintf("SIP/2.0/UDP %s;branch=%s", localIP, branch))
	req.Headers.Add("From", sipmsg.BuildNameAddr(sipmsg.NameAddr{
		DisplayName: fromDisplay,
		URI:         &sipmsg.URI{Scheme: "sip", User: "rustbot", Host: localIP},
		Params:      map[string]string{"tag": fromTag},
	}))
	req.Headers.Add("To", sipmsg.BuildNameAddr(sipmsg.NameAddr{URI: uri}))
	req.Headers.Add("Call-ID", callID)
	req.Headers.Add("CSeq", "1 INVITE")
	req.Headers.Add("Contact", fmt.Sprintf("<sip:rustbot@%s>", localIP))
	req.Headers.Add("Content-Type", "application/sdp")
	req.Body = sdpneg.BuildOffer(localIP, localRTPPort, g711.CodecPCMU)

	return req, &BLeg{CallID: callID, RTPKey: callID, CSeq: 1, FromTag: fromTag}
}

// NewBye builds an in-dialog BYE for the B-leg, bumping CSeq.
func NewBye(leg *BLeg, targetURI, localIP string) *sipmsg.Request {
	leg.CSeq++
	uri, err := sipmsg.ParseURI(targetURI)
	if err != nil {
		uri = &sipmsg.URI{Scheme: "sip", User: targetURI, Host: localIP}
	}
	req := sipmsg.NewRequest("BYE", uri)
	req.Headers.Add("Via", fmt.Sprintf("SIP/2.0/UDP %s;branch=z9hG4bK%s", localIP, uuid.NewString()))
	req.Headers.Add("From", fmt.Sprintf("<sip:rustbot@%s>;tag=%s", localIP, leg.FromTag))
	req.Headers.Add("To", fmt.Sprintf("<%s>", uri.String()))
	req.Headers.Add("Call-ID", leg.CallID)
	req.Headers.Add("CSeq", fmt.Sprintf("%d BYE", leg.CSeq))
	return req
}
