package session

import (
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/b2bua"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// Sdp is the minimal negotiated-media description the coordinator passes
// between the SIP and RTP layers: this bot only ever deals in PCMU/PCMA,
// so codec is carried as a name rather than a full SDP body.
type Sdp struct {
	IP          string
	Port        int
	PayloadType uint8
	Codec       string // e.g. "PCMU/8000"
}

// PCMUSdp builds the fixed PCMU/8000 description for ip:port.
func PCMUSdp(ip string, port int) Sdp {
	return Sdp{IP: ip, Port: port, PayloadType: 0, Codec: "PCMU/8000"}
}

// MediaConfig is this bot's local media endpoint.
type MediaConfig struct {
	LocalIP     string
	LocalPort   int
	PayloadType uint8
}

// SessionRefresher names which side is responsible for refreshing an
// RFC 4028 session timer.
type SessionRefresher int

const (
	RefresherUAC SessionRefresher = iota
	RefresherUAS
)

// SessionTimerInfo is the negotiated Session-Expires state for a dialog.
type SessionTimerInfo struct {
	Expires   time.Duration
	Refresher SessionRefresher
}

// ControlEvent is the marker interface for SessionControlIn variants: SIP
// signaling, timers, and app-originated instructions that mutate dialog
// or IVR state. Go has no enum-with-payload, so each Rust enum variant
// becomes its own struct implementing this marker, and the coordinator's
// event loop dispatches on a type switch.
type ControlEvent interface{ isControlEvent() }

type SipInvite struct {
	CallID       string
	From         string
	To           string
	Offer        Sdp
	SessionTimer *SessionTimerInfo
}

type SipReInvite struct {
	Offer        Sdp
	SessionTimer *SessionTimerInfo
}

type SipAck struct{}
type SipBye struct{}
type SipCancel struct{}

type SipTransactionTimeout struct{ CallID string }

type B2buaEstablished struct{ Leg *b2bua.BLeg }

type B2buaRinging struct{}
type B2buaEarlyMedia struct{}

type B2buaFailed struct {
	Reason string
	Status int // 0 if the failure did not come from a SIP error response (e.g. an unparsable answer SDP)
}

type BLegBye struct{}
type IvrTimeout struct{}
type TransferAnnounce struct{}

type AppBotAudioFile struct{ Path string }
type AppHangup struct{}
type AppTransferRequest struct{ Person string }

type SessionTimerFired struct{}
type SessionRefreshDue struct{}
type MediaTimerTick struct{}
type RingDurationElapsed struct{}
type SipSessionExpires struct{ Timer SessionTimerInfo }
type Abort struct{ Err error }

// MenuDigit is a DTMF digit observed while the IVR menu may be waiting
// for input; handleControl ignores it outside IvrMenuWaiting.
type MenuDigit struct{ Digit byte }

func (SipInvite) isControlEvent()             {}
func (SipReInvite) isControlEvent()            {}
func (SipAck) isControlEvent()                 {}
func (SipBye) isControlEvent()                 {}
func (SipCancel) isControlEvent()              {}
func (SipTransactionTimeout) isControlEvent()  {}
func (B2buaEstablished) isControlEvent()       {}
func (B2buaRinging) isControlEvent()           {}
func (B2buaEarlyMedia) isControlEvent()        {}
func (B2buaFailed) isControlEvent()            {}
func (BLegBye) isControlEvent()                {}
func (IvrTimeout) isControlEvent()             {}
func (TransferAnnounce) isControlEvent()       {}
func (AppBotAudioFile) isControlEvent()        {}
func (AppHangup) isControlEvent()              {}
func (AppTransferRequest) isControlEvent()     {}
func (SessionTimerFired) isControlEvent()      {}
func (SessionRefreshDue) isControlEvent()      {}
func (MediaTimerTick) isControlEvent()         {}
func (RingDurationElapsed) isControlEvent()    {}
func (SipSessionExpires) isControlEvent()      {}
func (Abort) isControlEvent()                  {}
func (MenuDigit) isControlEvent()              {}

// MediaEvent is the marker interface for high-frequency RTP/DTMF events,
// kept on a separate channel from ControlEvent so a burst of media
// traffic never starves signaling.
type MediaEvent interface{ isMediaEvent() }

type MediaRtpIn struct {
	CallID   string
	StreamID string
	Ts       uint32
	Payload  []byte
}

type Dtmf struct {
	CallID   string
	StreamID string
	Digit    byte
}

type BLegRtp struct {
	CallID   string
	StreamID string
	Payload  []byte
}

func (MediaRtpIn) isMediaEvent() {}
func (Dtmf) isMediaEvent()       {}
func (BLegRtp) isMediaEvent()    {}

// OutEvent is the coordinator's outbound instruction to the SIP
// transaction layer, the RTP stream table, or the app/AI ports.
type OutEvent interface{ isOutEvent() }

type SipSend100 struct{}
type SipSend180 struct{}
type SipSend183 struct{ Answer Sdp }
type SipSend200 struct{ Answer Sdp }
type SipSendUpdate struct{ Expires time.Duration }
type SipSendError struct {
	Code   int
	Reason string
}
type SipSendBye struct{}
type SipSendBye200 struct{}

type RtpStartTx struct {
	DstIP   string
	DstPort int
	PT      uint8
}
type RtpStopTx struct{}

type AppRequestTts struct{ Text string }
type AppSessionTimeout struct{}
type AppSendBotAudioFile struct{ Path string }
type AppRequestHangup struct{}
type AppRequestTransfer struct{ Person string }

type Metrics struct {
	Name  string
	Value int64
}

// SendOutboundInvite asks the transport layer to send a freshly built
// B-leg INVITE (see pkg/b2bua.NewOutboundInvite); the coordinator builds
// the request but never owns a socket itself.
type SendOutboundInvite struct{ Request *sipmsg.Request }

func (SipSend100) isOutEvent()          {}
func (SipSend180) isOutEvent()          {}
func (SipSend183) isOutEvent()          {}
func (SipSend200) isOutEvent()          {}
func (SipSendUpdate) isOutEvent()       {}
func (SipSendError) isOutEvent()        {}
func (SipSendBye) isOutEvent()          {}
func (SipSendBye200) isOutEvent()       {}
func (RtpStartTx) isOutEvent()          {}
func (RtpStopTx) isOutEvent()           {}
func (AppRequestTts) isOutEvent()       {}
func (AppSessionTimeout) isOutEvent()   {}
func (AppSendBotAudioFile) isOutEvent() {}
func (AppRequestHangup) isOutEvent()    {}
func (AppRequestTransfer) isOutEvent()  {}
func (Metrics) isOutEvent()             {}
func (SendOutboundInvite) isOutEvent()  {}
