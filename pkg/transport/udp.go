// Package transport owns the two UDP sockets a voicebotd process talks
// through: one for SIP signaling, one for RTP media. It does no SIP or
// RTP decoding itself beyond what's needed to route a packet to the
// right destination — parsing and state live in pkg/sipmsg, pkg/rtpcore,
// pkg/dialog and pkg/session.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/dialog"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/rtpcore"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/session"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// recvBufferSize is the per-packet receive buffer; 2048 bytes comfortably
// covers both a SIP INVITE-with-SDP and an RTP/RTCP packet.
const recvBufferSize = 2048

// sendQueueDepth bounds the outbound SIP pump; a control-plane burst that
// outruns it blocks the sender rather than drops, since dropping a SIP
// response is a protocol violation, not a missed audio frame.
const sendQueueDepth = 512

// sendRequest is one outbound SIP datagram.
type sendRequest struct {
	dst     *net.UDPAddr
	payload []byte
}

// RTPPortMap tracks which Call-ID owns the local RTP socket's traffic for
// a remote endpoint. A softphone B2BUA on a single RTP socket disambiguates
// inbound media purely by remote source address, not by local port, since
// every stream shares one bound port.
type RTPPortMap struct {
	mu       sync.Mutex
	calls    map[string]string // remote addr -> Call-ID
	forwards map[string]string // remote addr -> stream-table key to relay straight through
}

// NewRTPPortMap returns an empty map.
func NewRTPPortMap() *RTPPortMap {
	return &RTPPortMap{calls: make(map[string]string), forwards: make(map[string]string)}
}

// Bind associates remoteAddr with callID.
func (m *RTPPortMap) Bind(remoteAddr, callID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[remoteAddr] = callID
}

// Unbind removes remoteAddr's association, if any.
func (m *RTPPortMap) Unbind(remoteAddr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.calls, remoteAddr)
}

// Lookup returns the Call-ID bound to remoteAddr, if any.
func (m *RTPPortMap) Lookup(remoteAddr string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.calls[remoteAddr]
	return id, ok
}

// BindForward associates remoteAddr with a stream-table key whose outbound
// stream should receive this address's RTP payloads verbatim, bypassing
// the coordinator entirely. The B2BUA bridge uses this for B-leg audio:
// once both legs are established, a peer's RTP is relayed straight to the
// other leg's transmit stream rather than routed through MediaIn.
func (m *RTPPortMap) BindForward(remoteAddr, streamKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwards[remoteAddr] = streamKey
}

// UnbindForward removes remoteAddr's forwarding association, if any.
func (m *RTPPortMap) UnbindForward(remoteAddr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.forwards, remoteAddr)
}

// LookupForward returns the stream-table key remoteAddr's RTP should be
// relayed to, if any.
func (m *RTPPortMap) LookupForward(remoteAddr string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.forwards[remoteAddr]
	return key, ok
}

// RTPForwarder relays a raw mu-law payload straight onto an already-open
// outbound stream, identified by the stream table's key. Implemented by
// pkg/stream.Manager.
type RTPForwarder interface {
	SendPayload(key string, payload []byte)
}

// Transport owns the SIP and RTP UDP sockets and their receive loops.
type Transport struct {
	sipConn *net.UDPConn
	rtpConn *net.UDPConn

	router    *dialog.Router
	registry  *dialog.Registry
	rtpMap    *RTPPortMap
	forwarder RTPForwarder
	sendSip   chan sendRequest

	onResponse func(resp *sipmsg.Response, src string)
	errLog     func(format string, args ...any)
}

// Options configures a Transport at construction time.
type Options struct {
	SipBindAddr string // e.g. "0.0.0.0:5060"
	RtpBindAddr string // e.g. "0.0.0.0:10000"
	Router      *dialog.Router
	Registry    *dialog.Registry
	RTPMap      *RTPPortMap
	Forwarder   RTPForwarder

	// OnResponse, if set, receives every inbound SIP response (this UAS
	// has no client-transaction layer of its own; the B2BUA's outbound
	// leg matches responses to its pending INVITE/BYE by Call-ID at the
	// wiring layer instead).
	OnResponse func(resp *sipmsg.Response, src string)
	ErrLog     func(format string, args ...any)
}

// New binds both UDP sockets and returns a Transport ready for Run.
func New(opts Options) (*Transport, error) {
	sipAddr, err := net.ResolveUDPAddr("udp", opts.SipBindAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid SIP bind addr: %w", err)
	}
	sipConn, err := net.ListenUDP("udp", sipAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: bind SIP socket: %w", err)
	}

	rtpAddr, err := net.ResolveUDPAddr("udp", opts.RtpBindAddr)
	if err != nil {
		sipConn.Close()
		return nil, fmt.Errorf("transport: invalid RTP bind addr: %w", err)
	}
	rtpConn, err := net.ListenUDP("udp", rtpAddr)
	if err != nil {
		sipConn.Close()
		return nil, fmt.Errorf("transport: bind RTP socket: %w", err)
	}

	errLog := opts.ErrLog
	if errLog == nil {
		errLog = func(string, ...any) {}
	}

	return &Transport{
		sipConn:    sipConn,
		rtpConn:    rtpConn,
		router:     opts.Router,
		registry:   opts.Registry,
		rtpMap:     opts.RTPMap,
		forwarder:  opts.Forwarder,
		sendSip:    make(chan sendRequest, sendQueueDepth),
		onResponse: opts.OnResponse,
		errLog:     errLog,
	}, nil
}

// SipLocalAddr returns the bound SIP socket's local address.
func (t *Transport) SipLocalAddr() *net.UDPAddr {
	return t.sipConn.LocalAddr().(*net.UDPAddr)
}

// RtpLocalAddr returns the bound RTP socket's local address.
func (t *Transport) RtpLocalAddr() *net.UDPAddr {
	return t.rtpConn.LocalAddr().(*net.UDPAddr)
}

// Run starts the SIP receive loop, SIP send pump, and RTP receive loop,
// and blocks until ctx is cancelled. Each runs on its own goroutine.
func (t *Transport) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); t.runSipRecvLoop(ctx) }()
	go func() { defer wg.Done(); t.runSipSendLoop(ctx) }()
	go func() { defer wg.Done(); t.runRtpRecvLoop(ctx) }()
	<-ctx.Done()
	t.sipConn.Close()
	t.rtpConn.Close()
	wg.Wait()
}

// SendSip queues payload for delivery to dst. Queueing blocks if the send
// pump is backed up; the caller is expected to be a coordinator goroutine
// that can tolerate a brief stall rather than silently lose a response.
func (t *Transport) SendSip(dst *net.UDPAddr, payload []byte) {
	t.sendSip <- sendRequest{dst: dst, payload: payload}
}

// SendTo writes payload directly to the RTP socket, implementing
// pkg/stream.Sender. RTP sends are fire-and-forget from the stream
// table's perspective: a lost send is a dropped audio frame, not a
// protocol error, so this bypasses the bounded SIP send queue entirely.
func (t *Transport) SendTo(payload []byte, dstIP string, dstPort int) error {
	dst := &net.UDPAddr{IP: net.ParseIP(dstIP), Port: dstPort}
	_, err := t.rtpConn.WriteToUDP(payload, dst)
	return err
}

func (t *Transport) runSipRecvLoop(ctx context.Context) {
	buf := make([]byte, recvBufferSize)
	for {
		n, src, err := t.sipConn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.errLog("transport: SIP recv error: %v", err)
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		parsed, err := sipmsg.Parse(data)
		if err != nil {
			t.errLog("transport: SIP parse error from %s: %v", src, err)
			continue
		}
		req, ok := parsed.(*sipmsg.Request)
		if !ok {
			if resp, ok := parsed.(*sipmsg.Response); ok && t.onResponse != nil {
				t.onResponse(resp, src.String())
			}
			continue
		}
		if t.router == nil {
			continue
		}
		if err := t.router.Route(req); err != nil {
			t.errLog("transport: route %s from %s: %v", req.Method, src, err)
		}
	}
}

func (t *Transport) runSipSendLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-t.sendSip:
			if _, err := t.sipConn.WriteToUDP(req.payload, req.dst); err != nil {
				if ctx.Err() != nil {
					return
				}
				t.errLog("transport: SIP send to %s: %v", req.dst, err)
			}
		}
	}
}

func (t *Transport) runRtpRecvLoop(ctx context.Context) {
	buf := make([]byte, recvBufferSize)
	for {
		n, src, err := t.rtpConn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.errLog("transport: RTP recv error: %v", err)
			continue
		}

		if rtpcore.LooksLikeRTCP(buf[:n]) {
			// RTCP receiver/sender reports from the remote party are
			// not consumed by this core; spec.md's RTCP requirement is
			// outbound SR only.
			continue
		}

		pkt, err := rtpcore.Parse(buf[:n])
		if err != nil {
			t.errLog("transport: RTP parse error from %s: %v", src, err)
			continue
		}

		if key, ok := t.rtpMap.LookupForward(src.String()); ok {
			if t.forwarder != nil {
				t.forwarder.SendPayload(key, pkt.Payload)
			}
			continue
		}

		callID, ok := t.rtpMap.Lookup(src.String())
		if !ok {
			continue
		}
		if t.registry == nil {
			continue
		}
		handle, ok := t.registry.Get(callID)
		if !ok {
			continue
		}

		payload := make([]byte, len(pkt.Payload))
		copy(payload, pkt.Payload)
		ev := session.MediaRtpIn{CallID: callID, Ts: pkt.Timestamp, Payload: payload}

		select {
		case handle.MediaIn <- ev:
		default:
			// a live call's media channel is already full; the latest
			// frame loses to the backlog rather than stalling the recv
			// loop for every other call sharing this socket.
		}
	}
}
