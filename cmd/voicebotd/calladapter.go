package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/b2bua"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/ports"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/recording"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sdpneg"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/session"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/transaction"
)

// callAdapter is the per-call glue between one session.Coordinator and the
// shared transport/stream/registry/bridge: it translates raw SIP requests
// and RTP events into the coordinator's typed ControlEvent/MediaEvent, and
// carries out every OutEvent the coordinator emits in return.
type callAdapter struct {
	app    *App
	callID string
	invite *sipmsg.Request

	ist   *transaction.InviteServerTransaction
	coord *session.Coordinator

	// controlRaw/mediaRaw are what dialog.SessionHandle actually points
	// at: the registry and router only know how to hand over `any`, so
	// translation into the coordinator's typed channels happens on the
	// other end of these.
	controlRaw chan any
	mediaRaw   chan any

	peerHost  string
	peerPort  int
	codec     g711.Codec
	localSSRC uint32
	aLegKey   string

	pendingReinvite *sipmsg.Request
	lastInviteCSeq  uint32
	aLegCSeq        uint32

	byeTxn  *transaction.NonInviteServerTransaction
	lastBye *sipmsg.Request

	bLeg           *b2bua.BLeg
	bLegInviteReq  *sipmsg.Request
	bLegUnregister func()
	peerRTPAddr    string
	aLegPeerAddr   string

	rec *recording.Manager

	playbackMu   sync.Mutex
	playbackStop chan struct{}

	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

func newCallAdapter(app *App, callID string, invite *sipmsg.Request, ist *transaction.InviteServerTransaction, coord *session.Coordinator, peer *sdpneg.PeerMedia) *callAdapter {
	ctx, cancel := context.WithCancel(context.Background())
	initialCSeq, err := sipmsg.ParseCSeq(invite.Headers.Get("CSeq"))
	if err != nil {
		initialCSeq = sipmsg.CSeq{Sequence: 1}
	}
	return &callAdapter{
		app:            app,
		callID:         callID,
		invite:         invite,
		ist:            ist,
		coord:          coord,
		controlRaw:     make(chan any, 32),
		mediaRaw:       make(chan any, 256),
		peerHost:       peer.Host,
		peerPort:       peer.Port,
		codec:          peer.Codec,
		localSSRC:      newSSRC(callID),
		aLegKey:        callID,
		lastInviteCSeq: initialCSeq.Sequence,
		rec:            recording.NewManager(callID),
		startedAt:      time.Now(),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// start launches every goroutine this call needs: the coordinator's own
// event loop plus the translation/output/housekeeping loops that surround
// it.
func (ca *callAdapter) start() {
	ca.app.rtpMap.Bind(ca.aLegPeerRTPAddr(), ca.callID)

	go ca.coord.Run(ca.ctx)
	go ca.runControlTranslate()
	go ca.runMediaTranslate()
	go ca.runOutLoop()
	go ca.runRecordingTicker()
	go ca.monitorDone()
}

func (ca *callAdapter) aLegPeerRTPAddr() string {
	return net.JoinHostPort(ca.peerHost, strconv.Itoa(ca.peerPort))
}

// monitorDone waits for the coordinator's dialog to reach Terminated and
// runs the single teardown path every hangup route (local hangup, BYE,
// CANCEL, session-timer expiry) converges on.
func (ca *callAdapter) monitorDone() {
	<-ca.coord.Done()
	ca.teardown()
}

// runControlTranslate reads raw *sipmsg.Request values off the dialog
// registry's handle and turns them into typed ControlEvents, handling
// whatever SIP-transaction bookkeeping (ACK/CANCEL/BYE responses) the
// coordinator itself has no transaction layer to do.
func (ca *callAdapter) runControlTranslate() {
	for {
		select {
		case <-ca.ctx.Done():
			return
		case raw := <-ca.controlRaw:
			req, ok := raw.(*sipmsg.Request)
			if !ok {
				continue
			}
			ca.dispatchControl(req)
		}
	}
}

func (ca *callAdapter) dispatchControl(req *sipmsg.Request) {
	switch req.Method {
	case "INVITE":
		ca.handleReinvite(req)
	case "ACK":
		if ca.ist.State() != transaction.InviteTerminated {
			_ = ca.ist.HandleACK()
		}
		ca.pushControl(session.SipAck{})
	case "BYE":
		ca.handleBye(req)
	case "CANCEL":
		ca.handleCancel(req)
	default:
		ca.sendDirectResponse(req, sipmsg.NewResponseFromRequest(req, 200, "OK", false, ""))
	}
}

func (ca *callAdapter) handleReinvite(req *sipmsg.Request) {
	cseq, err := sipmsg.ParseCSeq(req.Headers.Get("CSeq"))
	if err != nil || cseq.Sequence <= ca.lastInviteCSeq {
		// same or stale CSeq: this is a retransmit of an INVITE already
		// answered (most often the initial one), not a fresh re-INVITE.
		_ = ca.ist.HandleRetransmittedInvite()
		return
	}
	peer, parseErr := sdpneg.ParseOffer(req.Body)
	if parseErr != nil {
		ca.sendDirectResponse(req, sipmsg.NewResponseFromRequest(req, 488, "Not Acceptable Here", false, ""))
		return
	}
	ca.lastInviteCSeq = cseq.Sequence
	ca.pendingReinvite = req
	ca.pushControl(session.SipReInvite{Offer: sdpFromPeer(peer)})
}

func (ca *callAdapter) handleBye(req *sipmsg.Request) {
	if ca.byeTxn != nil {
		_ = ca.byeTxn.HandleRetransmittedRequest()
		return
	}
	ca.byeTxn = transaction.NewNonInviteServerTransaction(req, viaDestination(req), ca.app.txSender, transaction.DefaultTimers())
	ca.lastBye = req
	ca.pushControl(session.SipBye{})
}

func (ca *callAdapter) handleCancel(req *sipmsg.Request) {
	ca.sendDirectResponse(req, sipmsg.NewResponseFromRequest(req, 200, "OK", false, ""))
	if ca.ist.State() != transaction.InviteTerminated {
		resp := sipmsg.NewResponseFromRequest(ca.invite, 487, "Request Terminated", true, localTag(ca.callID))
		_ = ca.ist.SendResponse(resp)
	}
	ca.pushControl(session.SipCancel{})
}

// pushControl feeds ev to the coordinator's own ControlIn; it never
// blocks the translating goroutine since ControlIn is already sized for
// a live call's signaling traffic.
func (ca *callAdapter) pushControl(ev session.ControlEvent) {
	select {
	case ca.coord.ControlIn <- ev:
	default:
	}
}

// runRecordingTicker drains one frame from the call's recorder(s) every
// 20ms, matching the RTP packetization interval so neither leg's buffer
// grows unbounded between PushRx/PushTx calls.
func (ca *callAdapter) runRecordingTicker() {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ca.ctx.Done():
			return
		case <-ticker.C:
			ca.rec.FlushTick()
		}
	}
}

// runMediaTranslate forwards inbound RTP to both the stereo recorder and
// the coordinator's VAD/DTMF pipeline.
func (ca *callAdapter) runMediaTranslate() {
	for {
		select {
		case <-ca.ctx.Done():
			return
		case raw := <-ca.mediaRaw:
			ev, ok := raw.(session.MediaRtpIn)
			if !ok {
				continue
			}
			ca.app.metrics.RTPPacketsReceived.Inc()
			ca.rec.PushRx(ev.Payload)
			select {
			case ca.coord.MediaIn <- ev:
			default:
			}
		}
	}
}

// runOutLoop carries out every OutEvent the coordinator emits: SIP
// responses/requests, RTP stream start/stop, TTS playback, and metrics.
func (ca *callAdapter) runOutLoop() {
	for {
		select {
		case <-ca.ctx.Done():
			return
		case ev := <-ca.coord.Out:
			ca.dispatchOut(ev)
		}
	}
}

func (ca *callAdapter) dispatchOut(ev session.OutEvent) {
	switch e := ev.(type) {
	case session.SipSend183:
		ca.sendInitialAcceptance(e.Answer)
	case session.SipSend200:
		ca.sendReinviteOk(e.Answer)
	case session.SipSendError:
		resp := sipmsg.NewResponseFromRequest(ca.invite, e.Code, e.Reason, true, localTag(ca.callID))
		if err := ca.ist.SendResponse(resp); err != nil {
			log.Printf("voicebotd: call %s: send error response: %v", ca.callID, err)
		}
	case session.SipSendUpdate:
		log.Printf("voicebotd: call %s: session-timer UPDATE not implemented (expires=%s)", ca.callID, e.Expires)
	case session.SipSendBye:
		ca.sendOutboundByeToCaller()
	case session.SipSendBye200:
		ca.sendByeOk()
	case session.RtpStartTx:
		ca.startALegTx(e.DstIP, e.DstPort, e.PT)
	case session.RtpStopTx:
		ca.app.streamMgr.Stop(ca.aLegKey)
	case session.AppRequestTts:
		ca.startPlayback(e.Text)
	case session.AppRequestHangup:
		ca.pushControl(session.AppHangup{})
	case session.AppRequestTransfer:
		log.Printf("voicebotd: call %s: AppRequestTransfer(%s) has no coordinator-side emitter yet", ca.callID, e.Person)
	case session.Metrics:
		ca.recordMetric(e.Name, e.Value)
	case session.SendOutboundInvite:
		ca.sendOutboundInvite(e.Request)
	}
}

// sendInitialAcceptance answers the initial INVITE. This bot has no
// ringing phase (dialog.StateMachine's EventAck goes straight from Early
// to Established), so the 183 the coordinator asks for is purely
// informational and the 200 OK that actually establishes the dialog
// follows it immediately, both carrying the same SDP answer.
func (ca *callAdapter) sendInitialAcceptance(answer session.Sdp) {
	ca.sendFinalResponse(183, "Session Progress", answer)
	ca.sendFinalResponse(200, "OK", answer)
}

func (ca *callAdapter) sendFinalResponse(status int, reason string, answer session.Sdp) {
	resp := sipmsg.NewResponseFromRequest(ca.invite, status, reason, true, localTag(ca.callID))
	resp.Headers.Add("Content-Type", "application/sdp")
	resp.Body = sdpneg.BuildAnswer(answer.IP, answer.Port, codecForPT(answer.PayloadType))
	if err := ca.ist.SendResponse(resp); err != nil {
		log.Printf("voicebotd: call %s: send %d: %v", ca.callID, status, err)
	}
}

func (ca *callAdapter) sendReinviteOk(answer session.Sdp) {
	req := ca.pendingReinvite
	if req == nil {
		return
	}
	ca.pendingReinvite = nil
	resp := sipmsg.NewResponseFromRequest(req, 200, "OK", true, localTag(ca.callID))
	resp.Headers.Add("Content-Type", "application/sdp")
	resp.Body = sdpneg.BuildAnswer(answer.IP, answer.Port, codecForPT(answer.PayloadType))
	ca.sendDirectResponse(req, resp)
}

func (ca *callAdapter) sendByeOk() {
	if ca.byeTxn == nil || ca.lastBye == nil {
		return
	}
	resp := sipmsg.NewResponseFromRequest(ca.lastBye, 200, "OK", false, "")
	if err := ca.byeTxn.SendResponse(resp); err != nil {
		log.Printf("voicebotd: call %s: send BYE 200: %v", ca.callID, err)
	}
}

// sendOutboundByeToCaller builds and sends a UAC-role BYE toward the
// original caller. Every SipSendBye the coordinator emits targets the
// A-leg: the B-leg's own teardown is driven separately, from
// teardownBLeg, since the coordinator never distinguishes the two at the
// OutEvent level.
func (ca *callAdapter) sendOutboundByeToCaller() {
	ca.aLegCSeq++
	dst := ca.calleeContactURI()
	req := sipmsg.NewRequest("BYE", dst)
	req.Headers.Add("Via", fmt.Sprintf("SIP/2.0/UDP %s;branch=z9hG4bK%s", ca.app.cfg.LocalIP, uuid.NewString()))
	req.Headers.Add("From", fmt.Sprintf("<sip:rustbot@%s>;tag=%s", ca.app.cfg.LocalIP, localTag(ca.callID)))
	req.Headers.Add("To", ca.invite.Headers.Get("From"))
	req.Headers.Add("Call-ID", ca.callID)
	req.Headers.Add("CSeq", fmt.Sprintf("%d BYE", ca.aLegCSeq))

	addr, err := net.ResolveUDPAddr("udp", viaDestination(ca.invite))
	if err != nil {
		log.Printf("voicebotd: call %s: resolve BYE destination: %v", ca.callID, err)
		return
	}
	ca.app.transport.SendSip(addr, req.Build())
}

func (ca *callAdapter) calleeContactURI() *sipmsg.URI {
	if c := ca.invite.Headers.Get("Contact"); c != "" {
		if na, err := sipmsg.ParseNameAddr(c); err == nil && na.URI != nil {
			return na.URI
		}
	}
	if na, err := sipmsg.ParseNameAddr(ca.invite.Headers.Get("From")); err == nil && na.URI != nil {
		return na.URI
	}
	return ca.invite.URI
}

func (ca *callAdapter) sendDirectResponse(req *sipmsg.Request, resp *sipmsg.Response) {
	if resp == nil {
		return
	}
	dst := viaDestination(req)
	if dst == "" {
		return
	}
	addr, err := net.ResolveUDPAddr("udp", dst)
	if err != nil {
		log.Printf("voicebotd: call %s: resolve %s: %v", ca.callID, dst, err)
		return
	}
	ca.app.transport.SendSip(addr, resp.Build())
}

func (ca *callAdapter) startALegTx(dstIP string, dstPort int, pt uint8) {
	if !ca.rec.IsStarted() {
		if err := ca.rec.StartMain(); err != nil {
			log.Printf("voicebotd: call %s: start recording: %v", ca.callID, err)
		}
	}
	ca.app.streamMgr.Start(ca.aLegKey, dstIP, dstPort, pt, ca.localSSRC, 0, 0)
}

func (ca *callAdapter) recordMetric(name string, value int64) {
	switch name {
	case "utterance_captured_bytes":
		log.Printf("voicebotd: call %s: captured utterance %d bytes (ASR turn not wired)", ca.callID, value)
	default:
		log.Printf("voicebotd: call %s: metric %s=%d", ca.callID, name, value)
	}
}

// startPlayback resolves text to a sequence of 20ms PCMU frames and
// streams them to the A-leg at real-time pace, cutting off any playback
// already in flight (the IVR only ever wants its most recent prompt
// heard).
func (ca *callAdapter) startPlayback(text string) {
	ca.stopPlayback()
	stop := make(chan struct{})
	ca.playbackMu.Lock()
	ca.playbackStop = stop
	ca.playbackMu.Unlock()
	go ca.runPlayback(text, stop)
}

func (ca *callAdapter) stopPlayback() {
	ca.playbackMu.Lock()
	defer ca.playbackMu.Unlock()
	if ca.playbackStop != nil {
		close(ca.playbackStop)
		ca.playbackStop = nil
	}
}

func (ca *callAdapter) runPlayback(text string, stop chan struct{}) {
	frames, err := ca.resolveFrames(text)
	if err != nil {
		log.Printf("voicebotd: call %s: resolve playback %q: %v", ca.callID, text, err)
		return
	}
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for _, frame := range frames {
		select {
		case <-stop:
			return
		case <-ca.ctx.Done():
			return
		case <-ticker.C:
			ca.app.streamMgr.SendPayload(ca.aLegKey, frame)
			ca.rec.PushTx(frame)
			ca.app.metrics.RTPPacketsSent.Inc()
		}
	}
}

// resolveFrames loads pre-recorded IVR prompts straight off disk and
// routes anything else through TTS first.
func (ca *callAdapter) resolveFrames(text string) ([][]byte, error) {
	if strings.HasSuffix(text, ".wav") {
		return ca.app.storage.LoadWavAsPcmuFrames(text)
	}
	wavPath, err := ca.app.ai.SynthToWav(ca.ctx, text, "")
	if err != nil {
		return nil, err
	}
	return ca.app.storage.LoadWavAsPcmuFrames(wavPath)
}

// sendOutboundInvite sends a B-leg INVITE the coordinator built and
// tracks it in the app-wide pending-transfer table, since there is no
// client-transaction layer to match its response automatically.
func (ca *callAdapter) sendOutboundInvite(req *sipmsg.Request) {
	callID := req.Headers.Get("Call-ID")
	fromTag := ""
	if na, err := sipmsg.ParseNameAddr(req.Headers.Get("From")); err == nil {
		fromTag = na.Tag()
	}
	leg := &b2bua.BLeg{CallID: callID, RTPKey: callID, CSeq: 1, FromTag: fromTag}
	ca.app.registerPendingTransfer(callID, &pendingTransfer{adapter: ca, invite: req, leg: leg})
	ca.app.metrics.IvrTransfersStarted.Inc()

	dst := uriDestination(req.URI, ca.app.cfg.SipPort)
	addr, err := net.ResolveUDPAddr("udp", dst)
	if err != nil {
		log.Printf("voicebotd: call %s: resolve transfer target %s: %v", ca.callID, dst, err)
		return
	}
	ca.app.transport.SendSip(addr, req.Build())
}

// handleTransferResponse processes the first final response to a B-leg
// INVITE this adapter sent: it ACKs a 2xx, parses its SDP answer, and
// either bridges the two legs' RTP directly or reports the failure back
// to the coordinator.
func (ca *callAdapter) handleTransferResponse(pending *pendingTransfer, resp *sipmsg.Response, src string) {
	if resp.Status >= 300 {
		ca.app.metrics.IvrTransfersFailed.WithLabelValues("rejected").Inc()
		ca.pushControl(session.B2buaFailed{Reason: resp.Reason, Status: resp.Status})
		return
	}

	ack := buildAck(pending.invite, resp)
	if addr, err := net.ResolveUDPAddr("udp", src); err == nil {
		ca.app.transport.SendSip(addr, ack.Build())
	}

	peerAnswer, err := sdpneg.ParseOffer(resp.Body)
	if err != nil {
		ca.app.metrics.IvrTransfersFailed.WithLabelValues("bad_answer_sdp").Inc()
		ca.pushControl(session.B2buaFailed{Reason: "unparsable answer SDP", Status: 0})
		return
	}

	leg := pending.leg
	leg.RemoteAddr = net.JoinHostPort(peerAnswer.Host, strconv.Itoa(peerAnswer.Port))
	ca.bLeg = leg
	ca.bLegInviteReq = pending.invite
	ca.peerRTPAddr = leg.RemoteAddr
	ca.aLegPeerAddr = ca.aLegPeerRTPAddr()

	ca.app.rtpMap.BindForward(ca.aLegPeerAddr, leg.RTPKey)
	ca.app.rtpMap.BindForward(leg.RemoteAddr, ca.aLegKey)
	ca.app.streamMgr.Start(leg.RTPKey, peerAnswer.Host, peerAnswer.Port, peerAnswer.Codec.PayloadType(), newSSRC(leg.CallID), 0, 0)

	bridgeCh, unregister := ca.app.bridge.Register(leg.CallID, 32)
	ca.bLegUnregister = unregister
	go ca.runBLegBridge(bridgeCh)

	ca.pushControl(session.B2buaEstablished{Leg: leg})
}

// runBLegBridge absorbs in-dialog requests the bridge hands it for the
// B-leg's own Call-ID, the most important of which is the transfer
// target hanging up first.
func (ca *callAdapter) runBLegBridge(ch <-chan *sipmsg.Request) {
	for req := range ch {
		if req.Method != "BYE" {
			continue
		}
		resp := sipmsg.NewResponseFromRequest(req, 200, "OK", false, "")
		ca.sendDirectResponse(req, resp)
		ca.pushControl(session.BLegBye{})
		ca.teardownBLeg(false)
	}
}

// teardownBLeg unwinds a bridged transfer leg: unbinds both RTP forward
// entries, stops its outbound stream, unregisters it from the bridge,
// and optionally sends it a BYE of its own (when the A-leg is the one
// hanging up first).
func (ca *callAdapter) teardownBLeg(sendBye bool) {
	if ca.bLeg == nil {
		return
	}
	if ca.bLegUnregister != nil {
		unregister := ca.bLegUnregister
		ca.bLegUnregister = nil
		unregister()
	}
	if ca.peerRTPAddr != "" {
		ca.app.rtpMap.UnbindForward(ca.peerRTPAddr)
	}
	if ca.aLegPeerAddr != "" {
		ca.app.rtpMap.UnbindForward(ca.aLegPeerAddr)
	}
	ca.app.streamMgr.Stop(ca.bLeg.RTPKey)
	if sendBye {
		ca.sendOutboundByeToBLeg()
	}
	ca.bLeg = nil
	ca.peerRTPAddr = ""
}

func (ca *callAdapter) sendOutboundByeToBLeg() {
	if ca.bLeg == nil || ca.bLegInviteReq == nil {
		return
	}
	targetURI := ca.bLegInviteReq.URI.String()
	req := b2bua.NewBye(ca.bLeg, targetURI, ca.app.cfg.LocalIP)
	dst := uriDestination(ca.bLegInviteReq.URI, ca.app.cfg.SipPort)
	addr, err := net.ResolveUDPAddr("udp", dst)
	if err != nil {
		log.Printf("voicebotd: call %s: resolve B-leg BYE destination: %v", ca.callID, err)
		return
	}
	ca.app.transport.SendSip(addr, req.Build())
}

// teardown is the single cleanup path every hangup route converges on
// via monitorDone, once the coordinator's dialog has reached Terminated.
func (ca *callAdapter) teardown() {
	ca.app.registry.Unregister(ca.callID)

	aLegAddr := ca.aLegPeerRTPAddr()
	ca.app.rtpMap.Unbind(aLegAddr)
	ca.app.rtpMap.UnbindForward(aLegAddr)
	ca.app.streamMgr.Stop(ca.aLegKey)

	ca.teardownBLeg(true)
	ca.stopPlayback()
	ca.app.metrics.ActiveCalls.Dec()
	ca.rec.StopAndMerge()

	ca.notifyCallEnded()
	ca.cancel()
}

func (ca *callAdapter) notifyCallEnded() {
	started := ca.startedAt
	ended := time.Now()
	duration := ended.Sub(started)
	callID := ca.callID
	from := ca.invite.Headers.Get("From")
	to := ca.invite.Headers.Get("To")
	caller := ca.callerNumber()
	recPath := ca.rec.RelativePath()
	sampleRate := ca.rec.SampleRate()
	channels := ca.rec.Channels()
	app := ca.app

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = app.callLog.PersistCallEnded(ctx, ports.EndedCallLog{
			ID:            callID,
			StartedAt:     started,
			EndedAt:       ended,
			DurationSec:   int(duration.Seconds()),
			SipCallID:     callID,
			CallerNumber:  caller,
			EndReason:     "normal",
			Status:        "completed",
			RecordingPath: recPath,
		})
		_ = app.ingest.Post(ctx, "", ports.IngestPayload{
			CallID:      callID,
			From:        from,
			To:          to,
			StartedAt:   started,
			EndedAt:     ended,
			Status:      "completed",
			DurationSec: uint64(duration.Seconds()),
			Recording: &ports.IngestRecording{
				RecordingURL: recPath,
				DurationSec:  uint64(duration.Seconds()),
				SampleRate:   sampleRate,
				Channels:     channels,
			},
		})
	}()
}

func (ca *callAdapter) callerNumber() string {
	na, err := sipmsg.ParseNameAddr(ca.invite.Headers.Get("From"))
	if err != nil || na.URI == nil {
		return ""
	}
	return na.URI.User
}

func sdpFromPeer(p *sdpneg.PeerMedia) session.Sdp {
	return session.Sdp{IP: p.Host, Port: p.Port, PayloadType: p.Codec.PayloadType(), Codec: p.Codec.Name() + "/8000"}
}

func codecForPT(pt uint8) g711.Codec {
	codec, ok := g711.CodecFromPayloadType(pt)
	if !ok {
		return g711.CodecPCMU
	}
	return codec
}
