package main

import (
	"log"
	"net"
	"sync"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/internal/config"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/b2bua"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/dialog"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/metrics"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/ports"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sdpneg"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/session"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/stream"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/transaction"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/transport"
)

// App is the one long-lived object wiring every per-call adapter to the
// shared transport, stream table, dialog registry and B2BUA bridge. It
// has no call-scoped state of its own beyond the pending-transfer table;
// everything else lives on a callAdapter.
type App struct {
	cfg       config.Config
	metrics   *metrics.Collector
	registry  *dialog.Registry
	bridge    *b2bua.Bridge
	rtpMap    *transport.RTPPortMap
	ai        ports.AiPort
	storage   ports.StoragePort
	ingest    ports.IngestPort
	callLog   ports.CallLogPort
	directory map[string]string

	// transport and txSender are only valid once main has finished
	// wiring them; transport.New itself depends on app.handleUacResponse,
	// so the dependency order forces these to be assigned after
	// construction rather than passed into newApp.
	transport *transport.Transport
	txSender  transactionSender
	streamMgr *stream.Manager

	mu               sync.Mutex
	pendingTransfers map[string]*pendingTransfer // keyed by B-leg Call-ID
}

// pendingTransfer is a B-leg INVITE this process sent out and is waiting
// on a response for, via Transport.OnResponse rather than a real
// client-transaction state machine.
type pendingTransfer struct {
	adapter *callAdapter
	invite  *sipmsg.Request
	leg     *b2bua.BLeg
}

func newApp(
	cfg config.Config,
	collector *metrics.Collector,
	registry *dialog.Registry,
	bridge *b2bua.Bridge,
	rtpMap *transport.RTPPortMap,
	ai ports.AiPort,
	storage ports.StoragePort,
	ingest ports.IngestPort,
	callLog ports.CallLogPort,
	directory map[string]string,
) *App {
	return &App{
		cfg:              cfg,
		metrics:          collector,
		registry:         registry,
		bridge:           bridge,
		rtpMap:           rtpMap,
		ai:               ai,
		storage:          storage,
		ingest:           ingest,
		callLog:          callLog,
		directory:        directory,
		pendingTransfers: make(map[string]*pendingTransfer),
	}
}

// transactionSender implements transaction.Sender over the shared
// transport's SIP socket.
type transactionSender struct {
	tr *transport.Transport
}

func (s transactionSender) SendResponse(resp *sipmsg.Response, dst string) error {
	addr, err := net.ResolveUDPAddr("udp", dst)
	if err != nil {
		return err
	}
	s.tr.SendSip(addr, resp.Build())
	return nil
}

// handleNewCall is the dialog router's onNewCall hook: it fires once per
// inbound dialog, for the first INVITE carrying an unregistered Call-ID.
// It builds the coordinator and its wiring adapter, registers both with
// the dialog registry, and kicks the call's first control event into the
// coordinator's loop.
func (a *App) handleNewCall(req *sipmsg.Request) error {
	callID := req.Headers.Get("Call-ID")

	peer, err := sdpneg.ParseOffer(req.Body)
	if err != nil {
		a.respondDirect(req, 488, "Not Acceptable Here")
		return nil
	}

	ist := transaction.NewInviteServerTransaction(req, viaDestination(req), a.txSender, transaction.DefaultTimers())

	coordCfg := session.Config{
		LocalIP:                  a.cfg.LocalIP,
		LocalRTPPort:             a.cfg.RtpPort,
		Vad:                      session.DefaultVadConfig(),
		IvrTimeout:               time.Duration(a.cfg.IvrTimeoutMs) * time.Millisecond,
		TransferAnnounceInterval: session.DefaultTransferAnnounceInterval,
		TransferTargets:          a.directory,
	}
	coord := session.NewCoordinator(callID, coordCfg, a.ai, a.storage)

	ca := newCallAdapter(a, callID, req, ist, coord, peer)

	a.registry.Register(callID, dialog.SessionHandle{
		ControlIn: ca.controlRaw,
		MediaIn:   ca.mediaRaw,
	})

	ca.start()

	a.metrics.ActiveCalls.Inc()
	ist.OnTimeout(func(reason string) {
		ca.pushControl(session.SipTransactionTimeout{CallID: callID})
	})

	from := req.Headers.Get("From")
	to := req.Headers.Get("To")
	ca.coord.ControlIn <- session.SipInvite{
		CallID: callID,
		From:   from,
		To:     to,
		Offer:  sdpFromPeer(peer),
	}
	return nil
}

// handleUacResponse is Transport's OnResponse hook: every inbound SIP
// response this process's own outbound B-leg INVITE/BYE might be waiting
// on arrives here, since there is no client-transaction layer to match it
// automatically. Work is offloaded to its own goroutine since OnResponse
// runs inline on the transport's single SIP receive loop.
func (a *App) handleUacResponse(resp *sipmsg.Response, src string) {
	go a.processUacResponse(resp, src)
}

func (a *App) processUacResponse(resp *sipmsg.Response, src string) {
	if resp.Status < 200 {
		// this bot's own B-leg INVITE never needs to act on a 1xx; the
		// first final response is the only one that matters here.
		return
	}
	callID := resp.Headers.Get("Call-ID")
	pending, ok := a.takePendingTransfer(callID)
	if !ok {
		return
	}
	pending.adapter.handleTransferResponse(pending, resp, src)
}

func (a *App) registerPendingTransfer(callID string, p *pendingTransfer) {
	a.mu.Lock()
	a.pendingTransfers[callID] = p
	a.mu.Unlock()
}

func (a *App) takePendingTransfer(callID string) (*pendingTransfer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pendingTransfers[callID]
	if ok {
		delete(a.pendingTransfers, callID)
	}
	return p, ok
}

// respondDirect answers req without ever having built a transaction for
// it, used only for the pre-dialog rejections a malformed or unsupported
// initial INVITE gets (§ session-establishment edge cases).
func (a *App) respondDirect(req *sipmsg.Request, status int, reason string) {
	dst := viaDestination(req)
	if dst == "" {
		return
	}
	addr, err := net.ResolveUDPAddr("udp", dst)
	if err != nil {
		log.Printf("voicebotd: resolve %s: %v", dst, err)
		return
	}
	resp := sipmsg.NewResponseFromRequest(req, status, reason, false, "")
	a.transport.SendSip(addr, resp.Build())
}
