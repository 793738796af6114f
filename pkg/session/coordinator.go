package session

import (
	"context"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/b2bua"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/dialog"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/ports"
)

// Config is the per-call tuning the coordinator is built with.
type Config struct {
	LocalIP                  string
	LocalRTPPort             int
	Vad                      VadConfig
	IvrTimeout               time.Duration
	TransferAnnounceInterval time.Duration
	TransferTargets          map[string]string // directory entries
}

// Coordinator is the single mutator of one call's state: it owns the
// dialog and IVR state machines, the VAD capture, and the B2BUA transfer
// leg, and it is the only goroutine that touches any of them. Everything
// else talks to it by pushing onto ControlIn/MediaIn and reading Out.
type Coordinator struct {
	callID string
	cfg    Config

	dialog    *dialog.StateMachine
	ivr       *dialog.IvrMachine
	peerOffer Sdp

	capture *AudioCapture
	dtmf    *g711.DTMFDetector

	directory *b2bua.Directory
	bLeg      *b2bua.BLeg

	ivrTimeout     *IvrTimeoutManager
	transferTicker *TransferAnnounceTicker

	ai      ports.AiPort
	storage ports.StoragePort

	ControlIn chan ControlEvent
	MediaIn   chan MediaEvent
	Out       chan OutEvent

	done chan struct{}
}

// NewCoordinator builds a coordinator for callID, wired to ai/storage and
// a pre-populated transfer directory. ControlIn is buffered modestly;
// MediaIn is the high-frequency RTP/DTMF channel and is sized larger.
func NewCoordinator(callID string, cfg Config, ai ports.AiPort, storage ports.StoragePort) *Coordinator {
	c := &Coordinator{
		callID:    callID,
		cfg:       cfg,
		dialog:    dialog.NewStateMachine(),
		ivr:       dialog.NewIvrMachine(),
		capture:   NewAudioCapture(cfg.Vad),
		dtmf:      g711.NewDTMFDetector(),
		directory: b2bua.NewDirectory(cfg.TransferTargets),
		ai:        ai,
		storage:   storage,
		ControlIn: make(chan ControlEvent, 32),
		MediaIn:   make(chan MediaEvent, 256),
		Out:       make(chan OutEvent, 32),
		done:      make(chan struct{}),
	}
	c.ivrTimeout = NewIvrTimeoutManager(cfg.IvrTimeout, c.ControlIn)
	c.transferTicker = NewTransferAnnounceTicker(c.ControlIn)
	return c
}

// State returns the dialog's current lifecycle state.
func (c *Coordinator) State() dialog.State { return c.dialog.State() }

// IvrState returns the IVR's current mode.
func (c *Coordinator) IvrState() dialog.IvrState { return c.ivr.State() }

// Run drains ControlIn and MediaIn until the dialog reaches Terminated or
// ctx is cancelled. It is meant to run on its own goroutine.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.ControlIn:
			c.handleControl(ctx, ev)
			if c.dialog.State() == dialog.StateTerminated {
				return
			}
		case ev := <-c.MediaIn:
			c.handleMedia(ctx, ev)
		}
	}
}

// Done is closed once Run returns.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

func (c *Coordinator) emit(ev OutEvent) {
	select {
	case c.Out <- ev:
	default:
	}
}

func (c *Coordinator) sendToSelf(ev ControlEvent) {
	select {
	case c.ControlIn <- ev:
	default:
	}
}

// handleControl applies one SIP/timer/app event, driving the dialog and
// IVR state machines and emitting whatever SIP/RTP/app instructions
// follow.
func (c *Coordinator) handleControl(ctx context.Context, ev ControlEvent) {
	switch e := ev.(type) {
	case SipInvite:
		_ = c.dialog.Fire(ctx, dialog.EventInvite)
		c.peerOffer = e.Offer
		c.emit(SipSend183{Answer: PCMUSdp(c.cfg.LocalIP, c.cfg.LocalRTPPort)})

	case SipReInvite:
		c.peerOffer = e.Offer
		c.emit(SipSend200{Answer: PCMUSdp(c.cfg.LocalIP, c.cfg.LocalRTPPort)})
		c.emit(RtpStartTx{DstIP: e.Offer.IP, DstPort: e.Offer.Port, PT: e.Offer.PayloadType})

	case SipAck:
		_ = c.dialog.Fire(ctx, dialog.EventAck)
		c.ivrTimeout.Start()
		c.emit(RtpStartTx{DstIP: c.peerOffer.IP, DstPort: c.peerOffer.Port, PT: c.peerOffer.PayloadType})
		c.emit(AppRequestTts{Text: "Press 1 for the voicebot, 2 to hear about Sendai, 3 to transfer, or 9 to repeat this menu."})

	case SipBye:
		c.terminate(ctx)
		c.emit(SipSendBye200{})

	case SipCancel:
		c.terminate(ctx)

	case SipTransactionTimeout:
		c.terminate(ctx)

	case IvrTimeout:
		if c.ivr.State() == dialog.IvrMenuWaiting {
			c.emit(AppRequestHangup{})
		}

	case MenuDigit:
		c.handleMenuDigit(ctx, e.Digit)

	case AppHangup:
		c.terminate(ctx)
		c.emit(SipSendBye{})

	case AppTransferRequest:
		c.startTransfer(ctx, e.Person)

	case B2buaEstablished:
		c.bLeg = e.Leg
		_ = c.ivr.Fire(ctx, dialog.IvrEventTransferBridged)
		c.transferTicker.Stop()

	case B2buaFailed:
		_ = c.ivr.Fire(ctx, dialog.IvrEventTransferFailed)
		c.transferTicker.Stop()
		c.bLeg = nil
		c.emit(AppRequestTts{Text: "Sorry, the transfer could not be completed."})

	case BLegBye:
		c.shutdownBLeg(false)
		if c.ivr.CanFire(dialog.IvrEventTransferFailed) {
			_ = c.ivr.Fire(ctx, dialog.IvrEventTransferFailed)
		}

	case TransferAnnounce:
		c.emit(AppRequestTts{Text: "Please hold while we transfer your call."})

	case SessionTimerFired:
		c.terminate(ctx)
		c.emit(SipSendBye{})

	case Abort:
		c.terminate(ctx)
	}
}

// handleMenuDigit maps a digit to its IVR action, but only while the
// menu is actually armed; digits arriving in voicebot or transfer mode
// are ignored here (voicebot-mode DTMF belongs to the AI turn, not this
// menu).
func (c *Coordinator) handleMenuDigit(ctx context.Context, digit byte) {
	if c.ivr.State() != dialog.IvrMenuWaiting {
		return
	}
	switch IvrActionForDigit(digit) {
	case IvrActionEnterVoicebot:
		c.ivrTimeout.Stop()
		_ = c.ivr.Fire(ctx, dialog.IvrEventEnterVoicebot)
		c.emit(AppRequestTts{Text: IntroWavPath()})
	case IvrActionPlaySendai:
		c.emit(AppRequestTts{Text: "Sendai is the capital of Miyagi Prefecture."})
	case IvrActionTransfer:
		c.startTransfer(ctx, "operator")
	case IvrActionReplayMenu:
		c.ivrTimeout.Reset()
		c.emit(AppRequestTts{Text: "Press 1 for the voicebot, 2 to hear about Sendai, 3 to transfer, or 9 to repeat this menu."})
	}
}

// handleMedia runs inbound RTP through DTMF detection and, in voicebot
// mode only, through the VAD capture. The coordinator never calls the
// capture's Start, so Ingest returns nil and no utterance is produced; the
// branch for a returned utterance emits only a Metrics event and sends
// nothing to ASR. DTMF detection always runs, but handleMenuDigit acts on a digit
// only while the menu is waiting.
func (c *Coordinator) handleMedia(_ context.Context, ev MediaEvent) {
	switch e := ev.(type) {
	case MediaRtpIn:
		if digit, ok := c.dtmf.IngestMulaw(e.Payload); ok {
			c.sendToSelf(MenuDigit{Digit: digit})
		}
		if c.ivr.State() == dialog.IvrVoicebotMode {
			if utterance := c.capture.Ingest(e.Payload); utterance != nil {
				c.emit(Metrics{Name: "utterance_captured_bytes", Value: int64(len(utterance))})
			}
		}
	case Dtmf:
		c.sendToSelf(MenuDigit{Digit: e.Digit})
	case BLegRtp:
		// forwarded to the A-leg RTP sender by the stream table; the
		// coordinator only tracks leg bookkeeping, not payload routing.
	}
}

func (c *Coordinator) terminate(ctx context.Context) {
	c.ivrTimeout.Stop()
	c.transferTicker.Stop()
	c.capture.Reset()
	if c.dialog.CanFire(dialog.EventHangup) {
		_ = c.dialog.Fire(ctx, dialog.EventHangup)
	}
}

func (c *Coordinator) startTransfer(ctx context.Context, person string) {
	target, err := c.directory.Resolve(person)
	if err != nil {
		c.emit(AppRequestTts{Text: "Sorry, I could not find that person."})
		return
	}
	if !c.ivr.CanFire(dialog.IvrEventEnterTransfer) {
		return
	}
	_ = c.ivr.Fire(ctx, dialog.IvrEventEnterTransfer)
	c.transferTicker.Start(c.cfg.TransferAnnounceInterval)
	req, leg := b2bua.NewOutboundInvite(target, c.cfg.LocalIP, c.cfg.LocalRTPPort, "rustbot")
	c.bLeg = leg
	c.emit(SendOutboundInvite{Request: req})
}

func (c *Coordinator) shutdownBLeg(sendBye bool) {
	if c.bLeg == nil {
		return
	}
	if sendBye {
		c.emit(SipSendBye{})
	}
	c.bLeg = nil
}
