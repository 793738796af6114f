package transaction

import (
	"fmt"
	"sync"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// InviteState is the IST state per RFC 3261 §17.2.1, minus the initial
// "Trying" state: this UAS answers INVITE synchronously so a transaction is
// only ever constructed once a first response is ready to go out, landing
// directly in Proceeding.
type InviteState int

const (
	InviteProceeding InviteState = iota
	InviteCompleted
	InviteConfirmed
	InviteTerminated
)

func (s InviteState) String() string {
	switch s {
	case InviteProceeding:
		return "Proceeding"
	case InviteCompleted:
		return "Completed"
	case InviteConfirmed:
		return "Confirmed"
	case InviteTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Sender delivers a built response to a destination address. It is
// implemented by the transport layer's UDP socket wrapper.
type Sender interface {
	SendResponse(resp *sipmsg.Response, dst string) error
}

// InviteServerTransaction drives Proceeding -> Completed -> Confirmed ->
// Terminated for one INVITE, retransmitting the final response on Timer G
// until ACK arrives or Timer H expires.
type InviteServerTransaction struct {
	mu sync.Mutex

	request *sipmsg.Request
	dst     string
	sender  Sender
	timers  Timers
	timer   *timerSet

	state         InviteState
	finalResponse *sipmsg.Response
	currentG      time.Duration

	onTimeout func(reason string)
}

// NewInviteServerTransaction constructs a transaction for an inbound INVITE
// that will be answered at dst (the address derived from the request's Via,
// per spec.md's "received/rport" handling at the transport layer).
func NewInviteServerTransaction(req *sipmsg.Request, dst string, sender Sender, timers Timers) *InviteServerTransaction {
	return &InviteServerTransaction{
		request:  req,
		dst:      dst,
		sender:   sender,
		timers:   timers,
		timer:    newTimerSet(),
		state:    InviteProceeding,
		currentG: timers.T1,
	}
}

// OnTimeout registers a callback invoked when Timer H fires without an ACK;
// the reason string is always "ACK timeout". The dialog layer uses this to
// tear the call down.
func (t *InviteServerTransaction) OnTimeout(fn func(reason string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTimeout = fn
}

// State returns the current IST state.
func (t *InviteServerTransaction) State() InviteState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SendResponse sends resp to the transaction's destination. 1xx responses
// keep the transaction in Proceeding; a 2xx terminates the transaction
// immediately (RFC 3261's IST has no Completed state for 2xx, since the
// dialog layer owns retransmitting 2xx and absorbing the matching ACK
// outside the transaction); 3xx-6xx move to Completed and arm Timer G/H.
func (t *InviteServerTransaction) SendResponse(resp *sipmsg.Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case InviteProceeding:
		return t.sendInProceeding(resp)
	case InviteCompleted:
		return t.retransmitInCompleted(resp)
	default:
		return fmt.Errorf("%w: cannot send response in state %s", ErrWrongState, t.state)
	}
}

func (t *InviteServerTransaction) sendInProceeding(resp *sipmsg.Response) error {
	if err := t.sender.SendResponse(resp, t.dst); err != nil {
		return err
	}

	switch {
	case resp.Status < 200:
		return nil
	case resp.Status < 300:
		t.terminateLocked()
		return nil
	default:
		t.state = InviteCompleted
		t.finalResponse = resp
		t.armCompletedTimers()
		return nil
	}
}

func (t *InviteServerTransaction) retransmitInCompleted(resp *sipmsg.Response) error {
	if t.finalResponse == nil || resp.Status != t.finalResponse.Status {
		return fmt.Errorf("%w: a different final response was already sent", ErrWrongState)
	}
	return t.sender.SendResponse(resp, t.dst)
}

func (t *InviteServerTransaction) armCompletedTimers() {
	t.timer.start(TimerG, t.currentG, t.retransmitFinal)
	t.timer.start(TimerH, t.timers.TimerH, t.timerHExpired)
}

func (t *InviteServerTransaction) retransmitFinal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != InviteCompleted || t.finalResponse == nil {
		return
	}
	if err := t.sender.SendResponse(t.finalResponse, t.dst); err != nil {
		return
	}
	t.currentG = NextRetransmitInterval(t.currentG, t.timers.T2)
	t.timer.reset(TimerG, t.currentG)
}

func (t *InviteServerTransaction) timerHExpired() {
	t.mu.Lock()
	state := t.state
	onTimeout := t.onTimeout
	t.mu.Unlock()

	if state != InviteCompleted {
		return
	}
	t.mu.Lock()
	t.terminateLocked()
	t.mu.Unlock()
	if onTimeout != nil {
		onTimeout("ACK timeout")
	}
}

// HandleACK processes an inbound ACK for this transaction's dialog, moving
// Completed -> Confirmed and arming Timer I, which absorbs late ACK
// retransmits; this UAS only runs over UDP, so Timer I is always armed and
// Terminated is reached when it fires. A duplicate ACK received while
// already Confirmed is ignored.
func (t *InviteServerTransaction) HandleACK() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case InviteCompleted:
		t.timer.stop(TimerG)
		t.timer.stop(TimerH)
		t.state = InviteConfirmed
		t.timer.start(TimerI, t.timers.T4, t.timerIExpired)
		return nil
	case InviteConfirmed:
		return nil
	default:
		return fmt.Errorf("%w: unexpected ACK in state %s", ErrWrongState, t.state)
	}
}

func (t *InviteServerTransaction) timerIExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == InviteConfirmed {
		t.terminateLocked()
	}
}

// HandleRetransmittedInvite re-sends the last response on a duplicate
// INVITE (the peer did not receive it, or is probing before its own Timer A
// fires). No-op if no response has gone out yet.
func (t *InviteServerTransaction) HandleRetransmittedInvite() error {
	t.mu.Lock()
	resp := t.finalResponse
	t.mu.Unlock()
	if resp == nil {
		return nil
	}
	return t.sender.SendResponse(resp, t.dst)
}

// Terminate forces the transaction to Terminated and stops all timers.
func (t *InviteServerTransaction) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.terminateLocked()
}

func (t *InviteServerTransaction) terminateLocked() {
	t.state = InviteTerminated
	t.timer.stopAll()
}
