package transaction

import (
	"fmt"
	"sync"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// NonInviteState is the NIST state per RFC 3261 §17.2.2: BYE, CANCEL,
// OPTIONS, REGISTER, UPDATE, and PRACK all run through this machine.
type NonInviteState int

const (
	NonInviteTrying NonInviteState = iota
	NonInviteCompleted
	NonInviteTerminated
)

func (s NonInviteState) String() string {
	switch s {
	case NonInviteTrying:
		return "Trying"
	case NonInviteCompleted:
		return "Completed"
	case NonInviteTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// NonInviteServerTransaction drives Trying -> Completed -> Terminated for a
// single non-INVITE request, retransmitting the final response to absorb
// request retransmits until Timer J expires.
type NonInviteServerTransaction struct {
	mu sync.Mutex

	request *sipmsg.Request
	dst     string
	sender  Sender
	timers  Timers
	timer   *timerSet

	state         NonInviteState
	finalResponse *sipmsg.Response
}

// NewNonInviteServerTransaction constructs a transaction for req, to be
// answered at dst.
func NewNonInviteServerTransaction(req *sipmsg.Request, dst string, sender Sender, timers Timers) *NonInviteServerTransaction {
	return &NonInviteServerTransaction{
		request: req,
		dst:     dst,
		sender:  sender,
		timers:  timers,
		timer:   newTimerSet(),
		state:   NonInviteTrying,
	}
}

// State returns the current NIST state.
func (t *NonInviteServerTransaction) State() NonInviteState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SendResponse sends resp. A provisional response keeps the transaction in
// Trying; a final response moves it to Completed and arms Timer J.
func (t *NonInviteServerTransaction) SendResponse(resp *sipmsg.Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case NonInviteTrying:
		if err := t.sender.SendResponse(resp, t.dst); err != nil {
			return err
		}
		if resp.Status >= 200 {
			t.state = NonInviteCompleted
			t.finalResponse = resp
			t.timer.start(TimerJ, t.timers.TimerJ, t.timerJExpired)
		}
		return nil
	case NonInviteCompleted:
		if t.finalResponse == nil || resp.Status != t.finalResponse.Status {
			return fmt.Errorf("%w: a different final response was already sent", ErrWrongState)
		}
		return t.sender.SendResponse(resp, t.dst)
	default:
		return fmt.Errorf("%w: cannot send response in state %s", ErrWrongState, t.state)
	}
}

func (t *NonInviteServerTransaction) timerJExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == NonInviteCompleted {
		t.state = NonInviteTerminated
		t.timer.stopAll()
	}
}

// HandleRetransmittedRequest re-sends the last response on a duplicate
// request. No-op if no response has gone out yet.
func (t *NonInviteServerTransaction) HandleRetransmittedRequest() error {
	t.mu.Lock()
	resp := t.finalResponse
	t.mu.Unlock()
	if resp == nil {
		return nil
	}
	return t.sender.SendResponse(resp, t.dst)
}

// Terminate forces the transaction to Terminated and stops all timers.
func (t *NonInviteServerTransaction) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = NonInviteTerminated
	t.timer.stopAll()
}
