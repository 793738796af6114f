// Package dialog implements the per-call dialog and IVR state machines
// (as looplab/fsm instances) and the CallId-keyed router that dispatches
// parsed SIP messages to a call's coordinator or to the B2BUA bridge.
package dialog

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// State is the dialog's lifecycle state: Idle -> Early -> Established ->
// Terminating -> Terminated. Any state can be forced to Terminated by
// Bye/Cancel/Hangup/TimerFired/Abort.
type State string

const (
	StateIdle        State = "Idle"
	StateEarly       State = "Early"
	StateEstablished State = "Established"
	StateTerminating State = "Terminating"
	StateTerminated  State = "Terminated"
)

const (
	EventInvite     = "Invite"
	EventAck        = "Ack"
	EventBye        = "Bye"
	EventCancel     = "Cancel"
	EventHangup     = "Hangup"
	EventTimerFired = "TimerFired"
	EventAbort      = "Abort"
)

// StateMachine wraps a looplab/fsm.FSM constrained to the dialog's legal
// transition table from spec.md's DialogState (SessState) definition.
type StateMachine struct {
	fsm *fsm.FSM
}

// NewStateMachine returns a dialog state machine starting at Idle.
func NewStateMachine() *StateMachine {
	sm := &StateMachine{}
	sm.fsm = fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: EventInvite, Src: []string{string(StateIdle)}, Dst: string(StateEarly)},
			{Name: EventAck, Src: []string{string(StateEarly)}, Dst: string(StateEstablished)},
			{Name: EventBye, Src: []string{"*"}, Dst: string(StateTerminated)},
			{Name: EventCancel, Src: []string{"*"}, Dst: string(StateTerminated)},
			{Name: EventHangup, Src: []string{"*"}, Dst: string(StateTerminated)},
			{Name: EventTimerFired, Src: []string{"*"}, Dst: string(StateTerminated)},
			{Name: EventAbort, Src: []string{"*"}, Dst: string(StateTerminated)},
		},
		fsm.Callbacks{},
	)
	return sm
}

// State returns the current dialog state.
func (sm *StateMachine) State() State {
	return State(sm.fsm.Current())
}

// Fire drives event, returning an error if the transition is not legal from
// the current state (e.g. Ack from Idle).
func (sm *StateMachine) Fire(ctx context.Context, event string) error {
	if err := sm.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("dialog: %w", err)
	}
	return nil
}

// CanFire reports whether event is legal from the current state without
// mutating it.
func (sm *StateMachine) CanFire(event string) bool {
	return sm.fsm.Can(event)
}
