package dialog

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// IvrState is the per-call IVR mode: IvrMenuWaiting -> VoicebotIntroPlaying
// -> VoicebotMode, plus the transfer-side states Transferring and
// B2buaMode (entered once the blind-transfer bridge takes over the dialog).
type IvrState string

const (
	IvrMenuWaiting        IvrState = "IvrMenuWaiting"
	IvrVoicebotIntroPlaying IvrState = "VoicebotIntroPlaying"
	IvrVoicebotMode       IvrState = "VoicebotMode"
	IvrTransferring       IvrState = "Transferring"
	IvrB2buaMode          IvrState = "B2buaMode"
)

const (
	IvrEventEnterVoicebot   = "EnterVoicebot"
	IvrEventIntroFinished   = "IntroFinished"
	IvrEventEnterTransfer   = "EnterTransfer"
	IvrEventTransferBridged = "TransferBridged"
	IvrEventTransferFailed  = "TransferFailed"
)

// IvrMachine wraps a looplab/fsm.FSM for the IVR mode transitions spec.md
// names: only EnterVoicebot moves the menu into the intro, and only
// end-of-playback moves the intro into steady voicebot mode.
type IvrMachine struct {
	fsm *fsm.FSM
}

// NewIvrMachine returns an IVR state machine starting at IvrMenuWaiting.
func NewIvrMachine() *IvrMachine {
	m := &IvrMachine{}
	m.fsm = fsm.NewFSM(
		string(IvrMenuWaiting),
		fsm.Events{
			{Name: IvrEventEnterVoicebot, Src: []string{string(IvrMenuWaiting)}, Dst: string(IvrVoicebotIntroPlaying)},
			{Name: IvrEventIntroFinished, Src: []string{string(IvrVoicebotIntroPlaying)}, Dst: string(IvrVoicebotMode)},
			{Name: IvrEventEnterTransfer, Src: []string{string(IvrMenuWaiting), string(IvrVoicebotMode)}, Dst: string(IvrTransferring)},
			{Name: IvrEventTransferBridged, Src: []string{string(IvrTransferring)}, Dst: string(IvrB2buaMode)},
			{Name: IvrEventTransferFailed, Src: []string{string(IvrTransferring)}, Dst: string(IvrVoicebotMode)},
		},
		fsm.Callbacks{},
	)
	return m
}

// State returns the current IVR state.
func (m *IvrMachine) State() IvrState {
	return IvrState(m.fsm.Current())
}

// Fire drives event, returning an error if the transition is not legal.
func (m *IvrMachine) Fire(ctx context.Context, event string) error {
	if err := m.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("ivr: %w", err)
	}
	return nil
}

// CanFire reports whether event is legal from the current state without
// mutating it.
func (m *IvrMachine) CanFire(event string) bool {
	return m.fsm.Can(event)
}
