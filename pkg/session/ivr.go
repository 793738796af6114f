package session

import (
	"sync"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/dialog"
)

// IvrAction is the effect of a DTMF digit pressed while the IVR menu is
// waiting for input.
type IvrAction int

const (
	IvrActionInvalid IvrAction = iota
	IvrActionEnterVoicebot
	IvrActionPlaySendai
	IvrActionTransfer
	IvrActionReplayMenu
)

// IvrActionForDigit maps a DTMF digit to its menu action.
func IvrActionForDigit(digit byte) IvrAction {
	switch digit {
	case '1':
		return IvrActionEnterVoicebot
	case '2':
		return IvrActionPlaySendai
	case '3':
		return IvrActionTransfer
	case '9':
		return IvrActionReplayMenu
	default:
		return IvrActionInvalid
	}
}

// IvrEventForAction maps a menu action to the dialog.IvrMachine event that
// drives it, or "" if the action has no direct state transition (e.g. a
// replay or an announcement-only action that doesn't change IvrState).
func IvrEventForAction(action IvrAction) string {
	switch action {
	case IvrActionEnterVoicebot:
		return dialog.IvrEventEnterVoicebot
	case IvrActionTransfer:
		return dialog.IvrEventEnterTransfer
	default:
		return ""
	}
}

const (
	introMorningWavPath   = "audio/intro_morning.wav"
	introAfternoonWavPath = "audio/intro_afternoon.wav"
	introEveningWavPath   = "audio/intro_evening.wav"
)

// IntroWavPathForHour selects the time-of-day intro announcement: 5-11 is
// morning, 12-16 is afternoon, everything else (including the night
// hours) is evening.
func IntroWavPathForHour(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return introMorningWavPath
	case hour >= 12 && hour <= 16:
		return introAfternoonWavPath
	default:
		return introEveningWavPath
	}
}

// IntroWavPath selects the intro announcement for the current local time.
func IntroWavPath() string {
	return IntroWavPathForHour(time.Now().Hour())
}

// IvrTimeoutManager arms a single one-shot timer that fires IvrTimeout
// onto a control channel, replacing the oneshot-stop-channel idiom with
// time.Timer.Stop, which is sufficient since only one timeout is ever
// live per call.
type IvrTimeoutManager struct {
	mu      sync.Mutex
	timer   *time.Timer
	timeout time.Duration
	notify  chan<- ControlEvent
}

// NewIvrTimeoutManager returns a manager that sends IvrTimeout{} to
// notify once timeout elapses, unless reset or stopped first.
func NewIvrTimeoutManager(timeout time.Duration, notify chan<- ControlEvent) *IvrTimeoutManager {
	return &IvrTimeoutManager{timeout: timeout, notify: notify}
}

// Start arms the timeout, replacing any previously armed one.
func (m *IvrTimeoutManager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.timer = time.AfterFunc(m.timeout, func() {
		select {
		case m.notify <- IvrTimeout{}:
		default:
		}
	})
}

// Reset stops and re-arms the timeout.
func (m *IvrTimeoutManager) Reset() {
	m.Start()
}

// Stop disarms the timeout without re-arming it.
func (m *IvrTimeoutManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *IvrTimeoutManager) stopLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
