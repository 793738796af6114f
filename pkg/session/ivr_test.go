package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIvrActionForDigit(t *testing.T) {
	assert.Equal(t, IvrActionEnterVoicebot, IvrActionForDigit('1'))
	assert.Equal(t, IvrActionPlaySendai, IvrActionForDigit('2'))
	assert.Equal(t, IvrActionTransfer, IvrActionForDigit('3'))
	assert.Equal(t, IvrActionReplayMenu, IvrActionForDigit('9'))
	assert.Equal(t, IvrActionInvalid, IvrActionForDigit('5'))
}

func TestIntroWavPathForHour(t *testing.T) {
	assert.Equal(t, introMorningWavPath, IntroWavPathForHour(5))
	assert.Equal(t, introMorningWavPath, IntroWavPathForHour(11))
	assert.Equal(t, introAfternoonWavPath, IntroWavPathForHour(12))
	assert.Equal(t, introAfternoonWavPath, IntroWavPathForHour(16))
	assert.Equal(t, introEveningWavPath, IntroWavPathForHour(17))
	assert.Equal(t, introEveningWavPath, IntroWavPathForHour(4))
}

func TestIvrTimeoutManagerFiresAfterTimeout(t *testing.T) {
	ch := make(chan ControlEvent, 1)
	m := NewIvrTimeoutManager(10*time.Millisecond, ch)
	m.Start()

	select {
	case ev := <-ch:
		_, ok := ev.(IvrTimeout)
		assert.True(t, ok)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for IvrTimeout")
	}
}

func TestIvrTimeoutManagerStopPreventsFiring(t *testing.T) {
	ch := make(chan ControlEvent, 1)
	m := NewIvrTimeoutManager(10*time.Millisecond, ch)
	m.Start()
	m.Stop()

	select {
	case <-ch:
		t.Fatal("expected no IvrTimeout after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}
