// Package session implements the per-call coordinator: dialog/IVR state,
// voice-activity capture, DTMF, playback, session timers, and blind
// transfer, wired together behind a single control-plane goroutine per
// call.
package session

import (
	"math"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
)

// VadConfig tunes AudioCapture's voice-activity detector.
type VadConfig struct {
	RMSThreshold   uint32
	StartSilenceMs uint64
	EndSilenceMs   uint64
	MinSpeechMs    uint64
	MaxSpeechMs    uint64
}

// DefaultVadConfig matches the teacher deployment's tuned defaults: a
// short start-silence grace period, 700ms of trailing silence to close an
// utterance, and a 15s hard cap so a stuck-open mic can't buffer forever.
func DefaultVadConfig() VadConfig {
	return VadConfig{
		RMSThreshold:   400,
		StartSilenceMs: 100,
		EndSilenceMs:   700,
		MinSpeechMs:    250,
		MaxSpeechMs:    15000,
	}
}

type captureState int

const (
	captureIdle captureState = iota
	captureInSpeech
)

// AudioCapture buffers inbound mu-law RTP payloads into speech
// utterances using an RMS-threshold voice-activity detector. Frames
// are 20ms of 8kHz mu-law (160 bytes) unless Ingest is fed something
// else, in which case its duration is derived from its byte length.
type AudioCapture struct {
	cfg VadConfig

	active           bool
	state            captureState
	startAt          time.Time
	startDelayActive bool

	payloads         []byte
	lastVoiceLen     int
	endSilenceMsAcc  uint64
	totalMs          uint64
}

// NewAudioCapture returns a capture ready for Start.
func NewAudioCapture(cfg VadConfig) *AudioCapture {
	return &AudioCapture{cfg: cfg}
}

// Start (re)arms the capture: active, Idle, buffers cleared. If
// StartSilenceMs > 0 a grace window is armed during which Ingest never
// emits, to skip the bot's own half-duplex bleed-through.
func (c *AudioCapture) Start() {
	c.active = true
	c.resetState()
	if c.cfg.StartSilenceMs > 0 {
		c.startAt = time.Now()
		c.startDelayActive = true
	} else {
		c.startDelayActive = false
	}
}

// Reset deactivates the capture and clears any partial utterance.
func (c *AudioCapture) Reset() {
	c.active = false
	c.startDelayActive = false
	c.resetState()
}

func (c *AudioCapture) resetState() {
	c.state = captureIdle
	c.payloads = nil
	c.lastVoiceLen = 0
	c.endSilenceMsAcc = 0
	c.totalMs = 0
}

// Ingest feeds one mu-law RTP payload through the detector. It returns
// the captured utterance (a prefix of the buffered payloads, truncated
// to the last voiced sample) once InSpeech ends and the speech was long
// enough to clear MinSpeechMs; otherwise it returns nil.
func (c *AudioCapture) Ingest(payload []byte) []byte {
	if !c.active || len(payload) == 0 {
		return nil
	}

	frameMs := uint64(len(payload)) * 1000 / 8000
	if frameMs == 0 {
		return nil
	}

	if c.startDelayActive {
		if time.Since(c.startAt) < time.Duration(c.cfg.StartSilenceMs)*time.Millisecond {
			return nil
		}
		c.startDelayActive = false
	}

	isVoice := rmsEnergy(payload) >= c.cfg.RMSThreshold

	switch c.state {
	case captureIdle:
		if isVoice {
			c.state = captureInSpeech
			c.payloads = append(c.payloads, payload...)
			c.lastVoiceLen = len(c.payloads)
			c.endSilenceMsAcc = 0
			c.totalMs = frameMs
		}
	case captureInSpeech:
		c.payloads = append(c.payloads, payload...)
		c.totalMs += frameMs
		if isVoice {
			c.lastVoiceLen = len(c.payloads)
			c.endSilenceMsAcc = 0
		} else {
			c.endSilenceMsAcc += frameMs
		}
		if c.totalMs >= c.cfg.MaxSpeechMs || c.endSilenceMsAcc >= c.cfg.EndSilenceMs {
			return c.finish()
		}
	}
	return nil
}

func (c *AudioCapture) finish() []byte {
	speechLen := c.lastVoiceLen
	speechMs := uint64(speechLen) * 1000 / 8000

	var out []byte
	if speechLen > 0 && speechMs >= c.cfg.MinSpeechMs {
		out = make([]byte, speechLen)
		copy(out, c.payloads[:speechLen])
	}
	c.resetState()
	return out
}

func rmsEnergy(payload []byte) uint32 {
	if len(payload) == 0 {
		return 0
	}
	var sum uint64
	for _, b := range payload {
		sample := int64(g711.MulawToLinear16(b))
		sum += uint64(sample * sample)
	}
	mean := sum / uint64(len(payload))
	return uint32(math.Sqrt(float64(mean)))
}
