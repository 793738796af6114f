package recording

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
)

// RecordingsDir is the root every call's recording directory is created
// under.
const RecordingsDir = "storage/recordings"

// frameSamples is the flush granularity: one 20ms G.711 frame at 8kHz.
const frameSamples = 160

// Dir returns the directory a call's recordings live in.
func Dir(callID string) string {
	return filepath.Join(RecordingsDir, callID)
}

// Recorder accumulates one leg's rx/tx mu-law audio into an interleaved
// stereo PCM16 WAV file (mixed.wav or b_leg.wav). PushRxMulaw/PushTxMulaw
// queue decoded samples; FlushTick drains one 20ms frame per call so the
// file grows in step with the call rather than buffering unboundedly.
type Recorder struct {
	callID    string
	dir       string
	fileName  string
	writeMeta bool

	writer     *wavWriter
	channels   uint16
	sampleRate uint32

	samplesWritten uint64
	startedAt      time.Time

	rxSamples []int16
	txSamples []int16
}

// NewRecorder returns the A-leg mixed.wav recorder (stereo, writes
// meta.json on Stop).
func NewRecorder(callID string) *Recorder {
	return NewRecorderWithFile(callID, "mixed.wav", true)
}

// NewRecorderWithFile returns a recorder writing fileName under callID's
// directory. writeMeta controls whether Stop also emits meta.json — only
// the main A-leg recorder does.
func NewRecorderWithFile(callID, fileName string, writeMeta bool) *Recorder {
	return &Recorder{
		callID:     callID,
		dir:        Dir(callID),
		fileName:   fileName,
		writeMeta:  writeMeta,
		channels:   2,
		sampleRate: wavSampleRate,
	}
}

// FilePath returns the path Start will create the WAV file at.
func (r *Recorder) FilePath() string { return filepath.Join(r.dir, r.fileName) }

// DirPath returns the call's recording directory.
func (r *Recorder) DirPath() string { return r.dir }

// RelativePath returns the directory name (just the Call-ID) the caller
// can join onto a public recordings base URL.
func (r *Recorder) RelativePath() string { return r.callID }

// SampleRate returns the fixed recording sample rate.
func (r *Recorder) SampleRate() uint32 { return r.sampleRate }

// Channels returns the recorder's channel count: 2 (rx left, tx right) for
// both the main and the b_leg recorder.
func (r *Recorder) Channels() uint16 { return r.channels }

// IsStarted reports whether Start has been called without a matching
// Stop.
func (r *Recorder) IsStarted() bool { return r.writer != nil }

// Start creates the recording directory and opens the WAV file. Calling
// Start while already started is a no-op.
func (r *Recorder) Start() error {
	if r.writer != nil {
		return nil
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("recording: mkdir %s: %w", r.dir, err)
	}
	w, err := createWavWriter(r.FilePath(), r.channels, r.sampleRate)
	if err != nil {
		return err
	}
	r.writer = w
	r.samplesWritten = 0
	r.startedAt = time.Now()
	r.rxSamples = r.rxSamples[:0]
	r.txSamples = r.txSamples[:0]
	return nil
}

// PushRxMulaw decodes and queues received mu-law audio.
func (r *Recorder) PushRxMulaw(payload []byte) {
	r.rxSamples = appendDecoded(r.rxSamples, payload)
}

// PushTxMulaw decodes and queues sent mu-law audio.
func (r *Recorder) PushTxMulaw(payload []byte) {
	r.txSamples = appendDecoded(r.txSamples, payload)
}

func appendDecoded(queue []int16, payload []byte) []int16 {
	for _, b := range payload {
		queue = append(queue, g711.MulawToLinear16(b))
	}
	return queue
}

// FlushTick writes one frame's worth of interleaved rx/tx samples (160
// each at 8kHz = 20ms), zero-filling whichever side is short.
func (r *Recorder) FlushTick() {
	if r.writer == nil {
		return
	}
	var rxFrame, txFrame [frameSamples]int16
	n := frameSamples
	if len(r.rxSamples) < n {
		copy(rxFrame[:], r.rxSamples)
		r.rxSamples = r.rxSamples[:0]
	} else {
		copy(rxFrame[:], r.rxSamples[:n])
		r.rxSamples = r.rxSamples[n:]
	}
	if len(r.txSamples) < n {
		copy(txFrame[:], r.txSamples)
		r.txSamples = r.txSamples[:0]
	} else {
		copy(txFrame[:], r.txSamples[:n])
		r.txSamples = r.txSamples[n:]
	}

	for i := 0; i < frameSamples; i++ {
		_ = r.writer.WriteSample(rxFrame[i])
		if r.channels == 2 {
			_ = r.writer.WriteSample(txFrame[i])
		}
	}
	r.samplesWritten += uint64(frameSamples)
}

// Stop drains any buffered samples, finalizes the WAV file, and — for
// the main recorder — writes meta.json. Calling Stop when not started
// is a no-op.
func (r *Recorder) Stop() error {
	if r.writer == nil {
		return nil
	}
	for len(r.rxSamples) > 0 || len(r.txSamples) > 0 {
		r.FlushTick()
	}
	if err := r.writer.Finalize(); err != nil {
		r.writer = nil
		return err
	}
	r.writer = nil
	r.rxSamples = nil
	r.txSamples = nil
	if r.writeMeta {
		return r.writeMetaJSON()
	}
	return nil
}

type recordingMetaFiles struct {
	Mixed string `json:"mixed"`
}

type recordingMeta struct {
	CallID            string             `json:"callId"`
	RecordingStartedAt string            `json:"recordingStartedAt"`
	SampleRate        uint32             `json:"sampleRate"`
	Channels          uint16             `json:"channels"`
	DurationSec       float64            `json:"durationSec"`
	Files             recordingMetaFiles `json:"files"`
}

func (r *Recorder) writeMetaJSON() error {
	duration := float64(r.samplesWritten) / float64(r.sampleRate)
	meta := recordingMeta{
		CallID:             r.callID,
		RecordingStartedAt: r.startedAt.UTC().Format(time.RFC3339),
		SampleRate:         r.sampleRate,
		Channels:           r.channels,
		DurationSec:        duration,
		Files:              recordingMetaFiles{Mixed: r.fileName},
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("recording: marshal meta: %w", err)
	}
	return os.WriteFile(filepath.Join(r.dir, "meta.json"), data, 0o644)
}
