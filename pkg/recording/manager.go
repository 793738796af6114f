package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Error is one recording-pipeline failure, tagged by which stage raised
// it so a caller can decide whether it's fatal to the call.
type Error struct {
	Stage string // "start", "stop", "copy", "merge"
	Err   error
}

func (e Error) Error() string {
	return fmt.Sprintf("recording %s failed: %v", e.Stage, e.Err)
}

type errorSink struct {
	mu     sync.Mutex
	errors []Error
}

func (s *errorSink) push(stage string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, Error{Stage: stage, Err: err})
}

func (s *errorSink) drain() []Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.errors
	s.errors = nil
	return out
}

// Manager owns one call's A-leg mix recorder and, once a blind transfer
// bridges a B-leg, that leg's own recorder. StopAndMerge finalizes both
// and produces the 4-channel merged.wav asynchronously.
type Manager struct {
	callID       string
	recorder     *Recorder
	bLegRecorder *Recorder
	errs         *errorSink
}

// NewManager returns a manager for callID with its main recorder
// constructed but not yet started.
func NewManager(callID string) *Manager {
	return &Manager{
		callID:   callID,
		recorder: NewRecorder(callID),
		errs:     &errorSink{},
	}
}

// StartMain starts the A-leg recorder.
func (m *Manager) StartMain() error {
	if err := m.recorder.Start(); err != nil {
		m.errs.push("start", err)
		return err
	}
	return nil
}

// EnsureBLeg lazily constructs (but does not start) the B-leg recorder,
// called once a transfer bridges a second leg.
func (m *Manager) EnsureBLeg() {
	if m.bLegRecorder == nil {
		m.bLegRecorder = NewRecorderWithFile(m.callID, "b_leg.wav", false)
	}
}

// StartBLeg starts the B-leg recorder if one has been ensured.
func (m *Manager) StartBLeg() error {
	if m.bLegRecorder == nil {
		return nil
	}
	if err := m.bLegRecorder.Start(); err != nil {
		m.errs.push("start", err)
		return err
	}
	return nil
}

// IsStarted reports whether the main recorder has been started.
func (m *Manager) IsStarted() bool { return m.recorder.IsStarted() }

// PushRx queues decoded A-leg received audio.
func (m *Manager) PushRx(payload []byte) { m.recorder.PushRxMulaw(payload) }

// PushTx queues decoded A-leg sent audio.
func (m *Manager) PushTx(payload []byte) { m.recorder.PushTxMulaw(payload) }

// PushBLegRx queues decoded B-leg received audio, if a B-leg recorder exists.
func (m *Manager) PushBLegRx(payload []byte) {
	if m.bLegRecorder != nil {
		m.bLegRecorder.PushRxMulaw(payload)
	}
}

// PushBLegTx queues decoded B-leg sent audio, if a B-leg recorder exists.
func (m *Manager) PushBLegTx(payload []byte) {
	if m.bLegRecorder != nil {
		m.bLegRecorder.PushTxMulaw(payload)
	}
}

// FlushTick drains one frame from every active recorder.
func (m *Manager) FlushTick() {
	m.recorder.FlushTick()
	if m.bLegRecorder != nil {
		m.bLegRecorder.FlushTick()
	}
}

// RelativePath returns the A-leg recorder's directory name.
func (m *Manager) RelativePath() string { return m.recorder.RelativePath() }

// SampleRate returns the fixed recording sample rate.
func (m *Manager) SampleRate() uint32 { return m.recorder.SampleRate() }

// Channels returns the A-leg recorder's channel count.
func (m *Manager) Channels() uint16 { return m.recorder.Channels() }

// TakeErrors drains and returns every recording error observed so far.
func (m *Manager) TakeErrors() []Error { return m.errs.drain() }

// StopAndMerge finalizes the main (and, if present, B-leg) recorders and
// launches the a_leg.wav copy + merged.wav build on its own goroutine —
// neither blocks call teardown on disk I/O.
func (m *Manager) StopAndMerge() {
	aPath := m.recorder.FilePath()
	dirPath := m.recorder.DirPath()
	if err := m.recorder.Stop(); err != nil {
		m.errs.push("stop", err)
	}

	if m.bLegRecorder == nil {
		return
	}
	bPath := m.bLegRecorder.FilePath()
	if err := m.bLegRecorder.Stop(); err != nil {
		m.errs.push("stop", err)
	}

	go m.mergeAsync(aPath, bPath, dirPath)
}

func (m *Manager) mergeAsync(aPath, bPath, dirPath string) {
	if _, err := os.Stat(aPath); err != nil {
		return
	}
	if _, err := os.Stat(bPath); err != nil {
		return
	}

	aLegPath := filepath.Join(dirPath, "a_leg.wav")
	if err := copyFile(aPath, aLegPath); err != nil {
		m.errs.push("copy", err)
	}

	mergedPath := filepath.Join(dirPath, "merged.wav")
	if err := MergeStereoFiles(aPath, bPath, mergedPath); err != nil {
		m.errs.push("merge", err)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
