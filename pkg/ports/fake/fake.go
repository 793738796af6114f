// Package fake provides deterministic in-memory implementations of
// pkg/ports, suitable for tests and for running the voicebot core
// without any external AI/routing/storage backend wired up.
package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/ports"
)

// AI is a canned AiPort: it echoes a fixed transcript, always classifies
// the same intent, and "synthesizes" by returning the text itself as a
// fake path. It exists so the coordinator can be exercised end-to-end
// without a real speech stack.
type AI struct {
	Transcript string
	Intent     ports.Intent
	Answer     string
	WavDir     string
}

// NewAI returns an AI fake with reasonable canned responses.
func NewAI() *AI {
	return &AI{
		Transcript: "hello",
		Intent:     ports.Intent{Name: "greeting", Confidence: 1.0},
		Answer:     "Hello, how can I help you?",
		WavDir:     "/tmp",
	}
}

func (a *AI) TranscribeChunks(_ context.Context, _ string, _ []ports.AsrChunk) (string, error) {
	return a.Transcript, nil
}

func (a *AI) ClassifyIntent(_ context.Context, _ string) (ports.Intent, error) {
	return a.Intent, nil
}

func (a *AI) GenerateAnswer(_ context.Context, _ []ports.ChatMessage) (string, error) {
	return a.Answer, nil
}

func (a *AI) SynthToWav(_ context.Context, text, path string) (string, error) {
	if path != "" {
		return path, nil
	}
	name := strings.ReplaceAll(strings.ToLower(text), " ", "_")
	if len(name) > 24 {
		name = name[:24]
	}
	return fmt.Sprintf("%s/%s.wav", a.WavDir, name), nil
}

func (a *AI) Analyze(_ context.Context, _ ports.SerInputPcm) (ports.SerOutcome, error) {
	return ports.SerOutcome{Emotion: "neutral", Confidence: 1.0}, nil
}

func (a *AI) HandleWeather(_ context.Context, q ports.WeatherQuery) (ports.WeatherResponse, error) {
	return ports.WeatherResponse{Summary: fmt.Sprintf("It's sunny in %s.", q.Location)}, nil
}

// Storage is a StoragePort fake that slices a fixed silence buffer into
// 160-byte (20ms @ 8kHz PCMU) frames, regardless of the requested path,
// so playback code can be exercised without real WAV files on disk.
type Storage struct {
	FrameCount int
}

// NewStorage returns a Storage fake producing FrameCount frames of
// silence (0xFF, PCMU's zero-amplitude byte) per load.
func NewStorage(frameCount int) *Storage {
	return &Storage{FrameCount: frameCount}
}

func (s *Storage) LoadWavAsPcmuFrames(_ string) ([][]byte, error) {
	frames := make([][]byte, s.FrameCount)
	for i := range frames {
		frame := make([]byte, 160)
		for j := range frame {
			frame[j] = 0xff
		}
		frames[i] = frame
	}
	return frames, nil
}

// Routing is a RoutingPort fake backed by a plain map of phone number to
// routing decision; phone numbers absent from the map are treated as
// unregistered, non-spam, default-routed.
type Routing struct {
	mu        sync.Mutex
	numbers   map[string]ports.RegisteredNumber
	spam      map[string]bool
	rulesByID map[string]ports.RoutingRule
}

// NewRouting returns an empty Routing fake.
func NewRouting() *Routing {
	return &Routing{
		numbers:   make(map[string]ports.RegisteredNumber),
		spam:      make(map[string]bool),
		rulesByID: make(map[string]ports.RoutingRule),
	}
}

// RegisterNumber seeds a RegisteredNumber row for phoneNumber.
func (r *Routing) RegisterNumber(phoneNumber string, row ports.RegisteredNumber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.numbers[phoneNumber] = row
}

// MarkSpam seeds phoneNumber as spam.
func (r *Routing) MarkSpam(phoneNumber string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spam[phoneNumber] = true
}

// RegisterRule seeds a RoutingRule keyed by category.
func (r *Routing) RegisterRule(category string, rule ports.RoutingRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rulesByID[category] = rule
}

func (r *Routing) FindRegisteredNumber(_ context.Context, phoneNumber string) (*ports.RegisteredNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.numbers[phoneNumber]; ok {
		return &row, nil
	}
	return nil, nil
}

func (r *Routing) IsSpam(_ context.Context, phoneNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spam[phoneNumber], nil
}

func (r *Routing) IsRegistered(_ context.Context, phoneNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.numbers[phoneNumber]
	return ok, nil
}

func (r *Routing) FindRoutingRule(_ context.Context, category string) (*ports.RoutingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule, ok := r.rulesByID[category]; ok {
		return &rule, nil
	}
	return nil, nil
}

// Ingest is an IngestPort fake that records every posted payload instead
// of making an HTTP call.
type Ingest struct {
	mu       sync.Mutex
	Received []ports.IngestPayload
}

// NewIngest returns an empty Ingest fake.
func NewIngest() *Ingest {
	return &Ingest{}
}

func (i *Ingest) Post(_ context.Context, _ string, payload ports.IngestPayload) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Received = append(i.Received, payload)
	return nil
}

// CallLog is a CallLogPort fake that records every persisted call log.
type CallLog struct {
	mu   sync.Mutex
	Logs []ports.EndedCallLog
}

// NewCallLog returns an empty CallLog fake.
func NewCallLog() *CallLog {
	return &CallLog{}
}

func (c *CallLog) PersistCallEnded(_ context.Context, log ports.EndedCallLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Logs = append(c.Logs, log)
	return nil
}
