package b2bua

import (
	"sync"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// Bridge dispatches inbound SIP messages for bridge-owned (B-leg) Call-IDs
// back to whichever coordinator spawned that leg. Unlike the source this
// was modeled on (a `static OnceLock<Mutex<BridgeState>>` singleton), this
// is an explicit struct instantiated once at process startup and passed to
// whatever needs it: it holds the same single mutex protecting a
// CallId -> channel map, touched only at leg setup and teardown per
// spec.md §5.
type Bridge struct {
	mu       sync.Mutex
	sessions map[string]chan *sipmsg.Request
}

// NewBridge returns an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{sessions: make(map[string]chan *sipmsg.Request)}
}

// Register associates callID (the B-leg's Call-ID) with a channel that
// receives every subsequent SIP message for that Call-ID. The returned
// func unregisters it; call it when the leg tears down.
func (b *Bridge) Register(callID string, bufSize int) (<-chan *sipmsg.Request, func()) {
	ch := make(chan *sipmsg.Request, bufSize)
	b.mu.Lock()
	b.sessions[callID] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.sessions, callID)
		b.mu.Unlock()
		close(ch)
	}
}

// Owns reports whether callID is a currently-registered B-leg.
func (b *Bridge) Owns(callID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.sessions[callID]
	return ok
}

// Dispatch delivers req to the channel registered for its Call-ID. A full
// channel drops req itself (the newest message; whatever is already
// queued stays) rather than blocking the transport's receive loop.
func (b *Bridge) Dispatch(req *sipmsg.Request) error {
	callID := req.Headers.Get("Call-ID")
	b.mu.Lock()
	ch, ok := b.sessions[callID]
	b.mu.Unlock()
	if !ok {
		return errNotOwned(callID)
	}
	select {
	case ch <- req:
	default:
	}
	return nil
}

type notOwnedError string

func (e notOwnedError) Error() string {
	return "b2bua: Call-ID not registered with bridge: " + string(e)
}

func errNotOwned(callID string) error {
	return notOwnedError(callID)
}
