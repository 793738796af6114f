package dialog

// SessionHandle is what a registered call exposes to the router: two
// channels for control-plane (SIP-triggered) and media-plane (RTP/DTMF/VAD
// -triggered) events, owned and read exclusively by that call's coordinator
// goroutine.
type SessionHandle struct {
	ControlIn chan<- any
	MediaIn   chan<- any
}

// registryCommand is one request to the registry's owning goroutine. Only
// one of the reply channels is set, matching the operation.
type registryCommand struct {
	op       registryOp
	callID   string
	handle   SessionHandle
	replyGet chan SessionHandle
	replyOK  chan bool
	replyIDs chan []string
}

type registryOp int

const (
	opRegister registryOp = iota
	opUnregister
	opGet
	opList
)

// Registry keeps the active call handles keyed by CallId behind a single
// owning goroutine instead of a locked map: every operation is a message
// send/receive round trip, so the map itself is never touched outside that
// goroutine.
type Registry struct {
	cmds chan registryCommand
	done chan struct{}
}

// NewRegistry starts the registry's owning goroutine and returns a handle
// to it. Call Close to stop it.
func NewRegistry() *Registry {
	r := &Registry{
		cmds: make(chan registryCommand, 128),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Registry) run() {
	calls := make(map[string]SessionHandle)
	for cmd := range r.cmds {
		switch cmd.op {
		case opRegister:
			calls[cmd.callID] = cmd.handle
		case opUnregister:
			_, ok := calls[cmd.callID]
			delete(calls, cmd.callID)
			if cmd.replyOK != nil {
				cmd.replyOK <- ok
			}
		case opGet:
			h, ok := calls[cmd.callID]
			if cmd.replyGet != nil {
				if ok {
					cmd.replyGet <- h
				}
				close(cmd.replyGet)
			}
		case opList:
			ids := make([]string, 0, len(calls))
			for id := range calls {
				ids = append(ids, id)
			}
			if cmd.replyIDs != nil {
				cmd.replyIDs <- ids
			}
		}
	}
	close(r.done)
}

// Register associates callID with handle, replacing any existing entry.
func (r *Registry) Register(callID string, handle SessionHandle) {
	r.cmds <- registryCommand{op: opRegister, callID: callID, handle: handle}
}

// Unregister removes callID, reporting whether it was present.
func (r *Registry) Unregister(callID string) bool {
	reply := make(chan bool, 1)
	r.cmds <- registryCommand{op: opUnregister, callID: callID, replyOK: reply}
	return <-reply
}

// Get returns the handle for callID, or ok=false if no call is registered
// under that id.
func (r *Registry) Get(callID string) (SessionHandle, bool) {
	reply := make(chan SessionHandle, 1)
	r.cmds <- registryCommand{op: opGet, callID: callID, replyGet: reply}
	h, ok := <-reply
	return h, ok
}

// List returns every registered CallId, in no particular order.
func (r *Registry) List() []string {
	reply := make(chan []string, 1)
	r.cmds <- registryCommand{op: opList, replyIDs: reply}
	return <-reply
}

// Close stops the registry's owning goroutine. No further operations may be
// issued afterward.
func (r *Registry) Close() {
	close(r.cmds)
	<-r.done
}
