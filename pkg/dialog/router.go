package dialog

import (
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// BridgeDispatcher is the subset of the B2BUA bridge the router needs: a
// way to ask whether a Call-ID belongs to a bridged leg, and to hand it a
// message if so. Defined here (rather than imported from pkg/b2bua) so the
// router does not depend on the bridge's concrete type.
type BridgeDispatcher interface {
	Owns(callID string) bool
	Dispatch(req *sipmsg.Request) error
}

// Router dispatches a parsed inbound SIP request to the coordinator
// registered for its Call-ID, or to the B2BUA bridge when the Call-ID
// belongs to a bridged leg. Dialog-establishing INVITEs with unknown
// Call-IDs are handed to onNewCall instead of being dropped.
type Router struct {
	registry *Registry
	bridge   BridgeDispatcher
	onNewCall func(req *sipmsg.Request) error
}

// NewRouter constructs a router over registry and bridge. onNewCall is
// invoked for an INVITE whose Call-ID is not yet registered (i.e. this is a
// new inbound dialog); it is expected to create and register a coordinator.
func NewRouter(registry *Registry, bridge BridgeDispatcher, onNewCall func(req *sipmsg.Request) error) *Router {
	return &Router{registry: registry, bridge: bridge, onNewCall: onNewCall}
}

// Route delivers req to the right destination. Errors from the destination
// are returned unchanged; the caller (the transport's receive loop) decides
// how to log or recover.
func (r *Router) Route(req *sipmsg.Request) error {
	callID := req.Headers.Get("Call-ID")

	if r.bridge != nil && r.bridge.Owns(callID) {
		return r.bridge.Dispatch(req)
	}

	handle, ok := r.registry.Get(callID)
	if !ok {
		if req.Method == "INVITE" && r.onNewCall != nil {
			return r.onNewCall(req)
		}
		return errUnknownCall(callID)
	}

	handle.ControlIn <- req
	return nil
}

type unknownCallError string

func (e unknownCallError) Error() string {
	return "dialog: no session registered for Call-ID " + string(e)
}

func errUnknownCall(callID string) error {
	return unknownCallError(callID)
}
