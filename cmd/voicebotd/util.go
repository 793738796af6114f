package main

import (
	"hash/fnv"
	"net"
	"strconv"
	"strings"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/sipmsg"
)

// viaDestination derives where a response to req should be sent from its
// topmost Via header, honoring received/rport if the transport recorded
// them. This UAS has no client-transaction layer, so every reply is
// addressed by hand rather than through a transaction's own idea of "the
// peer".
func viaDestination(req *sipmsg.Request) string {
	via := req.Headers.Get("Via")
	if via == "" {
		return ""
	}
	fields := strings.Fields(via)
	if len(fields) < 2 {
		return ""
	}
	hostport, params := parseViaParams(fields[1])

	host := hostport
	port := ""
	if c := strings.LastIndexByte(hostport, ':'); c >= 0 {
		host = hostport[:c]
		port = hostport[c+1:]
	}
	if received, ok := params["received"]; ok && received != "" {
		host = received
	}
	if rport, ok := params["rport"]; ok && rport != "" {
		port = rport
	}
	if port == "" {
		port = "5060"
	}
	return net.JoinHostPort(host, port)
}

func parseViaParams(s string) (head string, params map[string]string) {
	params = map[string]string{}
	parts := strings.Split(s, ";")
	head = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			params[strings.ToLower(p[:eq])] = p[eq+1:]
		} else {
			params[strings.ToLower(p)] = ""
		}
	}
	return head, params
}

// uriDestination resolves uri to an address this process can send a UDP
// datagram to, defaulting the port when uri carries none.
func uriDestination(uri *sipmsg.URI, defaultPort int) string {
	port := uri.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(uri.Host, strconv.Itoa(port))
}

// newSSRC derives a stable RTP SSRC from callID. Deriving it rather than
// drawing from math/rand keeps one call's SSRC reproducible across its
// A-leg and any B-leg it spawns, which is convenient when reading RTCP
// traces back.
func newSSRC(callID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(callID))
	return h.Sum32()
}

// localTag derives this process's To-tag for callID's dialog. A hash of
// the Call-ID is used instead of a random token so a retransmitted final
// response always carries the same tag.
func localTag(callID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(callID))
	_, _ = h.Write([]byte("-uas"))
	return strconv.FormatUint(uint64(h.Sum32()), 16)
}

// buildAck builds the ACK for a 2xx response to invite. RFC 3261 requires
// the ACK for a 2xx to carry the INVITE's own CSeq number but its own
// "ACK" method, Via, and From, with To copied from the response (which
// carries the callee's tag).
func buildAck(invite *sipmsg.Request, resp *sipmsg.Response) *sipmsg.Request {
	ack := sipmsg.NewRequest("ACK", invite.URI)
	ack.Headers.Add("Via", invite.Headers.Get("Via"))
	ack.Headers.Add("From", invite.Headers.Get("From"))
	ack.Headers.Add("To", resp.Headers.Get("To"))
	ack.Headers.Add("Call-ID", invite.Headers.Get("Call-ID"))

	cseq, err := sipmsg.ParseCSeq(invite.Headers.Get("CSeq"))
	if err != nil {
		cseq = sipmsg.CSeq{Sequence: 1}
	}
	ack.Headers.Add("CSeq", sipmsg.CSeq{Sequence: cseq.Sequence, Method: "ACK"}.String())
	return ack
}
