package sipmsg

import (
	"strconv"
	"strings"
)

// Build renders a Request to wire bytes, injecting Content-Length unless
// one is already present.
func (r *Request) Build() []byte {
	var b strings.Builder
	b.WriteString(r.Method)
	b.WriteByte(' ')
	b.WriteString(r.URI.String())
	b.WriteByte(' ')
	version := r.Version
	if version == "" {
		version = "SIP/2.0"
	}
	b.WriteString(version)
	b.WriteString("\r\n")
	writeHeaders(&b, r.Headers, r.Body)
	b.Write(r.Body)
	return []byte(b.String())
}

// Build renders a Response to wire bytes, injecting Content-Length unless
// one is already present.
func (resp *Response) Build() []byte {
	var b strings.Builder
	version := resp.Version
	if version == "" {
		version = "SIP/2.0"
	}
	b.WriteString(version)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(resp.Status))
	b.WriteByte(' ')
	b.WriteString(resp.Reason)
	b.WriteString("\r\n")
	writeHeaders(&b, resp.Headers, resp.Body)
	b.Write(resp.Body)
	return []byte(b.String())
}

func writeHeaders(b *strings.Builder, headers Headers, body []byte) {
	hasLength := headers.Has("Content-Length")
	for _, h := range headers.All() {
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString("\r\n")
	}
	if !hasLength {
		b.WriteString("Content-Length: ")
		b.WriteString(strconv.Itoa(len(body)))
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
}

// NewResponseFromRequest builds a response carrying Via/From/To/Call-ID/
// CSeq copied from req, as required for any SIP response to be routable
// back to the sender. A To-tag is added when absent and addTag is true
// (used for 180/200 but not for 100 Trying).
func NewResponseFromRequest(req *Request, status int, reason string, addTag bool, tag string) *Response {
	resp := NewResponse(status, reason)
	for _, name := range []string{"Via", "From", "Call-ID", "CSeq"} {
		for _, v := range req.Headers.GetAll(name) {
			resp.Headers.Add(name, v)
		}
	}
	to := req.Headers.Get("To")
	if addTag && !strings.Contains(strings.ToLower(to), "tag=") && tag != "" {
		to = to + ";tag=" + tag
	}
	resp.Headers.Add("To", to)
	return resp
}
